/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package query

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/tomoncle/datarepo/types"
	"github.com/uptrace/bun"
)

// JoinClause is an explicit join added to reach a related model.
type JoinClause struct {
	Relation *Relation
	Alias    string
	Type     JoinType
}

type orderTerm struct {
	column    bun.Ident
	direction types.Direction
}

// Plan accumulates the joins, filter and ordering of one select statement.
type Plan struct {
	meta   *Metadata
	joins  []*JoinClause
	where  []string
	args   []any
	orders []orderTerm
}

// NewPlan starts an empty plan for the model.
func (m *Metadata) NewPlan() *Plan {
	return &Plan{meta: m}
}

// Where adds p to the plan's filter. A nil predicate adds nothing.
func (p *Plan) Where(pred Predicate) error {
	if pred == nil {
		return nil
	}
	r := &renderer{meta: p.meta, plan: p}
	sql, args, err := r.render(pred)
	if err != nil {
		return err
	}
	if sql != "" {
		p.where = append(p.where, sql)
		p.args = append(p.args, args...)
	}
	return nil
}

// OrderBy appends sort properties. Relation paths join the relation.
func (p *Plan) OrderBy(sort types.Sort) error {
	for _, o := range sort {
		col, err := p.column(ParsePath(o.Property), JoinLeft)
		if err != nil {
			return err
		}
		p.orders = append(p.orders, orderTerm{column: col, direction: o.Direction})
	}
	return nil
}

// Column returns the qualified identifier of path, joining relations with an
// inner join when they are not joined yet.
func (p *Plan) Column(path string) (bun.Ident, error) {
	return p.column(ParsePath(path), JoinInner)
}

// Joins lists the joins the plan requires.
func (p *Plan) Joins() []JoinClause {
	out := make([]JoinClause, len(p.joins))
	for i, j := range p.joins {
		out[i] = *j
	}
	return out
}

// HasFilter reports whether any predicate was added.
func (p *Plan) HasFilter() bool { return len(p.where) > 0 }

// Apply adds joins and the filter to q.
func (p *Plan) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	for _, j := range p.joins {
		q = q.Join(j.Type.keyword()+" ? AS ? ON ? = ?",
			bun.Ident(j.Relation.Target.Table),
			bun.Ident(j.Alias),
			bun.Ident(j.Alias+"."+j.Relation.References),
			bun.Ident(p.meta.Alias+"."+j.Relation.ForeignKey),
		)
	}
	if len(p.where) > 0 {
		q = q.Where(strings.Join(p.where, " AND "), p.args...)
	}
	return q
}

// ApplyOrder adds the ordering to q, followed by the primary key ascending so
// that rows with equal sort keys come back in a stable order.
func (p *Plan) ApplyOrder(q *bun.SelectQuery) *bun.SelectQuery {
	pk := bun.Ident(p.meta.Alias + "." + p.meta.PK.Name)
	hasPK := false
	for _, o := range p.orders {
		q = q.OrderExpr("? "+o.direction.Name(), o.column)
		if o.column == pk {
			hasPK = true
		}
	}
	if !hasPK {
		q = q.OrderExpr("? ASC", pk)
	}
	return q
}

func (p *Plan) column(path Path, jt JoinType) (bun.Ident, error) {
	rel, col, err := p.meta.Resolve(path)
	if err != nil {
		return "", err
	}
	if rel == nil {
		return bun.Ident(p.meta.Alias + "." + col.Name), nil
	}
	j := p.join(rel, jt)
	return bun.Ident(j.Alias + "." + col.Name), nil
}

func (p *Plan) join(rel *Relation, jt JoinType) *JoinClause {
	for _, j := range p.joins {
		if j.Relation == rel {
			if jt == JoinInner {
				j.Type = JoinInner
			}
			return j
		}
	}
	j := &JoinClause{Relation: rel, Alias: "j_" + strings.ToLower(rel.Name), Type: jt}
	p.joins = append(p.joins, j)
	return j
}

// Condition renders pred with unqualified column names for set-based update
// and delete statements. Relation paths are rejected.
func (m *Metadata) Condition(pred Predicate) (string, []any, error) {
	if pred == nil {
		return "", nil, nil
	}
	r := &renderer{meta: m}
	return r.render(pred)
}

type renderer struct {
	meta *Metadata
	plan *Plan
}

func (r *renderer) ident(c *Condition) (bun.Ident, error) {
	if r.plan != nil {
		return r.plan.column(c.Path, c.Path.Join)
	}
	rel, col, err := r.meta.Resolve(c.Path)
	if err != nil {
		return "", err
	}
	if rel != nil {
		return "", fmt.Errorf("%s: relation path %q cannot be used in a set-based statement", r.meta.Name(), c.Path)
	}
	return bun.Ident(col.Name), nil
}

func (r *renderer) render(pred Predicate) (string, []any, error) {
	switch p := pred.(type) {
	case nil:
		return "", nil, nil
	case *Condition:
		return r.condition(p)
	case *Negation:
		sql, args, err := r.render(p.Predicate)
		if err != nil || sql == "" {
			return sql, args, err
		}
		return "NOT (" + sql + ")", args, nil
	case *Junction:
		var parts []string
		var args []any
		for _, child := range p.Predicates {
			sql, a, err := r.render(child)
			if err != nil {
				return "", nil, err
			}
			if sql == "" {
				continue
			}
			parts = append(parts, sql)
			args = append(args, a...)
		}
		if len(parts) == 0 {
			return "", nil, nil
		}
		if len(parts) == 1 {
			return parts[0], args, nil
		}
		sep := " AND "
		if p.Or {
			sep = " OR "
		}
		return "(" + strings.Join(parts, sep) + ")", args, nil
	case *Raw:
		if p.Filter == nil || strings.TrimSpace(p.Filter.Schema) == "" {
			return "", nil, nil
		}
		return "(" + p.Filter.Schema + ")", append([]any(nil), p.Filter.Args...), nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate %T", pred)
	}
}

func (r *renderer) condition(c *Condition) (string, []any, error) {
	if len(c.Values) != c.Op.Arity() {
		return "", nil, fmt.Errorf("%s %s expects %d value(s), got %d", c.Path, c.Op, c.Op.Arity(), len(c.Values))
	}
	col, err := r.ident(c)
	if err != nil {
		return "", nil, err
	}
	switch c.Op {
	case OpEq, OpNe:
		if c.Values[0] == nil {
			if c.Op == OpEq {
				return "? IS NULL", []any{col}, nil
			}
			return "? IS NOT NULL", []any{col}, nil
		}
		return "? " + c.Op.String() + " ?", []any{col, c.Values[0]}, nil
	case OpGt, OpGte, OpLt, OpLte, OpLike, OpNotLike:
		return "? " + c.Op.String() + " ?", []any{col, c.Values[0]}, nil
	case OpStartingWith:
		return "? LIKE ?", []any{col, fmt.Sprint(c.Values[0]) + "%"}, nil
	case OpEndingWith:
		return "? LIKE ?", []any{col, "%" + fmt.Sprint(c.Values[0])}, nil
	case OpContaining:
		return "? LIKE ?", []any{col, "%" + fmt.Sprint(c.Values[0]) + "%"}, nil
	case OpBetween:
		return "? BETWEEN ? AND ?", []any{col, c.Values[0], c.Values[1]}, nil
	case OpIn, OpNotIn:
		n, ok := sliceLen(c.Values[0])
		if !ok {
			return "", nil, fmt.Errorf("%s %s expects a slice, got %T", c.Path, c.Op, c.Values[0])
		}
		if n == 0 {
			if c.Op == OpIn {
				return "1 = 0", nil, nil
			}
			return "1 = 1", nil, nil
		}
		return "? " + c.Op.String() + " (?)", []any{col, bun.In(c.Values[0])}, nil
	case OpIsNull, OpIsNotNull:
		return "? " + c.Op.String(), []any{col}, nil
	case OpTrue:
		return "? = ?", []any{col, true}, nil
	case OpFalse:
		return "? = ?", []any{col, false}, nil
	}
	return "", nil, fmt.Errorf("unsupported operator %s", c.Op)
}

func sliceLen(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return 0, false
	}
	return rv.Len(), true
}
