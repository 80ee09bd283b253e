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
	"strings"

	"github.com/tomoncle/datarepo/types"
)

// Path addresses a field on the root model or on a related model.
type Path struct {
	Relation string
	Join     JoinType
	Field    string
}

// ParsePath parses "Field" or "Relation.Field".
func ParsePath(s string) Path {
	if i := strings.IndexByte(s, '.'); i > 0 {
		return Path{Relation: s[:i], Field: s[i+1:]}
	}
	return Path{Field: s}
}

func (p Path) String() string {
	if p.Relation == "" {
		return p.Field
	}
	return p.Relation + "." + p.Field
}

// Operator is a comparison applied by a Condition.
type Operator int

const (
	OpEq Operator = iota
	OpNe
	OpGt
	OpGte
	OpLt
	OpLte
	OpBetween
	OpIn
	OpNotIn
	OpLike
	OpNotLike
	OpStartingWith
	OpEndingWith
	OpContaining
	OpIsNull
	OpIsNotNull
	OpTrue
	OpFalse
)

var operatorNames = [...]string{
	OpEq: "=", OpNe: "<>", OpGt: ">", OpGte: ">=", OpLt: "<", OpLte: "<=",
	OpBetween: "BETWEEN", OpIn: "IN", OpNotIn: "NOT IN", OpLike: "LIKE", OpNotLike: "NOT LIKE",
	OpStartingWith: "STARTING WITH", OpEndingWith: "ENDING WITH", OpContaining: "CONTAINING",
	OpIsNull: "IS NULL", OpIsNotNull: "IS NOT NULL", OpTrue: "IS TRUE", OpFalse: "IS FALSE",
}

func (o Operator) String() string {
	if int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return "?"
}

// Arity is the number of values the operator consumes.
func (o Operator) Arity() int {
	switch o {
	case OpIsNull, OpIsNotNull, OpTrue, OpFalse:
		return 0
	case OpBetween:
		return 2
	default:
		return 1
	}
}

// Predicate is a composable filter. A nil Predicate means "no filter".
type Predicate interface {
	predicate()
}

// Condition compares one field with its values.
type Condition struct {
	Path   Path
	Op     Operator
	Values []any
}

// Junction combines predicates with AND or OR.
type Junction struct {
	Or         bool
	Predicates []Predicate
}

// Negation inverts a predicate.
type Negation struct {
	Predicate Predicate
}

// Raw is a hand-written clause. Columns must be qualified with the model alias.
type Raw struct {
	Filter *types.QueryFilter
}

func (*Condition) predicate() {}
func (*Junction) predicate()  {}
func (*Negation) predicate()  {}
func (*Raw) predicate()       {}

func (c *Condition) String() string {
	switch c.Op.Arity() {
	case 0:
		return c.Path.String() + " " + c.Op.String()
	case 2:
		return fmt.Sprintf("%s BETWEEN %v AND %v", c.Path, c.Values[0], c.Values[1])
	default:
		return fmt.Sprintf("%s %s %v", c.Path, c.Op, c.Values[0])
	}
}

func (j *Junction) String() string {
	sep := " AND "
	if j.Or {
		sep = " OR "
	}
	parts := make([]string, len(j.Predicates))
	for i, p := range j.Predicates {
		parts[i] = fmt.Sprint(p)
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func (n *Negation) String() string { return fmt.Sprintf("NOT %v", n.Predicate) }

func (r *Raw) String() string { return r.Filter.Schema }

func cond(path string, op Operator, values ...any) Predicate {
	return &Condition{Path: ParsePath(path), Op: op, Values: values}
}

func Eq(path string, v any) Predicate           { return cond(path, OpEq, v) }
func Ne(path string, v any) Predicate           { return cond(path, OpNe, v) }
func Gt(path string, v any) Predicate           { return cond(path, OpGt, v) }
func Gte(path string, v any) Predicate          { return cond(path, OpGte, v) }
func Lt(path string, v any) Predicate           { return cond(path, OpLt, v) }
func Lte(path string, v any) Predicate          { return cond(path, OpLte, v) }
func Between(path string, lo, hi any) Predicate { return cond(path, OpBetween, lo, hi) }
func In(path string, values any) Predicate      { return cond(path, OpIn, values) }
func NotIn(path string, values any) Predicate   { return cond(path, OpNotIn, values) }
func Like(path string, pattern string) Predicate {
	return cond(path, OpLike, pattern)
}
func StartingWith(path string, prefix string) Predicate { return cond(path, OpStartingWith, prefix) }
func EndingWith(path string, suffix string) Predicate   { return cond(path, OpEndingWith, suffix) }
func Containing(path string, infix string) Predicate    { return cond(path, OpContaining, infix) }
func IsNull(path string) Predicate                      { return cond(path, OpIsNull) }
func IsNotNull(path string) Predicate                   { return cond(path, OpIsNotNull) }

// Filter wraps a hand-written clause, e.g. Filter("m.age >= ?", 18).
func Filter(schema string, args ...any) Predicate {
	return &Raw{Filter: types.NewQueryFilter(schema, args...)}
}

// And joins the non-nil predicates. It returns nil when none remain.
func And(ps ...Predicate) Predicate { return junction(false, ps) }

// Or joins the non-nil predicates. It returns nil when none remain.
func Or(ps ...Predicate) Predicate { return junction(true, ps) }

func junction(or bool, ps []Predicate) Predicate {
	kept := make([]Predicate, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return &Junction{Or: or, Predicates: kept}
}

// Not negates p. Negating "no filter" is still "no filter".
func Not(p Predicate) Predicate {
	if p == nil {
		return nil
	}
	return &Negation{Predicate: p}
}
