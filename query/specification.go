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

// Specification builds a predicate from the query root. Returning nil means
// the specification does not constrain the query.
type Specification func(root *Root, cb *Builder) Predicate

// Root gives a specification access to the model's fields and relations.
type Root struct {
	meta *Metadata
}

// Model is the metadata of the queried model.
func (r *Root) Model() *Metadata { return r.meta }

// Get addresses a field of the root model.
func (r *Root) Get(field string) Expression {
	return Expression{path: Path{Field: field}}
}

// Join addresses a related model through the named relation.
func (r *Root) Join(relation string, jt JoinType) *From {
	return &From{relation: relation, join: jt}
}

// From is a joined relation.
type From struct {
	relation string
	join     JoinType
}

// Get addresses a field of the joined model.
func (f *From) Get(field string) Expression {
	return Expression{path: Path{Relation: f.relation, Join: f.join, Field: field}}
}

// Expression is a field reference used by Builder.
type Expression struct {
	path Path
}

// Path returns the addressed path.
func (e Expression) Path() Path { return e.path }

// Builder creates comparison predicates.
type Builder struct{}

func (Builder) compare(x Expression, op Operator, values ...any) Predicate {
	return &Condition{Path: x.path, Op: op, Values: values}
}

func (b *Builder) Equal(x Expression, v any) Predicate       { return b.compare(x, OpEq, v) }
func (b *Builder) NotEqual(x Expression, v any) Predicate    { return b.compare(x, OpNe, v) }
func (b *Builder) GreaterThan(x Expression, v any) Predicate { return b.compare(x, OpGt, v) }
func (b *Builder) GreaterThanOrEqualTo(x Expression, v any) Predicate {
	return b.compare(x, OpGte, v)
}
func (b *Builder) LessThan(x Expression, v any) Predicate { return b.compare(x, OpLt, v) }
func (b *Builder) LessThanOrEqualTo(x Expression, v any) Predicate {
	return b.compare(x, OpLte, v)
}
func (b *Builder) Between(x Expression, lo, hi any) Predicate { return b.compare(x, OpBetween, lo, hi) }
func (b *Builder) In(x Expression, values any) Predicate     { return b.compare(x, OpIn, values) }
func (b *Builder) Like(x Expression, pattern string) Predicate {
	return b.compare(x, OpLike, pattern)
}
func (b *Builder) IsNull(x Expression) Predicate    { return b.compare(x, OpIsNull) }
func (b *Builder) IsNotNull(x Expression) Predicate { return b.compare(x, OpIsNotNull) }
func (b *Builder) And(ps ...Predicate) Predicate    { return And(ps...) }
func (b *Builder) Or(ps ...Predicate) Predicate     { return Or(ps...) }
func (b *Builder) Not(p Predicate) Predicate        { return Not(p) }

// ToPredicate evaluates the specification against meta.
func (s Specification) ToPredicate(meta *Metadata) Predicate {
	if s == nil {
		return nil
	}
	return s(&Root{meta: meta}, &Builder{})
}

// Where returns spec unchanged; it reads well at call sites.
func Where(spec Specification) Specification { return spec }

// And combines both specifications. A nil side is ignored.
func (s Specification) And(other Specification) Specification {
	return combine(s, other, And)
}

// Or accepts rows matching either specification. A nil side is ignored.
func (s Specification) Or(other Specification) Specification {
	return combine(s, other, Or)
}

// NotSpec negates spec.
func NotSpec(spec Specification) Specification {
	if spec == nil {
		return nil
	}
	return func(root *Root, cb *Builder) Predicate {
		return Not(spec(root, cb))
	}
}

// AllOf combines every specification with AND.
func AllOf(specs ...Specification) Specification {
	var out Specification
	for _, s := range specs {
		out = out.And(s)
	}
	return out
}

func combine(a, b Specification, join func(...Predicate) Predicate) Specification {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(root *Root, cb *Builder) Predicate {
		return join(a(root, cb), b(root, cb))
	}
}
