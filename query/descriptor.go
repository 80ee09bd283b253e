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
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/tomoncle/datarepo/types"
)

// Action is what a method descriptor does with the matching rows.
type Action int

const (
	ActionFind Action = iota
	ActionCount
	ActionExists
	ActionDelete
)

var actionPrefixes = []struct {
	prefix string
	action Action
}{
	{"Find", ActionFind},
	{"Read", ActionFind},
	{"Get", ActionFind},
	{"Query", ActionFind},
	{"Search", ActionFind},
	{"Stream", ActionFind},
	{"Count", ActionCount},
	{"Exists", ActionExists},
	{"Delete", ActionDelete},
	{"Remove", ActionDelete},
}

type keyword struct {
	word string
	op   Operator
}

var keywords = func() []keyword {
	ks := []keyword{
		{"IsNotNull", OpIsNotNull}, {"NotNull", OpIsNotNull},
		{"IsNull", OpIsNull}, {"Null", OpIsNull},
		{"GreaterThanEqual", OpGte}, {"GreaterThan", OpGt},
		{"LessThanEqual", OpLte}, {"LessThan", OpLt},
		{"After", OpGt}, {"Before", OpLt},
		{"Between", OpBetween},
		{"IsNotIn", OpNotIn}, {"NotIn", OpNotIn},
		{"IsIn", OpIn}, {"In", OpIn},
		{"NotLike", OpNotLike}, {"Like", OpLike},
		{"StartingWith", OpStartingWith}, {"StartsWith", OpStartingWith},
		{"EndingWith", OpEndingWith}, {"EndsWith", OpEndingWith},
		{"Containing", OpContaining}, {"Contains", OpContaining},
		{"IsNot", OpNe}, {"Not", OpNe},
		{"IsTrue", OpTrue}, {"True", OpTrue},
		{"IsFalse", OpFalse}, {"False", OpFalse},
		{"Equals", OpEq}, {"Is", OpEq},
	}
	sort.SliceStable(ks, func(i, j int) bool { return len(ks[i].word) > len(ks[j].word) })
	return ks
}()

type clause struct {
	path Path
	op   Operator
}

// Descriptor is a parsed query method: OR groups of AND clauses, an optional
// ordering and a row limit.
type Descriptor struct {
	Method   string
	Action   Action
	Limit    int
	Distinct bool
	groups   [][]clause
	sort     types.Sort
	arity    int
}

// ParseMethod parses a method name such as "FindByUserNameAndAgeGreaterThan"
// against meta. Every referenced field must exist.
func ParseMethod(method string, meta *Metadata) (*Descriptor, error) {
	fail := func(format string, args ...any) (*Descriptor, error) {
		return nil, &RegistrationError{Method: method, Reason: fmt.Sprintf(format, args...)}
	}
	name := upperFirst(strings.TrimSpace(method))
	d := &Descriptor{Method: method}

	rest := ""
	found := false
	for _, p := range actionPrefixes {
		if strings.HasPrefix(name, p.prefix) {
			d.Action, rest, found = p.action, name[len(p.prefix):], true
			break
		}
	}
	if !found {
		return fail("unknown prefix, expected one of find, count, exists or delete")
	}

	rest, order, hasOrder := cutKeyword(rest, "OrderBy", false)
	if hasOrder {
		s, err := parseOrder(order, meta)
		if err != nil {
			return fail("%v", err)
		}
		d.sort = s
	}

	subject, criteria, hasBy := cutKeyword(rest, "By", true)
	if !hasBy {
		subject, criteria = rest, ""
	}
	if err := d.parseSubject(subject); err != nil {
		return fail("%v", err)
	}
	if hasBy && criteria == "" && !hasOrder {
		return fail("missing criteria after By")
	}
	if criteria == "" {
		return d, nil
	}

	for _, group := range splitKeyword(criteria, "Or") {
		var ands []clause
		for _, part := range splitKeyword(group, "And") {
			c, err := parseClause(part, meta)
			if err != nil {
				return fail("%v", err)
			}
			ands = append(ands, c)
			d.arity += c.op.Arity()
		}
		d.groups = append(d.groups, ands)
	}
	return d, nil
}

// MustParseMethod is like ParseMethod but panics on error.
func MustParseMethod(method string, meta *Metadata) *Descriptor {
	d, err := ParseMethod(method, meta)
	if err != nil {
		panic(err)
	}
	return d
}

// Arity is the number of arguments Bind expects.
func (d *Descriptor) Arity() int { return d.arity }

// Sort returns the static ordering parsed from an OrderBy suffix.
func (d *Descriptor) Sort() types.Sort { return d.sort }

// Bind fills the clauses with args, in declaration order.
func (d *Descriptor) Bind(args ...any) (*Query, error) {
	if len(args) != d.arity {
		return nil, fmt.Errorf("%s expects %d argument(s), got %d", d.Method, d.arity, len(args))
	}
	var ors []Predicate
	i := 0
	for _, group := range d.groups {
		var ands []Predicate
		for _, c := range group {
			n := c.op.Arity()
			values := append([]any(nil), args[i:i+n]...)
			i += n
			if c.op == OpIn || c.op == OpNotIn {
				if _, ok := sliceLen(values[0]); !ok {
					return nil, fmt.Errorf("%s: argument for %s must be a slice, got %T", d.Method, c.path, values[0])
				}
			}
			ands = append(ands, &Condition{Path: c.path, Op: c.op, Values: values})
		}
		ors = append(ors, And(ands...))
	}
	q := New(Or(ors...)).OrderBy(d.sort...)
	q.Limit = d.Limit
	q.Distinct = d.Distinct
	return q, nil
}

func (d *Descriptor) String() string {
	var groups []string
	for _, g := range d.groups {
		var parts []string
		for _, c := range g {
			parts = append(parts, c.path.String()+" "+c.op.String())
		}
		groups = append(groups, strings.Join(parts, " AND "))
	}
	return fmt.Sprintf("%s[%s] order=%s", d.Method, strings.Join(groups, " OR "), d.sort)
}

func (d *Descriptor) parseSubject(subject string) error {
	if strings.Contains(subject, "Distinct") {
		d.Distinct = true
	}
	for _, kw := range []string{"First", "Top"} {
		i := strings.Index(subject, kw)
		if i < 0 {
			continue
		}
		digits := subject[i+len(kw):]
		end := 0
		for end < len(digits) && unicode.IsDigit(rune(digits[end])) {
			end++
		}
		d.Limit = 1
		if end > 0 {
			n, err := strconv.Atoi(digits[:end])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid limit in %q", subject)
			}
			d.Limit = n
		}
		break
	}
	return nil
}

func parseClause(part string, meta *Metadata) (clause, error) {
	for _, kw := range keywords {
		if len(part) > len(kw.word) && strings.HasSuffix(part, kw.word) {
			if path, ok := resolveMethodPath(part[:len(part)-len(kw.word)], meta); ok {
				return clause{path: path, op: kw.op}, nil
			}
		}
	}
	if path, ok := resolveMethodPath(part, meta); ok {
		return clause{path: path, op: OpEq}, nil
	}
	return clause{}, &UnknownFieldError{Model: meta.Name(), Path: part}
}

// resolveMethodPath accepts "Field", "Relation_Field" and "RelationField".
func resolveMethodPath(s string, meta *Metadata) (Path, bool) {
	if c, ok := meta.Lookup(s); ok {
		return Path{Field: c.Field}, true
	}
	if i := strings.IndexByte(s, '_'); i > 0 {
		if rel, ok := meta.Relation(s[:i]); ok {
			if c, ok := rel.Target.Lookup(s[i+1:]); ok {
				return Path{Relation: rel.Name, Field: c.Field}, true
			}
		}
		return Path{}, false
	}
	for _, rel := range meta.Relations() {
		if strings.HasPrefix(s, rel.Name) && len(s) > len(rel.Name) {
			if c, ok := rel.Target.Lookup(s[len(rel.Name):]); ok {
				return Path{Relation: rel.Name, Field: c.Field}, true
			}
		}
	}
	return Path{}, false
}

func parseOrder(s string, meta *Metadata) (types.Sort, error) {
	if s == "" {
		return nil, fmt.Errorf("missing property after OrderBy")
	}
	var out types.Sort
	for s != "" {
		matched := false
		for i := 1; i <= len(s) && !matched; i++ {
			if i < len(s) && !isUpper(s[i]) {
				continue
			}
			prefix := s[:i]
			dir := types.ASC
			field := prefix
			switch {
			case strings.HasSuffix(prefix, "Desc"):
				dir, field = types.DESC, strings.TrimSuffix(prefix, "Desc")
			case strings.HasSuffix(prefix, "Asc"):
				field = strings.TrimSuffix(prefix, "Asc")
			case i < len(s):
				continue
			}
			if field == "" {
				continue
			}
			if path, ok := resolveMethodPath(field, meta); ok {
				out = append(out, types.Order{Property: path.String(), Direction: dir})
				s = s[i:]
				matched = true
			}
		}
		if !matched {
			return nil, &UnknownFieldError{Model: meta.Name(), Path: s}
		}
	}
	return out, nil
}

// cutKeyword splits s around the first kw that sits on a word boundary.
func cutKeyword(s, kw string, allowLeading bool) (before, after string, found bool) {
	for i := 0; i+len(kw) <= len(s); i++ {
		if !strings.HasPrefix(s[i:], kw) {
			continue
		}
		if i == 0 && !allowLeading {
			continue
		}
		if i > 0 && !isLowerOrDigit(s[i-1]) {
			continue
		}
		end := i + len(kw)
		if end < len(s) && !isUpper(s[end]) {
			continue
		}
		return s[:i], s[end:], true
	}
	return s, "", false
}

func splitKeyword(s, kw string) []string {
	var parts []string
	for {
		before, after, ok := cutKeyword(s, kw, false)
		if !ok || after == "" {
			return append(parts, s)
		}
		parts = append(parts, before)
		s = after
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }

func isLowerOrDigit(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') }
