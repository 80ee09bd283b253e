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

package projection

import (
	"fmt"
	"strconv"
)

// Kind distinguishes interface views from flat value objects.
type Kind int

const (
	KindInterface Kind = iota
	KindValue
)

func (k Kind) String() string {
	if k == KindValue {
		return "value"
	}
	return "interface"
}

// Row holds one selected row keyed by field path, such as "UserName" or
// "Team.TeamName".
type Row map[string]any

// Value returns the raw value selected for path.
func (r Row) Value(path string) any { return r[path] }

// String returns the value of path as text. Drivers that report text as
// bytes are handled.
func (r Row) String(path string) string {
	switch v := r[path].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the value of path as an integer, or zero when it is null or
// not numeric.
func (r Row) Int64(path string) int64 {
	switch v := r[path].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

func (r Row) Int(path string) int { return int(r.Int64(path)) }

// Computed derives a field of an interface view from the selected row.
type Computed struct {
	Name string
	Eval func(Row) any
}

// Shape describes a projection: the field paths to select and how a row is
// turned into V.
type Shape[V any] struct {
	Name     string
	Kind     Kind
	Fields   []string
	Computed []Computed
	build    func(row Row) V
}

// Interface returns an interface view shape. Computed fields are evaluated
// and added to the row before build runs.
func Interface[V any](name string, fields []string, computed []Computed, build func(Row) V) *Shape[V] {
	return &Shape[V]{Name: name, Kind: KindInterface, Fields: fields, Computed: computed, build: build}
}

// Value returns a flat value object shape.
func Value[V any](name string, fields []string, build func(Row) V) *Shape[V] {
	return &Shape[V]{Name: name, Kind: KindValue, Fields: fields, build: build}
}

// Columns lists the field paths the shape selects.
func (s *Shape[V]) Columns() []string {
	return append([]string(nil), s.Fields...)
}

// Map builds one projection from row.
func (s *Shape[V]) Map(row Row) V {
	if s.Kind == KindInterface && len(s.Computed) > 0 {
		out := make(Row, len(row)+len(s.Computed))
		for k, v := range row {
			out[k] = v
		}
		for _, c := range s.Computed {
			out[c.Name] = c.Eval(row)
		}
		row = out
	}
	return s.build(row)
}

// MapAll builds a projection per row.
func (s *Shape[V]) MapAll(rows []Row) []V {
	out := make([]V, 0, len(rows))
	for _, r := range rows {
		out = append(out, s.Map(r))
	}
	return out
}

func (s *Shape[V]) String() string {
	return fmt.Sprintf("%s(%s)%v", s.Name, s.Kind, s.Fields)
}
