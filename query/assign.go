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

	"github.com/uptrace/bun"
)

// Assignment is one SET term of a set-based update.
type Assignment struct {
	Field     string
	Value     any
	increment bool
}

// Set assigns value to field.
func Set(field string, value any) Assignment {
	return Assignment{Field: field, Value: value}
}

// Increment adds delta to the current value of field.
func Increment(field string, delta any) Assignment {
	return Assignment{Field: field, Value: delta, increment: true}
}

// Assignments renders the SET list with unqualified column names.
func (m *Metadata) Assignments(set []Assignment) (string, []any, error) {
	if len(set) == 0 {
		return "", nil, fmt.Errorf("%s: update without assignments", m.Name())
	}
	parts := make([]string, 0, len(set))
	args := make([]any, 0, len(set)*3)
	for _, a := range set {
		rel, col, err := m.Resolve(ParsePath(a.Field))
		if err != nil {
			return "", nil, err
		}
		if rel != nil {
			return "", nil, fmt.Errorf("%s: cannot assign through relation path %q", m.Name(), a.Field)
		}
		if col.Name == m.PK.Name {
			return "", nil, fmt.Errorf("%s: the primary key cannot be reassigned", m.Name())
		}
		if a.increment {
			parts = append(parts, "? = ? + ?")
			args = append(args, bun.Ident(col.Name), bun.Ident(col.Name), a.Value)
			continue
		}
		parts = append(parts, "? = ?")
		args = append(args, bun.Ident(col.Name), a.Value)
	}
	return strings.Join(parts, ", "), args, nil
}
