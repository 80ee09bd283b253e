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

package types

import (
	"fmt"
	"strings"
)

// Order is a single sort property and its direction.
type Order struct {
	Property  string    `json:"property"`
	Direction Direction `json:"direction"`
}

// Asc returns an ascending order on property.
func Asc(property string) Order { return Order{Property: property, Direction: ASC} }

// Desc returns a descending order on property.
func Desc(property string) Order { return Order{Property: property, Direction: DESC} }

// Sort is an ordered list of sort properties. The zero value means unsorted.
type Sort []Order

// SortBy builds a Sort applying one direction to every property.
func SortBy(direction Direction, properties ...string) Sort {
	s := make(Sort, 0, len(properties))
	for _, p := range properties {
		s = append(s, Order{Property: p, Direction: direction})
	}
	return s
}

// And appends the orders of other.
func (s Sort) And(other Sort) Sort {
	out := make(Sort, 0, len(s)+len(other))
	return append(append(out, s...), other...)
}

func (s Sort) IsSorted() bool { return len(s) > 0 }

func (s Sort) String() string {
	if len(s) == 0 {
		return "UNSORTED"
	}
	parts := make([]string, len(s))
	for i, o := range s {
		parts[i] = o.Property + ": " + o.Direction.Name()
	}
	return strings.Join(parts, ", ")
}

// ParseOrder parses the "property[,asc|desc]" request form.
func ParseOrder(expr string) (Order, error) {
	parts := strings.Split(expr, ",")
	prop := strings.TrimSpace(parts[0])
	if prop == "" {
		return Order{}, fmt.Errorf("empty sort property in %q", expr)
	}
	if len(parts) > 2 {
		return Order{}, fmt.Errorf("malformed sort expression %q", expr)
	}
	dir := ASC
	if len(parts) == 2 {
		d, ok := ParseDirection(parts[1])
		if !ok {
			return Order{}, fmt.Errorf("unknown sort direction %q", parts[1])
		}
		dir = d
	}
	return Order{Property: prop, Direction: dir}, nil
}
