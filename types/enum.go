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

import "strings"

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// Direction is the ordering direction of a sort property.
type Direction int

const (
	ASC Direction = iota
	DESC
)

var directionNames = map[Direction][2]string{
	ASC:  {"ASC", "ascending"},
	DESC: {"DESC", "descending"},
}

func (d Direction) IsValid() bool { _, ok := directionNames[d]; return ok }

func (d Direction) Number() int {
	if !d.IsValid() {
		return IllegalValue
	}
	return int(d)
}

func (d Direction) String() string { return d.Name() }

func (d Direction) Name() string {
	if v, ok := directionNames[d]; ok {
		return v[0]
	}
	return IllegalName
}

func (d Direction) Desc() string {
	if v, ok := directionNames[d]; ok {
		return v[1]
	}
	return IllegalDesc
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.Name()), nil }

// ParseDirection accepts "asc"/"desc" in any case, defaulting to ASC.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return ASC, true
	case "DESC":
		return DESC, true
	}
	return ASC, false
}

// LockMode is a row lock hint forwarded to the backing store.
type LockMode int

const (
	LockNone LockMode = iota
	LockPessimisticRead
	LockPessimisticWrite
)

var lockModeNames = map[LockMode][2]string{
	LockNone:             {"NONE", "no lock"},
	LockPessimisticRead:  {"PESSIMISTIC_READ", "shared row lock"},
	LockPessimisticWrite: {"PESSIMISTIC_WRITE", "exclusive row lock"},
}

func (m LockMode) IsValid() bool { _, ok := lockModeNames[m]; return ok }

func (m LockMode) Number() int {
	if !m.IsValid() {
		return IllegalValue
	}
	return int(m)
}

func (m LockMode) String() string { return m.Name() }

func (m LockMode) Name() string {
	if v, ok := lockModeNames[m]; ok {
		return v[0]
	}
	return IllegalName
}

func (m LockMode) Desc() string {
	if v, ok := lockModeNames[m]; ok {
		return v[1]
	}
	return IllegalDesc
}

var (
	_ BaseEnum = ASC
	_ BaseEnum = LockNone
)
