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

	"github.com/uptrace/bun"
)

// Column maps a struct field to its table column.
type Column struct {
	Field string
	Name  string
}

// JoinType selects the SQL join used to reach a related entity.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
)

func (j JoinType) keyword() string {
	if j == JoinLeft {
		return "LEFT JOIN"
	}
	return "INNER JOIN"
}

// RelationDef declares a to-one association owned by a model: the owning
// table's ForeignKey column references the target's References column.
type RelationDef struct {
	Name       string
	Model      any
	ForeignKey string
	References string
}

// RelationOwner is implemented by models that declare associations.
type RelationOwner interface {
	Relations() []RelationDef
}

// Relation is a resolved RelationDef.
type Relation struct {
	Name       string
	Target     *Metadata
	ForeignKey string
	References string
}

// Resolver returns the metadata of another model, used for relation targets.
type Resolver func(model any) (*Metadata, error)

// Metadata describes the queryable shape of one model.
type Metadata struct {
	Type        reflect.Type
	Table       string
	Alias       string
	PK          Column
	GeneratedID bool
	columns     []Column
	relations   []*Relation
}

// NewMetadata reads the table layout Bun derived for model and resolves the
// relations the model declares.
func NewMetadata(db *bun.DB, model any, resolve Resolver) (*Metadata, error) {
	typ := reflect.TypeOf(model)
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct or struct pointer, got %T", model)
	}
	table := db.Table(typ)
	if len(table.PKs) != 1 {
		return nil, fmt.Errorf("%s: exactly one primary key column is required, found %d", typ.Name(), len(table.PKs))
	}
	pk := table.PKs[0]
	m := &Metadata{
		Type:        typ,
		Table:       table.Name,
		Alias:       table.Alias,
		PK:          Column{Field: pk.GoName, Name: pk.Name},
		GeneratedID: pk.AutoIncrement,
	}
	for _, f := range table.Fields {
		m.columns = append(m.columns, Column{Field: f.GoName, Name: f.Name})
	}

	owner, ok := reflect.New(typ).Interface().(RelationOwner)
	if !ok {
		return m, nil
	}
	for _, def := range owner.Relations() {
		if resolve == nil {
			return nil, fmt.Errorf("%s.%s: no resolver for relation target", typ.Name(), def.Name)
		}
		target, err := resolve(def.Model)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", typ.Name(), def.Name, err)
		}
		if _, ok := m.columnByName(def.ForeignKey); !ok {
			return nil, fmt.Errorf("%s.%s: unknown foreign key column %q", typ.Name(), def.Name, def.ForeignKey)
		}
		if _, ok := target.columnByName(def.References); !ok {
			return nil, fmt.Errorf("%s.%s: unknown referenced column %q", typ.Name(), def.Name, def.References)
		}
		m.relations = append(m.relations, &Relation{
			Name:       def.Name,
			Target:     target,
			ForeignKey: def.ForeignKey,
			References: def.References,
		})
	}
	return m, nil
}

// Name is the model's Go type name.
func (m *Metadata) Name() string { return m.Type.Name() }

// Columns returns every mapped column in declaration order.
func (m *Metadata) Columns() []Column {
	out := make([]Column, len(m.columns))
	copy(out, m.columns)
	return out
}

// DataColumns returns every column except the primary key.
func (m *Metadata) DataColumns() []Column {
	out := make([]Column, 0, len(m.columns))
	for _, c := range m.columns {
		if c.Name != m.PK.Name {
			out = append(out, c)
		}
	}
	return out
}

// Lookup finds a column by Go field name, case-insensitively, or by its
// column name.
func (m *Metadata) Lookup(name string) (Column, bool) {
	for _, c := range m.columns {
		if c.Field == name {
			return c, true
		}
	}
	for _, c := range m.columns {
		if strings.EqualFold(c.Field, name) {
			return c, true
		}
	}
	return m.columnByName(name)
}

func (m *Metadata) columnByName(name string) (Column, bool) {
	for _, c := range m.columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Relation finds a declared relation by name, case-insensitively.
func (m *Metadata) Relation(name string) (*Relation, bool) {
	for _, r := range m.relations {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return nil, false
}

// Relations returns the declared relations.
func (m *Metadata) Relations() []*Relation {
	out := make([]*Relation, len(m.relations))
	copy(out, m.relations)
	return out
}

// Resolve validates a path against the model.
func (m *Metadata) Resolve(p Path) (*Relation, Column, error) {
	if p.Relation == "" {
		c, ok := m.Lookup(p.Field)
		if !ok {
			return nil, Column{}, &UnknownFieldError{Model: m.Name(), Path: p.String()}
		}
		return nil, c, nil
	}
	rel, ok := m.Relation(p.Relation)
	if !ok {
		return nil, Column{}, &UnknownFieldError{Model: m.Name(), Path: p.String()}
	}
	c, ok := rel.Target.Lookup(p.Field)
	if !ok {
		return nil, Column{}, &UnknownFieldError{Model: m.Name(), Path: p.String()}
	}
	return rel, c, nil
}
