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

package repository

import (
	"bytes"
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/tomoncle/datarepo/audit"
	"github.com/tomoncle/datarepo/query"
	"github.com/uptrace/bun"
	"github.com/vmihailenco/msgpack/v5"
)

// Identifiable is implemented by every entity a repository manages.
type Identifiable interface {
	GetID() int64
	IsNew() bool
}

// Validator is implemented by entities that check their own fields before
// they are written.
type Validator interface {
	Validate() error
}

func validate(v any) error {
	if val, ok := v.(Validator); ok {
		return val.Validate()
	}
	return nil
}

// RelationCopier lets a query that eagerly loaded relations hand them to an
// instance that is already managed.
type RelationCopier interface {
	CopyRelations(src any)
}

type entryState int

const (
	stateManaged entryState = iota
	statePendingInsert
	statePendingMerge
	stateRemoved
)

func (s entryState) String() string {
	switch s {
	case statePendingInsert:
		return "pending-insert"
	case statePendingMerge:
		return "pending-merge"
	case stateRemoved:
		return "removed"
	default:
		return "managed"
	}
}

type entityKey struct {
	typ reflect.Type
	id  int64
}

type entry struct {
	key      entityKey
	meta     *query.Metadata
	value    any
	snapshot []byte
	state    entryState
	readOnly bool
}

// Session is a unit of work: an identity map of managed entities, the writes
// staged for the next flush and snapshots for dirty checking. A Session is
// not safe for concurrent use.
type Session struct {
	id      string
	manager *Manager
	idb     bun.IDB
	entries map[entityKey]*entry
	order   []*entry
}

func newSession(m *Manager, idb bun.IDB) *Session {
	return &Session{
		id:      uuid.NewString(),
		manager: m,
		idb:     idb,
		entries: make(map[entityKey]*entry),
	}
}

// ID identifies the session in log lines.
func (s *Session) ID() string { return s.id }

// IDB is the handle statements of this session run on.
func (s *Session) IDB() bun.IDB { return s.idb }

// Len is the number of tracked entities, including staged removals.
func (s *Session) Len() int { return len(s.entries) }

// Contains reports whether v is the managed instance for its identity.
func (s *Session) Contains(v any) bool {
	e, ok := s.lookup(v)
	return ok && e.value == v && e.state != stateRemoved
}

// Detach stops tracking v. Staged writes for it are discarded.
func (s *Session) Detach(v any) {
	if e, ok := s.lookup(v); ok && e.value == v {
		s.drop(e)
	}
}

// Clear drops every managed entity and every staged write.
func (s *Session) Clear() {
	s.entries = make(map[entityKey]*entry)
	s.order = nil
}

// Flush writes staged inserts, merges and removals, then updates every
// managed entity whose state differs from its snapshot. Entities are written
// in the order they joined the session.
func (s *Session) Flush(ctx context.Context) error {
	var flushed, removed int
	for _, e := range append([]*entry(nil), s.order...) {
		switch e.state {
		case statePendingInsert, statePendingMerge:
			if err := validate(e.value); err != nil {
				return err
			}
			if e.state == statePendingMerge {
				s.manager.interceptor.OnUpdate(ctx, e.value)
			}
			if err := upsert(ctx, s.idb, e.meta, e.value); err != nil {
				return err
			}
			if err := s.reloadCreation(ctx, e.meta, e.value); err != nil {
				return err
			}
		case stateRemoved:
			if _, err := s.idb.NewDelete().Model(e.value).WherePK().Exec(ctx); err != nil {
				return err
			}
			s.drop(e)
			removed++
			continue
		case stateManaged:
			if e.readOnly {
				continue
			}
			dirty, err := e.dirty()
			if err != nil {
				return err
			}
			if !dirty {
				continue
			}
			if err := validate(e.value); err != nil {
				return err
			}
			s.manager.interceptor.OnUpdate(ctx, e.value)
			q := s.idb.NewUpdate().Model(e.value).WherePK()
			if cols := creationColumns(e.meta); len(cols) > 0 {
				q = q.ExcludeColumn(cols...)
			}
			if _, err := q.Exec(ctx); err != nil {
				return err
			}
		}
		e.state = stateManaged
		if err := e.takeSnapshot(); err != nil {
			return err
		}
		flushed++
	}
	if flushed > 0 || removed > 0 {
		s.manager.logger.Debug("Session flushed", "session", s.id, "written", flushed, "removed", removed)
	}
	return nil
}

func (s *Session) lookup(v any) (*entry, bool) {
	id, ok := v.(Identifiable)
	if !ok {
		return nil, false
	}
	e, ok := s.entries[keyOf(v, id.GetID())]
	return e, ok
}

func (s *Session) get(typ reflect.Type, id int64) (*entry, bool) {
	e, ok := s.entries[entityKey{typ: typ, id: id}]
	if !ok || e.state == stateRemoved {
		return nil, false
	}
	return e, true
}

func (s *Session) add(e *entry) {
	s.entries[e.key] = e
	s.order = append(s.order, e)
}

func (s *Session) drop(e *entry) {
	delete(s.entries, e.key)
	for i, o := range s.order {
		if o == e {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// attach returns the managed instance for a loaded row, registering v when
// its identity is not managed yet. Read-only instances get no snapshot and
// are never dirty-checked.
func (s *Session) attach(meta *query.Metadata, v any, readOnly bool) (any, error) {
	key := keyOf(v, v.(Identifiable).GetID())
	if e, ok := s.entries[key]; ok {
		if c, ok := e.value.(RelationCopier); ok && e.value != v {
			c.CopyRelations(v)
		}
		return e.value, nil
	}
	e := &entry{key: key, meta: meta, value: v, state: stateManaged, readOnly: readOnly}
	if !readOnly {
		if err := e.takeSnapshot(); err != nil {
			return nil, err
		}
	}
	s.add(e)
	return v, nil
}

// persist routes a save: new entities with a generated id are inserted at
// once so the id is known, new entities with an assigned id are staged, and
// existing entities are merged into the identity map.
func (s *Session) persist(ctx context.Context, meta *query.Metadata, v any) (any, error) {
	ident := v.(Identifiable)
	if err := validate(v); err != nil {
		return nil, err
	}
	if ident.IsNew() {
		s.manager.interceptor.OnCreate(ctx, v)
		if meta.GeneratedID {
			if _, err := s.idb.NewInsert().Model(v).Exec(ctx); err != nil {
				return nil, err
			}
			e := &entry{key: keyOf(v, ident.GetID()), meta: meta, value: v}
			if err := e.takeSnapshot(); err != nil {
				return nil, err
			}
			s.add(e)
			return v, nil
		}
		key := keyOf(v, ident.GetID())
		if e, ok := s.entries[key]; ok && e.value != v {
			if e.state == stateRemoved {
				s.drop(e)
			} else {
				copyState(meta, e.value, v, e.state == statePendingInsert)
				return e.value, nil
			}
		}
		s.add(&entry{key: key, meta: meta, value: v, state: statePendingInsert})
		return v, nil
	}

	key := keyOf(v, ident.GetID())
	if e, ok := s.entries[key]; ok {
		switch {
		case e.state == stateRemoved:
			s.drop(e)
		case e.value == v:
			return v, nil
		default:
			copyState(meta, e.value, v, false)
			if e.readOnly {
				e.readOnly = false
				e.state = statePendingMerge
			}
			return e.value, nil
		}
	}
	if a, ok := v.(audit.Auditable); ok && a.CreatedDate() == nil {
		s.manager.interceptor.OnCreate(ctx, v)
	}
	s.add(&entry{key: key, meta: meta, value: v, state: statePendingMerge})
	return v, nil
}

// reloadCreation replaces the created pair of v with the stored one. An
// upsert over an existing row keeps the stored pair, so a stamp taken in
// memory before the write may not be the one in the database.
func (s *Session) reloadCreation(ctx context.Context, meta *query.Metadata, v any) error {
	cols := creationColumns(meta)
	if len(cols) == 0 {
		return nil
	}
	if err := s.idb.NewSelect().Model(v).Column(cols...).WherePK().Scan(ctx); err != nil {
		return fmt.Errorf("failed to reload %s creation stamp: %w", meta.Name(), err)
	}
	return nil
}

// creationColumns lists the created pair columns of meta's table, if any.
func creationColumns(meta *query.Metadata) []string {
	var cols []string
	for _, c := range meta.Columns() {
		if audit.IsCreationColumn(c.Name) {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// remove stages the deletion of v.
func (s *Session) remove(meta *query.Metadata, v any) {
	key := keyOf(v, v.(Identifiable).GetID())
	if e, ok := s.entries[key]; ok {
		if e.state == statePendingInsert {
			s.drop(e)
			return
		}
		e.state = stateRemoved
		return
	}
	s.add(&entry{key: key, meta: meta, value: v, state: stateRemoved})
}

// managed lists the managed, non-removed instances of meta's model.
func (s *Session) managed(meta *query.Metadata) []any {
	var out []any
	for _, e := range s.order {
		if e.meta == meta && e.state != stateRemoved {
			out = append(out, e.value)
		}
	}
	return out
}

// resync treats the current state of v as already written.
func (s *Session) resync(v any) error {
	e, ok := s.lookup(v)
	if !ok || e.value != v || e.readOnly || e.state != stateManaged {
		return nil
	}
	return e.takeSnapshot()
}

func (e *entry) takeSnapshot() error {
	b, err := msgpack.Marshal(e.value)
	if err != nil {
		return fmt.Errorf("failed to snapshot %s: %w", e.meta.Name(), err)
	}
	e.snapshot = b
	return nil
}

func (e *entry) dirty() (bool, error) {
	b, err := msgpack.Marshal(e.value)
	if err != nil {
		return false, fmt.Errorf("failed to snapshot %s: %w", e.meta.Name(), err)
	}
	return !bytes.Equal(b, e.snapshot), nil
}

func keyOf(v any, id int64) entityKey {
	typ := reflect.TypeOf(v)
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return entityKey{typ: typ, id: id}
}

// copyState copies the mapped columns and relation fields of src onto dst.
// The audit fields stay with dst unless withAudit is set.
func copyState(meta *query.Metadata, dst, src any, withAudit bool) {
	dv := reflect.ValueOf(dst).Elem()
	sv := reflect.ValueOf(src).Elem()
	fields := make([]string, 0, len(meta.Columns())+len(meta.Relations()))
	for _, c := range meta.Columns() {
		if c.Name == meta.PK.Name || (!withAudit && audit.IsAuditColumn(c.Name)) {
			continue
		}
		fields = append(fields, c.Field)
	}
	for _, r := range meta.Relations() {
		fields = append(fields, r.Name)
	}
	for _, name := range fields {
		df, sf := dv.FieldByName(name), sv.FieldByName(name)
		if df.IsValid() && sf.IsValid() && df.CanSet() {
			df.Set(sf)
		}
	}
}
