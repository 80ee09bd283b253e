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
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sync"

	"github.com/tomoncle/datarepo/audit"
	"github.com/tomoncle/datarepo/database"
	"github.com/tomoncle/datarepo/query"
	"github.com/uptrace/bun"
)

// Manager owns the database handle, the audit interceptor and the model
// metadata shared by every repository and session.
type Manager struct {
	db          *bun.DB
	clock       audit.Clock
	auditor     audit.AuditorAware
	interceptor *audit.Interceptor
	logger      database.Logger

	mu       sync.Mutex
	metadata map[reflect.Type]*query.Metadata
}

type Option func(*Manager)

// WithAuditor sets the source of the acting user.
func WithAuditor(a audit.AuditorAware) Option {
	return func(m *Manager) { m.auditor = a }
}

// WithClock sets the audit clock.
func WithClock(c audit.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithLogger sets the logger used for flushes and ignored hints.
func WithLogger(l database.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager returns a manager over db.
func NewManager(db *bun.DB, opts ...Option) *Manager {
	m := &Manager{db: db, metadata: make(map[reflect.Type]*query.Metadata)}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = database.NewDefaultLogger("REPOSITORY")
	}
	m.interceptor = audit.NewInterceptor(m.clock, m.auditor)
	return m
}

func (m *Manager) DB() *bun.DB { return m.db }

func (m *Manager) Interceptor() *audit.Interceptor { return m.interceptor }

// Metadata returns the cached query metadata of model.
func (m *Manager) Metadata(model any) (*query.Metadata, error) {
	typ := reflect.TypeOf(model)
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == nil {
		return nil, fmt.Errorf("nil model")
	}

	m.mu.Lock()
	meta, ok := m.metadata[typ]
	m.mu.Unlock()
	if ok {
		return meta, nil
	}

	meta, err := query.NewMetadata(m.db, model, m.Metadata)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.metadata[typ]; ok {
		return existing, nil
	}
	m.metadata[typ] = meta
	return meta, nil
}

// NewSession starts a unit of work over idb, a *bun.DB or a bun.Tx.
func (m *Manager) NewSession(idb bun.IDB) *Session {
	if idb == nil {
		idb = m.db
	}
	return newSession(m, idb)
}

// RunInTx runs fn in a transaction with a session bound to ctx. The session
// is flushed before the commit.
func (m *Manager) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	return m.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		s := m.NewSession(tx)
		ctx = ContextWithSession(ctx, s)
		if err := fn(ctx); err != nil {
			return err
		}
		return s.Flush(ctx)
	})
}

type sessionKey struct{}

// ContextWithSession binds s to ctx. Repository calls made with the returned
// context share s.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session bound to ctx.
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}

// within runs fn in the session bound to ctx, or in a temporary session
// flushed once fn succeeds.
func within[R any](ctx context.Context, m *Manager, fn func(s *Session) (R, error)) (R, error) {
	if s, ok := SessionFrom(ctx); ok {
		return fn(s)
	}
	s := m.NewSession(m.db)
	out, err := fn(s)
	if err != nil {
		return out, err
	}
	if err := s.Flush(ctx); err != nil {
		var zero R
		return zero, err
	}
	return out, nil
}
