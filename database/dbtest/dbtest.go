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

// Package dbtest opens migrated in-memory sqlite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/tomoncle/datarepo/database"
	_ "github.com/tomoncle/datarepo/entity"
)

// New returns a private, migrated in-memory database closed at test cleanup.
func New(t testing.TB, hooks ...bun.QueryHook) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	for _, hook := range hooks {
		db.AddQueryHook(hook)
	}
	db.RegisterModel(database.RegisteredModelInstances()...)
	t.Cleanup(func() { _ = db.Close() })

	mm := database.NewMigrationManager(db, nil, database.DataMigrateConfig{EnableForeignKey: true})
	require.NoError(t, mm.RunMigrations(context.Background()))
	return db
}

// Counter is a query hook counting executed statements by operation. It also
// keeps the statement text.
type Counter struct {
	counts  map[string]int
	queries []string
}

var _ bun.QueryHook = (*Counter)(nil)

func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

func (c *Counter) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context { return ctx }

func (c *Counter) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	c.counts[event.Operation()]++
	c.queries = append(c.queries, event.Query)
}

// Count returns how many statements of operation ran since the last Reset.
func (c *Counter) Count(operation string) int { return c.counts[operation] }

// Queries returns the statements run since the last Reset, in order.
func (c *Counter) Queries() []string { return append([]string(nil), c.queries...) }

func (c *Counter) Reset() {
	c.counts = make(map[string]int)
	c.queries = nil
}
