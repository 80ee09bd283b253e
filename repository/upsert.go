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
	"fmt"

	"github.com/tomoncle/datarepo/audit"
	"github.com/tomoncle/datarepo/query"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
)

// upsert writes an entity whose identifier is assigned by the caller: the row
// is inserted, or every non-key column of an existing row is overwritten.
// The creation audit columns of an existing row are kept.
func upsert(ctx context.Context, idb bun.IDB, meta *query.Metadata, v any) error {
	var fields []string
	for _, c := range meta.Columns() {
		if c.Name == meta.PK.Name || audit.IsCreationColumn(c.Name) {
			continue
		}
		fields = append(fields, c.Name)
	}

	features := idb.Dialect().Features()
	switch {
	case len(fields) == 0:
		_, err := idb.NewInsert().Model(v).Ignore().Exec(ctx)
		return err
	case features.Has(feature.InsertOnConflict):
		return upsertOnConflict(ctx, idb, meta, fields, v)
	case features.Has(feature.InsertOnDuplicateKey):
		return upsertOnDuplicateKey(ctx, idb, fields, v)
	default:
		return upsertFallback(ctx, idb, meta, v)
	}
}

func upsertOnConflict(ctx context.Context, idb bun.IDB, meta *query.Metadata, fields []string, v any) error {
	q := idb.NewInsert().
		Model(v).
		On("CONFLICT (?) DO UPDATE", bun.Ident(meta.PK.Name))
	for _, f := range fields {
		q = q.Set("? = EXCLUDED.?", bun.Ident(f), bun.Ident(f))
	}
	_, err := q.Exec(ctx)
	return err
}

func upsertOnDuplicateKey(ctx context.Context, idb bun.IDB, fields []string, v any) error {
	q := idb.NewInsert().
		Model(v).
		On("DUPLICATE KEY UPDATE")
	for _, f := range fields {
		q = q.Set("? = VALUES(?)", bun.Ident(f), bun.Ident(f))
	}
	_, err := q.Exec(ctx)
	return err
}

func upsertFallback(ctx context.Context, idb bun.IDB, meta *query.Metadata, v any) error {
	if _, err := idb.NewInsert().Model(v).Exec(ctx); err != nil {
		update := idb.NewUpdate().Model(v).WherePK()
		if cols := creationColumns(meta); len(cols) > 0 {
			update = update.ExcludeColumn(cols...)
		}
		res, updateErr := update.Exec(ctx)
		if updateErr != nil {
			return fmt.Errorf("upsert failed: insert error: %v, update error: %w", err, updateErr)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return err
		}
	}
	return nil
}
