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

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/datarepo/entity"
)

func TestItemIsNewByCreatedDate(t *testing.T) {
	item := entity.NewItem(1, "A")
	assert.True(t, item.IsNew())

	f := newFixture(t)
	saved, err := f.items.Save(context.Background(), item)
	require.NoError(t, err)
	assert.False(t, saved.IsNew())
	assert.Equal(t, int64(1), saved.ID)
}

func TestItemStagedUntilFlush(t *testing.T) {
	f := newFixture(t)
	ctx, s := f.session()
	item, err := f.items.Save(ctx, entity.NewItem(1, "A"))
	require.NoError(t, err)

	found, err := f.items.FindByID(ctx, 1)
	require.NoError(t, err)
	got, ok := found.Get()
	require.True(t, ok)
	assert.Same(t, item, got)

	count, err := f.items.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, s.Len())
}

func TestItemLastWriterWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.items.Save(ctx, entity.NewItem(1, "A"))
	require.NoError(t, err)
	created := *first.CreatedDate()

	_, err = f.items.Save(ctx, entity.NewItem(1, "B"))
	require.NoError(t, err)

	count, err := f.items.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := f.items.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "B", stored.ItemName)
	assert.True(t, stored.CreatedDate().Equal(created))
	assert.False(t, stored.LastModifiedDate().Before(created))

	contains, err := f.items.FindByItemNameContaining(ctx, "B")
	require.NoError(t, err)
	assert.Len(t, contains, 1)
}

func TestItemDeleteAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.items.SaveAll(ctx, []*entity.Item{entity.NewItem(1, "A"), entity.NewItem(2, "B")})
	require.NoError(t, err)

	require.NoError(t, f.items.DeleteAll(ctx))
	count, err := f.items.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestItemCollisionKeepsStoredCreationStamp(t *testing.T) {
	f := newFixture(t)
	first, err := f.items.Save(context.Background(), entity.NewItem(7, "A"))
	require.NoError(t, err)
	created := *first.CreatedDate()

	ctx, s := f.session()
	second, err := f.items.Save(ctx, entity.NewItem(7, "B"))
	require.NoError(t, err)
	require.NoError(t, s.Flush(ctx))
	assert.True(t, second.CreatedDate().Equal(created))

	second.ItemName = "C"
	require.NoError(t, s.Flush(ctx))

	stored, err := f.items.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "C", stored.ItemName)
	assert.True(t, stored.CreatedDate().Equal(created))
	assert.False(t, stored.LastModifiedDate().Before(created))
}
