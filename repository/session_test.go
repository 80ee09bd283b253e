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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/datarepo/database/dbtest"
	"github.com/tomoncle/datarepo/entity"
	"github.com/tomoncle/datarepo/repository"
)

func TestSaveAssignsGeneratedID(t *testing.T) {
	f := newFixture(t)
	ctx, s := f.session()

	m, err := f.members.Save(ctx, entity.NewMember("memberA", 10, nil))
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
	assert.True(t, s.Contains(m))

	found, err := f.members.FindByID(ctx, m.ID)
	require.NoError(t, err)
	got, ok := found.Get()
	require.True(t, ok)
	assert.Same(t, m, got)
}

func TestIdentityMapReturnsSameInstance(t *testing.T) {
	f := newFixture(t)
	f.saveMembers(t, context.Background(), entity.NewMember("member1", 10, nil))

	ctx, _ := f.session()
	a, err := f.members.FindMemberByUserName(ctx, "member1")
	require.NoError(t, err)
	b, err := f.members.FindMemberByUserName(ctx, "member1")
	require.NoError(t, err)
	assert.Same(t, a, b)

	byID, err := f.members.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Same(t, a, byID)
}

func TestDirtyCheckingWritesOnFlush(t *testing.T) {
	f := newFixture(t)
	f.saveMembers(t, context.Background(), entity.NewMember("member1", 10, nil))

	ctx, s := f.session()
	m, err := f.members.FindMemberByUserName(ctx, "member1")
	require.NoError(t, err)
	m.UserName = "renamed"
	require.NoError(t, s.Flush(ctx))
	s.Clear()

	reloaded, err := f.members.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", reloaded.UserName)
	assert.NotSame(t, m, reloaded)
}

func TestUnchangedEntityIsNotUpdated(t *testing.T) {
	counter := dbtest.NewCounter()
	f := newFixture(t, counter)
	f.saveMembers(t, context.Background(), entity.NewMember("member1", 10, nil))

	ctx, s := f.session()
	_, err := f.members.FindAll(ctx)
	require.NoError(t, err)
	counter.Reset()
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 0, counter.Count("UPDATE"))
}

func TestReadOnlyResultIsNeverFlushed(t *testing.T) {
	counter := dbtest.NewCounter()
	f := newFixture(t, counter)
	f.saveMembers(t, context.Background(), entity.NewMember("member1", 10, nil))

	ctx, s := f.session()
	m, err := f.members.FindReadOnlyByUserName(ctx, "member1")
	require.NoError(t, err)
	require.NotNil(t, m)
	m.UserName = "member2"

	counter.Reset()
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 0, counter.Count("UPDATE"))
	s.Clear()

	still, err := f.members.FindMemberByUserName(ctx, "member1")
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func TestSaveMergesIntoManagedInstance(t *testing.T) {
	f := newFixture(t)
	f.saveMembers(t, context.Background(), entity.NewMember("member1", 10, nil))

	ctx, s := f.session()
	managed, err := f.members.FindMemberByUserName(ctx, "member1")
	require.NoError(t, err)
	created := managed.CreatedDate()

	merged, err := f.members.Save(ctx, &entity.Member{ID: managed.ID, UserName: "merged", Age: 30})
	require.NoError(t, err)
	assert.Same(t, managed, merged)
	assert.Equal(t, "merged", managed.UserName)
	assert.Equal(t, created, managed.CreatedDate())

	require.NoError(t, s.Flush(ctx))
	s.Clear()
	reloaded, err := f.members.GetByID(ctx, managed.ID)
	require.NoError(t, err)
	assert.Equal(t, "merged", reloaded.UserName)
	assert.Equal(t, 30, reloaded.Age)
}

func TestSaveDetachedEntityUpserts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	saved, err := f.members.Save(ctx, entity.NewMember("member1", 10, nil))
	require.NoError(t, err)

	detached, err := f.members.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	detached.Age = 11
	_, err = f.members.Save(ctx, detached)
	require.NoError(t, err)

	reloaded, err := f.members.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 11, reloaded.Age)
	assert.True(t, reloaded.LastModifiedDate().After(*reloaded.CreatedDate()))
}

func TestDeleteIsStagedUntilFlush(t *testing.T) {
	f := newFixture(t)
	ctx, s := f.session()
	m, err := f.members.Save(ctx, entity.NewMember("member1", 10, nil))
	require.NoError(t, err)

	require.NoError(t, f.members.Delete(ctx, m))
	assert.False(t, s.Contains(m))
	found, err := f.members.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, found.IsPresent())

	count, err := f.members.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDeleteByIDOfAbsentEntityIsNoop(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.members.DeleteByID(context.Background(), 42))
}

func TestGetByIDReportsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.members.GetByID(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	var nf *repository.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(42), nf.ID)
}

func TestRunInTxRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := f.manager.RunInTx(ctx, nil, func(ctx context.Context) error {
		if _, err := f.members.Save(ctx, entity.NewMember("member1", 10, nil)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := f.members.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRunInTxFlushesBeforeCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.manager.RunInTx(ctx, nil, func(ctx context.Context) error {
		_, err := f.items.Save(ctx, entity.NewItem(7, "staged"))
		return err
	})
	require.NoError(t, err)

	item, err := f.items.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "staged", item.ItemName)
}

func TestDetachedSaveKeepsStoredCreationStamp(t *testing.T) {
	f := newFixture(t)
	saved, err := f.members.Save(context.Background(), entity.NewMember("member1", 10, nil))
	require.NoError(t, err)
	created := *saved.CreatedDate()

	ctx, s := f.session()
	merged, err := f.members.Save(ctx, &entity.Member{ID: saved.ID, UserName: "member1", Age: 11})
	require.NoError(t, err)
	require.NoError(t, s.Flush(ctx))
	require.NotNil(t, merged.CreatedDate())
	assert.True(t, merged.CreatedDate().Equal(created))

	merged.Age = 12
	require.NoError(t, s.Flush(ctx))

	stored, err := f.members.GetByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.Age)
	assert.True(t, stored.CreatedDate().Equal(created))
	assert.False(t, stored.LastModifiedDate().Before(created))
}

func TestDirtyUpdateDoesNotWriteCreationColumns(t *testing.T) {
	counter := dbtest.NewCounter()
	f := newFixture(t, counter)
	ctx, s := f.session()
	m, err := f.members.Save(ctx, entity.NewMember("member1", 10, nil))
	require.NoError(t, err)

	counter.Reset()
	m.Age = 11
	require.NoError(t, s.Flush(ctx))
	require.Equal(t, 1, counter.Count("UPDATE"))
	update := counter.Queries()[0]
	assert.NotContains(t, update, "created_date")
	assert.NotContains(t, update, "created_by")
	assert.Contains(t, update, "last_modified_date")
}
