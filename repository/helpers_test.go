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

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/tomoncle/datarepo/audit"
	"github.com/tomoncle/datarepo/database/dbtest"
	"github.com/tomoncle/datarepo/entity"
	"github.com/tomoncle/datarepo/repository"
)

type fixture struct {
	manager *repository.Manager
	members *repository.MemberRepository
	teams   *repository.TeamRepository
	items   *repository.ItemRepository
}

func newFixture(t *testing.T, hooks ...bun.QueryHook) *fixture {
	t.Helper()
	db := dbtest.New(t, hooks...)
	m := repository.NewManager(db, repository.WithAuditor(audit.StaticAuditor("tester")))
	members, err := repository.NewMemberRepository(m)
	require.NoError(t, err)
	teams, err := repository.NewTeamRepository(m)
	require.NoError(t, err)
	items, err := repository.NewItemRepository(m)
	require.NoError(t, err)
	return &fixture{manager: m, members: members, teams: teams, items: items}
}

// session returns a context bound to a fresh session.
func (f *fixture) session() (context.Context, *repository.Session) {
	s := f.manager.NewSession(nil)
	return repository.ContextWithSession(context.Background(), s), s
}

func (f *fixture) saveMembers(t *testing.T, ctx context.Context, members ...*entity.Member) {
	t.Helper()
	_, err := f.members.SaveAll(ctx, members)
	require.NoError(t, err)
}
