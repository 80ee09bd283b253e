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

func TestDeleteTeamNullsMemberReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	team, err := f.teams.Save(ctx, entity.NewTeam("teamA"))
	require.NoError(t, err)
	m, err := f.members.Save(ctx, entity.NewMember("member1", 10, team))
	require.NoError(t, err)
	require.NotNil(t, m.TeamID)

	require.NoError(t, f.teams.Delete(ctx, team))

	count, err := f.teams.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	reloaded, err := f.members.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.TeamID)
}

func TestDeleteTeamDetachesManagedMembers(t *testing.T) {
	f := newFixture(t)
	ctx, s := f.session()
	team, err := f.teams.Save(ctx, entity.NewTeam("teamA"))
	require.NoError(t, err)
	m, err := f.members.Save(ctx, entity.NewMember("member1", 10, team))
	require.NoError(t, err)

	require.NoError(t, f.teams.DeleteByID(ctx, team.ID))
	assert.Nil(t, m.TeamID)
	assert.Nil(t, m.Team)
	require.NoError(t, s.Flush(ctx))

	exists, err := f.teams.ExistsByID(ctx, team.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTeamMembersIsDerived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teamA, err := f.teams.Save(ctx, entity.NewTeam("teamA"))
	require.NoError(t, err)
	teamB, err := f.teams.Save(ctx, entity.NewTeam("teamB"))
	require.NoError(t, err)
	f.saveMembers(t, ctx,
		entity.NewMember("member1", 10, teamA),
		entity.NewMember("member2", 20, teamA),
		entity.NewMember("member3", 30, teamB),
	)

	members, err := f.teams.Members(ctx, teamA)
	require.NoError(t, err)
	assert.Equal(t, []string{"member1", "member2"}, userNames(members))

	none, err := f.teams.Members(ctx, entity.NewTeam("unsaved"))
	require.NoError(t, err)
	assert.Empty(t, none)

	found, err := f.teams.FindByTeamName(ctx, "teamB")
	require.NoError(t, err)
	got, ok := found.Get()
	require.True(t, ok)
	assert.Equal(t, teamB.ID, got.ID)
}

func TestChangeTeamIsFlushed(t *testing.T) {
	f := newFixture(t)
	ctx, s := f.session()
	teamA, err := f.teams.Save(ctx, entity.NewTeam("teamA"))
	require.NoError(t, err)
	teamB, err := f.teams.Save(ctx, entity.NewTeam("teamB"))
	require.NoError(t, err)
	m, err := f.members.Save(ctx, entity.NewMember("member1", 10, teamA))
	require.NoError(t, err)

	m.ChangeTeam(teamB)
	require.NoError(t, s.Flush(ctx))
	s.Clear()

	moved, err := f.members.FindByTeamID(ctx, teamB.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"member1"}, userNames(moved))
}
