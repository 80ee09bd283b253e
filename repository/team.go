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

	"github.com/tomoncle/datarepo/entity"
	"github.com/tomoncle/datarepo/query"
	"github.com/tomoncle/datarepo/types"
)

// TeamRepository deletes teams with a cascade-null on their members: the
// members stay and lose their team.
type TeamRepository struct {
	*baseRepositoryImpl[entity.Team]

	members    *baseRepositoryImpl[entity.Member]
	byTeamName *query.Descriptor
}

func NewTeamRepository(m *Manager) (*TeamRepository, error) {
	base, err := newBaseRepository[entity.Team](m)
	if err != nil {
		return nil, err
	}
	members, err := newBaseRepository[entity.Member](m)
	if err != nil {
		return nil, err
	}
	byTeamName, err := query.ParseMethod("FindByTeamName", base.meta)
	if err != nil {
		return nil, err
	}
	return &TeamRepository{baseRepositoryImpl: base, members: members, byTeamName: byTeamName}, nil
}

func MustNewTeamRepository(m *Manager) *TeamRepository {
	r, err := NewTeamRepository(m)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *TeamRepository) FindByTeamName(ctx context.Context, teamName string) (types.Optional[*entity.Team], error) {
	q, err := r.byTeamName.Bind(teamName)
	if err != nil {
		return types.Empty[*entity.Team](), err
	}
	return r.FindOptional(ctx, q)
}

// Members lists the members of team, computed from the member side.
func (r *TeamRepository) Members(ctx context.Context, team *entity.Team) ([]*entity.Member, error) {
	if team == nil || team.IsNew() {
		return nil, nil
	}
	return r.members.FindList(ctx, query.New(query.Eq("TeamID", team.ID)))
}

func (r *TeamRepository) Delete(ctx context.Context, team *entity.Team) error {
	if team == nil {
		return fmt.Errorf("%s: cannot delete nil entity", r.meta.Name())
	}
	_, err := within(ctx, r.manager, func(s *Session) (struct{}, error) {
		return struct{}{}, r.remove(ContextWithSession(ctx, s), s, team)
	})
	return err
}

// DeleteByID removes the team with id. An absent id is not an error.
func (r *TeamRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := within(ctx, r.manager, func(s *Session) (struct{}, error) {
		team, err := r.findByID(ctx, s, id)
		if err != nil || team == nil {
			return struct{}{}, err
		}
		return struct{}{}, r.remove(ContextWithSession(ctx, s), s, team)
	})
	return err
}

func (r *TeamRepository) DeleteAll(ctx context.Context) error {
	_, err := within(ctx, r.manager, func(s *Session) (struct{}, error) {
		teams, err := r.list(ctx, s, query.New(nil), 0, 0)
		if err != nil {
			return struct{}{}, err
		}
		bound := ContextWithSession(ctx, s)
		for _, t := range teams {
			if err := r.remove(bound, s, t); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	return err
}

// remove clears the team reference of its members in the store and in the
// session, then stages the team's deletion.
func (r *TeamRepository) remove(ctx context.Context, s *Session, team *entity.Team) error {
	if !team.IsNew() {
		_, err := r.members.UpdateWhere(ctx,
			[]query.Assignment{query.Set("TeamID", nil)},
			query.Eq("TeamID", team.ID),
		)
		if err != nil {
			return err
		}
		for _, v := range s.managed(r.members.meta) {
			m := v.(*entity.Member)
			if m.TeamID == nil || *m.TeamID != team.ID {
				continue
			}
			m.ChangeTeam(nil)
			if err := s.resync(m); err != nil {
				return err
			}
		}
	}
	s.remove(r.meta, team)
	return nil
}
