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

package entity

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomoncle/datarepo/query"
	"github.com/uptrace/bun"
)

// Member belongs to at most one team.
type Member struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID       int64  `bun:"member_id,pk,autoincrement" json:"id"`
	UserName string `bun:"user_name,notnull" json:"userName"`
	Age      int    `bun:"age,notnull" json:"age"`
	TeamID   *int64 `bun:"team_id" json:"teamId,omitempty"`
	Team     *Team  `bun:"rel:belongs-to,join:team_id=team_id" json:"team,omitempty" msgpack:"-"`
	BaseEntity
}

var _ bun.BeforeAppendModelHook = (*Member)(nil)

// NewMember returns an unsaved member, optionally assigned to team.
func NewMember(userName string, age int, team *Team) *Member {
	m := &Member{UserName: userName, Age: age}
	if team != nil {
		m.ChangeTeam(team)
	}
	return m
}

// ChangeTeam assigns the member to team, or detaches it when team is nil.
func (m *Member) ChangeTeam(team *Team) {
	m.Team = team
	if team == nil {
		m.TeamID = nil
		return
	}
	id := team.ID
	m.TeamID = &id
}

func (m *Member) GetID() int64 { return m.ID }

func (m *Member) IsNew() bool { return m.ID == 0 }

// Validate requires a user name and a non-negative age.
func (m *Member) Validate() error {
	if strings.TrimSpace(m.UserName) == "" {
		return &ValidationError{Entity: "Member", Field: "UserName", Reason: "is required"}
	}
	if m.Age < 0 {
		return &ValidationError{Entity: "Member", Field: "Age", Reason: "must not be negative"}
	}
	return nil
}

func (m *Member) String() string {
	return fmt.Sprintf("Member(id=%d, userName=%s, age=%d)", m.ID, m.UserName, m.Age)
}

// Relations declares the team association for query paths such as
// "Team.TeamName".
func (*Member) Relations() []query.RelationDef {
	return []query.RelationDef{
		{Name: "Team", Model: (*Team)(nil), ForeignKey: "team_id", References: "team_id"},
	}
}

// BeforeAppendModel picks up the id of a team that was saved after ChangeTeam.
func (m *Member) BeforeAppendModel(ctx context.Context, q bun.Query) error {
	if m.Team != nil && m.Team.ID != 0 {
		id := m.Team.ID
		m.TeamID = &id
	}
	return nil
}

// CopyRelations attaches relations loaded on src to m.
func (m *Member) CopyRelations(src any) {
	if other, ok := src.(*Member); ok && other.Team != nil {
		m.Team = other.Team
	}
}
