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

import "github.com/uptrace/bun"

// Team groups members. The member list is not stored on the team; it is
// looked up from members.team_id when needed.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID       int64  `bun:"team_id,pk,autoincrement" json:"id"`
	TeamName string `bun:"team_name" json:"teamName"`
}

// NewTeam returns an unsaved team.
func NewTeam(name string) *Team {
	return &Team{TeamName: name}
}

func (t *Team) GetID() int64 { return t.ID }

func (t *Team) IsNew() bool { return t.ID == 0 }
