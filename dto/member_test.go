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

package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tomoncle/datarepo/dto"
	"github.com/tomoncle/datarepo/entity"
)

func TestNewMemberDto(t *testing.T) {
	team := entity.NewTeam("teamA")
	team.ID = 3
	m := entity.NewMember("member1", 10, team)
	m.ID = 7

	assert.Equal(t, dto.MemberDto{ID: 7, UserName: "member1", TeamName: "teamA"}, dto.NewMemberDto(m))
	assert.Equal(t, "", dto.NewMemberDto(entity.NewMember("member2", 20, nil)).TeamName)
}
