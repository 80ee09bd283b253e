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

package projection

import (
	"fmt"

	"github.com/tomoncle/datarepo/dto"
)

// UserNameOnly is a member view exposing the user name and a computed
// "<userName> <age>" label.
type UserNameOnly interface {
	GetUserName() string
	GetMemberUserNameAndAge() string
}

type userNameOnly struct {
	userName       string
	userNameAndAge string
}

func (u userNameOnly) GetUserName() string { return u.userName }

func (u userNameOnly) GetMemberUserNameAndAge() string { return u.userNameAndAge }

const memberUserNameAndAge = "MemberUserNameAndAge"

// UserNameOnlyShape selects the user name and age of members.
var UserNameOnlyShape = Interface[UserNameOnly](
	"UserNameOnly",
	[]string{"UserName", "Age"},
	[]Computed{{
		Name: memberUserNameAndAge,
		Eval: func(r Row) any { return fmt.Sprintf("%s %d", r.String("UserName"), r.Int("Age")) },
	}},
	func(r Row) UserNameOnly {
		return userNameOnly{userName: r.String("UserName"), userNameAndAge: r.String(memberUserNameAndAge)}
	},
)

// UserNameShape selects only member user names.
var UserNameShape = Value[string]("UserName", []string{"UserName"}, func(r Row) string {
	return r.String("UserName")
})

// MemberDtoShape joins the member's team for its name.
var MemberDtoShape = Value[dto.MemberDto]("MemberDto", []string{"ID", "UserName", "Team.TeamName"}, func(r Row) dto.MemberDto {
	return dto.MemberDto{ID: r.Int64("ID"), UserName: r.String("UserName"), TeamName: r.String("Team.TeamName")}
})
