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
	"strings"

	"github.com/tomoncle/datarepo/query"
)

// TeamName matches members of the named team. A blank name matches every
// member.
func TeamName(teamName string) query.Specification {
	return func(root *query.Root, cb *query.Builder) query.Predicate {
		if strings.TrimSpace(teamName) == "" {
			return nil
		}
		team := root.Join("Team", query.JoinInner)
		return cb.Equal(team.Get("TeamName"), teamName)
	}
}

// UserName matches members with exactly this user name.
func UserName(userName string) query.Specification {
	return func(root *query.Root, cb *query.Builder) query.Predicate {
		return cb.Equal(root.Get("UserName"), userName)
	}
}

// AgeBetween matches members whose age lies in [lo, hi].
func AgeBetween(lo, hi int) query.Specification {
	return func(root *query.Root, cb *query.Builder) query.Predicate {
		return cb.Between(root.Get("Age"), lo, hi)
	}
}
