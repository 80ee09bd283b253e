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

package projection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tomoncle/datarepo/dto"
	"github.com/tomoncle/datarepo/projection"
)

func TestRowConversions(t *testing.T) {
	row := projection.Row{"a": []byte("text"), "b": int64(7), "c": "12", "d": nil, "e": []byte("3")}
	assert.Equal(t, "text", row.String("a"))
	assert.Equal(t, "7", row.String("b"))
	assert.Equal(t, "", row.String("d"))
	assert.Equal(t, int64(7), row.Int64("b"))
	assert.Equal(t, 12, row.Int("c"))
	assert.Equal(t, int64(3), row.Int64("e"))
	assert.Equal(t, int64(0), row.Int64("d"))
	assert.Nil(t, row.Value("missing"))
}

func TestUserNameOnlyComputesLabel(t *testing.T) {
	shape := projection.UserNameOnlyShape
	assert.Equal(t, projection.KindInterface, shape.Kind)
	assert.Equal(t, []string{"UserName", "Age"}, shape.Columns())

	view := shape.Map(projection.Row{"UserName": "m1", "Age": int64(10)})
	assert.Equal(t, "m1", view.GetUserName())
	assert.Equal(t, "m1 10", view.GetMemberUserNameAndAge())
}

func TestMemberDtoShape(t *testing.T) {
	shape := projection.MemberDtoShape
	assert.Equal(t, projection.KindValue, shape.Kind)

	out := shape.MapAll([]projection.Row{
		{"ID": int64(1), "UserName": "m1", "Team.TeamName": "teamA"},
		{"ID": int64(2), "UserName": "m2", "Team.TeamName": []byte("teamB")},
	})
	assert.Equal(t, []dto.MemberDto{
		{ID: 1, UserName: "m1", TeamName: "teamA"},
		{ID: 2, UserName: "m2", TeamName: "teamB"},
	}, out)
}

func TestValueShapeIgnoresComputed(t *testing.T) {
	shape := projection.Value[string]("Upper", []string{"UserName"}, func(r projection.Row) string {
		_, computed := r["label"]
		if computed {
			return "computed"
		}
		return r.String("UserName")
	})
	shape.Computed = []projection.Computed{{Name: "label", Eval: func(projection.Row) any { return "x" }}}
	assert.Equal(t, "m1", shape.Map(projection.Row{"UserName": "m1"}))
	assert.Empty(t, shape.MapAll(nil))
}
