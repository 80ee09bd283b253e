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

package datarepo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/datarepo"
	"github.com/tomoncle/datarepo/audit"
	"github.com/tomoncle/datarepo/database/dbtest"
	"github.com/tomoncle/datarepo/repository"
)

func TestSeedMembers(t *testing.T) {
	ctx := context.Background()
	svc, err := datarepo.NewServices(dbtest.New(t), repository.WithAuditor(audit.StaticAuditor("seed")))
	require.NoError(t, err)

	created, err := svc.SeedMembers(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, created)

	count, err := svc.Members.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, count)

	m, err := svc.Members.FindMemberByUserName(ctx, "user11")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 21, m.Age)
	assert.Equal(t, "seed", m.CreatedBy)

	again, err := svc.SeedMembers(ctx, 12)
	require.NoError(t, err)
	assert.Zero(t, again)
}
