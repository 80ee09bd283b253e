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

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	created, modified     *time.Time
	createdBy, modifiedBy string
}

func (r *record) CreatedDate() *time.Time      { return r.created }
func (r *record) LastModifiedDate() *time.Time { return r.modified }
func (r *record) MarkCreated(at time.Time, by string) {
	r.created, r.modified = &at, &at
	r.createdBy, r.modifiedBy = by, by
}
func (r *record) MarkModified(at time.Time, by string) {
	r.modified = &at
	r.modifiedBy = by
}

func frozen(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestMonotonicClockNeverRepeats(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	c := NewMonotonicClockFrom(frozen(base))

	first := c.Now()
	second := c.Now()
	assert.Equal(t, base.Truncate(time.Microsecond), first)
	assert.True(t, second.After(first))
	assert.Equal(t, time.Microsecond, second.Sub(first))
}

func TestCreateStampsBothTimestamps(t *testing.T) {
	i := NewInterceptor(NewMonotonicClock(), StaticAuditor("alice"))
	r := &record{}

	require.True(t, i.OnCreate(context.Background(), r))
	require.NotNil(t, r.created)
	assert.Equal(t, *r.created, *r.modified)
	assert.Equal(t, "alice", r.createdBy)
	assert.Equal(t, "alice", r.modifiedBy)
}

func TestUpdateIsStrictlyLaterWithinSameTick(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	// A second clock frozen on the same instant simulates updates that land in
	// the creation tick.
	i := NewInterceptor(NewMonotonicClockFrom(frozen(base)), StaticAuditor("bob"))
	r := &record{}
	i.OnCreate(context.Background(), r)

	same := NewInterceptor(NewMonotonicClockFrom(frozen(base)), StaticAuditor("carol"))
	require.True(t, same.OnUpdate(context.Background(), r))
	assert.True(t, r.modified.After(*r.created))
	assert.Equal(t, "bob", r.createdBy)
	assert.Equal(t, "carol", r.modifiedBy)

	prev := *r.modified
	same.OnUpdate(context.Background(), r)
	assert.True(t, r.modified.After(prev))
}

func TestNonAuditableIgnored(t *testing.T) {
	i := NewInterceptor(nil, nil)
	assert.False(t, i.OnCreate(context.Background(), struct{}{}))
	assert.False(t, i.OnUpdate(context.Background(), &struct{}{}))
}

func TestAuditorChain(t *testing.T) {
	chain := Chain(ContextAuditor, StaticAuditor("system"))

	actor, ok := chain.CurrentAuditor(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "system", actor)

	actor, _ = chain.CurrentAuditor(WithAuditor(context.Background(), "dave"))
	assert.Equal(t, "dave", actor)

	a, _ := RandomAuditor.CurrentAuditor(context.Background())
	b, _ := RandomAuditor.CurrentAuditor(context.Background())
	assert.NotEqual(t, a, b)
}
