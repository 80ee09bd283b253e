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
	"time"
)

// Column names of the audit fields. Only the interceptor writes them, and
// the created pair never changes once stored.
const (
	CreatedDateColumn      = "created_date"
	CreatedByColumn        = "created_by"
	LastModifiedDateColumn = "last_modified_date"
	LastModifiedByColumn   = "last_modified_by"
)

// IsAuditColumn reports whether column is owned by the interceptor.
func IsAuditColumn(column string) bool {
	switch column {
	case CreatedDateColumn, CreatedByColumn, LastModifiedDateColumn, LastModifiedByColumn:
		return true
	}
	return false
}

// IsCreationColumn reports whether column belongs to the immutable created pair.
func IsCreationColumn(column string) bool {
	return column == CreatedDateColumn || column == CreatedByColumn
}

// Auditable is implemented by entities carrying audit columns.
type Auditable interface {
	CreatedDate() *time.Time
	LastModifiedDate() *time.Time
	MarkCreated(at time.Time, by string)
	MarkModified(at time.Time, by string)
}

// Interceptor stamps audit fields on insert and update.
type Interceptor struct {
	clock   Clock
	auditor AuditorAware
}

// NewInterceptor builds an interceptor. A nil clock falls back to a
// MonotonicClock and a nil auditor to ContextAuditor then RandomAuditor.
func NewInterceptor(clock Clock, auditor AuditorAware) *Interceptor {
	if clock == nil {
		clock = NewMonotonicClock()
	}
	if auditor == nil {
		auditor = Chain(ContextAuditor, RandomAuditor)
	}
	return &Interceptor{clock: clock, auditor: auditor}
}

// OnCreate stamps created and modified fields with the same instant and
// reports whether v was auditable.
func (i *Interceptor) OnCreate(ctx context.Context, v any) bool {
	a, ok := v.(Auditable)
	if !ok {
		return false
	}
	actor, _ := i.auditor.CurrentAuditor(ctx)
	a.MarkCreated(i.clock.Now(), actor)
	return true
}

// OnUpdate stamps the modified fields. The new timestamp is strictly after
// both the created and the previous modified timestamp.
func (i *Interceptor) OnUpdate(ctx context.Context, v any) bool {
	a, ok := v.(Auditable)
	if !ok {
		return false
	}
	now := i.clock.Now()
	for _, prev := range []*time.Time{a.CreatedDate(), a.LastModifiedDate()} {
		if prev != nil && !now.After(*prev) {
			now = prev.Truncate(Resolution).Add(Resolution)
		}
	}
	actor, _ := i.auditor.CurrentAuditor(ctx)
	a.MarkModified(now, actor)
	return true
}
