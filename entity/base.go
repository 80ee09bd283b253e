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

import "time"

// BaseEntity carries the audit columns. The audit interceptor is the only
// writer of these fields.
type BaseEntity struct {
	CreatedAt      *time.Time `bun:"created_date" json:"createdDate,omitempty"`
	LastModifiedAt *time.Time `bun:"last_modified_date" json:"lastModifiedDate,omitempty"`
	CreatedBy      string     `bun:"created_by" json:"createdBy,omitempty"`
	LastModifiedBy string     `bun:"last_modified_by" json:"lastModifiedBy,omitempty"`
}

func (b *BaseEntity) CreatedDate() *time.Time { return b.CreatedAt }

func (b *BaseEntity) LastModifiedDate() *time.Time { return b.LastModifiedAt }

func (b *BaseEntity) MarkCreated(at time.Time, by string) {
	created, modified := at, at
	b.CreatedAt, b.LastModifiedAt = &created, &modified
	b.CreatedBy, b.LastModifiedBy = by, by
}

func (b *BaseEntity) MarkModified(at time.Time, by string) {
	b.LastModifiedAt = &at
	b.LastModifiedBy = by
}
