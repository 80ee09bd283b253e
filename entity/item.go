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

// Item uses a caller-assigned id, so newness is decided by the audit
// created date instead of the id.
type Item struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	ID       int64  `bun:"item_id,pk" json:"id"`
	ItemName string `bun:"item_name" json:"itemName"`
	BaseEntity
}

// NewItem returns an unsaved item with the given id.
func NewItem(id int64, name string) *Item {
	return &Item{ID: id, ItemName: name}
}

func (i *Item) GetID() int64 { return i.ID }

func (i *Item) IsNew() bool { return i.CreatedDate() == nil }
