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
	"context"

	"github.com/tomoncle/datarepo/entity"
	"github.com/tomoncle/datarepo/query"
)

// ItemRepository stores items under caller-assigned ids. Saving an item whose
// id already exists replaces the stored row.
type ItemRepository struct {
	*baseRepositoryImpl[entity.Item]

	byItemName *query.Descriptor
}

func NewItemRepository(m *Manager) (*ItemRepository, error) {
	base, err := newBaseRepository[entity.Item](m)
	if err != nil {
		return nil, err
	}
	d, err := query.ParseMethod("FindByItemNameContaining", base.meta)
	if err != nil {
		return nil, err
	}
	return &ItemRepository{baseRepositoryImpl: base, byItemName: d}, nil
}

func MustNewItemRepository(m *Manager) *ItemRepository {
	r, err := NewItemRepository(m)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *ItemRepository) FindByItemNameContaining(ctx context.Context, infix string) ([]*entity.Item, error) {
	return r.FindBy(ctx, r.byItemName, infix)
}
