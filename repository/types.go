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

	"github.com/tomoncle/datarepo/projection"
	"github.com/tomoncle/datarepo/query"
	"github.com/tomoncle/datarepo/types"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines the basic persistence operations of an entity.
type CrudRepository[T any] interface {
	Save(ctx context.Context, entity *T) (*T, error)

	SaveAll(ctx context.Context, entities []*T) ([]*T, error)

	FindByID(ctx context.Context, id int64) (types.Optional[*T], error)

	GetByID(ctx context.Context, id int64) (*T, error)

	ExistsByID(ctx context.Context, id int64) (bool, error)

	FindAll(ctx context.Context) ([]*T, error)

	Count(ctx context.Context) (int, error)

	Delete(ctx context.Context, entity *T) error

	DeleteByID(ctx context.Context, id int64) error

	DeleteAll(ctx context.Context) error
}

// PagingRepository lists every entity sorted, by page or by slice.
type PagingRepository[T any] interface {
	FindAllSorted(ctx context.Context, sort types.Sort) ([]*T, error)
	FindAllPage(ctx context.Context, page *types.PageRequest) (*types.Page[*T], error)
	FindAllSlice(ctx context.Context, page *types.PageRequest) (*types.Slice[*T], error)
}

// SpecificationRepository runs composable criteria built at call time.
type SpecificationRepository[T any] interface {
	FindAllBySpec(ctx context.Context, spec query.Specification, sort ...types.Order) ([]*T, error)
	FindOneBySpec(ctx context.Context, spec query.Specification) (types.Optional[*T], error)
	FindPageBySpec(ctx context.Context, spec query.Specification, page *types.PageRequest) (*types.Page[*T], error)
	CountBySpec(ctx context.Context, spec query.Specification) (int, error)
}

// QueryRepository executes compiled queries under a cardinality contract.
type QueryRepository[T any] interface {
	FindList(ctx context.Context, q *query.Query) ([]*T, error)
	FindSingle(ctx context.Context, q *query.Query) (*T, error)
	FindOptional(ctx context.Context, q *query.Query) (types.Optional[*T], error)
	FindPage(ctx context.Context, q *query.Query, page *types.PageRequest) (*types.Page[*T], error)
	FindSlice(ctx context.Context, q *query.Query, page *types.PageRequest) (*types.Slice[*T], error)
	FindRows(ctx context.Context, q *query.Query, paths []string) ([]projection.Row, error)

	FindBy(ctx context.Context, d *query.Descriptor, args ...any) ([]*T, error)
	CountBy(ctx context.Context, d *query.Descriptor, args ...any) (int, error)
	ExistsBy(ctx context.Context, d *query.Descriptor, args ...any) (bool, error)
	DeleteBy(ctx context.Context, d *query.Descriptor, args ...any) (int, error)

	CountWhere(ctx context.Context, where query.Predicate) (int, error)
	ExistsWhere(ctx context.Context, where query.Predicate) (bool, error)
	UpdateWhere(ctx context.Context, set []query.Assignment, where query.Predicate) (int64, error)
	DeleteWhere(ctx context.Context, where query.Predicate) (int64, error)
}

// Repository is the full typed repository of entity T.
type Repository[T any] interface {
	CrudRepository[T]
	PagingRepository[T]
	SpecificationRepository[T]
	QueryRepository[T]

	// Method parses a derived query method against T.
	Method(name string) (*query.Descriptor, error)
	Metadata() *query.Metadata
	Manager() *Manager
	Dialect() schema.Dialect

	// Flush and Clear act on the session bound to ctx, if any.
	Flush(ctx context.Context) error
	Clear(ctx context.Context)
}
