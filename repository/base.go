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
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomoncle/datarepo/query"
	"github.com/tomoncle/datarepo/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	manager *Manager
	meta    *query.Metadata
}

// NewRepository returns the generic repository of T. *T must implement
// Identifiable.
func NewRepository[T any](m *Manager) (Repository[T], error) {
	return newBaseRepository[T](m)
}

func newBaseRepository[T any](m *Manager) (*baseRepositoryImpl[T], error) {
	if _, ok := any((*T)(nil)).(Identifiable); !ok {
		var zero T
		return nil, &query.RegistrationError{Method: fmt.Sprintf("%T", zero), Reason: "entity does not implement GetID and IsNew"}
	}
	meta, err := m.Metadata((*T)(nil))
	if err != nil {
		return nil, err
	}
	return &baseRepositoryImpl[T]{manager: m, meta: meta}, nil
}

// Metadata returns the mapped columns of T.
func (r *baseRepositoryImpl[T]) Metadata() *query.Metadata { return r.meta }

// Manager returns the manager the repository was built from.
func (r *baseRepositoryImpl[T]) Manager() *Manager { return r.manager }

// Dialect returns the SQL dialect of the underlying database.
func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.manager.db.Dialect() }

// Method parses a derived query method name against T.
func (r *baseRepositoryImpl[T]) Method(name string) (*query.Descriptor, error) {
	return query.ParseMethod(name, r.meta)
}

// Flush flushes the session bound to ctx, if any.
func (r *baseRepositoryImpl[T]) Flush(ctx context.Context) error {
	if s, ok := SessionFrom(ctx); ok {
		return s.Flush(ctx)
	}
	return nil
}

func (r *baseRepositoryImpl[T]) Clear(ctx context.Context) {
	if s, ok := SessionFrom(ctx); ok {
		s.Clear()
	}
}

func (r *baseRepositoryImpl[T]) Save(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, fmt.Errorf("%s: cannot save nil entity", r.meta.Name())
	}
	return within(ctx, r.manager, func(s *Session) (*T, error) {
		return r.save(ctx, s, entity)
	})
}

func (r *baseRepositoryImpl[T]) SaveAll(ctx context.Context, entities []*T) ([]*T, error) {
	return within(ctx, r.manager, func(s *Session) ([]*T, error) {
		out := make([]*T, 0, len(entities))
		for _, e := range entities {
			if e == nil {
				return nil, fmt.Errorf("%s: cannot save nil entity", r.meta.Name())
			}
			v, err := r.save(ctx, s, e)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	})
}

func (r *baseRepositoryImpl[T]) save(ctx context.Context, s *Session, entity *T) (*T, error) {
	v, err := s.persist(ctx, r.meta, entity)
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

func (r *baseRepositoryImpl[T]) FindByID(ctx context.Context, id int64) (types.Optional[*T], error) {
	v, err := within(ctx, r.manager, func(s *Session) (*T, error) {
		return r.findByID(ctx, s, id)
	})
	if err != nil || v == nil {
		return types.Empty[*T](), err
	}
	return types.Of(v), nil
}

func (r *baseRepositoryImpl[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	opt, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return opt.OrElseErr(func() error {
		return &NotFoundError{Entity: r.meta.Name(), ID: id}
	})
}

func (r *baseRepositoryImpl[T]) findByID(ctx context.Context, s *Session, id int64) (*T, error) {
	if e, ok := s.entries[entityKey{typ: r.meta.Type, id: id}]; ok {
		if e.state == stateRemoved {
			return nil, nil
		}
		return e.value.(*T), nil
	}
	row := new(T)
	err := s.idb.NewSelect().
		Model(row).
		Where("? = ?", r.pk(), id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v, err := s.attach(r.meta, row, false)
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

func (r *baseRepositoryImpl[T]) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return within(ctx, r.manager, func(s *Session) (bool, error) {
		if e, ok := s.entries[entityKey{typ: r.meta.Type, id: id}]; ok {
			return e.state != stateRemoved, nil
		}
		return s.idb.NewSelect().
			Model((*T)(nil)).
			Where("? = ?", r.pk(), id).
			Exists(ctx)
	})
}

func (r *baseRepositoryImpl[T]) FindAll(ctx context.Context) ([]*T, error) {
	return r.FindList(ctx, query.New(nil))
}

func (r *baseRepositoryImpl[T]) FindAllSorted(ctx context.Context, sort types.Sort) ([]*T, error) {
	return r.FindList(ctx, query.New(nil).OrderBy(sort...))
}

func (r *baseRepositoryImpl[T]) FindAllPage(ctx context.Context, page *types.PageRequest) (*types.Page[*T], error) {
	return r.FindPage(ctx, query.New(nil), page)
}

func (r *baseRepositoryImpl[T]) FindAllSlice(ctx context.Context, page *types.PageRequest) (*types.Slice[*T], error) {
	return r.FindSlice(ctx, query.New(nil), page)
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context) (int, error) {
	return r.CountWhere(ctx, nil)
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, entity *T) error {
	if entity == nil {
		return fmt.Errorf("%s: cannot delete nil entity", r.meta.Name())
	}
	_, err := within(ctx, r.manager, func(s *Session) (struct{}, error) {
		s.remove(r.meta, entity)
		return struct{}{}, nil
	})
	return err
}

// DeleteByID removes the entity with id. An absent id is not an error.
func (r *baseRepositoryImpl[T]) DeleteByID(ctx context.Context, id int64) error {
	_, err := within(ctx, r.manager, func(s *Session) (struct{}, error) {
		v, err := r.findByID(ctx, s, id)
		if err != nil || v == nil {
			return struct{}{}, err
		}
		s.remove(r.meta, v)
		return struct{}{}, nil
	})
	return err
}

// DeleteAll loads every entity and removes them one by one, so managed
// instances leave the session too.
func (r *baseRepositoryImpl[T]) DeleteAll(ctx context.Context) error {
	_, err := within(ctx, r.manager, func(s *Session) (struct{}, error) {
		all, err := r.list(ctx, s, query.New(nil), 0, 0)
		if err != nil {
			return struct{}{}, err
		}
		for _, v := range all {
			s.remove(r.meta, v)
		}
		return struct{}{}, nil
	})
	return err
}

func (r *baseRepositoryImpl[T]) FindAllBySpec(ctx context.Context, spec query.Specification, sort ...types.Order) ([]*T, error) {
	return r.FindList(ctx, query.New(spec.ToPredicate(r.meta)).OrderBy(sort...))
}

func (r *baseRepositoryImpl[T]) FindOneBySpec(ctx context.Context, spec query.Specification) (types.Optional[*T], error) {
	return r.FindOptional(ctx, query.New(spec.ToPredicate(r.meta)))
}

func (r *baseRepositoryImpl[T]) FindPageBySpec(ctx context.Context, spec query.Specification, page *types.PageRequest) (*types.Page[*T], error) {
	return r.FindPage(ctx, query.New(spec.ToPredicate(r.meta)), page)
}

func (r *baseRepositoryImpl[T]) CountBySpec(ctx context.Context, spec query.Specification) (int, error) {
	return r.CountWhere(ctx, spec.ToPredicate(r.meta))
}

func (r *baseRepositoryImpl[T]) pk() bun.Ident {
	return bun.Ident(r.meta.Alias + "." + r.meta.PK.Name)
}
