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
	"fmt"

	"github.com/tomoncle/datarepo/projection"
	"github.com/tomoncle/datarepo/query"
	"github.com/tomoncle/datarepo/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

func (r *baseRepositoryImpl[T]) FindList(ctx context.Context, q *query.Query) ([]*T, error) {
	return within(ctx, r.manager, func(s *Session) ([]*T, error) {
		return r.list(ctx, s, q, 0, 0)
	})
}

// FindSingle returns nil when nothing matches and an AmbiguousResultError
// when more than one row does.
func (r *baseRepositoryImpl[T]) FindSingle(ctx context.Context, q *query.Query) (*T, error) {
	return within(ctx, r.manager, func(s *Session) (*T, error) {
		return r.single(ctx, s, q)
	})
}

func (r *baseRepositoryImpl[T]) FindOptional(ctx context.Context, q *query.Query) (types.Optional[*T], error) {
	v, err := r.FindSingle(ctx, q)
	if err != nil || v == nil {
		return types.Empty[*T](), err
	}
	return types.Of(v), nil
}

func (r *baseRepositoryImpl[T]) single(ctx context.Context, s *Session, q *query.Query) (*T, error) {
	rows, err := r.list(ctx, s, q, 0, 2)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return rows[0], nil
	default:
		return nil, &AmbiguousResultError{Entity: r.meta.Name(), Query: describe(q)}
	}
}

// FindPage counts the matches first and skips the data query when there are
// none. The count ignores ordering and uses the query's count predicate.
func (r *baseRepositoryImpl[T]) FindPage(ctx context.Context, q *query.Query, page *types.PageRequest) (*types.Page[*T], error) {
	page = orDefault(page)
	return within(ctx, r.manager, func(s *Session) (*types.Page[*T], error) {
		if err := s.Flush(ctx); err != nil {
			return nil, err
		}
		total, err := r.count(ctx, s, q.CountPredicate())
		if err != nil {
			return nil, err
		}
		if total == 0 || page.GetOffset() >= total {
			return types.NewPage[*T](nil, page, total), nil
		}
		items, err := r.list(ctx, s, withSort(q, page.GetSort()), page.GetOffset(), page.GetPageSize())
		if err != nil {
			return nil, err
		}
		return types.NewPage(items, page, total), nil
	})
}

// FindSlice fetches one row past the page to tell whether a next page
// exists. No count query is run.
func (r *baseRepositoryImpl[T]) FindSlice(ctx context.Context, q *query.Query, page *types.PageRequest) (*types.Slice[*T], error) {
	page = orDefault(page)
	return within(ctx, r.manager, func(s *Session) (*types.Slice[*T], error) {
		items, err := r.list(ctx, s, withSort(q, page.GetSort()), page.GetOffset(), page.GetPageSize()+1)
		if err != nil {
			return nil, err
		}
		return types.NewSlice(items, page), nil
	})
}

func (r *baseRepositoryImpl[T]) CountWhere(ctx context.Context, where query.Predicate) (int, error) {
	return within(ctx, r.manager, func(s *Session) (int, error) {
		if err := s.Flush(ctx); err != nil {
			return 0, err
		}
		return r.count(ctx, s, where)
	})
}

func (r *baseRepositoryImpl[T]) ExistsWhere(ctx context.Context, where query.Predicate) (bool, error) {
	return within(ctx, r.manager, func(s *Session) (bool, error) {
		if err := s.Flush(ctx); err != nil {
			return false, err
		}
		plan := r.meta.NewPlan()
		if err := plan.Where(where); err != nil {
			return false, err
		}
		return plan.Apply(s.idb.NewSelect().Model((*T)(nil))).Exists(ctx)
	})
}

// UpdateWhere runs a set-based update after flushing pending writes. Managed
// instances are not refreshed: they keep their old state until the session
// is cleared.
func (r *baseRepositoryImpl[T]) UpdateWhere(ctx context.Context, set []query.Assignment, where query.Predicate) (int64, error) {
	expr, args, err := r.meta.Assignments(set)
	if err != nil {
		return 0, err
	}
	cond, condArgs, err := r.meta.Condition(where)
	if err != nil {
		return 0, err
	}
	return within(ctx, r.manager, func(s *Session) (int64, error) {
		if err := s.Flush(ctx); err != nil {
			return 0, err
		}
		res, err := s.idb.NewUpdate().
			Model((*T)(nil)).
			Set(expr, args...).
			Where(orTrue(cond), condArgs...).
			Exec(ctx)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	})
}

// DeleteWhere runs a set-based delete. Like UpdateWhere it bypasses the
// session's managed instances.
func (r *baseRepositoryImpl[T]) DeleteWhere(ctx context.Context, where query.Predicate) (int64, error) {
	cond, condArgs, err := r.meta.Condition(where)
	if err != nil {
		return 0, err
	}
	return within(ctx, r.manager, func(s *Session) (int64, error) {
		if err := s.Flush(ctx); err != nil {
			return 0, err
		}
		res, err := s.idb.NewDelete().
			Model((*T)(nil)).
			Where(orTrue(cond), condArgs...).
			Exec(ctx)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	})
}

// FindRows selects only the given field paths. Relation paths join their
// relation with an inner join. Rows are keyed by path.
func (r *baseRepositoryImpl[T]) FindRows(ctx context.Context, q *query.Query, paths []string) ([]projection.Row, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: no columns to select", r.meta.Name())
	}
	return within(ctx, r.manager, func(s *Session) ([]projection.Row, error) {
		if err := s.Flush(ctx); err != nil {
			return nil, err
		}
		plan := r.meta.NewPlan()
		cols := make([]bun.Ident, len(paths))
		for i, p := range paths {
			col, err := plan.Column(p)
			if err != nil {
				return nil, err
			}
			cols[i] = col
		}
		if err := plan.Where(q.Where); err != nil {
			return nil, err
		}
		if err := plan.OrderBy(q.Sort); err != nil {
			return nil, err
		}

		sel := s.idb.NewSelect().TableExpr("? AS ?", bun.Ident(r.meta.Table), bun.Ident(r.meta.Alias))
		for i, c := range cols {
			sel = sel.ColumnExpr("? AS ?", c, bun.Ident(fmt.Sprintf("c%d", i)))
		}
		sel = plan.ApplyOrder(plan.Apply(sel))
		if q.Distinct {
			sel = sel.Distinct()
		}
		if q.Limit > 0 {
			sel = sel.Limit(q.Limit)
		}

		var raw []map[string]interface{}
		if err := sel.Scan(ctx, &raw); err != nil {
			return nil, err
		}
		rows := make([]projection.Row, 0, len(raw))
		for _, m := range raw {
			row := make(projection.Row, len(paths))
			for i, p := range paths {
				row[p] = m[fmt.Sprintf("c%d", i)]
			}
			rows = append(rows, row)
		}
		return rows, nil
	})
}

func (r *baseRepositoryImpl[T]) FindBy(ctx context.Context, d *query.Descriptor, args ...any) ([]*T, error) {
	q, err := r.bind(d, query.ActionFind, args)
	if err != nil {
		return nil, err
	}
	return r.FindList(ctx, q)
}

func (r *baseRepositoryImpl[T]) CountBy(ctx context.Context, d *query.Descriptor, args ...any) (int, error) {
	q, err := r.bind(d, query.ActionCount, args)
	if err != nil {
		return 0, err
	}
	return r.CountWhere(ctx, q.Where)
}

func (r *baseRepositoryImpl[T]) ExistsBy(ctx context.Context, d *query.Descriptor, args ...any) (bool, error) {
	q, err := r.bind(d, query.ActionExists, args)
	if err != nil {
		return false, err
	}
	return r.ExistsWhere(ctx, q.Where)
}

// DeleteBy loads the matches and removes each of them through the session.
func (r *baseRepositoryImpl[T]) DeleteBy(ctx context.Context, d *query.Descriptor, args ...any) (int, error) {
	q, err := r.bind(d, query.ActionDelete, args)
	if err != nil {
		return 0, err
	}
	return within(ctx, r.manager, func(s *Session) (int, error) {
		rows, err := r.list(ctx, s, q, 0, 0)
		if err != nil {
			return 0, err
		}
		for _, v := range rows {
			s.remove(r.meta, v)
		}
		return len(rows), nil
	})
}

func (r *baseRepositoryImpl[T]) bind(d *query.Descriptor, action query.Action, args []any) (*query.Query, error) {
	if d == nil {
		return nil, fmt.Errorf("%s: nil query method", r.meta.Name())
	}
	if d.Action != action {
		return nil, fmt.Errorf("%s: %s is not a %s method", r.meta.Name(), d.Method, actionName(action))
	}
	return d.Bind(args...)
}

// list flushes pending writes, runs q and hands every row to the session.
// A positive limit is combined with the query's own limit.
func (r *baseRepositoryImpl[T]) list(ctx context.Context, s *Session, q *query.Query, offset, limit int) ([]*T, error) {
	if err := s.Flush(ctx); err != nil {
		return nil, err
	}
	var rows []*T
	sel, err := r.newSelect(s, q, &rows)
	if err != nil {
		return nil, err
	}
	if q.Limit > 0 && (limit <= 0 || q.Limit < limit) {
		limit = q.Limit
	}
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	if offset > 0 {
		sel = sel.Offset(offset)
	}
	if err := sel.Scan(ctx); err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		v, err := s.attach(r.meta, row, q.ReadOnly)
		if err != nil {
			return nil, err
		}
		out = append(out, v.(*T))
	}
	return out, nil
}

func (r *baseRepositoryImpl[T]) newSelect(s *Session, q *query.Query, dest *[]*T) (*bun.SelectQuery, error) {
	plan := r.meta.NewPlan()
	if err := plan.Where(q.Where); err != nil {
		return nil, err
	}
	if err := plan.OrderBy(q.Sort); err != nil {
		return nil, err
	}
	sel := plan.ApplyOrder(plan.Apply(s.idb.NewSelect().Model(dest)))
	if q.Distinct {
		sel = sel.Distinct()
	}
	for _, name := range q.Graph {
		if _, ok := r.meta.Relation(name); !ok {
			return nil, &query.UnknownFieldError{Model: r.meta.Name(), Path: name}
		}
		sel = sel.Relation(name)
	}
	return r.lock(s, sel, q.Lock), nil
}

// lock forwards a pessimistic lock hint. SQLite has no row locks, so the
// hint is dropped there.
func (r *baseRepositoryImpl[T]) lock(s *Session, sel *bun.SelectQuery, mode types.LockMode) *bun.SelectQuery {
	if mode == types.LockNone {
		return sel
	}
	switch name := s.idb.Dialect().Name(); name {
	case dialect.PG:
		if mode == types.LockPessimisticWrite {
			return sel.For("UPDATE OF ?TableAlias")
		}
		return sel.For("SHARE OF ?TableAlias")
	case dialect.MySQL:
		if mode == types.LockPessimisticWrite {
			return sel.For("UPDATE")
		}
		return sel.For("SHARE")
	default:
		r.manager.logger.Debug("Lock hint ignored", "entity", r.meta.Name(), "mode", mode.Name(), "dialect", name.String())
		return sel
	}
}

func (r *baseRepositoryImpl[T]) count(ctx context.Context, s *Session, where query.Predicate) (int, error) {
	plan := r.meta.NewPlan()
	if err := plan.Where(where); err != nil {
		return 0, err
	}
	return plan.Apply(s.idb.NewSelect().Model((*T)(nil))).Count(ctx)
}

func withSort(q *query.Query, sort types.Sort) *query.Query {
	if len(sort) == 0 {
		return q
	}
	cp := *q
	cp.Sort = append(append(types.Sort{}, q.Sort...), sort...)
	return &cp
}

func orDefault(page *types.PageRequest) *types.PageRequest {
	if page == nil {
		return types.NewPageRequest(0, types.DefaultPageSize)
	}
	return page
}

func orTrue(cond string) string {
	if cond == "" {
		return "1 = 1"
	}
	return cond
}

func describe(q *query.Query) string {
	if q == nil || q.Where == nil {
		return ""
	}
	return fmt.Sprint(q.Where)
}

func actionName(a query.Action) string {
	switch a {
	case query.ActionCount:
		return "count"
	case query.ActionExists:
		return "exists"
	case query.ActionDelete:
		return "delete"
	default:
		return "find"
	}
}
