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

package query

import "github.com/tomoncle/datarepo/types"

// Query is a predicate plus the hints the executor honours.
type Query struct {
	Where    Predicate
	Sort     types.Sort
	Limit    int
	Graph    []string
	Lock     types.LockMode
	ReadOnly bool
	Distinct bool

	count    Predicate
	hasCount bool
}

// New starts a query filtered by where. A nil predicate matches every row.
func New(where Predicate) *Query {
	return &Query{Where: where}
}

// OrderBy appends orders to the query's sort.
func (q *Query) OrderBy(orders ...types.Order) *Query {
	q.Sort = append(q.Sort, orders...)
	return q
}

// WithCount uses a dedicated predicate for the total count of a page.
func (q *Query) WithCount(p Predicate) *Query {
	q.count, q.hasCount = p, true
	return q
}

// CountPredicate is the predicate used to count page totals.
func (q *Query) CountPredicate() Predicate {
	if q.hasCount {
		return q.count
	}
	return q.Where
}

// WithGraph eagerly loads the named relations.
func (q *Query) WithGraph(relations ...string) *Query {
	q.Graph = append(q.Graph, relations...)
	return q
}

// WithLock requests a row lock on the matched rows.
func (q *Query) WithLock(mode types.LockMode) *Query {
	q.Lock = mode
	return q
}

// AsReadOnly marks results as never dirty-checked.
func (q *Query) AsReadOnly() *Query {
	q.ReadOnly = true
	return q
}

// WithLimit caps the number of rows.
func (q *Query) WithLimit(n int) *Query {
	q.Limit = n
	return q
}
