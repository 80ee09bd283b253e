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
)

// Project runs q selecting only the columns shape needs and maps every row.
func Project[T, V any](ctx context.Context, r QueryRepository[T], q *query.Query, shape *projection.Shape[V]) ([]V, error) {
	rows, err := r.FindRows(ctx, q, shape.Columns())
	if err != nil {
		return nil, err
	}
	return shape.MapAll(rows), nil
}
