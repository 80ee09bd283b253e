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
	"errors"
	"fmt"

	"github.com/tomoncle/datarepo/database"
)

var (
	ErrAmbiguousResult = errors.New("query did not return a unique result")
	ErrNotFound        = errors.New("entity not found")
)

// AmbiguousResultError is returned by single-result queries matching more
// than one row.
type AmbiguousResultError struct {
	Entity string
	Query  string
}

func (e *AmbiguousResultError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("%s: %v", e.Entity, ErrAmbiguousResult)
	}
	return fmt.Sprintf("%s: %v: %s", e.Entity, ErrAmbiguousResult, e.Query)
}

func (e *AmbiguousResultError) Is(target error) bool { return target == ErrAmbiguousResult }

// NotFoundError is returned when a caller demands an entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %v: %v", e.Entity, e.ID, ErrNotFound)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IsConstraintViolation reports whether err is an integrity constraint
// failure raised by the backing store. Such errors are never wrapped by the
// repositories.
func IsConstraintViolation(err error) bool {
	return database.IsConstraintViolation(err)
}
