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

package types

// Optional holds a value that may be absent.
type Optional[T any] struct {
	value   T
	present bool
}

// Of returns a present Optional.
func Of[T any](v T) Optional[T] { return Optional[T]{value: v, present: true} }

// Empty returns an absent Optional.
func Empty[T any]() Optional[T] { return Optional[T]{} }

func (o Optional[T]) IsPresent() bool { return o.present }

func (o Optional[T]) Get() (T, bool) { return o.value, o.present }

// OrElse returns the value if present, otherwise def.
func (o Optional[T]) OrElse(def T) T {
	if o.present {
		return o.value
	}
	return def
}

// OrElseErr returns the value if present, otherwise the error built by fn.
func (o Optional[T]) OrElseErr(fn func() error) (T, error) {
	if o.present {
		return o.value, nil
	}
	var zero T
	return zero, fn()
}
