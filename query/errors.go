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

import (
	"errors"
	"fmt"
)

var (
	// ErrRegistration is matched by every RegistrationError.
	ErrRegistration = errors.New("query registration failed")

	// ErrUnknownField is matched by every UnknownFieldError.
	ErrUnknownField = errors.New("unknown field")
)

// RegistrationError reports a method descriptor that cannot be built.
type RegistrationError struct {
	Method string
	Reason string
	Err    error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("cannot register query method %q: %s", e.Method, e.Reason)
}

func (e *RegistrationError) Is(target error) bool { return target == ErrRegistration }

func (e *RegistrationError) Unwrap() error { return e.Err }

// UnknownFieldError reports a path that does not exist on a model.
type UnknownFieldError struct {
	Model string
	Path  string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s has no field %q", e.Model, e.Path)
}

func (e *UnknownFieldError) Is(target error) bool { return target == ErrUnknownField }
