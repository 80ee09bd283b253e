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

package audit

import (
	"context"

	"github.com/google/uuid"
)

// AuditorAware resolves the actor responsible for the current change.
type AuditorAware interface {
	CurrentAuditor(ctx context.Context) (string, bool)
}

// AuditorFunc adapts a function to AuditorAware.
type AuditorFunc func(ctx context.Context) (string, bool)

func (f AuditorFunc) CurrentAuditor(ctx context.Context) (string, bool) { return f(ctx) }

type auditorKey struct{}

// WithAuditor binds an actor to ctx.
func WithAuditor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, auditorKey{}, actor)
}

// ContextAuditor reads the actor bound by WithAuditor.
var ContextAuditor = AuditorFunc(func(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(auditorKey{}).(string)
	return actor, ok && actor != ""
})

// StaticAuditor always reports the same actor.
func StaticAuditor(actor string) AuditorAware {
	return AuditorFunc(func(context.Context) (string, bool) { return actor, actor != "" })
}

// RandomAuditor reports a fresh random identifier on every call.
var RandomAuditor = AuditorFunc(func(context.Context) (string, bool) {
	return uuid.NewString(), true
})

// Chain returns the first actor any of the given sources resolves.
func Chain(sources ...AuditorAware) AuditorAware {
	return AuditorFunc(func(ctx context.Context) (string, bool) {
		for _, s := range sources {
			if s == nil {
				continue
			}
			if actor, ok := s.CurrentAuditor(ctx); ok {
				return actor, true
			}
		}
		return "", false
	})
}
