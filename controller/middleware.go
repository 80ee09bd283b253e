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

package controller

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tomoncle/datarepo/audit"
	"github.com/tomoncle/datarepo/database"
	"github.com/tomoncle/datarepo/repository"
)

// AuditorHeader names the acting user of a request.
const AuditorHeader = "X-Auditor"

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "datarepo_http_requests_total",
		Help: "Number of HTTP requests, by route and status code.",
	},
	[]string{"method", "route", "code"},
)

func init() {
	prometheus.MustRegister(requestsTotal)
}

// Metrics counts requests by matched route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func RequestLogger(logger database.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("Request served",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Auditor binds the X-Auditor header, or fallback when it is absent, as the
// acting user of the request.
func Auditor(fallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(AuditorHeader))
		if actor == "" {
			actor = fallback
		}
		if actor != "" {
			c.Request = c.Request.WithContext(audit.WithAuditor(c.Request.Context(), actor))
		}
		c.Next()
	}
}

// SessionPerRequest opens a session for every request and flushes it once
// the handlers are done. Failed requests are not flushed.
func SessionPerRequest(m *repository.Manager, logger database.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = database.NewDefaultLogger("HTTP")
	}
	return func(c *gin.Context) {
		s := m.NewSession(nil)
		ctx := repository.ContextWithSession(c.Request.Context(), s)
		c.Request = c.Request.WithContext(ctx)
		defer s.Clear()

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= 400 {
			return
		}
		if err := s.Flush(ctx); err != nil {
			logger.Error("Failed to flush request session", "session", s.ID(), "error", err)
		}
	}
}
