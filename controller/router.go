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
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomoncle/datarepo"
	"github.com/tomoncle/datarepo/database"
)

// HealthFunc reports the state of the backing store.
type HealthFunc func(ctx context.Context) *database.HealthStatus

type Options struct {
	// Mode is the gin mode; release when empty.
	Mode string

	// DefaultAuditor is the actor recorded when a request has no X-Auditor
	// header.
	DefaultAuditor string

	Health HealthFunc

	// Stats serves connection pool statistics on /stats when set.
	Stats func() *database.DBStats

	Logger database.Logger
}

// NewRouter returns the HTTP handler serving svc.
func NewRouter(svc *datarepo.Services, opts Options) *gin.Engine {
	if opts.Mode == "" {
		opts.Mode = gin.ReleaseMode
	}
	gin.SetMode(opts.Mode)
	if opts.Logger == nil {
		opts.Logger = database.NewDefaultLogger("HTTP")
	}
	if opts.Health == nil {
		opts.Health = pingHealth(svc)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(opts.Logger))
	router.Use(Metrics())

	router.GET("/healthz", healthHandler(opts.Health))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.Stats != nil {
		router.GET("/stats", func(c *gin.Context) { c.JSON(http.StatusOK, opts.Stats()) })
	}

	members := NewMemberController(svc.Members)
	api := router.Group("")
	api.Use(Auditor(opts.DefaultAuditor))
	api.Use(SessionPerRequest(svc.Manager, opts.Logger))
	api.GET("/members", members.List)
	api.GET("/members2", members.List2)
	api.GET("/membersDto", members.ListDto)
	api.GET("/members/:id", members.Get)
	return router
}

func healthHandler(health HealthFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := health(c.Request.Context())
		code := http.StatusOK
		if status == nil || !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	}
}

func pingHealth(svc *datarepo.Services) HealthFunc {
	return func(ctx context.Context) *database.HealthStatus {
		start := time.Now()
		status := &database.HealthStatus{LastCheckTime: start}
		if err := svc.Manager.DB().PingContext(ctx); err != nil {
			status.LastError = err.Error()
		} else {
			status.Healthy = true
			status.Connected = true
		}
		status.ResponseTime = time.Since(start)
		return status
	}
}
