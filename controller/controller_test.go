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

package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/datarepo"
	"github.com/tomoncle/datarepo/audit"
	"github.com/tomoncle/datarepo/controller"
	"github.com/tomoncle/datarepo/database"
	"github.com/tomoncle/datarepo/database/dbtest"
	"github.com/tomoncle/datarepo/entity"
	"github.com/tomoncle/datarepo/repository"
)

type pageBody[T any] struct {
	Content          []T  `json:"content"`
	Number           int  `json:"number"`
	Size             int  `json:"size"`
	TotalElements    int  `json:"totalElements"`
	TotalPages       int  `json:"totalPages"`
	NumberOfElements int  `json:"numberOfElements"`
	First            bool `json:"first"`
	Last             bool `json:"last"`
}

type memberBody struct {
	ID       int64  `json:"id"`
	UserName string `json:"userName"`
	Age      int    `json:"age"`
}

type memberDtoBody struct {
	ID       int64  `json:"id"`
	UserName string `json:"userName"`
	TeamName string `json:"teamName"`
}

func newServer(t *testing.T, seed int) (*gin.Engine, *datarepo.Services) {
	t.Helper()
	svc, err := datarepo.NewServices(dbtest.New(t), repository.WithAuditor(audit.ContextAuditor))
	require.NoError(t, err)
	_, err = svc.SeedMembers(context.Background(), seed)
	require.NoError(t, err)
	return controller.NewRouter(svc, controller.Options{Mode: gin.TestMode}), svc
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestMembersDefaultPage(t *testing.T) {
	router, _ := newServer(t, 25)

	w := get(t, router, "/members")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[pageBody[memberBody]](t, w)
	assert.Equal(t, 20, page.Size)
	assert.Equal(t, 0, page.Number)
	assert.Equal(t, 25, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Content, 20)
	assert.True(t, page.First)
	assert.False(t, page.Last)
	assert.Equal(t, "user0", page.Content[0].UserName)
}

func TestMembers2DefaultsToFive(t *testing.T) {
	router, _ := newServer(t, 25)

	page := decode[pageBody[memberBody]](t, get(t, router, "/members2"))
	assert.Equal(t, 5, page.Size)
	assert.Equal(t, 5, page.TotalPages)
	assert.Len(t, page.Content, 5)

	page = decode[pageBody[memberBody]](t, get(t, router, "/members2?size=10&page=2"))
	assert.Equal(t, 10, page.Size)
	assert.Len(t, page.Content, 5)
	assert.True(t, page.Last)
}

func TestMembersSorted(t *testing.T) {
	router, _ := newServer(t, 25)

	w := get(t, router, "/members?page=1&size=10&sort=age,desc")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[pageBody[memberBody]](t, w)
	require.Len(t, page.Content, 10)
	assert.Equal(t, 24, page.Content[0].Age)
	assert.Equal(t, 15, page.Content[9].Age)
}

func TestMembersBadParameters(t *testing.T) {
	router, _ := newServer(t, 3)

	for _, target := range []string{
		"/members?page=abc",
		"/members?size=x",
		"/members?sort=age,sideways",
		"/members?sort=nickname,asc",
		"/members?page=461168601842738791&size=20",
		"/members2?page=9223372036854775807",
	} {
		w := get(t, router, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestMembersPagePastEnd(t *testing.T) {
	router, _ := newServer(t, 3)

	w := get(t, router, "/members?page=461168601842738790&size=20")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[pageBody[memberBody]](t, w)
	assert.Equal(t, 461168601842738790, page.Number)
	assert.Equal(t, 3, page.TotalElements)
	assert.Empty(t, page.Content)
	assert.False(t, page.First)
	assert.True(t, page.Last)
}

func TestMembersDto(t *testing.T) {
	router, svc := newServer(t, 0)
	ctx := context.Background()

	team, err := svc.Teams.Save(ctx, entity.NewTeam("teamA"))
	require.NoError(t, err)
	_, err = svc.Members.SaveAll(ctx, []*entity.Member{
		entity.NewMember("member1", 10, team),
		entity.NewMember("member2", 20, nil),
	})
	require.NoError(t, err)

	w := get(t, router, "/membersDto")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[pageBody[memberDtoBody]](t, w)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "member1", page.Content[0].UserName)
	assert.Equal(t, "teamA", page.Content[0].TeamName)
	assert.Equal(t, "member2", page.Content[1].UserName)
	assert.Empty(t, page.Content[1].TeamName)
}

func TestMemberByID(t *testing.T) {
	router, svc := newServer(t, 3)

	m, err := svc.Members.FindMemberByUserName(context.Background(), "user1")
	require.NoError(t, err)
	require.NotNil(t, m)

	w := get(t, router, "/members/"+strconv.FormatInt(m.ID, 10))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[memberBody](t, w)
	assert.Equal(t, "user1", body.UserName)
	assert.Equal(t, 11, body.Age)

	assert.Equal(t, http.StatusNotFound, get(t, router, "/members/9999").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/members/abc").Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newServer(t, 0)

	w := get(t, router, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy":true`)

	get(t, router, "/members")
	w = get(t, router, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "datarepo_http_requests_total"))
}

func TestStatsRoute(t *testing.T) {
	svc, err := datarepo.NewServices(dbtest.New(t))
	require.NoError(t, err)

	router := controller.NewRouter(svc, controller.Options{Mode: gin.TestMode})
	assert.Equal(t, http.StatusNotFound, get(t, router, "/stats").Code)

	router = controller.NewRouter(svc, controller.Options{
		Mode:  gin.TestMode,
		Stats: func() *database.DBStats { return &database.DBStats{MaxOpenConns: 7} },
	})
	w := get(t, router, "/stats")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, decode[database.DBStats](t, w).MaxOpenConns)
}

func TestAuditorMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(controller.Auditor("system"))
	router.GET("/whoami", func(c *gin.Context) {
		actor, _ := audit.ContextAuditor.CurrentAuditor(c.Request.Context())
		c.String(http.StatusOK, actor)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(controller.AuditorHeader, "alice")
	router.ServeHTTP(w, req)
	assert.Equal(t, "alice", w.Body.String())

	assert.Equal(t, "system", get(t, router, "/whoami").Body.String())
}

func TestSessionPerRequestBindsSession(t *testing.T) {
	_, svc := newServer(t, 0)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(controller.SessionPerRequest(svc.Manager, nil))
	router.GET("/session", func(c *gin.Context) {
		if _, ok := repository.SessionFrom(c.Request.Context()); !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, get(t, router, "/session").Code)
}
