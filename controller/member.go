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
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tomoncle/datarepo/dto"
	"github.com/tomoncle/datarepo/entity"
	"github.com/tomoncle/datarepo/query"
	"github.com/tomoncle/datarepo/repository"
	"github.com/tomoncle/datarepo/types"
)

const (
	// members2PageSize is the default page size of GET /members2.
	members2PageSize = 5
	maxPageSize      = 2000
)

type MemberController struct {
	members *repository.MemberRepository
}

func NewMemberController(members *repository.MemberRepository) *MemberController {
	return &MemberController{members: members}
}

// List handles GET /members.
func (h *MemberController) List(c *gin.Context) {
	h.list(c, types.DefaultPageSize)
}

// List2 handles GET /members2, which pages by 5 unless told otherwise.
func (h *MemberController) List2(c *gin.Context) {
	h.list(c, members2PageSize)
}

func (h *MemberController) list(c *gin.Context, defaultSize int) {
	req, err := pageRequest(c, defaultSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := h.members.FindAllPage(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListDto handles GET /membersDto.
func (h *MemberController) ListDto(c *gin.Context) {
	req, err := pageRequest(c, types.DefaultPageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := h.members.FindAllWithTeamPage(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.MapPage(page, dto.NewMemberDto))
}

// Get handles GET /members/:id.
func (h *MemberController) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
		return
	}
	member, err := h.members.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// pageRequest reads the zero-based page, size and repeated
// sort=property[,asc|desc] parameters.
func pageRequest(c *gin.Context, defaultSize int) (*types.PageRequest, error) {
	page, err := intParam(c, "page", 0)
	if err != nil {
		return nil, err
	}
	size, err := intParam(c, "size", defaultSize)
	if err != nil {
		return nil, err
	}
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = defaultSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if page > types.MaxPage(size) {
		return nil, fmt.Errorf("page %d is out of range for size %d", page, size)
	}

	var sort types.Sort
	for _, expr := range c.QueryArray("sort") {
		order, err := types.ParseOrder(expr)
		if err != nil {
			return nil, err
		}
		sort = append(sort, order)
	}
	return types.NewPageRequestWithSort(page, size, sort), nil
}

func intParam(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter %q", name, raw)
	}
	return v, nil
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, query.ErrUnknownField), errors.Is(err, entity.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrAmbiguousResult), repository.IsConstraintViolation(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
