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

import (
	"encoding/json"
	"math"
)

// DefaultPageSize is used when a request carries no usable size.
const DefaultPageSize = 20

// QueryFilter describes a WHERE clause schema and its argument values.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// PageRequest describes a zero-based page, its size and ordering.
type PageRequest struct {
	page     int
	pageSize int
	sort     Sort
}

// NewPageRequest constructs a PageRequest. Negative pages become 0,
// non-positive sizes become DefaultPageSize, and the page is capped so that
// page*size fits in an int.
func NewPageRequest(page int, pageSize int, sort ...Order) *PageRequest {
	return NewPageRequestWithSort(page, pageSize, sort)
}

// NewPageRequestWithSort constructs a PageRequest from an existing Sort with
// the same normalization as NewPageRequest.
func NewPageRequestWithSort(page int, pageSize int, sort Sort) *PageRequest {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	if page > MaxPage(pageSize) {
		page = MaxPage(pageSize)
	}
	return &PageRequest{page: page, pageSize: pageSize, sort: sort}
}

// MaxPage is the largest page number whose offset fits in an int for the
// given size.
func MaxPage(pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return math.MaxInt / pageSize
}

// GetPage returns the zero-based page number. The getters also normalize a
// zero PageRequest.
func (p *PageRequest) GetPage() int {
	if p.page < 0 {
		return 0
	}
	return p.page
}

func (p *PageRequest) GetPageSize() int {
	if p.pageSize < 1 {
		return DefaultPageSize
	}
	return p.pageSize
}

// GetOffset is page*size, saturating at math.MaxInt.
func (p *PageRequest) GetOffset() int {
	page, size := p.GetPage(), p.GetPageSize()
	if page > MaxPage(size) {
		return math.MaxInt
	}
	return page * size
}

func (p *PageRequest) GetSort() Sort {
	return p.sort
}

// Next returns the request for the following page.
func (p *PageRequest) Next() *PageRequest {
	page := p.GetPage()
	if page < MaxPage(p.GetPageSize()) {
		page++
	}
	return NewPageRequestWithSort(page, p.GetPageSize(), p.sort)
}

// Page is one page of results together with the total match count.
type Page[T any] struct {
	Items    []T
	Page     int
	PageSize int
	Offset   int
	Total    int
	Sort     Sort
}

// NewPage builds a Page for the given request.
func NewPage[T any](items []T, req *PageRequest, total int) *Page[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return &Page[T]{
		Items:    items,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Offset:   req.GetOffset(),
		Total:    total,
		Sort:     req.GetSort(),
	}
}

func (p *Page[T]) TotalPages() int {
	if p.PageSize < 1 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

func (p *Page[T]) NumberOfElements() int { return len(p.Items) }

func (p *Page[T]) IsFirst() bool { return p.Offset == 0 }

func (p *Page[T]) HasNext() bool { return p.Offset < p.Total-p.PageSize }

func (p *Page[T]) IsLast() bool { return !p.HasNext() }

func (p *Page[T]) HasPrevious() bool { return p.Offset > 0 }

func (p *Page[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(pageJSON[T]{
		Content:          p.Items,
		Number:           p.Page,
		Size:             p.PageSize,
		Sort:             p.Sort,
		TotalElements:    p.Total,
		TotalPages:       p.TotalPages(),
		NumberOfElements: p.NumberOfElements(),
		First:            p.IsFirst(),
		Last:             p.IsLast(),
		Empty:            len(p.Items) == 0,
	})
}

type pageJSON[T any] struct {
	Content          []T  `json:"content"`
	Number           int  `json:"number"`
	Size             int  `json:"size"`
	Sort             Sort `json:"sort"`
	TotalElements    int  `json:"totalElements"`
	TotalPages       int  `json:"totalPages"`
	NumberOfElements int  `json:"numberOfElements"`
	First            bool `json:"first"`
	Last             bool `json:"last"`
	Empty            bool `json:"empty"`
}

// MapPage converts every item of a page keeping its metadata.
func MapPage[T, R any](p *Page[T], fn func(T) R) *Page[R] {
	items := make([]R, len(p.Items))
	for i, it := range p.Items {
		items[i] = fn(it)
	}
	return &Page[R]{Items: items, Page: p.Page, PageSize: p.PageSize, Offset: p.Offset, Total: p.Total, Sort: p.Sort}
}

// Slice is one page of results without a total count.
type Slice[T any] struct {
	Items    []T
	Page     int
	PageSize int
	Offset   int
	Sort     Sort
	hasNext  bool
}

// NewSlice builds a Slice from up to size+1 fetched rows, trimming the extra row.
func NewSlice[T any](fetched []T, req *PageRequest) *Slice[T] {
	size := req.GetPageSize()
	hasNext := len(fetched) > size
	if hasNext {
		fetched = fetched[:size]
	}
	if fetched == nil {
		fetched = make([]T, 0)
	}
	return &Slice[T]{
		Items:    fetched,
		Page:     req.GetPage(),
		PageSize: size,
		Offset:   req.GetOffset(),
		Sort:     req.GetSort(),
		hasNext:  hasNext,
	}
}

func (s *Slice[T]) HasNext() bool { return s.hasNext }

func (s *Slice[T]) IsFirst() bool { return s.Offset == 0 }

func (s *Slice[T]) IsLast() bool { return !s.hasNext }

func (s *Slice[T]) NumberOfElements() int { return len(s.Items) }
