package pagination

import (
	"strconv"

	"gorm.io/gorm"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

type Params struct {
	Page    int
	PerPage int
}

// FromQuery parses page/per_page query values, clamping to sane bounds.
func FromQuery(page, perPage string) Params {
	p := Params{Page: 1, PerPage: DefaultPerPage}
	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(perPage); err == nil && n > 0 {
		p.PerPage = n
		if p.PerPage > MaxPerPage {
			p.PerPage = MaxPerPage
		}
	}
	return p
}

type Meta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
}

// MetaFor builds page metadata for a query counted elsewhere.
func MetaFor(params Params, total int64) Meta {
	pages := int((total + int64(params.PerPage) - 1) / int64(params.PerPage))
	return Meta{
		Page:    params.Page,
		PerPage: params.PerPage,
		Total:   total,
		Pages:   pages,
	}
}

// Page is the listing envelope every paginated endpoint returns.
type Page[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// Paginate counts the filtered query, applies offset/limit and scans into
// dest. The query must already carry its WHERE/JOIN/ORDER clauses.
func Paginate[T any](query *gorm.DB, params Params) (*Page[T], error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	data := []T{}
	offset := (params.Page - 1) * params.PerPage
	if err := query.Offset(offset).Limit(params.PerPage).Find(&data).Error; err != nil {
		return nil, err
	}

	return &Page[T]{Data: data, Pagination: MetaFor(params, total)}, nil
}
