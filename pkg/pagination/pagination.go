package pagination

import (
	"math"

	"github.com/gin-gonic/gin"

	"github.com/sofraeats/marketplace/pkg/common"
)

const (
	// DefaultPageSize is the default number of items per page
	DefaultPageSize = 20
	// MaxPageSize is the maximum number of items per page
	MaxPageSize = 100
)

// Params represents page-number pagination parameters
type Params struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// ParseParams extracts and validates pagination parameters from the request
func ParseParams(c *gin.Context) Params {
	params := Params{
		Page:     1,
		PageSize: DefaultPageSize,
	}

	if err := c.ShouldBindQuery(&params); err != nil {
		// If binding fails, use defaults
		return params
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = DefaultPageSize
	}
	if params.PageSize > MaxPageSize {
		params.PageSize = MaxPageSize
	}

	return params
}

// Offset converts the page number into a row offset
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// BuildMeta creates pagination metadata for responses
func BuildMeta(page, pageSize int, total int64) *common.Meta {
	meta := &common.Meta{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}

	if pageSize > 0 {
		meta.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}

	return meta
}

// HasMore checks if there are more items after the given page
func HasMore(page, pageSize int, total int64) bool {
	return int64(page*pageSize) < total
}
