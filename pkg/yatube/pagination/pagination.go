// Package pagination slices ordered record sets into fixed-size pages.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PageSize is the process-wide number of records per page. Overridden at
// startup from configuration; tests adjust it directly.
var PageSize = 10

// Page is the result bundle a listing view renders: the records for the
// requested page plus navigation data.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Number     int   `json:"number"`
	TotalPages int   `json:"total_pages"`
	TotalCount int64 `json:"total_count"`
}

// HasPrevious reports whether a page precedes this one.
func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// PageNumber parses the "page" query parameter, defaulting to 1.
// Non-numeric values fall back to the first page.
func PageNumber(c *gin.Context) int {
	n, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate counts the query's matches and fetches the window for the
// requested page. Out-of-range page numbers fail closed to the nearest
// valid page; an empty result set yields a single empty page.
func Paginate[T any](query *gorm.DB, page int) (Page[T], error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	totalPages := int((total + int64(PageSize) - 1) / int64(PageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	var items []T
	if err := query.Offset((page - 1) * PageSize).Limit(PageSize).Find(&items).Error; err != nil {
		return Page[T]{}, err
	}

	return Page[T]{
		Items:      items,
		Number:     page,
		TotalPages: totalPages,
		TotalCount: total,
	}, nil
}
