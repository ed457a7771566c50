package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage bounds Offset so that (page-1)*limit cannot overflow.
	MaxPage = 100000
)

// Params is a normalized page request. Offset is derived from Page and Limit.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// New normalizes page and limit. Non-positive values fall back to the
// defaults, limit is capped at MaxLimit and page at MaxPage.
func New(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// Parse reads page and limit from the query string. Values that are missing
// or not integers count as unset.
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return New(page, limit)
}
