package biz

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination describes one page of a larger result set.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	HasNextPage bool
	HasPrevPage bool
	Limit       int
}

// normalizePage applies defaults to unset (zero) page and limit values and
// rejects values outside the accepted range.
func normalizePage(page, limit int) (int, int, error) {
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if page < 1 {
		return 0, 0, InvalidArgument("page must be a positive integer")
	}
	if limit < 1 || limit > MaxLimit {
		return 0, 0, InvalidArgument("limit must be between 1 and %d", MaxLimit)
	}
	return page, limit, nil
}

func pageOffset(page, limit int) int {
	return (page - 1) * limit
}

// NewPagination computes page metadata; TotalPages is ceil(total / limit).
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
		Limit:       limit,
	}
}
