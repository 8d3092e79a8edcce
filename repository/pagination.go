package repository

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is one page of a larger result set. Page numbers start at 1.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
	HasNext  bool  `json:"hasNext"`
	HasPrev  bool  `json:"hasPrev"`
}

// NormalizePage clamps page and size and returns the matching offset.
func NormalizePage(page, pageSize int) (int, int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}

func NewPage[T any](items []T, total int64, page, pageSize int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		HasPrev:  page > 1,
		HasNext:  int64(page*pageSize) < total,
	}
}
