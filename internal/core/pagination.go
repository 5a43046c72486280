package core

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a normalized page window. Build it with NewPageRequest.
type PageRequest struct {
	Page     int
	PageSize int
}

// Page is the envelope returned by every paged listing.
type Page[T any] struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
	Items      []T `json:"items"`
}

// NewPageRequest clamps the requested window: page < 1 becomes 1,
// pageSize < 1 becomes DefaultPageSize and pageSize > MaxPageSize becomes MaxPageSize.
func NewPageRequest(page, pageSize int) PageRequest {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize < 1:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return PageRequest{Page: page, PageSize: pageSize}
}

// Offset is the number of items skipped before the window.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p PageRequest) Limit() int {
	return p.PageSize
}

// TotalPages returns ceil(totalItems / pageSize), 0 for an empty set.
func TotalPages(totalItems, pageSize int) int {
	if totalItems <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// NewPage wraps one window of items in the paged envelope.
func NewPage[T any](req PageRequest, totalItems int, items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: totalItems,
		TotalPages: TotalPages(totalItems, req.PageSize),
		Items:      items,
	}
}

// Window returns the slice of all that falls inside req. all must already be
// in its listing order.
func Window[T any](all []T, req PageRequest) []T {
	return Slice(all, req.Offset(), req.Limit())
}

// Slice copies up to limit items of all starting at offset. Stores that take
// a raw offset and limit use it so every listing windows the same way.
func Slice[T any](all []T, offset, limit int) []T {
	if offset < 0 || limit < 1 || offset >= len(all) {
		return []T{}
	}
	end := offset + min(limit, len(all)-offset)
	out := make([]T, end-offset)
	copy(out, all[offset:end])
	return out
}
