package types

// Pagination limits for history listing.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest carries the caller's pagination parameters.
// Page is 1-based; zero values are replaced with defaults by Normalize.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize clamps the request to valid bounds: page >= 1 and
// 1 <= page_size <= MaxPageSize, with DefaultPageSize for the zero value.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the SQL offset for the normalized request.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageInfo contains pagination metadata for list responses.
type PageInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// NewPageInfo derives the response metadata for a normalized request and a
// total row count.
func NewPageInfo(req PageRequest, total int) PageInfo {
	pages := 0
	if req.PageSize > 0 {
		pages = (total + req.PageSize - 1) / req.PageSize
	}
	return PageInfo{
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: total,
		TotalPages: pages,
		HasMore:    req.Page < pages,
	}
}

// ListResponse is a generic paginated response wrapper.
type ListResponse[T any] struct {
	Data     []T      `json:"data"`
	PageInfo PageInfo `json:"pagination"`
}

// ResponseMeta contains non-blocking metadata returned with API responses.
type ResponseMeta struct {
	Warnings   []string  `json:"warnings,omitempty"`
	Pagination *PageInfo `json:"pagination,omitempty"`
}
