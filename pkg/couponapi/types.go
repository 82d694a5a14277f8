// Package couponapi holds the wire contract of the coupon admin API and a
// client for it.
package couponapi

import "time"

// Coupon is a persisted discount coupon as returned by the listing endpoint.
type Coupon struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Code      string `json:"code"`
	Percent   int    `json:"percent"`
	DueDate   int64  `json:"due_date"`   // unix seconds
	IsEnabled int    `json:"is_enabled"` // 0 = disabled, 1 = enabled
}

// Enabled reports the is_enabled flag as a bool.
func (c Coupon) Enabled() bool {
	return c.IsEnabled == 1
}

// DueTime returns due_date as a time.Time.
func (c Coupon) DueTime() time.Time {
	return time.Unix(c.DueDate, 0)
}

// Expired reports whether the coupon is past its due date at now.
func (c Coupon) Expired(now time.Time) bool {
	return now.After(c.DueTime())
}

// EnabledFlag converts a bool to the integer flag used on the wire.
func EnabledFlag(enabled bool) int {
	if enabled {
		return 1
	}
	return 0
}

// CreateCouponParams is the body of a create request, and the replacement
// payload of an edit. Numeric fields are pointers so a missing key is
// distinguishable from zero and fails validation.
type CreateCouponParams struct {
	Title     string `json:"title" validate:"required,notblank,max=255"`
	Code      string `json:"code" validate:"required,notblank,max=64"`
	Percent   *int   `json:"percent" validate:"required,gte=1,lte=100"`
	DueDate   *int64 `json:"due_date" validate:"required,gt=0"`
	IsEnabled *int   `json:"is_enabled" validate:"required,flag"`
}

// NewCreateCouponParams builds a complete CreateCouponParams.
func NewCreateCouponParams(title, code string, percent int, dueDate time.Time, enabled bool) CreateCouponParams {
	due := dueDate.Unix()
	flag := EnabledFlag(enabled)
	return CreateCouponParams{
		Title:     title,
		Code:      code,
		Percent:   &percent,
		DueDate:   &due,
		IsEnabled: &flag,
	}
}

// EditCouponParams pairs a coupon id with a full replacement payload.
type EditCouponParams struct {
	ID   string             `json:"id" validate:"required,notblank"`
	Data CreateCouponParams `json:"data"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	TotalPages  int    `json:"total_pages"`
	CurrentPage int    `json:"current_page"`
	HasPre      bool   `json:"has_pre"`
	HasNext     bool   `json:"has_next"`
	Category    string `json:"category"`
}

// NewPagination computes the page cursor for totalItems split into pages of
// pageSize. The requested page is clamped into range and there is always at
// least one page.
func NewPagination(totalItems, pageSize, requestedPage int, category string) Pagination {
	if pageSize < 1 {
		pageSize = 1
	}
	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	current := requestedPage
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	return Pagination{
		TotalPages:  totalPages,
		CurrentPage: current,
		HasPre:      current > 1,
		HasNext:     current < totalPages,
		Category:    category,
	}
}

// Offset returns the row offset of the current page for pages of pageSize.
func (p Pagination) Offset(pageSize int) int {
	if p.CurrentPage < 1 {
		return 0
	}
	return (p.CurrentPage - 1) * pageSize
}

// GetCouponsResponse is the listing envelope.
type GetCouponsResponse struct {
	Success    bool       `json:"success"`
	Coupons    []Coupon   `json:"coupons"`
	Pagination Pagination `json:"pagination"`
	Messages   []any      `json:"messages"`
}

// MessageResponse is the acknowledgment envelope of every mutating call.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type (
	CreateCouponResponse = MessageResponse
	EditCouponResponse   = MessageResponse
	DeleteCouponResponse = MessageResponse
)
