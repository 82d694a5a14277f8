package model

import (
	"time"

	"github.com/fairyhunter13/coupon-admin/pkg/couponapi"
)

// Coupon is a coupon row as stored in the database.
type Coupon struct {
	ID        string
	Title     string
	Code      string
	Percent   int
	DueDate   int64 // unix seconds
	IsEnabled int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCoupon builds a row from validated create params.
func NewCoupon(id string, p *couponapi.CreateCouponParams) *Coupon {
	c := &Coupon{ID: id}
	c.Apply(p)
	return c
}

// Apply overwrites every editable field with the values in p.
// p must have passed validation so its pointers are non-nil.
func (c *Coupon) Apply(p *couponapi.CreateCouponParams) {
	c.Title = p.Title
	c.Code = p.Code
	c.Percent = *p.Percent
	c.DueDate = *p.DueDate
	c.IsEnabled = *p.IsEnabled
}

// ToAPI converts the row to its wire representation.
func (c *Coupon) ToAPI() couponapi.Coupon {
	return couponapi.Coupon{
		ID:        c.ID,
		Title:     c.Title,
		Code:      c.Code,
		Percent:   c.Percent,
		DueDate:   c.DueDate,
		IsEnabled: c.IsEnabled,
	}
}

// CouponPayload is the request body of the create and edit endpoints.
type CouponPayload struct {
	Data couponapi.CreateCouponParams `json:"data"`
}
