package service

import "errors"

var (
	// ErrCouponExists is returned when another coupon already uses the code
	ErrCouponExists = errors.New("coupon code already exists")

	// ErrCouponNotFound is returned when no coupon has the given id
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrInvalidRequest is returned when request data is nil or incomplete
	ErrInvalidRequest = errors.New("invalid request")
)
