package couponapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidParams is returned before any request is sent when the params
// fail local validation.
var ErrInvalidParams = errors.New("invalid coupon params")

// APIError is returned when the API answers with success:false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coupon api: %s (status %d)", e.Message, e.StatusCode)
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether the API said the coupon does not exist.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsConflict reports whether the API rejected a duplicate coupon code.
func IsConflict(err error) bool {
	return statusOf(err) == http.StatusConflict
}
