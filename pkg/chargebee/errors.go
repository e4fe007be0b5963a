package chargebee

import (
	"errors"
	"fmt"
)

var (
	ErrMissingSite   = errors.New("chargebee site is required")
	ErrMissingAPIKey = errors.New("chargebee API key is required")

	ErrRemoteCall = errors.New("chargebee API call failed")
	ErrNotFound   = errors.New("chargebee resource not found")
	ErrTimeout    = errors.New("chargebee request timed out")

	ErrNoCheckoutURL = errors.New("no checkout URL returned from chargebee")
)

// APIError is the provider's own error response, preserved verbatim so
// callers can inspect the original code and message (card declines, invalid
// plans, invalid coupons all arrive through this path).
type APIError struct {
	HTTPStatus int    `json:"http_status_code"`
	Code       string `json:"api_error_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chargebee: %s (%s, http %d)", e.Message, e.Code, e.HTTPStatus)
}

// IsNotFound reports whether the error represents a missing remote resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTimeout reports whether the error was caused by the client-side deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
