package models

import "errors"

// Error kinds shared by the stores, the checkout flow and the HTTP layer.
// Call sites wrap them with detail; callers classify with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrEmptyCart    = errors.New("cart is empty")
	ErrPersistence  = errors.New("persistence failure")
	// ErrUnavailable means an upstream service could not be reached or its breaker is open.
	ErrUnavailable = errors.New("upstream unavailable")
)

// Machine readable error codes used in HTTP error bodies
const (
	CodeInvalidInput = "invalid_input"
	CodeNotFound     = "not_found"
	CodeEmptyCart    = "empty_cart"
	CodePersistence  = "persistence_failure"
	CodeUnavailable  = "unavailable"
	CodeInternal     = "internal_error"
)

var codeKinds = []struct {
	kind error
	code string
}{
	{ErrInvalidInput, CodeInvalidInput},
	{ErrNotFound, CodeNotFound},
	{ErrEmptyCart, CodeEmptyCart},
	{ErrPersistence, CodePersistence},
	{ErrUnavailable, CodeUnavailable},
}

// ErrorCode returns the code for the kind wrapped by err
func ErrorCode(err error) string {
	for _, ck := range codeKinds {
		if errors.Is(err, ck.kind) {
			return ck.code
		}
	}
	return CodeInternal
}

// KindForCode is the inverse of ErrorCode; unknown codes yield nil
func KindForCode(code string) error {
	for _, ck := range codeKinds {
		if ck.code == code {
			return ck.kind
		}
	}
	return nil
}

// IsClientError reports whether err was caused by the request rather than the service
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmptyCart)
}
