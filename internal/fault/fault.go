// Package fault defines the error taxonomy shared by every fulfillment
// component. Handlers and services classify failures by Kind instead of
// matching on message text, and the HTTP layer maps Kinds to status codes.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a business-rule failure.
type Kind int

const (
	// KindValidation covers malformed or missing input: address, phone,
	// status value, quantity or size out of range.
	KindValidation Kind = iota
	// KindNotFound covers a missing user, product, cart line, or order.
	KindNotFound
	// KindInsufficientStock means a requested quantity exceeds available
	// stock, either at add-to-cart or at checkout.
	KindInsufficientStock
	// KindEmptyCart means checkout was attempted with no cart lines.
	KindEmptyCart
	// KindConflict means the order-number retry budget was exhausted.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindEmptyCart:
		return "empty_cart"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a typed business failure with a human-readable message naming
// the offending entity.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Validation builds a KindValidation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStock builds a KindInsufficientStock error.
func InsufficientStock(format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientStock, Message: fmt.Sprintf(format, args...)}
}

// EmptyCart builds a KindEmptyCart error.
func EmptyCart(format string, args ...any) *Error {
	return &Error{Kind: KindEmptyCart, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a KindConflict error.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// KindOf unwraps err and returns the Kind of the first fault.Error found.
// The second return value is false when err carries no fault.Error.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is (or wraps) a fault.Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
