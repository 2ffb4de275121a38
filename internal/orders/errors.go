package orders

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	default:
		return "internal"
	}
}

// Error is the single error shape crossing the orchestrator boundary.
// Callers match on Kind and Code instead of concrete error types; no store
// or catalog error leaks through directly.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

const (
	CodeInvalidQuantity     = "invalid_quantity"
	CodeItemNotFound        = "item_not_found"
	CodeItemWrongRestaurant = "item_wrong_restaurant"
	CodeItemUnavailable     = "item_unavailable"
	CodeOrderNotFound       = "order_not_found"
	CodeRestaurantImmutable = "restaurant_immutable"
	CodeCredentialMissing   = "credential_missing"
	CodeCredentialRejected  = "credential_rejected"
	CodeInternal            = "internal"
)

func Validation(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

func Auth(code, msg string) *Error {
	return &Error{Kind: KindAuth, Code: code, Message: msg}
}

func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: msg, cause: cause}
}

// AsError pulls the tagged error out of an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func IsValidation(err error) bool {
	e, ok := AsError(err)
	return ok && e.Kind == KindValidation
}

func IsAuth(err error) bool {
	e, ok := AsError(err)
	return ok && e.Kind == KindAuth
}
