package market

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("symbol not found")
	ErrEmptySymbol = errors.New("symbol is empty")
)

// NotFoundError is returned when every exchange variant was rejected or empty.
type NotFoundError struct {
	Kind     Kind
	Symbol   string
	Attempts []Attempt
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s for %s not found in US, NSE, or BSE markets", e.Kind, e.Symbol)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// TransportError wraps a request that never produced a classifiable payload.
type TransportError struct {
	Variant    string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider request for %s: status %d", e.Variant, e.StatusCode)
	}
	return fmt.Sprintf("provider request for %s: %v", e.Variant, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
