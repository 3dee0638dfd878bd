package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidDay   = errors.New("invalid weekday")
	ErrDuplicateDay = errors.New("duplicate weekday in schedule")
)

// FormatError reports an editorial value that does not have the expected shape.
// It must block persistence of the owning Location.
type FormatError struct {
	Field string
	Code  string
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s (%q)", e.Field, e.Code, e.Value)
}
