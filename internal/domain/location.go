package domain

import (
	"errors"
	"strings"
	"time"
)

// Location is a physical bakery site.
type Location struct {
	ID           int64     `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Introduction string    `json:"introduction,omitempty"`
	Address      string    `json:"address"`
	Coords       Coords    `json:"coords"`
	Hours        Schedule  `json:"hours_of_operation"`
	Live         bool      `json:"live"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (l Location) Validate() error {
	switch {
	case strings.TrimSpace(l.Slug) == "":
		return &FormatError{Field: "slug", Code: "required"}
	case strings.TrimSpace(l.Title) == "":
		return &FormatError{Field: "title", Code: "required"}
	case strings.TrimSpace(l.Address) == "":
		return &FormatError{Field: "address", Code: "required"}
	}
	if err := l.Coords.Validate(); err != nil {
		return err
	}
	return l.Hours.Validate()
}

// IsInvalid reports whether err came from editorial validation rather than I/O.
func IsInvalid(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe) || errors.Is(err, ErrInvalidDay) || errors.Is(err, ErrDuplicateDay)
}

// LocationStatus is the open/closed answer for one location at one instant.
type LocationStatus struct {
	Slug  string          `json:"slug"`
	Open  bool            `json:"open"`
	At    time.Time       `json:"at"`
	Today *OperatingHours `json:"today,omitempty"`
}
