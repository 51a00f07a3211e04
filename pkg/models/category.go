package models

import (
	"fmt"
	"strings"
)

// Category selects which tasks a query keeps after the search filter.
type Category string

const (
	CategoryAll       Category = "all"
	CategoryPending   Category = "pending"
	CategoryCompleted Category = "completed"
	CategoryOverdue   Category = "overdue"
)

// Categories lists the filter categories in display order.
var Categories = []Category{CategoryAll, CategoryPending, CategoryCompleted, CategoryOverdue}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryAll, CategoryPending, CategoryCompleted, CategoryOverdue:
		return true
	}
	return false
}

// Label returns the capitalised display name, e.g. "Overdue".
func (c Category) Label() string {
	s := string(c)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseCategory converts user input into a Category. Matching is
// case-insensitive and an empty string selects CategoryAll. Anything else
// outside the enumeration is rejected with ErrUnknownCategory.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryAll, nil
	}
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w %q: must be one of all, pending, completed, overdue", ErrUnknownCategory, s)
	}
	return c, nil
}
