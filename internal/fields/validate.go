package fields

import (
	"fmt"
	"strings"
)

// Validation is the outcome of checking a field set against a catalog.
type Validation struct {
	Valid   bool
	Invalid []string
}

// Err returns an *InvalidFieldsError when the validation failed.
func (v Validation) Err() error {
	if v.Valid {
		return nil
	}
	return &InvalidFieldsError{Invalid: v.Invalid}
}

// InvalidFieldsError carries the rejected codes in input order.
type InvalidFieldsError struct {
	Invalid []string
}

func (e *InvalidFieldsError) Error() string {
	return fmt.Sprintf("unsupported fields: %s", strings.Join(e.Invalid, ", "))
}

// Validate checks every code against the catalog. Invalid keeps the input
// order and repeats; an empty input is valid.
func (c *Catalog) Validate(codes []string) Validation {
	var invalid []string
	for _, code := range codes {
		if !c.Contains(code) {
			invalid = append(invalid, code)
		}
	}
	return Validation{Valid: len(invalid) == 0, Invalid: invalid}
}

// Split turns a comma-separated field string into a field set. Tokens are not
// trimmed and repeats are kept.
func Split(csv string) []string {
	return strings.Split(csv, ",")
}
