package jurisdiction

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCatalog is returned for malformed or inconsistent catalog files.
var ErrInvalidCatalog = errors.New("invalid jurisdiction catalog")

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets callers match ErrInvalidCatalog.
func (e ValidationError) Unwrap() error {
	return ErrInvalidCatalog
}

// Validate checks every rule and the uniqueness of region IDs.
func Validate(rules []Rule) error {
	if len(rules) == 0 {
		return ValidationError{"regions", "at least one region required"}
	}

	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		field := fmt.Sprintf("regions[%d]", i)

		id := NormalizeID(r.ID)
		if id == "" {
			return ValidationError{field + ".id", "required"}
		}
		if seen[id] {
			return ValidationError{field + ".id", fmt.Sprintf("duplicate region %q", id)}
		}
		seen[id] = true

		if math.IsNaN(r.Rate) || r.Rate < 0 || r.Rate > 1 {
			return ValidationError{field + ".rate", "must be in [0, 1]"}
		}
		if math.IsNaN(r.CapBase) || r.CapBase < 0 {
			return ValidationError{field + ".cap_base", "must be >= 0"}
		}
	}

	return nil
}
