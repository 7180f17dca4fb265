// Package dataio moves catalog and user data between the database and
// CSV/JSON files. It backs the importdb, exportdb, load_ingredients and
// load_tags commands.
package dataio

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Mode decides what happens to a table that already holds rows.
type Mode string

const (
	// Replace deletes the existing rows before loading.
	Replace Mode = "replace"
	// Append inserts rows that do not collide with existing ones.
	Append Mode = "append"
	// Skip leaves a non-empty table untouched.
	Skip Mode = "skip"
)

var ErrUnknownMode = errors.New("unknown mode")

// ParseMode accepts replace, append or skip. An empty string is Skip.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Skip, nil
	case Replace, Append, Skip:
		return m, nil
	}
	return "", fmt.Errorf("%w %q (want replace, append or skip)", ErrUnknownMode, s)
}

// Report summarizes the load of one table.
type Report struct {
	Table string
	// Loaded counts inserted rows. Rows that collided with existing ones
	// in Append mode are not counted.
	Loaded int
	// Invalid counts rows that failed to parse, validate or insert.
	Invalid int
	// Skipped is set when the table was left untouched.
	Skipped bool
}

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(validateSubscription, subscriptionRow{})
	return v
}
