package store

import (
	"regexp"
	"strings"
)

// QuoteIdentifier quotes a MySQL identifier with backticks, doubling any
// backtick inside it.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier reports whether name contains only alphanumeric
// characters and underscores.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// QuoteIdentifierSafe quotes name after validating it.
func QuoteIdentifierSafe(name string) (string, error) {
	if !IsValidIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return QuoteIdentifier(name), nil
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}
