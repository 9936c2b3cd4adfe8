package auth

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed registration or switch input.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed (%s): %s", strings.Join(e.Fields, ", "), e.Reason)
}

// AuthenticationError reports credentials that do not match a registered user.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Reason
}

var errInvalidCredentials = &AuthenticationError{Reason: "invalid email or password"}
