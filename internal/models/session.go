package models

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DemoAccountType returns the active role, falling back to guest when no
// user or role is set.
func (s Session) DemoAccountType() Role {
	if s.User == nil || s.User.Role == "" {
		return RoleGuest
	}
	return s.User.Role
}

func (s Session) IsPatient() bool { return s.DemoAccountType() == RolePatient }
func (s Session) IsMidwife() bool { return s.DemoAccountType() == RoleMidwife }
func (s Session) IsGuest() bool   { return s.DemoAccountType() == RoleGuest }

// DisplayName is "First Last", the e-mail when no name is known, or "Guest".
func (s Session) DisplayName() string {
	if s.User == nil {
		return "Guest"
	}
	name := strings.TrimSpace(s.User.FirstName + " " + s.User.LastName)
	if name != "" {
		return name
	}
	if local, _, ok := strings.Cut(s.User.Email, "@"); ok && local != "" {
		return local
	}
	return "Guest"
}

// Initials returns up to two upper-cased letters for avatar badges.
func (s Session) Initials() string {
	if s.User == nil {
		return "G"
	}
	out := firstRune(s.User.FirstName) + firstRune(s.User.LastName)
	if out == "" {
		out = firstRune(s.DisplayName())
	}
	return cases.Upper(language.Und).String(out)
}

func firstRune(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}
