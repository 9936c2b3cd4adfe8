package models

import "time"

// Role is the side of the service a session acts as.
type Role string

const (
	RolePatient Role = "patient"
	RoleMidwife Role = "midwife"
	RoleGuest   Role = "guest"
)

// Valid reports whether r is one of the three demo roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleMidwife, RoleGuest:
		return true
	}
	return false
}

// Registrable reports whether an account of this role can be created.
func (r Role) Registrable() bool {
	return r == RolePatient || r == RoleMidwife
}

type User struct {
	ID        string         `json:"id" yaml:"id"`
	FirstName string         `json:"firstName" yaml:"firstName"`
	LastName  string         `json:"lastName" yaml:"lastName"`
	Email     string         `json:"email" yaml:"email"`
	Role      Role           `json:"role" yaml:"role"`
	Provider  string         `json:"provider,omitempty" yaml:"provider"`
	CreatedAt time.Time      `json:"createdAt" yaml:"createdAt"`
	Details   map[string]any `json:"details,omitempty" yaml:"details"`
}

// Session is the single identity record of one browser context.
type Session struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"isAuthenticated"`
	IsDemo          bool  `json:"isDemo"`
}

// Anonymous is the default session used whenever nothing usable is stored.
func Anonymous() Session {
	return Session{}
}
