// Package oauth stands in for the Google sign-in handshake. No network call
// is made; the provider always answers with the same account.
package oauth

import (
	"context"
	"time"

	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/auth"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/models"
)

type Provider interface {
	Name() string
	Authenticate(ctx context.Context) (auth.ExternalIdentity, error)
}

// MockGoogle returns a fixed Google account after Delay.
type MockGoogle struct {
	Delay time.Duration
}

func (MockGoogle) Name() string { return "google" }

func (g MockGoogle) Authenticate(ctx context.Context) (auth.ExternalIdentity, error) {
	if g.Delay > 0 {
		time.Sleep(g.Delay)
	}
	return auth.ExternalIdentity{
		Provider:  g.Name(),
		Email:     "demo.user@gmail.com",
		FirstName: "Demo",
		LastName:  "User",
		Role:      models.RolePatient,
		Details:   map[string]any{"picture": "https://lh3.googleusercontent.com/a/default-user"},
	}, nil
}
