package email

import (
	"context"
	"fmt"
	"log"

	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/models"
)

// Sender delivers the welcome e-mail after a registration.
type Sender interface {
	SendWelcomeEmail(ctx context.Context, to, firstName string, role models.Role) error
}

// LogSender writes the message to the process log instead of sending it.
type LogSender struct{}

func (LogSender) SendWelcomeEmail(_ context.Context, to, firstName string, role models.Role) error {
	if to == "" {
		return fmt.Errorf("welcome email: empty recipient")
	}
	log.Printf("[email] to=%s subject=%q", to, WelcomeSubject(firstName, role))
	return nil
}

// WelcomeSubject is the subject line for a new account of role.
func WelcomeSubject(firstName string, role models.Role) string {
	switch role {
	case models.RoleMidwife:
		return fmt.Sprintf("Willkommen im Hebammen-Netzwerk, %s!", firstName)
	default:
		return fmt.Sprintf("Willkommen, %s! Finde deine Hebamme", firstName)
	}
}
