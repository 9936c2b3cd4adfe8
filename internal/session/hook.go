// Package session is the surface view code talks to. A Hook wraps the session
// store and the demo data manager of one browser context, keeps the current
// session snapshot, and tells subscribers whenever it changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/auth"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/demodata"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/email"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/models"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/oauth"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/ownership"
)

var ErrGuestCannotSend = errors.New("guests cannot send messages")

// Event is delivered to subscribers after every state change. Reset means
// all demo data was wiped and dependent state must be reloaded.
type Event struct {
	Session models.Session
	Reset   bool
}

type Deps struct {
	Auth   *auth.Service
	Demo   *demodata.Manager
	Mailer email.Sender
	OAuth  oauth.Provider
}

type Hook struct {
	auth     *auth.Service
	demo     *demodata.Manager
	mailer   email.Sender
	provider oauth.Provider

	mu        sync.Mutex
	state     models.Session
	listeners map[int]func(Event)
	nextID    int
}

// New loads the persisted session and returns a ready hook.
func New(ctx context.Context, d Deps) *Hook {
	if d.Mailer == nil {
		d.Mailer = email.LogSender{}
	}
	if d.OAuth == nil {
		d.OAuth = oauth.MockGoogle{}
	}
	return &Hook{
		auth:      d.Auth,
		demo:      d.Demo,
		mailer:    d.Mailer,
		provider:  d.OAuth,
		state:     d.Auth.GetAuthState(ctx),
		listeners: make(map[int]func(Event)),
	}
}

func (h *Hook) State() models.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Subscribe registers fn for change events and returns its unsubscribe func.
func (h *Hook) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

// Register creates the account and sends the welcome e-mail. A failed e-mail
// is logged and does not undo the registration.
func (h *Hook) Register(ctx context.Context, in auth.RegisterInput) (*models.User, error) {
	user, err := h.auth.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	h.refresh(ctx, false)

	if err := h.mailer.SendWelcomeEmail(ctx, user.Email, user.FirstName, user.Role); err != nil {
		log.Printf("[session] welcome email to %s failed: %v", user.Email, err)
	}
	return user, nil
}

func (h *Hook) Login(ctx context.Context, addr, password string) (*models.User, error) {
	user, err := h.auth.Login(ctx, addr, password)
	if err != nil {
		return nil, err
	}
	h.refresh(ctx, false)
	return user, nil
}

func (h *Hook) LoginWithGoogle(ctx context.Context) (*models.User, error) {
	id, err := h.provider.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s sign-in: %w", h.provider.Name(), err)
	}
	user, err := h.auth.SignInExternal(ctx, id)
	if err != nil {
		return nil, err
	}
	h.refresh(ctx, false)
	return user, nil
}

func (h *Hook) SwitchAccount(ctx context.Context, accountType models.Role) (*models.User, error) {
	user, err := h.auth.SwitchAccount(ctx, accountType)
	if err != nil {
		return nil, err
	}
	h.refresh(ctx, false)
	return user, nil
}

func (h *Hook) Logout(ctx context.Context) error {
	if err := h.auth.Logout(ctx); err != nil {
		return err
	}
	h.refresh(ctx, false)
	return nil
}

// ResetDemo wipes every demo key and reloads the session from storage.
func (h *Hook) ResetDemo(ctx context.Context) error {
	if err := h.demo.ClearDemoData(ctx); err != nil {
		return err
	}
	h.refresh(ctx, true)
	return nil
}

func (h *Hook) RegisteredUsers(ctx context.Context) ([]models.User, error) {
	return h.auth.GetAllRegisteredUsers(ctx)
}

func (h *Hook) IsAuthenticated() bool { return h.State().IsAuthenticated }
func (h *Hook) IsDemo() bool { return h.State().IsDemo }
func (h *Hook) IsPatient() bool { return h.State().IsPatient() }
func (h *Hook) IsMidwife() bool { return h.State().IsMidwife() }
func (h *Hook) IsGuest() bool { return h.State().IsGuest() }
func (h *Hook) DisplayName() string { return h.State().DisplayName() }
func (h *Hook) Initials() string { return h.State().Initials() }
func (h *Hook) DemoAccountType() models.Role { return h.State().DemoAccountType() }
func (h *Hook) Demo() *demodata.Manager { return h.demo }

// IsOwnMessage resolves ownership against the role active right now.
func (h *Hook) IsOwnMessage(msg models.Message) bool {
	return ownership.IsOwnMessage(msg, h.DemoAccountType())
}

// Conversation returns a conversation's messages annotated for the active role.
func (h *Hook) Conversation(ctx context.Context, conversationID string) (demodata.Schema, []ownership.Row, error) {
	schema, msgs, err := h.demo.Messages(ctx, conversationID)
	if err != nil {
		return schema, nil, err
	}
	return schema, ownership.Annotate(msgs, h.DemoAccountType()), nil
}

// SendMessage appends text to a conversation as the active demo role.
func (h *Hook) SendMessage(ctx context.Context, conversationID, text string) (ownership.Row, error) {
	role := h.DemoAccountType()
	sender, ok := ownership.SenderID(role)
	if !ok {
		return ownership.Row{}, ErrGuestCannotSend
	}
	msg, err := h.demo.AppendMessage(ctx, models.Message{
		ConversationID: conversationID,
		SenderID:       sender,
		Text:           text,
	})
	if err != nil {
		return ownership.Row{}, err
	}
	return ownership.Row{Message: msg, Own: ownership.IsOwnMessage(msg, role)}, nil
}

func (h *Hook) refresh(ctx context.Context, reset bool) {
	state := h.auth.GetAuthState(ctx)

	h.mu.Lock()
	h.state = state
	fns := make([]func(Event), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	ev := Event{Session: state, Reset: reset}
	for _, fn := range fns {
		fn(ev)
	}
}
