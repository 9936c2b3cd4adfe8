package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/auth"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/demodata"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/models"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/oauth"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/session"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// recordingMailer implements email.Sender and remembers every call.
type recordingMailer struct {
	calls []string
	err   error
}

func (m *recordingMailer) SendWelcomeEmail(_ context.Context, to, _ string, _ models.Role) error {
	m.calls = append(m.calls, to)
	return m.err
}

func newTestHook(t *testing.T, mailer *recordingMailer) (*session.Hook, *storage.Adapter) {
	t.Helper()
	ctx := context.Background()
	store := storage.NewAdapter(storage.NewMemory(), "mm")
	h := session.New(ctx, session.Deps{
		Auth:   auth.NewService(store, auth.WithLatency(0), auth.WithHashCost(bcrypt.MinCost)),
		Demo:   demodata.NewManager(store),
		Mailer: mailer,
		OAuth:  oauth.MockGoogle{},
	})
	return h, store
}

func registration() auth.RegisterInput {
	return auth.RegisterInput{
		FirstName:   "Jana",
		LastName:    "Vogel",
		Email:       "jana@example.com",
		Password:    "pw-123456",
		AccountType: models.RoleMidwife,
	}
}

func TestRegisterSendsWelcomeEmailOnce(t *testing.T) {
	mailer := &recordingMailer{}
	h, _ := newTestHook(t, mailer)

	if _, err := h.Register(context.Background(), registration()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(mailer.calls) != 1 || mailer.calls[0] != "jana@example.com" {
		t.Fatalf("mailer calls = %v", mailer.calls)
	}
	if !h.IsAuthenticated() || !h.IsMidwife() || h.IsDemo() {
		t.Fatalf("unexpected state %+v", h.State())
	}
}

func TestRegisterSurvivesEmailFailure(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	h, _ := newTestHook(t, mailer)

	user, err := h.Register(context.Background(), registration())
	if err != nil {
		t.Fatalf("Register should not fail on email error: %v", err)
	}
	if h.State().User == nil || h.State().User.ID != user.ID {
		t.Fatalf("registration rolled back: %+v", h.State())
	}
}

func TestFailedRegisterSendsNoEmail(t *testing.T) {
	mailer := &recordingMailer{}
	h, _ := newTestHook(t, mailer)

	in := registration()
	in.AccountType = models.RoleGuest
	if _, err := h.Register(context.Background(), in); err == nil {
		t.Fatal("expected validation error")
	}
	if len(mailer.calls) != 0 {
		t.Fatalf("mailer called on failed registration: %v", mailer.calls)
	}
}

func TestSubscribersSeeEveryChange(t *testing.T) {
	h, _ := newTestHook(t, &recordingMailer{})
	ctx := context.Background()

	var events []session.Event
	unsubscribe := h.Subscribe(func(ev session.Event) { events = append(events, ev) })

	if _, err := h.SwitchAccount(ctx, models.RolePatient); err != nil {
		t.Fatal(err)
	}
	if _, err := h.SwitchAccount(ctx, models.RoleGuest); err != nil {
		t.Fatal(err)
	}
	if err := h.ResetDemo(ctx); err != nil {
		t.Fatal(err)
	}
	unsubscribe()
	if err := h.Logout(ctx); err != nil {
		t.Fatal(err)
	}

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if !events[0].Session.IsPatient() || !events[0].Session.IsAuthenticated {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Session.IsAuthenticated || !events[1].Session.IsDemo {
		t.Errorf("guest event = %+v", events[1])
	}
	if !events[2].Reset || events[2].Session != models.Anonymous() {
		t.Errorf("reset event = %+v", events[2])
	}
}

func TestLoginWithGoogle(t *testing.T) {
	h, _ := newTestHook(t, &recordingMailer{})
	ctx := context.Background()

	user, err := h.LoginWithGoogle(ctx)
	if err != nil {
		t.Fatalf("LoginWithGoogle: %v", err)
	}
	if user.Provider != "google" || !h.IsPatient() || h.IsDemo() {
		t.Fatalf("user %+v state %+v", user, h.State())
	}
	if h.DisplayName() != "Demo User" || h.Initials() != "DU" {
		t.Errorf("DisplayName=%q Initials=%q", h.DisplayName(), h.Initials())
	}
}

func TestOwnershipFollowsRoleSwitch(t *testing.T) {
	h, _ := newTestHook(t, &recordingMailer{})
	ctx := context.Background()
	if err := h.Demo().Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	msg := models.Message{SenderID: "midwife-maria"}

	if _, err := h.SwitchAccount(ctx, models.RoleMidwife); err != nil {
		t.Fatal(err)
	}
	if !h.IsOwnMessage(msg) {
		t.Error("midwife should own midwife-maria's message")
	}
	if _, err := h.SwitchAccount(ctx, models.RolePatient); err != nil {
		t.Fatal(err)
	}
	if h.IsOwnMessage(msg) {
		t.Error("patient should not own midwife-maria's message")
	}

	_, rows, err := h.Conversation(ctx, "conv-anna-maria")
	if err != nil {
		t.Fatalf("Conversation: %v", err)
	}
	for _, r := range rows {
		if r.Own != (r.SenderID == "patient-anna") {
			t.Errorf("row %s own=%v for patient", r.ID, r.Own)
		}
	}
}

func TestSendMessage(t *testing.T) {
	h, _ := newTestHook(t, &recordingMailer{})
	ctx := context.Background()
	if err := h.Demo().Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	if _, err := h.SendMessage(ctx, "conv-anna-maria", "hallo"); !errors.Is(err, session.ErrGuestCannotSend) {
		t.Fatalf("guest send: expected ErrGuestCannotSend, got %v", err)
	}

	if _, err := h.SwitchAccount(ctx, models.RoleMidwife); err != nil {
		t.Fatal(err)
	}
	row, err := h.SendMessage(ctx, "conv-anna-maria", "Bis Dienstag!")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if !row.Own || row.SenderID != "midwife-maria" {
		t.Fatalf("row = %+v", row)
	}
}

func TestNewLoadsPersistedSession(t *testing.T) {
	h, store := newTestHook(t, &recordingMailer{})
	ctx := context.Background()
	if _, err := h.SwitchAccount(ctx, models.RoleMidwife); err != nil {
		t.Fatal(err)
	}

	reloaded := session.New(ctx, session.Deps{
		Auth: auth.NewService(store, auth.WithLatency(0)),
		Demo: demodata.NewManager(store),
	})
	if !reloaded.IsMidwife() || !reloaded.IsDemo() {
		t.Fatalf("reloaded state = %+v", reloaded.State())
	}
}
