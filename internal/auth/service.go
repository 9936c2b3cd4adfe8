package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/models"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/storage"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
)

// DefaultLatency mimics a remote identity backend in demo mode.
const DefaultLatency = 800 * time.Millisecond

type RegisterInput struct {
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	AccountType models.Role `json:"accountType"`

	// Details is stored as JSON. Numbers come back as float64, both in the
	// returned user and in later reads of the session.
	Details map[string]any `json:"details,omitempty"`
}

// ExternalIdentity is what a third-party sign-in hands back.
type ExternalIdentity struct {
	Provider  string
	Email     string
	FirstName string
	LastName  string
	Role      models.Role
	Details   map[string]any
}

type registeredUser struct {
	models.User
	PasswordHash string `json:"passwordHash,omitempty"`
}

// Service owns the session record of one browser context. Every mutation is
// written back to storage before it returns.
type Service struct {
	store    *storage.Adapter
	latency  time.Duration
	hashCost int
	now      func() time.Time
}

type Option func(*Service)

// WithLatency sets the artificial delay of Register, Login and SignInExternal.
func WithLatency(d time.Duration) Option {
	return func(s *Service) { s.latency = d }
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store *storage.Adapter, opts ...Option) *Service {
	s := &Service{
		store:    store,
		latency:  DefaultLatency,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAuthState loads the persisted session. Missing or unreadable data yields
// the anonymous session; it never fails.
func (s *Service) GetAuthState(ctx context.Context) models.Session {
	sess := models.Anonymous()

	var u models.User
	found, err := s.store.GetJSON(ctx, s.store.SessionKey(storage.KeyUser), &u)
	if err != nil {
		log.Printf("[auth] ignoring stored user: %v", err)
		found = false
	}
	if found && u.ID != "" {
		sess.User = &u
		sess.IsAuthenticated = true
	}

	demo, _, err := s.store.Get(ctx, s.store.SessionKey(storage.KeyDemo))
	if err != nil {
		log.Printf("[auth] ignoring stored demo flag: %v", err)
	}
	sess.IsDemo = demo == "true"

	return sess
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}
	s.roundTrip()

	registry, err := s.loadRegistry(ctx)
	if err != nil {
		return nil, err
	}
	if findByEmail(registry, in.Email) >= 0 {
		return nil, &ValidationError{Fields: []string{"email"}, Reason: "email already registered"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	details, err := normalizeDetails(in.Details)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"details"}, Reason: err.Error()}
	}

	user := models.User{
		ID:        utils.GenerateUUID(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Role:      in.AccountType,
		CreatedAt: s.now().UTC(),
		Details:   details,
	}

	registry = append(registry, registeredUser{User: user, PasswordHash: string(hashed)})
	if err := s.store.SetJSON(ctx, s.store.SessionKey(storage.KeyRegistered), registry); err != nil {
		return nil, fmt.Errorf("save registered users: %w", err)
	}
	if err := s.persist(ctx, signedIn(&user, false)); err != nil {
		return nil, err
	}

	log.Printf("[auth] registered %s as %s", user.ID, user.Role)
	return &user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	s.roundTrip()

	registry, err := s.loadRegistry(ctx)
	if err != nil {
		return nil, err
	}
	i := findByEmail(registry, email)
	if i < 0 || registry[i].PasswordHash == "" {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(registry[i].PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	user := registry[i].User
	if err := s.persist(ctx, signedIn(&user, false)); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignInExternal signs in the registered user with the identity's e-mail, or
// registers one without a password.
func (s *Service) SignInExternal(ctx context.Context, id ExternalIdentity) (*models.User, error) {
	var missing []string
	if strings.TrimSpace(id.Email) == "" {
		missing = append(missing, "email")
	}
	if !id.Role.Registrable() {
		missing = append(missing, "accountType")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing, Reason: "incomplete identity from " + id.Provider}
	}
	s.roundTrip()

	registry, err := s.loadRegistry(ctx)
	if err != nil {
		return nil, err
	}

	var user models.User
	if i := findByEmail(registry, id.Email); i >= 0 {
		user = registry[i].User
	} else {
		details, err := normalizeDetails(id.Details)
		if err != nil {
			return nil, &ValidationError{Fields: []string{"details"}, Reason: err.Error()}
		}
		user = models.User{
			ID:        utils.GenerateUUID(),
			FirstName: id.FirstName,
			LastName:  id.LastName,
			Email:     id.Email,
			Role:      id.Role,
			Provider:  id.Provider,
			CreatedAt: s.now().UTC(),
			Details:   details,
		}
		registry = append(registry, registeredUser{User: user})
		if err := s.store.SetJSON(ctx, s.store.SessionKey(storage.KeyRegistered), registry); err != nil {
			return nil, fmt.Errorf("save registered users: %w", err)
		}
		log.Printf("[auth] registered %s via %s", user.ID, id.Provider)
	}

	if err := s.persist(ctx, signedIn(&user, false)); err != nil {
		return nil, err
	}
	return &user, nil
}

// SwitchAccount replaces the session with a canned demo identity. Guest
// leaves the session without a user.
func (s *Service) SwitchAccount(ctx context.Context, accountType models.Role) (*models.User, error) {
	if !accountType.Valid() {
		return nil, &ValidationError{
			Fields: []string{"accountType"},
			Reason: fmt.Sprintf("unknown demo account %q", accountType),
		}
	}

	user, _ := DemoProfile(accountType)
	if err := s.persist(ctx, signedIn(user, true)); err != nil {
		return nil, err
	}
	log.Printf("[auth] switched demo account to %s", accountType)
	return user, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.persist(ctx, models.Anonymous())
}

// GetAllRegisteredUsers lists every account created through registration,
// without password hashes.
func (s *Service) GetAllRegisteredUsers(ctx context.Context) ([]models.User, error) {
	registry, err := s.loadRegistry(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, len(registry))
	for i, r := range registry {
		users[i] = r.User
	}
	return users, nil
}

func (s *Service) persist(ctx context.Context, sess models.Session) error {
	userKey := s.store.SessionKey(storage.KeyUser)
	demoKey := s.store.SessionKey(storage.KeyDemo)

	if sess.User != nil {
		if err := s.store.SetJSON(ctx, userKey, sess.User); err != nil {
			return fmt.Errorf("save session user: %w", err)
		}
	} else if err := s.store.Remove(ctx, userKey); err != nil {
		return fmt.Errorf("clear session user: %w", err)
	}

	if sess.IsDemo {
		if err := s.store.Set(ctx, demoKey, "true"); err != nil {
			return fmt.Errorf("save demo flag: %w", err)
		}
	} else if err := s.store.Remove(ctx, demoKey); err != nil {
		return fmt.Errorf("clear demo flag: %w", err)
	}
	return nil
}

// loadRegistry treats an unreadable registry as empty; backend failures are returned.
func (s *Service) loadRegistry(ctx context.Context) ([]registeredUser, error) {
	var registry []registeredUser
	_, err := s.store.GetJSON(ctx, s.store.SessionKey(storage.KeyRegistered), &registry)
	var re *storage.ReadError
	if errors.As(err, &re) {
		log.Printf("[auth] ignoring registered users: %v", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load registered users: %w", err)
	}
	return registry, nil
}

// roundTrip stands in for the network hop of a real identity backend. It
// ignores ctx: once started, a request always completes.
func (s *Service) roundTrip() {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
}

func signedIn(user *models.User, demo bool) models.Session {
	return models.Session{User: user, IsAuthenticated: user != nil, IsDemo: demo}
}

func validateRegistration(in RegisterInput) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"email", in.Email},
		{"password", in.Password},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Reason: "required"}
	}
	if !in.AccountType.Registrable() {
		return &ValidationError{
			Fields: []string{"accountType"},
			Reason: fmt.Sprintf("must be %q or %q, got %q", models.RolePatient, models.RoleMidwife, in.AccountType),
		}
	}
	return nil
}

// normalizeDetails gives details the shape they have after a storage read.
func normalizeDetails(details map[string]any) (map[string]any, error) {
	if details == nil {
		return nil, nil
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode details: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode details: %w", err)
	}
	return out, nil
}

func findByEmail(registry []registeredUser, email string) int {
	want := foldEmail(email)
	for i, r := range registry {
		if foldEmail(r.Email) == want {
			return i
		}
	}
	return -1
}

func foldEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}
