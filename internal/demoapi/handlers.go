package demoapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/auth"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/demodata"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/models"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/ownership"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/session"
	"github.com/go-chi/chi/v5"
)

type SessionResponse struct {
	User            *models.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	IsDemo          bool         `json:"isDemo"`
	DemoAccountType models.Role  `json:"demoAccountType"`
	DisplayName     string       `json:"displayName"`
	Initials        string       `json:"initials"`
}

type ConversationsResponse struct {
	Schema        demodata.Schema       `json:"schema"`
	Conversations []models.Conversation `json:"conversations"`
}

type MessagesResponse struct {
	Schema   demodata.Schema `json:"schema"`
	Messages []ownership.Row `json:"messages"`
}

func newSessionResponse(s models.Session) SessionResponse {
	return SessionResponse{
		User:            s.User,
		IsAuthenticated: s.IsAuthenticated,
		IsDemo:          s.IsDemo,
		DemoAccountType: s.DemoAccountType(),
		DisplayName:     s.DisplayName(),
		Initials:        s.Initials(),
	}
}

func (s *Server) SessionHandler(w http.ResponseWriter, r *http.Request) {
	h := s.hookFor(r)
	writeJSON(w, http.StatusOK, newSessionResponse(h.State()))
}

func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}

	h := s.hookFor(r)
	if _, err := h.Register(r.Context(), in); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionResponse(h.State()))
}

func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid Data", http.StatusBadRequest)
		return
	}

	h := s.hookFor(r)
	if _, err := h.Login(r.Context(), in.Email, in.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(h.State()))
}

func (s *Server) GoogleHandler(w http.ResponseWriter, r *http.Request) {
	h := s.hookFor(r)
	if _, err := h.LoginWithGoogle(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(h.State()))
}

func (s *Server) SwitchHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		AccountType models.Role `json:"accountType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid Data", http.StatusBadRequest)
		return
	}

	h := s.hookFor(r)
	if _, err := h.SwitchAccount(r.Context(), in.AccountType); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(h.State()))
}

func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h := s.hookFor(r)
	if err := h.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(h.State()))
}

func (s *Server) UsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := s.hookFor(r).RegisteredUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) ResetHandler(w http.ResponseWriter, r *http.Request) {
	h := s.hookFor(r)
	if err := h.ResetDemo(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(h.State()))
}

func (s *Server) ConversationsHandler(w http.ResponseWriter, r *http.Request) {
	demo := s.hookFor(r).Demo()
	if _, err := demo.EnsureSeeded(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	schema, convs, err := demo.Conversations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if convs == nil {
		convs = []models.Conversation{}
	}
	writeJSON(w, http.StatusOK, ConversationsResponse{Schema: schema, Conversations: convs})
}

func (s *Server) MessagesHandler(w http.ResponseWriter, r *http.Request) {
	h := s.hookFor(r)
	if _, err := h.Demo().EnsureSeeded(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	schema, rows, err := h.Conversation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessagesResponse{Schema: schema, Messages: rows})
}

func (s *Server) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid Data", http.StatusBadRequest)
		return
	}

	row, err := s.hookFor(r).SendMessage(r.Context(), chi.URLParam(r, "id"), in.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

func (s *Server) AppointmentsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.hookFor(r).Demo().Appointments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []models.Appointment{}
	}
	writeJSON(w, http.StatusOK, list)
}

// AddAppointmentHandler books on behalf of the active role; the caller's own
// side of the appointment is always taken from the session.
func (s *Server) AddAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	var a models.Appointment
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		http.Error(w, "Invalid Data", http.StatusBadRequest)
		return
	}

	h := s.hookFor(r)
	state := h.State()
	switch {
	case state.IsPatient():
		a.PatientID = state.User.ID
	case state.IsMidwife():
		a.MidwifeID = state.User.ID
	default:
		http.Error(w, "Sign in to book appointments", http.StatusForbidden)
		return
	}

	saved, err := h.Demo().AddAppointment(r.Context(), a)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) SymptomsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.hookFor(r).Demo().Symptoms(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []models.SymptomEntry{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) LogSymptomHandler(w http.ResponseWriter, r *http.Request) {
	var e models.SymptomEntry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		http.Error(w, "Invalid Data", http.StatusBadRequest)
		return
	}

	h := s.hookFor(r)
	state := h.State()
	if !state.IsPatient() {
		http.Error(w, "Only patients keep a symptom diary", http.StatusForbidden)
		return
	}
	e.PatientID = state.User.ID

	saved, err := h.Demo().LogSymptom(r.Context(), e)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[demoapi] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var ve *auth.ValidationError
	var ae *auth.AuthenticationError
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusBadRequest)
	case errors.As(err, &ae):
		http.Error(w, "Invalid Credentials", http.StatusUnauthorized)
	case errors.Is(err, demodata.ErrUnknownConversation):
		http.Error(w, "Conversation not found", http.StatusNotFound)
	case errors.Is(err, demodata.ErrEmptyMessage), errors.Is(err, demodata.ErrInvalidSeverity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, session.ErrGuestCannotSend):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		log.Printf("[demoapi] %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
	}
}
