package demoapi

import (
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func (s *Server) SetupRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.OriginMiddleware)

	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.SessionHandler)
		r.Get("/users", s.UsersHandler)
		r.Post("/switch", s.SwitchHandler)
		r.Post("/logout", s.LogoutHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(s.opts.AuthRateLimit, s.opts.AuthRateBurst))
			r.Post("/register", s.RegisterHandler)
			r.Post("/login", s.LoginHandler)
			r.Post("/google", s.GoogleHandler)
		})
	})

	r.Route("/demo", func(r chi.Router) {
		r.Post("/reset", s.ResetHandler)
		r.Get("/conversations", s.ConversationsHandler)
		r.Get("/conversations/{id}/messages", s.MessagesHandler)
		r.Post("/conversations/{id}/messages", s.SendMessageHandler)
		r.Get("/appointments", s.AppointmentsHandler)
		r.Post("/appointments", s.AddAppointmentHandler)
		r.Get("/symptoms", s.SymptomsHandler)
		r.Post("/symptoms", s.LogSymptomHandler)
	})

	return r
}
