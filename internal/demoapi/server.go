// Package demoapi serves the session hook to the marketing front end. Each
// browser context is identified by its origin cookie and gets its own
// partition of the storage backend.
package demoapi

import (
	"net/http"
	"time"

	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/auth"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/demodata"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/email"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/oauth"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/session"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/storage"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/utils"
	"golang.org/x/time/rate"
)

type Options struct {
	Namespace     string
	Latency       time.Duration
	HashCost      int
	AuthRateLimit rate.Limit
	AuthRateBurst int
	Mailer        email.Sender
	OAuth         oauth.Provider
}

type Server struct {
	backend storage.Backend
	opts    Options
}

func NewServer(backend storage.Backend, opts Options) *Server {
	if opts.Mailer == nil {
		opts.Mailer = email.LogSender{}
	}
	if opts.OAuth == nil {
		opts.OAuth = oauth.MockGoogle{Delay: opts.Latency}
	}
	if opts.AuthRateLimit == 0 {
		opts.AuthRateLimit = rate.Inf
	}
	if opts.AuthRateBurst <= 0 {
		opts.AuthRateBurst = 1
	}
	return &Server{backend: backend, opts: opts}
}

// hookFor builds the hook of the browser context behind r.
func (s *Server) hookFor(r *http.Request) *session.Hook {
	origin, _ := utils.GetOriginFromContext(r.Context())
	store := storage.NewAdapter(storage.Partition(s.backend, origin), s.opts.Namespace)

	authOpts := []auth.Option{auth.WithLatency(s.opts.Latency)}
	if s.opts.HashCost > 0 {
		authOpts = append(authOpts, auth.WithHashCost(s.opts.HashCost))
	}

	return session.New(r.Context(), session.Deps{
		Auth:   auth.NewService(store, authOpts...),
		Demo:   demodata.NewManager(store),
		Mailer: s.opts.Mailer,
		OAuth:  s.opts.OAuth,
	})
}
