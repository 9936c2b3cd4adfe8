package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/config"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/demoapi"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/middleware"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/storage"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	backend, closeFn, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeFn()

	api := demoapi.NewServer(backend, demoapi.Options{
		Namespace:     cfg.Namespace,
		Latency:       cfg.SimulatedLatency,
		AuthRateLimit: rate.Limit(cfg.AuthRateLimit),
		AuthRateBurst: cfg.AuthRateBurst,
	})

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Get("/", RootHandler)
	r.Mount("/api", api.SetupRoutes())

	log.Printf("Server listening on port :%s (storage=%s)...", cfg.Port, cfg.StorageBackend)
	log.Fatal(http.ListenAndServe("0.0.0.0:"+cfg.Port, r))
}
