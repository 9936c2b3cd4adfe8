package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/config"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/demodata"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/storage"
	"github.com/google/uuid"
)

func main() {
	origin := flag.String("origin", "", "origin cookie of the browser context to seed")
	reset := flag.Bool("reset", false, "clear all demo data of the origin before seeding")
	clearOnly := flag.Bool("clear", false, "only clear demo data, do not seed")
	contentPath := flag.String("content", "", "YAML dataset to seed instead of the built-in one")
	flag.Parse()

	if _, err := uuid.Parse(*origin); err != nil {
		log.Fatalf("-origin must be the demo_origin cookie value: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	backend, closeFn, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeFn()

	ctx := context.Background()
	mgr := demodata.NewManager(storage.NewAdapter(storage.Partition(backend, *origin), cfg.Namespace))

	if *reset || *clearOnly {
		if err := mgr.ClearDemoData(ctx); err != nil {
			log.Fatalf("clear failed: %v", err)
		}
	}
	if *clearOnly {
		return
	}
	content, err := demodata.DefaultContent()
	if *contentPath != "" {
		var raw []byte
		raw, err = os.ReadFile(*contentPath)
		if err == nil {
			content, err = demodata.ParseContent(raw)
		}
	}
	if err != nil {
		log.Fatalf("load content: %v", err)
	}

	if err := mgr.SeedWith(ctx, content); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("seeded demo data for origin %s", *origin)
}
