package storage

import (
	"log"

	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/config"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/db"
)

// Open connects the backend selected by cfg. The returned func releases it.
func Open(cfg config.Config) (Backend, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		db.Connect(cfg.DatabaseURL)
		pg, err := NewPostgres(db.DB)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() {
			if sqlDB, err := db.DB.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}, nil
	case config.BackendRedis:
		rd, err := NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return rd, func() { _ = rd.Close() }, nil
	case config.BackendSQLite:
		sq, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sq, func() { _ = sq.Close() }, nil
	default:
		log.Println("[storage] using in-memory backend; demo data is lost on restart")
		return NewMemory(), func() {}, nil
	}
}
