package storage

import (
	"context"
	"strings"
)

type partition struct {
	backend Backend
	prefix  string
}

// Partition scopes backend to a single browser context. Keys of one origin
// are invisible to every other origin.
func Partition(backend Backend, origin string) Backend {
	return &partition{backend: backend, prefix: origin + "/"}
}

func (p *partition) Get(ctx context.Context, key string) (string, bool, error) {
	return p.backend.Get(ctx, p.prefix+key)
}

func (p *partition) Set(ctx context.Context, key, value string) error {
	return p.backend.Set(ctx, p.prefix+key, value)
}

func (p *partition) Remove(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = p.prefix + k
	}
	return p.backend.Remove(ctx, full...)
}

func (p *partition) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := p.backend.Keys(ctx, p.prefix+prefix)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, p.prefix)
	}
	return keys, nil
}
