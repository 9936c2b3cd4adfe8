package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Backend is a flat string key-value store. A missing key is reported with
// found=false, never with an error.
type Backend interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// DefaultNamespace is the product prefix every key is stored under.
const DefaultNamespace = "midwifematch"

// Session-scoped key names, stored as <ns>_<name>.
const (
	KeyUser       = "user"
	KeyDemo       = "demo"
	KeyRegistered = "users"
)

// Demo content key names, stored as <ns>:<name>.
const (
	KeyLegacyConversations = "conversations"
	KeyLegacyMessages      = "messages"
	KeySharedConversations = "shared-conversations"
	KeySharedMessages      = "shared-messages"
	KeyAppointments        = "appointments"
	KeySymptoms            = "symptoms"
)

// ReadError means a stored value exists but could not be decoded.
type ReadError struct {
	Key string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("storage: unreadable value at %q: %v", e.Key, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Adapter namespaces every key under a fixed product prefix.
type Adapter struct {
	backend   Backend
	namespace string
}

func NewAdapter(backend Backend, namespace string) *Adapter {
	if strings.TrimSpace(namespace) == "" {
		namespace = DefaultNamespace
	}
	return &Adapter{backend: backend, namespace: namespace}
}

func (a *Adapter) Namespace() string { return a.namespace }

// SessionKey returns the physical key for session data, e.g. "midwifematch_user".
func (a *Adapter) SessionKey(name string) string {
	return a.namespace + "_" + name
}

// DataKey returns the physical key for demo content, e.g. "midwifematch:messages".
func (a *Adapter) DataKey(name string) string {
	return a.namespace + ":" + name
}

func (a *Adapter) Get(ctx context.Context, key string) (string, bool, error) {
	return a.backend.Get(ctx, key)
}

func (a *Adapter) Set(ctx context.Context, key, value string) error {
	return a.backend.Set(ctx, key, value)
}

func (a *Adapter) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return a.backend.Remove(ctx, keys...)
}

// Has reports whether key currently holds a value.
func (a *Adapter) Has(ctx context.Context, key string) (bool, error) {
	_, found, err := a.backend.Get(ctx, key)
	return found, err
}

// NamespacedKeys lists every key owned by this namespace, whichever separator
// it was written with.
func (a *Adapter) NamespacedKeys(ctx context.Context) ([]string, error) {
	keys, err := a.backend.Keys(ctx, a.namespace)
	if err != nil {
		return nil, err
	}
	owned := keys[:0]
	for _, k := range keys {
		rest := strings.TrimPrefix(k, a.namespace)
		if strings.HasPrefix(rest, "_") || strings.HasPrefix(rest, ":") {
			owned = append(owned, k)
		}
	}
	return owned, nil
}

// GetJSON decodes the value at key into dst. A value that does not decode is
// reported as *ReadError so callers can treat it as absent.
func (a *Adapter) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := a.backend.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, &ReadError{Key: key, Err: err}
	}
	return true, nil
}

func (a *Adapter) SetJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return a.backend.Set(ctx, key, string(b))
}
