// Package demodata owns the demo conversations, messages, appointments and
// symptom logs of one browser context.
//
// Conversations and messages exist in two layouts: the legacy per-feature
// keys (<ns>:conversations, <ns>:messages) and the shared pair
// (<ns>:shared-conversations, <ns>:shared-messages). Readers use exactly one
// of them: shared wins as soon as either shared key exists. The two are never
// merged.
package demodata

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/models"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/storage"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/utils"
	"github.com/goccy/go-yaml"
)

// Schema tags which layout a read was served from.
type Schema string

const (
	SchemaNone   Schema = "none"
	SchemaLegacy Schema = "legacy"
	SchemaShared Schema = "shared"
)

var (
	ErrUnknownConversation = errors.New("unknown conversation")
	ErrInvalidSeverity     = errors.New("severity must be between 1 and 5")
	ErrEmptyMessage        = errors.New("message text is required")
)

//go:embed data/content.yaml
var contentYAML []byte

// Content is a full demo dataset.
type Content struct {
	Conversations []models.Conversation `yaml:"conversations"`
	Messages      []models.Message      `yaml:"messages"`
	Appointments  []models.Appointment  `yaml:"appointments"`
	Symptoms      []models.SymptomEntry `yaml:"symptoms"`
}

// DefaultContent returns a fresh copy of the embedded demo dataset.
func DefaultContent() (Content, error) {
	return ParseContent(contentYAML)
}

// ParseContent decodes a dataset in the layout of the embedded one.
func ParseContent(data []byte) (Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Content{}, fmt.Errorf("parse demo content: %w", err)
	}
	return c, nil
}

type Manager struct {
	store *storage.Adapter
	now   func() time.Time
}

func NewManager(store *storage.Adapter) *Manager {
	return &Manager{store: store, now: time.Now}
}

// ClearDemoData removes every key of the namespace: both conversation
// layouts, appointments, symptoms, the session and the registered users.
// Calling it on empty storage is a no-op.
func (m *Manager) ClearDemoData(ctx context.Context) error {
	keys, err := m.store.NamespacedKeys(ctx)
	if err != nil {
		return fmt.Errorf("list demo keys: %w", err)
	}
	if err := m.store.Remove(ctx, keys...); err != nil {
		return fmt.Errorf("remove demo keys: %w", err)
	}
	log.Printf("[demodata] cleared %d keys under %s", len(keys), m.store.Namespace())
	return nil
}

// ActiveSchema reports which conversation layout readers must use.
func (m *Manager) ActiveSchema(ctx context.Context) (Schema, error) {
	for _, pair := range []struct {
		schema Schema
		keys   [2]string
	}{
		{SchemaShared, [2]string{storage.KeySharedConversations, storage.KeySharedMessages}},
		{SchemaLegacy, [2]string{storage.KeyLegacyConversations, storage.KeyLegacyMessages}},
	} {
		for _, k := range pair.keys {
			ok, err := m.store.Has(ctx, m.store.DataKey(k))
			if err != nil {
				return SchemaNone, err
			}
			if ok {
				return pair.schema, nil
			}
		}
	}
	return SchemaNone, nil
}

func (m *Manager) Conversations(ctx context.Context) (Schema, []models.Conversation, error) {
	schema, err := m.ActiveSchema(ctx)
	if err != nil {
		return SchemaNone, nil, err
	}
	convs, _, err := m.readPair(ctx, schema)
	return schema, convs, err
}

// Messages returns the messages of one conversation ordered by send time.
func (m *Manager) Messages(ctx context.Context, conversationID string) (Schema, []models.Message, error) {
	schema, err := m.ActiveSchema(ctx)
	if err != nil {
		return SchemaNone, nil, err
	}
	_, msgs, err := m.readPair(ctx, schema)
	if err != nil {
		return schema, nil, err
	}

	out := make([]models.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return schema, out, nil
}

// AppendMessage stores msg in the shared layout. While the legacy layout is
// still authoritative, its full snapshot is first copied into the shared pair.
func (m *Manager) AppendMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	if msg.Text == "" {
		return models.Message{}, ErrEmptyMessage
	}
	convs, msgs, err := m.writableShared(ctx)
	if err != nil {
		return models.Message{}, err
	}

	idx := -1
	for i, c := range convs {
		if c.ID == msg.ConversationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Message{}, fmt.Errorf("%w: %s", ErrUnknownConversation, msg.ConversationID)
	}

	if msg.ID == "" {
		msg.ID = utils.GenerateUUID()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = m.now().UTC()
	}
	convs[idx].LastMessageAt = msg.SentAt

	if err := m.writeList(ctx, storage.KeySharedMessages, append(msgs, msg)); err != nil {
		return models.Message{}, err
	}
	if err := m.writeList(ctx, storage.KeySharedConversations, convs); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

func (m *Manager) Appointments(ctx context.Context) ([]models.Appointment, error) {
	return readList[models.Appointment](ctx, m.store, storage.KeyAppointments)
}

func (m *Manager) AddAppointment(ctx context.Context, a models.Appointment) (models.Appointment, error) {
	list, err := m.Appointments(ctx)
	if err != nil {
		return models.Appointment{}, err
	}
	if a.ID == "" {
		a.ID = utils.GenerateUUID()
	}
	if err := m.writeList(ctx, storage.KeyAppointments, append(list, a)); err != nil {
		return models.Appointment{}, err
	}
	return a, nil
}

func (m *Manager) Symptoms(ctx context.Context) ([]models.SymptomEntry, error) {
	return readList[models.SymptomEntry](ctx, m.store, storage.KeySymptoms)
}

func (m *Manager) LogSymptom(ctx context.Context, e models.SymptomEntry) (models.SymptomEntry, error) {
	if e.Severity < 1 || e.Severity > 5 {
		return models.SymptomEntry{}, ErrInvalidSeverity
	}
	list, err := m.Symptoms(ctx)
	if err != nil {
		return models.SymptomEntry{}, err
	}
	if e.ID == "" {
		e.ID = utils.GenerateUUID()
	}
	if e.LoggedAt.IsZero() {
		e.LoggedAt = m.now().UTC()
	}
	if err := m.writeList(ctx, storage.KeySymptoms, append(list, e)); err != nil {
		return models.SymptomEntry{}, err
	}
	return e, nil
}

// Seed overwrites the shared pair, appointments and symptoms with the
// embedded demo dataset.
func (m *Manager) Seed(ctx context.Context) error {
	c, err := DefaultContent()
	if err != nil {
		return err
	}
	return m.SeedWith(ctx, c)
}

func (m *Manager) SeedWith(ctx context.Context, c Content) error {
	writes := []struct {
		key string
		v   any
	}{
		{storage.KeySharedConversations, c.Conversations},
		{storage.KeySharedMessages, c.Messages},
		{storage.KeyAppointments, c.Appointments},
		{storage.KeySymptoms, c.Symptoms},
	}
	for _, w := range writes {
		if err := m.writeList(ctx, w.key, w.v); err != nil {
			return err
		}
	}
	log.Printf("[demodata] seeded %d conversations, %d messages", len(c.Conversations), len(c.Messages))
	return nil
}

// EnsureSeeded seeds only when neither conversation layout is present.
func (m *Manager) EnsureSeeded(ctx context.Context) (bool, error) {
	schema, err := m.ActiveSchema(ctx)
	if err != nil {
		return false, err
	}
	if schema != SchemaNone {
		return false, nil
	}
	return true, m.Seed(ctx)
}

func (m *Manager) readPair(ctx context.Context, schema Schema) ([]models.Conversation, []models.Message, error) {
	var convKey, msgKey string
	switch schema {
	case SchemaShared:
		convKey, msgKey = storage.KeySharedConversations, storage.KeySharedMessages
	case SchemaLegacy:
		convKey, msgKey = storage.KeyLegacyConversations, storage.KeyLegacyMessages
	default:
		return nil, nil, nil
	}

	convs, err := readList[models.Conversation](ctx, m.store, convKey)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := readList[models.Message](ctx, m.store, msgKey)
	if err != nil {
		return nil, nil, err
	}
	return convs, msgs, nil
}

// writableShared returns the shared pair, promoting the legacy snapshot into
// it when legacy is still the active layout.
func (m *Manager) writableShared(ctx context.Context) ([]models.Conversation, []models.Message, error) {
	schema, err := m.ActiveSchema(ctx)
	if err != nil {
		return nil, nil, err
	}
	convs, msgs, err := m.readPair(ctx, schema)
	if err != nil {
		return nil, nil, err
	}
	if schema == SchemaLegacy {
		if err := m.writeList(ctx, storage.KeySharedConversations, convs); err != nil {
			return nil, nil, err
		}
		if err := m.writeList(ctx, storage.KeySharedMessages, msgs); err != nil {
			return nil, nil, err
		}
		log.Printf("[demodata] promoted legacy conversations to shared schema (%d conversations, %d messages)",
			len(convs), len(msgs))
	}
	return convs, msgs, nil
}

func (m *Manager) writeList(ctx context.Context, name string, v any) error {
	if err := m.store.SetJSON(ctx, m.store.DataKey(name), v); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// readList treats an undecodable list as empty.
func readList[T any](ctx context.Context, store *storage.Adapter, name string) ([]T, error) {
	var out []T
	_, err := store.GetJSON(ctx, store.DataKey(name), &out)
	var re *storage.ReadError
	if errors.As(err, &re) {
		log.Printf("[demodata] ignoring %s: %v", name, err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return out, nil
}
