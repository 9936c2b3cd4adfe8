package models

import "time"

type Conversation struct {
	ID            string    `json:"id" yaml:"id"`
	PatientID     string    `json:"patientId" yaml:"patientId"`
	MidwifeID     string    `json:"midwifeId" yaml:"midwifeId"`
	Title         string    `json:"title" yaml:"title"`
	LastMessageAt time.Time `json:"lastMessageAt" yaml:"lastMessageAt"`
}

type Message struct {
	ID             string    `json:"id" yaml:"id"`
	ConversationID string    `json:"conversationId" yaml:"conversationId"`
	SenderID       string    `json:"senderId" yaml:"senderId"`
	Text           string    `json:"text" yaml:"text"`
	SentAt         time.Time `json:"sentAt" yaml:"sentAt"`
}

type Appointment struct {
	ID        string    `json:"id" yaml:"id"`
	PatientID string    `json:"patientId" yaml:"patientId"`
	MidwifeID string    `json:"midwifeId" yaml:"midwifeId"`
	StartsAt  time.Time `json:"startsAt" yaml:"startsAt"`
	Kind      string    `json:"kind" yaml:"kind"`
	Notes     string    `json:"notes,omitempty" yaml:"notes"`
}

// SymptomEntry is one line of a patient's symptom diary. Severity runs 1-5.
type SymptomEntry struct {
	ID        string    `json:"id" yaml:"id"`
	PatientID string    `json:"patientId" yaml:"patientId"`
	Symptom   string    `json:"symptom" yaml:"symptom"`
	Severity  int       `json:"severity" yaml:"severity"`
	LoggedAt  time.Time `json:"loggedAt" yaml:"loggedAt"`
	Notes     string    `json:"notes,omitempty" yaml:"notes"`
}
