package model

import (
	"encoding/json"
	"time"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Outbox event types.
const (
	EventPatientSignup     = "PATIENT_SIGNUP"
	EventSpecialtyAssigned = "SPECIALTY_ASSIGNED"
)

// OutboxEvent is a persisted notification intent. The API writes it in the
// same logical operation as the primary state change; the worker drains it
// with its own retry policy, so delivery failures never surface as request
// failures.
type OutboxEvent struct {
	ID           string          `bson:"_id" json:"_id"`
	EventType    string          `bson:"event_type" json:"event_type"`
	Payload      json.RawMessage `bson:"payload" json:"payload"`
	Status       OutboxStatus    `bson:"status" json:"status"`
	ErrorMessage string          `bson:"error_message,omitempty" json:"error_message,omitempty"`
	RetryCount   int             `bson:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `bson:"created_at" json:"created_at"`
	ClaimedAt    *time.Time      `bson:"claimed_at,omitempty" json:"claimed_at,omitempty"`
	ProcessedAt  *time.Time      `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `bson:"updated_at" json:"updated_at"`
}

// NotificationPayload is the body of both notification event types: a
// computed recipient set plus the rendered subject and message.
type NotificationPayload struct {
	Recipients     []UserRef `json:"recipients"`
	Subject        string    `json:"subject"`
	Message        string    `json:"message"`
	PatientID      string    `json:"patient_id,omitempty"`
	PatientCountry string    `json:"patient_country,omitempty"`
	Specialty      Specialty `json:"specialty,omitempty"`
}
