// Package notification decides when and to whom workflow email goes. It
// never delivers anything itself: intents are written to the outbox and
// drained by the worker, so the primary state change is already committed
// by the time delivery is attempted.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/internal/repository"
	"github.com/menahealth/medflow-api/pkg/logger"
)

// RecipientSource resolves notification recipient sets.
type RecipientSource interface {
	DoctorsBySpecialty(ctx context.Context, specialty model.Specialty) ([]model.UserRef, error)
	TriageUsers(ctx context.Context) ([]model.UserRef, error)
}

type Service struct {
	recipients RecipientSource
	outbox     repository.OutboxRepository
	logger     *logger.Logger
}

func NewService(recipients RecipientSource, outbox repository.OutboxRepository, logger *logger.Logger) *Service {
	return &Service{
		recipients: recipients,
		outbox:     outbox,
		logger:     logger,
	}
}

// NotifySpecialtyAssigned queues a "new case" email for every doctor whose
// specialty list contains the assigned specialty. It returns the number of
// matched doctors; zero is the "no doctors available" outcome and is not
// an error.
func (s *Service) NotifySpecialtyAssigned(ctx context.Context, patient *model.Patient, specialty model.Specialty) (int, error) {
	doctors, err := s.recipients.DoctorsBySpecialty(ctx, specialty)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve doctors for %s: %w", specialty, err)
	}
	if len(doctors) == 0 {
		return 0, nil
	}

	country := patient.Country
	if country == "" {
		country = "Unknown"
	}

	payload := model.NotificationPayload{
		Recipients: doctors,
		Subject:    fmt.Sprintf("New Case for %s", specialty),
		Message: fmt.Sprintf(
			"There is a new case requiring attention for your specialty: %s. Please check your dashboard for more details.",
			specialty,
		),
		PatientID:      patient.ID,
		PatientCountry: country,
		Specialty:      specialty,
	}

	if err := s.enqueue(ctx, model.EventSpecialtyAssigned, payload); err != nil {
		return len(doctors), err
	}
	return len(doctors), nil
}

// NotifyPatientSignup queues a signup summary for every triage coordinator.
// Absence of triage users is logged and swallowed so intake never fails on
// it.
func (s *Service) NotifyPatientSignup(ctx context.Context, patient *model.Patient) error {
	triageUsers, err := s.recipients.TriageUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve triage users: %w", err)
	}
	if len(triageUsers) == 0 {
		s.logger.Warn("no triage users found to notify", "patient_id", patient.ID)
		return nil
	}

	country := patient.Country
	if country == "" {
		country = "an unknown location"
	}

	payload := model.NotificationPayload{
		Recipients: triageUsers,
		Subject:    "New Patient Sign-Up Notification",
		Message: fmt.Sprintf(
			"A new patient has signed up from %s. Please check the dashboard for more details.",
			country,
		),
		PatientID:      patient.ID,
		PatientCountry: country,
	}

	return s.enqueue(ctx, model.EventPatientSignup, payload)
}

func (s *Service) enqueue(ctx context.Context, eventType string, payload model.NotificationPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	return s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   raw,
	})
}
