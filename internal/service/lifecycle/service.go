// Package lifecycle owns the patient workflow: who may move a case
// between statuses, what the doctor/triagedBy snapshots become on each
// move, and which moves trigger notifications. Every entry point goes
// through the same transition table.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/internal/repository"
	apperrors "github.com/menahealth/medflow-api/pkg/errors"
	"github.com/menahealth/medflow-api/pkg/logger"
	"github.com/menahealth/medflow-api/pkg/metrics"
)

// Notifier is the slice of the notification service the engine needs.
type Notifier interface {
	NotifySpecialtyAssigned(ctx context.Context, patient *model.Patient, specialty model.Specialty) (int, error)
}

// rule describes one legal target status: which roles may enter it and how
// the ownership snapshots change. A nil roles slice means any
// authenticated staff role.
type rule struct {
	roles     []model.AccountType
	denial    string
	snapshots func(caller model.Caller, current *model.Patient) (doctor, triagedBy model.ActorRef)
}

// transitions is the authoritative table. Statuses absent here cannot be
// reached through Transition.
var transitions = map[model.PatientStatus]rule{
	model.PatientStatusNotStarted: {
		// Reset: clears both ownership snapshots.
		snapshots: func(model.Caller, *model.Patient) (model.ActorRef, model.ActorRef) {
			return model.ActorRef{}, model.ActorRef{}
		},
	},
	model.PatientStatusTriaged: {
		roles:  []model.AccountType{model.AccountTypeTriage, model.AccountTypeEvac},
		denial: "You do not have the correct permissions to triage patients",
		snapshots: func(caller model.Caller, _ *model.Patient) (model.ActorRef, model.ActorRef) {
			return model.ActorRef{}, caller.Ref()
		},
	},
	model.PatientStatusInProgress: {
		roles:  []model.AccountType{model.AccountTypeDoctor},
		denial: "You must be a doctor to take this patient.",
		snapshots: func(caller model.Caller, current *model.Patient) (model.ActorRef, model.ActorRef) {
			return caller.Ref(), current.TriagedBy
		},
	},
	model.PatientStatusCompleted: {
		// No role restriction is attached to completion.
		snapshots: func(_ model.Caller, current *model.Patient) (model.ActorRef, model.ActorRef) {
			return current.Doctor, current.TriagedBy
		},
	},
	model.PatientStatusArchived: {
		roles:  []model.AccountType{model.AccountTypeTriage, model.AccountTypeEvac},
		denial: "Only triage or evac staff may archive patients",
		snapshots: func(_ model.Caller, current *model.Patient) (model.ActorRef, model.ActorRef) {
			return current.Doctor, current.TriagedBy
		},
	},
}

// AssignResult reports the outcome of a specialty assignment. A zero
// MatchedDoctors with a nil error is the "specialty updated, but no
// doctors available" case.
type AssignResult struct {
	Patient            *model.Patient
	MatchedDoctors     int
	NotificationQueued bool
}

type Service struct {
	repo     repository.PatientRepository
	notifier Notifier
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(repo repository.PatientRepository, notifier Notifier, logger *logger.Logger, metrics *metrics.Metrics) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
	}
}

// Transition moves a patient to target on behalf of caller. The role check
// and snapshot effects come from the transition table; the write is
// compare-and-set on the status read here, so a concurrent transition
// surfaces as a Conflict instead of a silent overwrite.
func (s *Service) Transition(ctx context.Context, caller model.Caller, patientID string, target model.PatientStatus) (*model.Patient, error) {
	if !model.ValidStatus(target) {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown status %q", target), nil)
	}

	r, ok := transitions[target]
	if !ok {
		return nil, apperrors.BadRequest(fmt.Sprintf("status %q cannot be set directly", target), nil)
	}

	if err := r.allow(caller); err != nil {
		s.countRejected("forbidden")
		return nil, err
	}

	current, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	doctor, triagedBy := r.snapshots(caller, current)

	updated, err := s.repo.ApplyStatus(ctx, patientID, current.Status, target, doctor, triagedBy)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			s.countRejected("conflict")
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(current.Status), string(target)).Inc()
	}
	s.logger.Info("patient status transition",
		"patient_id", patientID,
		"from", string(current.Status),
		"to", string(target),
		"actor", caller.Email,
	)
	return updated, nil
}

// ClaimCase is the "Take Case" action: a doctor takes ownership of a
// triaged patient.
func (s *Service) ClaimCase(ctx context.Context, caller model.Caller, patientID string) (*model.Patient, error) {
	return s.Transition(ctx, caller, patientID, model.PatientStatusInProgress)
}

// Archive soft-deletes the case: it disappears from default views but the
// record persists and stays queryable.
func (s *Service) Archive(ctx context.Context, caller model.Caller, patientID string) (*model.Patient, error) {
	if !caller.IsCoordinator() {
		s.countRejected("forbidden")
		return nil, apperrors.Forbidden("Only triage or evac staff may archive patients", nil)
	}

	patient, err := s.repo.SetStatus(ctx, patientID, model.PatientStatusArchived)
	if err != nil {
		return nil, err
	}

	s.logger.Info("patient archived", "patient_id", patientID, "actor", caller.Email)
	return patient, nil
}

// AssignSpecialty sets the routing specialty and queues the doctor
// notification. The specialty write commits first; a notification failure
// is reported back but never rolls it back.
func (s *Service) AssignSpecialty(ctx context.Context, caller model.Caller, patientID string, specialty model.Specialty) (*AssignResult, error) {
	if !caller.IsCoordinator() {
		return nil, apperrors.Forbidden("Only triage or evac staff may assign specialties", nil)
	}
	if !model.ValidSpecialty(specialty) {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown specialty %q", specialty), nil)
	}

	patient, err := s.repo.SetSpecialty(ctx, patientID, specialty, caller.Ref())
	if err != nil {
		return nil, err
	}

	result := &AssignResult{Patient: patient}

	matched, err := s.notifier.NotifySpecialtyAssigned(ctx, patient, specialty)
	result.MatchedDoctors = matched
	if err != nil {
		// The specialty change is already committed; surface the degraded
		// side effect without failing the operation.
		s.logger.Error(err, "specialty updated but notification enqueue failed",
			"patient_id", patientID, "specialty", string(specialty))
		return result, nil
	}
	result.NotificationQueued = matched > 0

	return result, nil
}

func (r rule) allow(caller model.Caller) error {
	if len(r.roles) == 0 {
		return nil
	}
	for _, role := range r.roles {
		if caller.AccountType == role {
			return nil
		}
	}
	return apperrors.Forbidden(r.denial, nil)
}

func (s *Service) countRejected(reason string) {
	if s.metrics != nil {
		s.metrics.TransitionRejected.WithLabelValues(reason).Inc()
	}
}
