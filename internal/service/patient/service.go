// Package patient covers case intake and demographic CRUD. Workflow
// transitions live in the lifecycle package.
package patient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/internal/repository"
	apperrors "github.com/menahealth/medflow-api/pkg/errors"
	"github.com/menahealth/medflow-api/pkg/logger"
)

// SignupNotifier announces new patient registrations to triage staff.
type SignupNotifier interface {
	NotifyPatientSignup(ctx context.Context, patient *model.Patient) error
}

type Service struct {
	patients repository.PatientRepository
	threads  repository.TelegramRepository
	notifier SignupNotifier
	logger   *logger.Logger
}

func NewService(patients repository.PatientRepository, threads repository.TelegramRepository, notifier SignupNotifier, logger *logger.Logger) *Service {
	return &Service{
		patients: patients,
		threads:  threads,
		notifier: notifier,
		logger:   logger,
	}
}

// Create registers a patient entered by staff. New cases always start in
// Not Started with no priority selected.
func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	now := time.Now()
	patient := &model.Patient{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
		Language:  model.NormalizeLanguage(req.Language),
		Phone:     req.Phone,
		City:      req.City,
		Country:   req.Country,
		Status:    model.PatientStatusNotStarted,
		Priority:  model.PriorityNotSelected,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.DOB != "" {
		dob, err := time.Parse("2006-01-02", req.DOB)
		if err != nil {
			return nil, apperrors.BadRequest("dob must be YYYY-MM-DD", err)
		}
		patient.DOB = &dob
	}

	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, err
	}

	s.logger.Info("patient created", "patient_id", patient.ID)
	return patient, nil
}

// TelegramIntake upserts a patient keyed by the externally issued id,
// links the chat thread, and queues the triage sign-up notification.
// Notification failures are logged, not surfaced: the webhook must not
// make the bot retry a registration that already landed.
func (s *Service) TelegramIntake(ctx context.Context, req *model.TelegramIntakeRequest) (*model.Patient, error) {
	now := time.Now()
	patient := &model.Patient{
		ID:             req.PatientID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Gender:         req.Gender,
		Language:       model.NormalizeLanguage(req.Language),
		Phone:          req.Phone,
		City:           req.City,
		Country:        req.Country,
		TelegramChatID: req.TelegramChatID,
		Status:         model.PatientStatusNotStarted,
		Priority:       model.PriorityNotSelected,
		UpdatedAt:      now,
	}
	if req.DOB != "" {
		if dob, err := time.Parse("2006-01-02", req.DOB); err == nil {
			patient.DOB = &dob
		} else {
			s.logger.Warn("ignoring unparseable intake dob", "patient_id", req.PatientID, "dob", req.DOB)
		}
	}

	if err := s.patients.Upsert(ctx, patient); err != nil {
		return nil, err
	}

	if req.TelegramChatID != "" {
		if err := s.threads.LinkPatient(ctx, req.TelegramChatID, req.PatientID, patient.Language); err != nil {
			s.logger.Error(err, "failed to link telegram thread", "patient_id", req.PatientID)
		}
	}

	stored, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyPatientSignup(ctx, stored); err != nil {
		s.logger.Error(err, "failed to queue signup notification", "patient_id", req.PatientID)
	}

	s.logger.Info("telegram intake processed", "patient_id", req.PatientID, "chat_id", req.TelegramChatID)
	return stored, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Patient, error) {
	return s.patients.Get(ctx, id)
}

// Update applies the demographic fields present in req. Absent fields are
// untouched.
func (s *Service) Update(ctx context.Context, id string, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		patient.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.DOB != nil {
		patient.DOB = req.DOB
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.Language != nil {
		patient.Language = model.NormalizeLanguage(*req.Language)
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.City != nil {
		patient.City = *req.City
	}
	if req.Country != nil {
		patient.Country = *req.Country
	}
	if req.Priority != nil {
		if !model.ValidPriority(*req.Priority) {
			return nil, apperrors.BadRequest("unknown priority", nil)
		}
		patient.Priority = *req.Priority
	}
	patient.UpdatedAt = time.Now()

	if err := s.patients.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// List runs a filtered dashboard query. Archived cases stay hidden unless
// the filters ask for them.
func (s *Service) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	if filters == nil {
		filters = &model.PatientFilters{}
	}
	if filters.Status != "" && !model.ValidStatus(filters.Status) {
		return nil, apperrors.BadRequest("unknown status filter", nil)
	}
	if filters.Specialty != "" && !model.ValidSpecialty(filters.Specialty) {
		return nil, apperrors.BadRequest("unknown specialty filter", nil)
	}
	return s.patients.List(ctx, filters)
}
