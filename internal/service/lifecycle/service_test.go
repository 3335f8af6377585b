package lifecycle

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menahealth/medflow-api/internal/model"
	apperrors "github.com/menahealth/medflow-api/pkg/errors"
	"github.com/menahealth/medflow-api/pkg/logger"
)

type fakePatientRepo struct {
	patients map[string]*model.Patient
	// statusAtWrite overrides the stored status right before ApplyStatus
	// runs, to simulate a concurrent transition.
	statusAtWrite model.PatientStatus
}

func newFakeRepo(patients ...*model.Patient) *fakePatientRepo {
	m := make(map[string]*model.Patient)
	for _, p := range patients {
		m[p.ID] = p
	}
	return &fakePatientRepo{patients: m}
}

func (f *fakePatientRepo) Get(ctx context.Context, id string) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	cp := *p
	return &cp, nil
}

func (f *fakePatientRepo) ApplyStatus(ctx context.Context, id string, expected, target model.PatientStatus, doctor, triagedBy model.ActorRef) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	if f.statusAtWrite != "" {
		p.Status = f.statusAtWrite
	}
	if p.Status != expected {
		return nil, apperrors.Conflict("patient status changed concurrently", nil)
	}
	p.Status = target
	p.Doctor = doctor
	p.TriagedBy = triagedBy
	cp := *p
	return &cp, nil
}

func (f *fakePatientRepo) SetStatus(ctx context.Context, id string, status model.PatientStatus) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	p.Status = status
	cp := *p
	return &cp, nil
}

func (f *fakePatientRepo) SetSpecialty(ctx context.Context, id string, specialty model.Specialty, triagedBy model.ActorRef) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	p.Specialty = specialty
	p.TriagedBy = triagedBy
	cp := *p
	return &cp, nil
}

func (f *fakePatientRepo) Create(ctx context.Context, p *model.Patient) error { return nil }
func (f *fakePatientRepo) Upsert(ctx context.Context, p *model.Patient) error { return nil }
func (f *fakePatientRepo) Update(ctx context.Context, p *model.Patient) error { return nil }
func (f *fakePatientRepo) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	return nil, nil
}
func (f *fakePatientRepo) AppendRxOrder(ctx context.Context, patientID string, order *model.RxOrder) error {
	return nil
}
func (f *fakePatientRepo) SetRxQrCode(ctx context.Context, patientID, rxOrderID, qrDataURL string) error {
	return nil
}
func (f *fakePatientRepo) GetByRxToken(ctx context.Context, token string) (*model.Patient, *model.RxOrder, error) {
	return nil, nil, apperrors.NotFound("rx order", nil)
}
func (f *fakePatientRepo) ReplaceRxOrder(ctx context.Context, token string, order *model.RxOrder) error {
	return nil
}
func (f *fakePatientRepo) AppendMedOrderID(ctx context.Context, patientID, medOrderID string) error {
	return nil
}

type fakeNotifier struct {
	matched int
	err     error
	called  bool
}

func (f *fakeNotifier) NotifySpecialtyAssigned(ctx context.Context, patient *model.Patient, specialty model.Specialty) (int, error) {
	f.called = true
	return f.matched, f.err
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func newTestService(repo *fakePatientRepo, notifier *fakeNotifier) *Service {
	return NewService(repo, notifier, testLogger(), nil)
}

func triageCaller() model.Caller {
	return model.Caller{
		UserID:      "u-triage",
		AccountType: model.AccountTypeTriage,
		FirstName:   "Tess",
		LastName:    "Nurse",
		Email:       "tess@example.org",
	}
}

func doctorCaller() model.Caller {
	return model.Caller{
		UserID:      "u-doc",
		AccountType: model.AccountTypeDoctor,
		FirstName:   "Dana",
		LastName:    "Doctor",
		Email:       "dana@example.org",
	}
}

func newPatient(status model.PatientStatus) *model.Patient {
	return &model.Patient{ID: "p1", Status: status}
}

func TestTransitionRoleMatrix(t *testing.T) {
	tests := []struct {
		name    string
		caller  model.Caller
		target  model.PatientStatus
		wantErr string
	}{
		{"triage can triage", triageCaller(), model.PatientStatusTriaged, ""},
		{"evac can triage", model.Caller{AccountType: model.AccountTypeEvac, Email: "e@x"}, model.PatientStatusTriaged, ""},
		{"doctor cannot triage", doctorCaller(), model.PatientStatusTriaged, "You do not have the correct permissions to triage patients"},
		{"doctor can take case", doctorCaller(), model.PatientStatusInProgress, ""},
		{"triage cannot take case", triageCaller(), model.PatientStatusInProgress, "You must be a doctor to take this patient."},
		{"doctor can complete", doctorCaller(), model.PatientStatusCompleted, ""},
		{"triage can complete", triageCaller(), model.PatientStatusCompleted, ""},
		{"anyone can reset", doctorCaller(), model.PatientStatusNotStarted, ""},
		{"doctor cannot archive", doctorCaller(), model.PatientStatusArchived, "Only triage or evac staff may archive patients"},
		{"triage can archive", triageCaller(), model.PatientStatusArchived, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo(newPatient(model.PatientStatusTriaged))
			svc := newTestService(repo, &fakeNotifier{})

			p, err := svc.Transition(context.Background(), tt.caller, "p1", tt.target)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.target, p.Status)
		})
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	svc := newTestService(newFakeRepo(newPatient(model.PatientStatusNotStarted)), &fakeNotifier{})

	_, err := svc.Transition(context.Background(), triageCaller(), "p1", "Misplaced")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestTriageSetsTriagedByAndClearsDoctor(t *testing.T) {
	patient := newPatient(model.PatientStatusNotStarted)
	patient.Doctor = model.ActorRef{FirstName: "Old", LastName: "Doc", Email: "old@x"}
	svc := newTestService(newFakeRepo(patient), &fakeNotifier{})

	caller := triageCaller()
	p, err := svc.Transition(context.Background(), caller, "p1", model.PatientStatusTriaged)
	require.NoError(t, err)

	assert.Equal(t, caller.Ref(), p.TriagedBy)
	assert.True(t, p.Doctor.IsZero(), "doctor snapshot must be cleared on triage")
}

func TestClaimCaseSetsDoctorKeepsTriagedBy(t *testing.T) {
	triagedBy := model.ActorRef{FirstName: "Tess", LastName: "Nurse", Email: "tess@example.org"}
	patient := newPatient(model.PatientStatusTriaged)
	patient.TriagedBy = triagedBy
	svc := newTestService(newFakeRepo(patient), &fakeNotifier{})

	caller := doctorCaller()
	p, err := svc.ClaimCase(context.Background(), caller, "p1")
	require.NoError(t, err)

	assert.Equal(t, model.PatientStatusInProgress, p.Status)
	assert.Equal(t, caller.Ref(), p.Doctor)
	assert.Equal(t, triagedBy, p.TriagedBy, "triage snapshot must survive claiming")
}

func TestCompletedKeepsBothSnapshots(t *testing.T) {
	doctor := model.ActorRef{FirstName: "Dana", LastName: "Doctor", Email: "dana@example.org"}
	triagedBy := model.ActorRef{FirstName: "Tess", LastName: "Nurse", Email: "tess@example.org"}
	patient := newPatient(model.PatientStatusInProgress)
	patient.Doctor = doctor
	patient.TriagedBy = triagedBy
	svc := newTestService(newFakeRepo(patient), &fakeNotifier{})

	p, err := svc.Transition(context.Background(), doctorCaller(), "p1", model.PatientStatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, doctor, p.Doctor)
	assert.Equal(t, triagedBy, p.TriagedBy)
}

func TestResetClearsBothSnapshots(t *testing.T) {
	patient := newPatient(model.PatientStatusCompleted)
	patient.Doctor = model.ActorRef{Email: "dana@example.org"}
	patient.TriagedBy = model.ActorRef{Email: "tess@example.org"}
	svc := newTestService(newFakeRepo(patient), &fakeNotifier{})

	p, err := svc.Transition(context.Background(), triageCaller(), "p1", model.PatientStatusNotStarted)
	require.NoError(t, err)

	assert.True(t, p.Doctor.IsZero())
	assert.True(t, p.TriagedBy.IsZero())
}

func TestTransitionConflictOnConcurrentChange(t *testing.T) {
	repo := newFakeRepo(newPatient(model.PatientStatusTriaged))
	// Another doctor claims the case between the read and the write.
	repo.statusAtWrite = model.PatientStatusInProgress
	svc := newTestService(repo, &fakeNotifier{})

	_, err := svc.ClaimCase(context.Background(), doctorCaller(), "p1")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestTransitionPatientNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeNotifier{})

	_, err := svc.Transition(context.Background(), triageCaller(), "missing", model.PatientStatusTriaged)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestArchiveRequiresCoordinator(t *testing.T) {
	svc := newTestService(newFakeRepo(newPatient(model.PatientStatusCompleted)), &fakeNotifier{})

	_, err := svc.Archive(context.Background(), doctorCaller(), "p1")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	p, err := svc.Archive(context.Background(), triageCaller(), "p1")
	require.NoError(t, err)
	assert.Equal(t, model.PatientStatusArchived, p.Status)
}

func TestAssignSpecialty(t *testing.T) {
	t.Run("queues notification when doctors match", func(t *testing.T) {
		notifier := &fakeNotifier{matched: 3}
		svc := newTestService(newFakeRepo(newPatient(model.PatientStatusNotStarted)), notifier)

		result, err := svc.AssignSpecialty(context.Background(), triageCaller(), "p1", model.SpecialtyCardiology)
		require.NoError(t, err)
		assert.Equal(t, model.SpecialtyCardiology, result.Patient.Specialty)
		assert.Equal(t, 3, result.MatchedDoctors)
		assert.True(t, result.NotificationQueued)
		assert.True(t, notifier.called)
	})

	t.Run("zero matched doctors is not an error", func(t *testing.T) {
		svc := newTestService(newFakeRepo(newPatient(model.PatientStatusNotStarted)), &fakeNotifier{matched: 0})

		result, err := svc.AssignSpecialty(context.Background(), triageCaller(), "p1", model.SpecialtyGazaMedEvacuation)
		require.NoError(t, err)
		assert.Equal(t, 0, result.MatchedDoctors)
		assert.False(t, result.NotificationQueued)
	})

	t.Run("specialty change survives notification failure", func(t *testing.T) {
		notifier := &fakeNotifier{err: context.DeadlineExceeded}
		repo := newFakeRepo(newPatient(model.PatientStatusNotStarted))
		svc := newTestService(repo, notifier)

		result, err := svc.AssignSpecialty(context.Background(), triageCaller(), "p1", model.SpecialtyNeurology)
		require.NoError(t, err)
		assert.False(t, result.NotificationQueued)
		assert.Equal(t, model.SpecialtyNeurology, repo.patients["p1"].Specialty)
	})

	t.Run("rejects unknown specialty", func(t *testing.T) {
		svc := newTestService(newFakeRepo(newPatient(model.PatientStatusNotStarted)), &fakeNotifier{})

		_, err := svc.AssignSpecialty(context.Background(), triageCaller(), "p1", "Alchemy")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	})

	t.Run("doctors may not assign specialties", func(t *testing.T) {
		svc := newTestService(newFakeRepo(newPatient(model.PatientStatusNotStarted)), &fakeNotifier{})

		_, err := svc.AssignSpecialty(context.Background(), doctorCaller(), "p1", model.SpecialtyCardiology)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	})
}
