package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/internal/service/patient"
	apperrors "github.com/menahealth/medflow-api/pkg/errors"
	"github.com/menahealth/medflow-api/pkg/logger"
)

type fakePatientRepo struct {
	byID map[string]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{byID: map[string]*model.Patient{}}
}

func (f *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	f.byID[p.ID] = p
	return nil
}

func (f *fakePatientRepo) Upsert(_ context.Context, p *model.Patient) error {
	f.byID[p.ID] = p
	return nil
}

func (f *fakePatientRepo) Get(_ context.Context, id string) (*model.Patient, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return p, nil
}

func (f *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	f.byID[p.ID] = p
	return nil
}

func (f *fakePatientRepo) List(_ context.Context, _ *model.PatientFilters) ([]*model.Patient, error) {
	return nil, nil
}

func (f *fakePatientRepo) ApplyStatus(_ context.Context, _ string, _, _ model.PatientStatus, _, _ model.ActorRef) (*model.Patient, error) {
	return nil, nil
}

func (f *fakePatientRepo) SetStatus(_ context.Context, _ string, _ model.PatientStatus) (*model.Patient, error) {
	return nil, nil
}

func (f *fakePatientRepo) SetSpecialty(_ context.Context, _ string, _ model.Specialty, _ model.ActorRef) (*model.Patient, error) {
	return nil, nil
}

func (f *fakePatientRepo) AppendRxOrder(_ context.Context, _ string, _ *model.RxOrder) error {
	return nil
}

func (f *fakePatientRepo) SetRxQrCode(_ context.Context, _, _, _ string) error { return nil }

func (f *fakePatientRepo) GetByRxToken(_ context.Context, _ string) (*model.Patient, *model.RxOrder, error) {
	return nil, nil, apperrors.NotFound("rx order", nil)
}

func (f *fakePatientRepo) ReplaceRxOrder(_ context.Context, _ string, _ *model.RxOrder) error {
	return nil
}

func (f *fakePatientRepo) AppendMedOrderID(_ context.Context, _, _ string) error { return nil }

type fakeThreads struct {
	linked map[string]string
}

func (f *fakeThreads) LinkPatient(_ context.Context, chatID, patientID, _ string) error {
	if f.linked == nil {
		f.linked = map[string]string{}
	}
	f.linked[chatID] = patientID
	return nil
}

func (f *fakeThreads) GetByChatID(_ context.Context, _ string) (*model.TelegramThread, error) {
	return nil, apperrors.NotFound("telegram thread", nil)
}

type fakeNotifier struct {
	notified []*model.Patient
}

func (f *fakeNotifier) NotifyPatientSignup(_ context.Context, p *model.Patient) error {
	f.notified = append(f.notified, p)
	return nil
}

func newIntakeRouter(repo *fakePatientRepo, threads *fakeThreads, notifier *fakeNotifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	svc := patient.NewService(repo, threads, notifier, log)

	engine := gin.New()
	NewHandler(svc).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func postIntake(t *testing.T, engine *gin.Engine, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake/telegram", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestTelegramIntakeKeepsExternalID(t *testing.T) {
	repo := newFakePatientRepo()
	threads := &fakeThreads{}
	notifier := &fakeNotifier{}
	engine := newIntakeRouter(repo, threads, notifier)

	rec := postIntake(t, engine, model.TelegramIntakeRequest{
		PatientID:      "tg-4821",
		FirstName:      "Layla",
		LastName:       "Haddad",
		Language:       "Arabic",
		Country:        "Lebanon",
		TelegramChatID: "chat-99",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string        `json:"status"`
		Data   model.Patient `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "tg-4821", resp.Data.ID)
	assert.Equal(t, "Arabic", resp.Data.Language)

	require.Contains(t, repo.byID, "tg-4821")
	assert.Equal(t, "tg-4821", threads.linked["chat-99"])
	require.Len(t, notifier.notified, 1)
	assert.Equal(t, "Lebanon", notifier.notified[0].Country)
}

func TestTelegramIntakeLanguageFallback(t *testing.T) {
	repo := newFakePatientRepo()
	engine := newIntakeRouter(repo, &fakeThreads{}, &fakeNotifier{})

	rec := postIntake(t, engine, model.TelegramIntakeRequest{
		PatientID: "tg-77",
		Language:  "French",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data model.Patient `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "English", resp.Data.Language)
}

func TestTelegramIntakeRejectsMissingPatientID(t *testing.T) {
	engine := newIntakeRouter(newFakePatientRepo(), &fakeThreads{}, &fakeNotifier{})

	rec := postIntake(t, engine, model.TelegramIntakeRequest{FirstName: "Omar"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
}
