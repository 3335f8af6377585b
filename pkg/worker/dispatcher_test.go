package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/pkg/logger"
	"github.com/menahealth/medflow-api/pkg/metrics"
)

// Shared across tests: prometheus collectors register globally once per
// test binary.
var (
	metricsOnce sync.Once
	testMetrics *metrics.Metrics
)

func sharedMetrics() *metrics.Metrics {
	metricsOnce.Do(func() {
		testMetrics = metrics.NewMetrics("medflow_worker_test")
	})
	return testMetrics
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeEmail struct {
	sent    []sentMail
	failFor map[string]error
}

func (f *fakeEmail) SendCustom(ctx context.Context, to, subject, htmlBody string) error {
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func notificationEvent(t *testing.T, eventType string, payload model.NotificationPayload) *model.OutboxEvent {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &model.OutboxEvent{
		ID:        "evt-1",
		EventType: eventType,
		Payload:   raw,
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now(),
	}
}

func TestDispatchFansOutToAllRecipients(t *testing.T) {
	email := &fakeEmail{}
	d := NewEmailDispatcher(email, testLogger(), sharedMetrics())

	event := notificationEvent(t, model.EventSpecialtyAssigned, model.NotificationPayload{
		Recipients: []model.UserRef{
			{Email: "a@example.org", FirstName: "A", LastName: "Aziz"},
			{Email: "b@example.org", FirstName: "B", LastName: "Badr"},
		},
		Subject: "New Case for Cardiology",
		Message: "There is a new case requiring attention for your specialty: Cardiology.",
	})

	require.NoError(t, d.Dispatch(context.Background(), event))
	require.Len(t, email.sent, 2)
	assert.Equal(t, "New Case for Cardiology", email.sent[0].subject)
	assert.Contains(t, email.sent[0].body, "Hello Dr. Aziz,")
	assert.Contains(t, email.sent[1].body, "Hello Dr. Badr,")
}

func TestDispatchSignupGreetingUsesFullName(t *testing.T) {
	email := &fakeEmail{}
	d := NewEmailDispatcher(email, testLogger(), sharedMetrics())

	event := notificationEvent(t, model.EventPatientSignup, model.NotificationPayload{
		Recipients: []model.UserRef{{Email: "t@example.org", FirstName: "Tess", LastName: "Nurse"}},
		Subject:    "New Patient Sign-Up Notification",
		Message:    "A new patient has signed up from Lebanon.",
	})

	require.NoError(t, d.Dispatch(context.Background(), event))
	require.Len(t, email.sent, 1)
	assert.Contains(t, email.sent[0].body, "Hello Tess Nurse,")
	assert.Contains(t, email.sent[0].body, "A new patient has signed up from Lebanon.")
}

func TestDispatchPartialFailureIsAnError(t *testing.T) {
	email := &fakeEmail{failFor: map[string]error{"b@example.org": errors.New("smtp timeout")}}
	d := NewEmailDispatcher(email, testLogger(), sharedMetrics())

	event := notificationEvent(t, model.EventPatientSignup, model.NotificationPayload{
		Recipients: []model.UserRef{
			{Email: "a@example.org"},
			{Email: "b@example.org"},
		},
		Subject: "New Patient Sign-Up Notification",
		Message: "A new patient has signed up.",
	})

	err := d.Dispatch(context.Background(), event)
	require.Error(t, err)
	// The deliverable recipient still got their copy.
	require.Len(t, email.sent, 1)
	assert.Equal(t, "a@example.org", email.sent[0].to)
}

func TestDispatchMalformedPayload(t *testing.T) {
	d := NewEmailDispatcher(&fakeEmail{}, testLogger(), sharedMetrics())

	err := d.Dispatch(context.Background(), &model.OutboxEvent{
		ID:        "evt-bad",
		EventType: model.EventPatientSignup,
		Payload:   json.RawMessage(`{"recipients":`),
	})
	require.Error(t, err)
}
