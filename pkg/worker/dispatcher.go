package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/menahealth/medflow-api/internal/email"
	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/pkg/logger"
	"github.com/menahealth/medflow-api/pkg/metrics"
)

// EmailDispatcher turns a drained outbox event into one email per
// recipient. A partial send is reported as an error so the event is
// retried; delivery is at-least-once and the copy is idempotent to read
// twice.
type EmailDispatcher struct {
	emailSvc email.Service
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewEmailDispatcher(emailSvc email.Service, logger *logger.Logger, metrics *metrics.Metrics) *EmailDispatcher {
	return &EmailDispatcher{
		emailSvc: emailSvc,
		logger:   logger,
		metrics:  metrics,
	}
}

func (d *EmailDispatcher) Dispatch(ctx context.Context, event *model.OutboxEvent) error {
	var payload model.NotificationPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("malformed notification payload: %w", err)
	}

	var failed int
	for _, recipient := range payload.Recipients {
		body := renderBody(event.EventType, recipient, payload)
		if err := d.emailSvc.SendCustom(ctx, recipient.Email, payload.Subject, body); err != nil {
			failed++
			d.metrics.NotificationsFailed.WithLabelValues(event.EventType).Inc()
			d.logger.Error(err, "failed to send notification email",
				"event_id", event.ID,
				"recipient", recipient.Email,
			)
			continue
		}
		d.metrics.NotificationsSent.WithLabelValues(event.EventType).Inc()
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d notification emails failed", failed, len(payload.Recipients))
	}
	return nil
}

func renderBody(eventType string, recipient model.UserRef, payload model.NotificationPayload) string {
	greeting := fmt.Sprintf("Hello %s %s,", recipient.FirstName, recipient.LastName)
	if eventType == model.EventSpecialtyAssigned {
		greeting = fmt.Sprintf("Hello Dr. %s,", recipient.LastName)
	}

	return fmt.Sprintf(`<html><body>
<p>%s</p>
<p>%s</p>
<p>Please log in to the dashboard to review the case.</p>
</body></html>`, greeting, payload.Message)
}
