package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rsmaster/o2c-backend/pkg/correlation"
	"github.com/rsmaster/o2c-backend/pkg/logger"
)

// webhookPayload is what the worker posts back to the payment service.
type webhookPayload struct {
	ProviderPaymentID string `json:"providerPaymentId"`
	Status            string `json:"status"`
	Reason            string `json:"reason,omitempty"`
}

// Worker drains the callback queue: each task sleeps the configured delay and
// then posts the settlement outcome to the webhook URL. A failed delivery is
// logged and dropped; the payment side recovers through its retry endpoint.
type Worker struct {
	svc    *Service
	client *http.Client
	log    *logger.Logger
}

func NewWorker(svc *Service, log *logger.Logger) *Worker {
	return &Worker{
		svc:    svc,
		client: &http.Client{Timeout: svc.cfg.HTTPTimeout},
		log:    log,
	}
}

// Run delivers callbacks until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info(ctx, "provider callback worker started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case task := <-w.svc.queue:
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.svc.cfg.CallbackDelay):
			}
			w.deliver(ctx, task)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, task callbackTask) {
	status, reason := w.svc.outcomeFor(task.currency)
	payload := webhookPayload{
		ProviderPaymentID: task.providerPaymentID,
		Status:            status,
		Reason:            reason,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		w.log.Error(ctx, "encode webhook payload", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.svc.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		w.log.Error(ctx, "build webhook request", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if task.correlationID != "" {
		req.Header.Set(correlation.Header, task.correlationID)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		w.log.Error(ctx, "webhook delivery failed, dropping callback", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		w.log.Error(ctx, "webhook delivery rejected, dropping callback",
			fmt.Errorf("webhook returned status %d", resp.StatusCode))
	}
}
