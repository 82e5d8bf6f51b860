package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rsmaster/o2c-backend/pkg/config"
	"github.com/rsmaster/o2c-backend/pkg/correlation"
	pkgerrors "github.com/rsmaster/o2c-backend/pkg/errors"
	"github.com/rsmaster/o2c-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testProviderConfig(webhookURL string) config.ProviderConfig {
	return config.ProviderConfig{
		Enabled:       true,
		WebhookURL:    webhookURL,
		CallbackDelay: time.Millisecond,
		QueueSize:     4,
		HTTPTimeout:   time.Second,
	}
}

func validRequest() PaymentRequest {
	return PaymentRequest{
		PaymentID: "pay-1",
		AttemptID: "att-1",
		Amount:    decimal.NewFromInt(10),
		Currency:  "USD",
	}
}

func TestAcceptValidatesRequest(t *testing.T) {
	svc := NewService(testProviderConfig(""), testLogger())

	cases := []PaymentRequest{
		{AttemptID: "att-1", Currency: "USD"},
		{PaymentID: "pay-1", Currency: "USD"},
		{PaymentID: "pay-1", AttemptID: "att-1"},
	}
	for _, req := range cases {
		_, err := svc.Accept(context.Background(), req, "")
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	}
}

func TestAcceptAssignsProviderPaymentID(t *testing.T) {
	svc := NewService(testProviderConfig(""), testLogger())

	acc, err := svc.Accept(context.Background(), validRequest(), "")
	require.NoError(t, err)
	require.NotEmpty(t, acc.ProviderPaymentID)
	require.Equal(t, "ACCEPTED", acc.Status)
}

func TestAcceptBlocksUntilContextDoneWhenQueueFull(t *testing.T) {
	cfg := testProviderConfig("")
	cfg.QueueSize = 1
	svc := NewService(cfg, testLogger())

	_, err := svc.Accept(context.Background(), validRequest(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = svc.Accept(ctx, validRequest(), "")
	require.Error(t, err)
}

func TestWorkerDeliversWebhookCallback(t *testing.T) {
	delivered := make(chan webhookPayload, 1)
	headers := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload webhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		delivered <- payload
		headers <- r.Header.Get(correlation.Header)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	svc := NewService(testProviderConfig(server.URL), testLogger())
	worker := NewWorker(svc, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	acc, err := svc.Accept(context.Background(), validRequest(), "corr-1")
	require.NoError(t, err)

	select {
	case payload := <-delivered:
		require.Equal(t, acc.ProviderPaymentID, payload.ProviderPaymentID)
		require.Equal(t, "SUCCEEDED", payload.Status)
		require.Empty(t, payload.Reason)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not delivered")
	}
	require.Equal(t, "corr-1", <-headers)
}

func TestWorkerReportsForcedFailure(t *testing.T) {
	delivered := make(chan webhookPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload webhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		delivered <- payload
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	svc := NewService(testProviderConfig(server.URL), testLogger())
	worker := NewWorker(svc, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	req := validRequest()
	req.Currency = "FAIL"
	_, err := svc.Accept(context.Background(), req, "")
	require.NoError(t, err)

	select {
	case payload := <-delivered:
		require.Equal(t, "FAILED", payload.Status)
		require.Equal(t, "Forced FAIL for testing", payload.Reason)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}
