package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rsmaster/o2c-backend/pkg/config"
	"github.com/rsmaster/o2c-backend/pkg/correlation"
	pkgerrors "github.com/rsmaster/o2c-backend/pkg/errors"
)

// SubmitRequest asks the provider to settle one attempt.
type SubmitRequest struct {
	PaymentID string          `json:"paymentId"`
	AttemptID string          `json:"attemptId"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

// SubmitResponse is the provider's acceptance of a settlement request.
type SubmitResponse struct {
	ProviderPaymentID string `json:"providerPaymentId"`
	Status            string `json:"status"`
}

// ProviderClient talks to the external settlement gateway.
type ProviderClient interface {
	Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error)
}

type httpProviderClient struct {
	baseURL string
	client  *http.Client
}

// NewProviderClient builds the HTTP client for the settlement gateway.
func NewProviderClient(cfg config.ProviderConfig) ProviderClient {
	return &httpProviderClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

func (c *httpProviderClient) Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return SubmitResponse{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode provider request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/provider/payments", bytes.NewReader(body))
	if err != nil {
		return SubmitResponse{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build provider request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if id, ok := correlation.FromContext(ctx); ok {
		httpReq.Header.Set(correlation.Header, id.String())
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return SubmitResponse{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call provider")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return SubmitResponse{}, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("provider returned status %d", resp.StatusCode))
	}

	var out SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SubmitResponse{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode provider response")
	}
	if out.ProviderPaymentID == "" {
		return SubmitResponse{}, pkgerrors.New(pkgerrors.CodeDependency, "provider response missing payment id")
	}
	return out, nil
}
