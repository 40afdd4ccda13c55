package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
)

const (
	serviceName = "payos"

	// CodeSuccess is the gateway's business-level success code.
	CodeSuccess = "00"

	maxDescriptionLength = 25
	maxResponseBytes     = 1 << 20
)

// GatewayError carries the transport or business detail of a failed gateway call.
// It is wrapped inside a PAYMENT_LINK_CREATION_FAILED AppError and is meant for logs only.
type GatewayError struct {
	Operation  string
	StatusCode int
	Code       string
	Desc       string
	Err        error
}

func (e *GatewayError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "payos %s failed", e.Operation)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": http %d", e.StatusCode)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, ": code %s", e.Code)
	}
	if e.Desc != "" {
		fmt.Fprintf(&b, " (%s)", e.Desc)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

type ClientConfig struct {
	BaseURL  string
	ClientID string
	APIKey   string
	Timeout  time.Duration
}

// Client talks to the PayOS merchant API.
type Client struct {
	baseURL    string
	clientID   string
	apiKey     string
	signer     *Signer
	httpClient *http.Client
}

func NewClient(cfg ClientConfig, signer *Signer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		clientID:   cfg.ClientID,
		apiKey:     cfg.APIKey,
		signer:     signer,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type CreateLinkRequest struct {
	OrderCode   int64
	Amount      int64
	Description string
	ReturnURL   string
	CancelURL   string
	ExpiresAt   time.Time
}

type PaymentLink struct {
	OrderCode     int64  `json:"orderCode"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
	PaymentLinkID string `json:"paymentLinkId"`
	Status        string `json:"status"`
	CheckoutURL   string `json:"checkoutUrl"`
	QRCode        string `json:"qrCode"`
}

type createLinkBody struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	CancelURL   string `json:"cancelUrl"`
	ReturnURL   string `json:"returnUrl"`
	ExpiredAt   int64  `json:"expiredAt,omitempty"`
	Signature   string `json:"signature"`
}

type envelope struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

// CreatePaymentLink asks the gateway for a checkout link. It is not retried.
func (c *Client) CreatePaymentLink(ctx context.Context, req CreateLinkRequest) (*PaymentLink, error) {
	if req.OrderCode <= 0 {
		return nil, domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "orderCode must be positive")
	}
	if req.Amount <= 0 {
		return nil, domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "amount must be positive")
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "description is required")
	}
	if len(req.Description) > maxDescriptionLength {
		return nil, domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "description must be at most %d characters", maxDescriptionLength)
	}

	body := createLinkBody{
		OrderCode:   req.OrderCode,
		Amount:      req.Amount,
		Description: req.Description,
		CancelURL:   req.CancelURL,
		ReturnURL:   req.ReturnURL,
		Signature: c.signer.SignPaymentRequest(PaymentRequestFields{
			Amount:      req.Amount,
			CancelURL:   req.CancelURL,
			Description: req.Description,
			OrderCode:   req.OrderCode,
			ReturnURL:   req.ReturnURL,
		}),
	}
	if !req.ExpiresAt.IsZero() {
		body.ExpiredAt = req.ExpiresAt.Unix()
	}

	logger.ExternalServiceCall(serviceName, "create_payment_link", "orderCode", req.OrderCode, "amount", req.Amount)

	data, err := c.post(ctx, "create_payment_link", "/v2/payment-requests", body)
	if err != nil {
		logger.ExternalServiceResult(serviceName, "create_payment_link", err, "orderCode", req.OrderCode)
		return nil, domain.WrapError(domain.ErrCodePaymentLinkCreationFailed, err)
	}

	var link PaymentLink
	if err := json.Unmarshal(data, &link); err != nil {
		gwErr := &GatewayError{Operation: "create_payment_link", StatusCode: http.StatusOK, Err: fmt.Errorf("decode data: %w", err)}
		logger.ExternalServiceResult(serviceName, "create_payment_link", gwErr, "orderCode", req.OrderCode)
		return nil, domain.WrapError(domain.ErrCodePaymentLinkCreationFailed, gwErr)
	}
	if link.OrderCode == 0 {
		link.OrderCode = req.OrderCode
	}
	if link.Amount == 0 {
		link.Amount = req.Amount
	}

	logger.ExternalServiceResult(serviceName, "create_payment_link", nil, "orderCode", link.OrderCode, "paymentLinkId", link.PaymentLinkID)
	return &link, nil
}

// ConfirmWebhookURL registers url as the merchant's callback with the gateway.
func (c *Client) ConfirmWebhookURL(ctx context.Context, webhookURL string) error {
	if strings.TrimSpace(webhookURL) == "" {
		return domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "webhook url is required")
	}

	logger.ExternalServiceCall(serviceName, "confirm_webhook", "url", webhookURL)
	_, err := c.post(ctx, "confirm_webhook", "/confirm-webhook", map[string]string{"webhookUrl": webhookURL})
	logger.ExternalServiceResult(serviceName, "confirm_webhook", err)
	if err != nil {
		return domain.WrapError(domain.ErrCodePaymentLinkCreationFailed, err)
	}
	return nil
}

// post sends body and returns the envelope's data on business success.
// Every failure comes back as a *GatewayError.
func (c *Client) post(ctx context.Context, operation, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &GatewayError{Operation: operation, Err: fmt.Errorf("encode request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, &GatewayError{Operation: operation, Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-client-id", c.clientID)
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &GatewayError{Operation: operation, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &GatewayError{Operation: operation, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{Operation: operation, StatusCode: resp.StatusCode, Code: env.Code, Desc: env.Desc}
	}
	if decodeErr != nil {
		return nil, &GatewayError{Operation: operation, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if env.Code != CodeSuccess {
		return nil, &GatewayError{Operation: operation, StatusCode: resp.StatusCode, Code: env.Code, Desc: env.Desc}
	}
	return env.Data, nil
}
