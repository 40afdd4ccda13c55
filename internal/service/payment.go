package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/payment"
)

type PaymentConfig struct {
	ReturnURL  string
	CancelURL  string
	LinkExpiry time.Duration
}

type paymentService struct {
	registrations RegistrationService
	gateway       PaymentGateway
	verifier      WebhookVerifier
	orderCodes    OrderCodeSource
	cfg           PaymentConfig
	now           func() time.Time
}

func NewPaymentService(
	registrations RegistrationService,
	gateway PaymentGateway,
	verifier WebhookVerifier,
	orderCodes OrderCodeSource,
	cfg PaymentConfig,
) PaymentService {
	return &paymentService{
		registrations: registrations,
		gateway:       gateway,
		verifier:      verifier,
		orderCodes:    orderCodes,
		cfg:           cfg,
		now:           time.Now,
	}
}

// CreatePaymentLink issues a fresh gateway order for an approved, unpaid registration.
func (s *paymentService) CreatePaymentLink(ctx context.Context, actor domain.Actor, registrationID int32) (*PaymentLinkResult, error) {
	reg, pkg, err := s.registrations.IssuePaymentLinkGuard(ctx, actor, registrationID)
	if err != nil {
		return nil, err
	}

	orderCode, err := s.orderCodes.Next()
	if err != nil {
		return nil, internalError(fmt.Errorf("generate order code: %w", err))
	}

	req := payment.CreateLinkRequest{
		OrderCode:   orderCode,
		Amount:      pkg.Price,
		Description: fmt.Sprintf("REG%d", reg.ID),
		ReturnURL:   s.cfg.ReturnURL,
		CancelURL:   s.cfg.CancelURL,
	}
	if s.cfg.LinkExpiry > 0 {
		req.ExpiresAt = s.now().Add(s.cfg.LinkExpiry)
	}

	link, err := s.gateway.CreatePaymentLink(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "Payment link creation failed", "registrationID", reg.ID, "orderCode", orderCode, "error", err)
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrCodePaymentLinkCreationFailed, err)
	}

	if _, err := s.registrations.AttachPaymentLink(ctx, reg.ID, orderCode, link.PaymentLinkID); err != nil {
		return nil, err
	}

	return &PaymentLinkResult{
		RegistrationID: reg.ID,
		CheckoutURL:    link.CheckoutURL,
		QRCode:         link.QRCode,
		OrderCode:      orderCode,
		PaymentLinkID:  link.PaymentLinkID,
		Amount:         pkg.Price,
	}, nil
}

// HandleWebhook verifies a gateway callback and applies the paid transition.
// A business failure reported by the gateway is acknowledged without mutation.
func (s *paymentService) HandleWebhook(ctx context.Context, payload payment.WebhookPayload) (*WebhookOutcome, error) {
	data := payload.SignedFields()
	if !s.verifier.VerifyWebhook(data, payload.Signature) {
		logger.SecurityEvent(ctx, "Webhook signature verification failed", "orderCode", data.OrderCode, "amount", data.Amount)
		return nil, domain.NewAppError(domain.ErrCodeInvalidPaymentSignature)
	}

	outcome := &WebhookOutcome{OrderCode: data.OrderCode}
	if !payload.Settled() {
		logger.InfoContext(ctx, "Webhook reports unsuccessful payment", "orderCode", data.OrderCode, "code", payload.Code, "desc", payload.Desc)
		outcome.Result = WebhookIgnored
		return outcome, nil
	}

	reference := payload.Data.Reference
	if reference == "" {
		reference = payload.Data.PaymentLinkID
	}

	reg, applied, err := s.registrations.ApplyPaidTransition(ctx, data.OrderCode, data.Amount, reference)
	if err != nil {
		return nil, err
	}

	outcome.RegistrationID = reg.ID
	outcome.Result = WebhookDuplicate
	if applied {
		outcome.Result = WebhookApplied
	}
	return outcome, nil
}

func (s *paymentService) ConfirmWebhookURL(ctx context.Context, webhookURL string) error {
	if err := s.gateway.ConfirmWebhookURL(ctx, webhookURL); err != nil {
		return err
	}
	logger.InfoContext(ctx, "Webhook URL confirmed with gateway", "url", webhookURL)
	return nil
}
