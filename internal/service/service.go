package service

import (
	"context"
	"time"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/payment"
)

// RegistrationService owns every legal transition of a membership registration.
// Callers pass the authenticated actor explicitly.
type RegistrationService interface {
	Create(ctx context.Context, actor domain.Actor, packageID int32, joinReason string) (*domain.Registration, error)
	Get(ctx context.Context, actor domain.Actor, registrationID int32) (*domain.Registration, error)
	ListMine(ctx context.Context, actor domain.Actor) ([]domain.Registration, error)
	Cancel(ctx context.Context, actor domain.Actor, registrationID int32) error
	Renew(ctx context.Context, actor domain.Actor, registrationID int32, newPackageID *int32) (*domain.Registration, error)
	Leave(ctx context.Context, actor domain.Actor, registrationID int32) (*domain.Registration, error)

	// Leader operations
	LeaderApprove(ctx context.Context, actor domain.Actor, registrationID int32, decision domain.RegistrationStatus) (*domain.Registration, error)
	ConfirmPayment(ctx context.Context, actor domain.Actor, registrationID int32) (*domain.Registration, error)
	ListForClub(ctx context.Context, actor domain.Actor, clubID int32, status string) ([]domain.Registration, error)

	// Payment settlement
	IssuePaymentLinkGuard(ctx context.Context, actor domain.Actor, registrationID int32) (*domain.Registration, *domain.MembershipPackage, error)
	AttachPaymentLink(ctx context.Context, registrationID int32, orderCode int64, paymentLinkID string) (*domain.Registration, error)
	ApplyPaidTransition(ctx context.Context, orderCode int64, observedAmount int64, reference string) (*domain.Registration, bool, error)

	// Scheduled maintenance
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
	RemindExpiring(ctx context.Context, now time.Time, daysAhead int) (int, error)
}

type PaymentService interface {
	CreatePaymentLink(ctx context.Context, actor domain.Actor, registrationID int32) (*PaymentLinkResult, error)
	HandleWebhook(ctx context.Context, payload payment.WebhookPayload) (*WebhookOutcome, error)
	ConfirmWebhookURL(ctx context.Context, webhookURL string) error
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	SendRegistrationReceived(ctx context.Context, email, name, clubName, packageName string) error
	SendApplicationReviewed(ctx context.Context, email, name, clubName string, approved bool) error
	SendPaymentConfirmed(ctx context.Context, email, name, clubName string, validUntil time.Time) error
	SendMembershipExpiring(ctx context.Context, email, name, clubName string, endDate time.Time) error
	SendMembershipExpired(ctx context.Context, email, name, clubName string) error
}

// Notifier fans a committed transition out to email, in-app notifications and
// the event bus. Failures are logged and never returned.
type Notifier interface {
	RegistrationCreated(ctx context.Context, reg *domain.Registration, pkg *domain.MembershipPackage)
	RegistrationReviewed(ctx context.Context, reg *domain.Registration)
	RegistrationRenewed(ctx context.Context, reg *domain.Registration)
	PaymentConfirmed(ctx context.Context, reg *domain.Registration)
	MembershipExpiring(ctx context.Context, reg *domain.Registration)
	MembershipExpired(ctx context.Context, reg *domain.Registration)
}

// PaymentGateway is the subset of the PayOS client used by PaymentService.
type PaymentGateway interface {
	CreatePaymentLink(ctx context.Context, req payment.CreateLinkRequest) (*payment.PaymentLink, error)
	ConfirmWebhookURL(ctx context.Context, webhookURL string) error
}

type WebhookVerifier interface {
	VerifyWebhook(data payment.WebhookData, signature string) bool
}

type OrderCodeSource interface {
	Next() (int64, error)
}

type PaymentLinkResult struct {
	RegistrationID int32  `json:"subscriptionId"`
	CheckoutURL    string `json:"checkoutUrl"`
	QRCode         string `json:"qrCode"`
	OrderCode      int64  `json:"orderCode"`
	PaymentLinkID  string `json:"paymentLinkId"`
	Amount         int64  `json:"amount"`
}

type WebhookResult string

const (
	WebhookApplied   WebhookResult = "APPLIED"
	WebhookDuplicate WebhookResult = "DUPLICATE"
	WebhookIgnored   WebhookResult = "IGNORED"
)

type WebhookOutcome struct {
	OrderCode      int64
	RegistrationID int32
	Result         WebhookResult
}
