package http

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/payment"
	"clubhub-backend/internal/service"
)

type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) reg(args mock.Arguments) (*domain.Registration, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}

func (m *MockRegistrationService) regs(args mock.Arguments) ([]domain.Registration, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Registration), args.Error(1)
}

func (m *MockRegistrationService) Create(ctx context.Context, actor domain.Actor, packageID int32, joinReason string) (*domain.Registration, error) {
	return m.reg(m.Called(ctx, actor, packageID, joinReason))
}
func (m *MockRegistrationService) Get(ctx context.Context, actor domain.Actor, id int32) (*domain.Registration, error) {
	return m.reg(m.Called(ctx, actor, id))
}
func (m *MockRegistrationService) ListMine(ctx context.Context, actor domain.Actor) ([]domain.Registration, error) {
	return m.regs(m.Called(ctx, actor))
}
func (m *MockRegistrationService) Cancel(ctx context.Context, actor domain.Actor, id int32) error {
	return m.Called(ctx, actor, id).Error(0)
}
func (m *MockRegistrationService) Renew(ctx context.Context, actor domain.Actor, id int32, newPackageID *int32) (*domain.Registration, error) {
	return m.reg(m.Called(ctx, actor, id, newPackageID))
}
func (m *MockRegistrationService) Leave(ctx context.Context, actor domain.Actor, id int32) (*domain.Registration, error) {
	return m.reg(m.Called(ctx, actor, id))
}
func (m *MockRegistrationService) LeaderApprove(ctx context.Context, actor domain.Actor, id int32, decision domain.RegistrationStatus) (*domain.Registration, error) {
	return m.reg(m.Called(ctx, actor, id, decision))
}
func (m *MockRegistrationService) ConfirmPayment(ctx context.Context, actor domain.Actor, id int32) (*domain.Registration, error) {
	return m.reg(m.Called(ctx, actor, id))
}
func (m *MockRegistrationService) ListForClub(ctx context.Context, actor domain.Actor, clubID int32, status string) ([]domain.Registration, error) {
	return m.regs(m.Called(ctx, actor, clubID, status))
}
func (m *MockRegistrationService) IssuePaymentLinkGuard(ctx context.Context, actor domain.Actor, id int32) (*domain.Registration, *domain.MembershipPackage, error) {
	args := m.Called(ctx, actor, id)
	return args.Get(0).(*domain.Registration), args.Get(1).(*domain.MembershipPackage), args.Error(2)
}
func (m *MockRegistrationService) AttachPaymentLink(ctx context.Context, id int32, orderCode int64, linkID string) (*domain.Registration, error) {
	return m.reg(m.Called(ctx, id, orderCode, linkID))
}
func (m *MockRegistrationService) ApplyPaidTransition(ctx context.Context, orderCode int64, amount int64, reference string) (*domain.Registration, bool, error) {
	args := m.Called(ctx, orderCode, amount, reference)
	return args.Get(0).(*domain.Registration), args.Bool(1), args.Error(2)
}
func (m *MockRegistrationService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}
func (m *MockRegistrationService) RemindExpiring(ctx context.Context, now time.Time, daysAhead int) (int, error) {
	args := m.Called(ctx, now, daysAhead)
	return args.Int(0), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreatePaymentLink(ctx context.Context, actor domain.Actor, id int32) (*service.PaymentLinkResult, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PaymentLinkResult), args.Error(1)
}
func (m *MockPaymentService) HandleWebhook(ctx context.Context, payload payment.WebhookPayload) (*service.WebhookOutcome, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.WebhookOutcome), args.Error(1)
}
func (m *MockPaymentService) ConfirmWebhookURL(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, id int32) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockClubRoleRepo struct {
	mock.Mock
}

func (m *MockClubRoleRepo) ListLeaderClubIDs(ctx context.Context, userID int32) ([]int32, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int32), args.Error(1)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }
