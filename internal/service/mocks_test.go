package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/payment"
)

// fakeTx runs fn inline; locking is the database's job and is covered by repository tests.
type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockRegistrationRepo
type MockRegistrationRepo struct {
	mock.Mock
}

func (m *MockRegistrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}
func (m *MockRegistrationRepo) GetByID(ctx context.Context, id int32) (*domain.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}
func (m *MockRegistrationRepo) Update(ctx context.Context, reg *domain.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}
func (m *MockRegistrationRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockRegistrationRepo) LockByID(ctx context.Context, id int32) (*domain.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}
func (m *MockRegistrationRepo) LockPaymentAttempt(ctx context.Context, orderCode int64) (*domain.PaymentAttempt, error) {
	args := m.Called(ctx, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentAttempt), args.Error(1)
}
func (m *MockRegistrationRepo) AddPaymentAttempt(ctx context.Context, attempt *domain.PaymentAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}
func (m *MockRegistrationRepo) SettlePaymentAttempt(ctx context.Context, orderCode int64, reference string, settledAt time.Time) error {
	args := m.Called(ctx, orderCode, reference, settledAt)
	return args.Error(0)
}
func (m *MockRegistrationRepo) FindOccupying(ctx context.Context, userID, packageID int32) (*domain.Registration, error) {
	args := m.Called(ctx, userID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Registration), args.Error(1)
}
func (m *MockRegistrationRepo) HasPaidMembershipInClub(ctx context.Context, userID, clubID int32) (bool, error) {
	args := m.Called(ctx, userID, clubID)
	return args.Bool(0), args.Error(1)
}
func (m *MockRegistrationRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Registration, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Registration), args.Error(1)
}
func (m *MockRegistrationRepo) ListByClubAndStatus(ctx context.Context, clubID int32, statuses []domain.RegistrationStatus) ([]domain.Registration, error) {
	args := m.Called(ctx, clubID, statuses)
	return args.Get(0).([]domain.Registration), args.Error(1)
}
func (m *MockRegistrationRepo) ExpireOverdue(ctx context.Context, now time.Time) ([]domain.Registration, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Registration), args.Error(1)
}
func (m *MockRegistrationRepo) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Registration, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.Registration), args.Error(1)
}

// MockPackageRepo
type MockPackageRepo struct {
	mock.Mock
}

func (m *MockPackageRepo) GetByID(ctx context.Context, id int32) (*domain.MembershipPackage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MembershipPackage), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockClubRepo
type MockClubRepo struct {
	mock.Mock
}

func (m *MockClubRepo) GetByID(ctx context.Context, id int32) (*domain.Club, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Club), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendRegistrationReceived(ctx context.Context, email, name, clubName, packageName string) error {
	args := m.Called(ctx, email, name, clubName, packageName)
	return args.Error(0)
}
func (m *MockEmailService) SendApplicationReviewed(ctx context.Context, email, name, clubName string, approved bool) error {
	args := m.Called(ctx, email, name, clubName, approved)
	return args.Error(0)
}
func (m *MockEmailService) SendPaymentConfirmed(ctx context.Context, email, name, clubName string, validUntil time.Time) error {
	args := m.Called(ctx, email, name, clubName, validUntil)
	return args.Error(0)
}
func (m *MockEmailService) SendMembershipExpiring(ctx context.Context, email, name, clubName string, endDate time.Time) error {
	args := m.Called(ctx, email, name, clubName, endDate)
	return args.Error(0)
}
func (m *MockEmailService) SendMembershipExpired(ctx context.Context, email, name, clubName string) error {
	args := m.Called(ctx, email, name, clubName)
	return args.Error(0)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, v any) error {
	args := m.Called(ctx, routingKey, v)
	return args.Error(0)
}
func (m *MockPublisher) Close() error {
	return nil
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) RegistrationCreated(ctx context.Context, reg *domain.Registration, pkg *domain.MembershipPackage) {
	m.Called(ctx, reg, pkg)
}
func (m *MockNotifier) RegistrationReviewed(ctx context.Context, reg *domain.Registration) {
	m.Called(ctx, reg)
}
func (m *MockNotifier) RegistrationRenewed(ctx context.Context, reg *domain.Registration) {
	m.Called(ctx, reg)
}
func (m *MockNotifier) PaymentConfirmed(ctx context.Context, reg *domain.Registration) {
	m.Called(ctx, reg)
}
func (m *MockNotifier) MembershipExpiring(ctx context.Context, reg *domain.Registration) {
	m.Called(ctx, reg)
}
func (m *MockNotifier) MembershipExpired(ctx context.Context, reg *domain.Registration) {
	m.Called(ctx, reg)
}

// MockGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePaymentLink(ctx context.Context, req payment.CreateLinkRequest) (*payment.PaymentLink, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PaymentLink), args.Error(1)
}
func (m *MockGateway) ConfirmWebhookURL(ctx context.Context, webhookURL string) error {
	args := m.Called(ctx, webhookURL)
	return args.Error(0)
}

// fixedOrderCodes hands out a predetermined sequence of order codes.
type fixedOrderCodes struct {
	codes []int64
}

func (f *fixedOrderCodes) Next() (int64, error) {
	code := f.codes[0]
	f.codes = f.codes[1:]
	return code, nil
}
