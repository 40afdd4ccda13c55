package repository

import (
	"context"
	"errors"
	"time"

	"clubhub-backend/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// TxManager runs fn inside a single database transaction. Repositories called
// with the context handed to fn take part in that transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type RegistrationRepository interface {
	Create(ctx context.Context, reg *domain.Registration) error
	GetByID(ctx context.Context, id int32) (*domain.Registration, error)
	Update(ctx context.Context, reg *domain.Registration) error
	Delete(ctx context.Context, id int32) error

	// Row-locking reads, only meaningful inside WithinTx.
	LockByID(ctx context.Context, id int32) (*domain.Registration, error)
	LockPaymentAttempt(ctx context.Context, orderCode int64) (*domain.PaymentAttempt, error)

	// Every issued order code is kept so any link the member pays resolves.
	AddPaymentAttempt(ctx context.Context, attempt *domain.PaymentAttempt) error
	SettlePaymentAttempt(ctx context.Context, orderCode int64, reference string, settledAt time.Time) error

	FindOccupying(ctx context.Context, userID, packageID int32) (*domain.Registration, error)
	HasPaidMembershipInClub(ctx context.Context, userID, clubID int32) (bool, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.Registration, error)
	ListByClubAndStatus(ctx context.Context, clubID int32, statuses []domain.RegistrationStatus) ([]domain.Registration, error)

	ExpireOverdue(ctx context.Context, now time.Time) ([]domain.Registration, error)
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Registration, error)
}

type MembershipPackageRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.MembershipPackage, error)
}

type ClubRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Club, error)
}

// ClubRoleRepository is the capability source used to build a domain.Actor.
type ClubRoleRepository interface {
	ListLeaderClubIDs(ctx context.Context, userID int32) ([]int32, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
