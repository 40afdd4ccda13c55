package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
)

type RegistrationConfig struct {
	DefaultTermMonths int
}

type registrationService struct {
	tx       repository.TxManager
	regRepo  repository.RegistrationRepository
	pkgRepo  repository.MembershipPackageRepository
	notifier Notifier
	cfg      RegistrationConfig
	now      func() time.Time
}

func NewRegistrationService(
	tx repository.TxManager,
	regRepo repository.RegistrationRepository,
	pkgRepo repository.MembershipPackageRepository,
	notifier Notifier,
	cfg RegistrationConfig,
) RegistrationService {
	return newRegistrationService(tx, regRepo, pkgRepo, notifier, cfg, time.Now)
}

func newRegistrationService(
	tx repository.TxManager,
	regRepo repository.RegistrationRepository,
	pkgRepo repository.MembershipPackageRepository,
	notifier Notifier,
	cfg RegistrationConfig,
	now func() time.Time,
) *registrationService {
	return &registrationService{
		tx:       tx,
		regRepo:  regRepo,
		pkgRepo:  pkgRepo,
		notifier: notifier,
		cfg:      cfg,
		now:      now,
	}
}

func internalError(err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return domain.WrapError(domain.ErrCodeInternal, err)
}

func (s *registrationService) loadPackage(ctx context.Context, id int32) (*domain.MembershipPackage, error) {
	pkg, err := s.pkgRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NewAppError(domain.ErrCodePackageNotFound)
	}
	if err != nil {
		return nil, internalError(err)
	}
	return pkg, nil
}

func (s *registrationService) lock(ctx context.Context, id int32) (*domain.Registration, error) {
	reg, err := s.regRepo.LockByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NewAppError(domain.ErrCodeRegistrationNotFound)
	}
	if err != nil {
		return nil, internalError(err)
	}
	return reg, nil
}

func (s *registrationService) update(ctx context.Context, reg *domain.Registration) error {
	if err := s.regRepo.Update(ctx, reg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewAppError(domain.ErrCodeRegistrationNotFound)
		}
		return internalError(err)
	}
	return nil
}

func (s *registrationService) Create(ctx context.Context, actor domain.Actor, packageID int32, joinReason string) (*domain.Registration, error) {
	joinReason = strings.TrimSpace(joinReason)
	if packageID <= 0 {
		return nil, domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "packageId is required")
	}
	if joinReason == "" {
		return nil, domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "joinReason is required")
	}

	pkg, err := s.loadPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive {
		return nil, domain.NewAppError(domain.ErrCodePackageNotActive)
	}

	existing, err := s.regRepo.FindOccupying(ctx, actor.UserID, packageID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, internalError(err)
	}
	if existing != nil {
		return nil, domain.NewAppError(domain.ErrCodeAlreadyRegistered)
	}

	member, err := s.regRepo.HasPaidMembershipInClub(ctx, actor.UserID, pkg.ClubID)
	if err != nil {
		return nil, internalError(err)
	}
	if member {
		return nil, domain.NewAppError(domain.ErrCodeAlreadyMember)
	}

	reg := &domain.Registration{
		UserID:     actor.UserID,
		PackageID:  pkg.ID,
		ClubID:     pkg.ClubID,
		Status:     domain.RegistrationStatusPendingReview,
		JoinReason: joinReason,
		IsPaid:     false,
	}
	if err := s.regRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.NewAppError(domain.ErrCodeAlreadyRegistered)
		}
		return nil, internalError(err)
	}

	logger.InfoContext(ctx, "Registration created", "registrationID", reg.ID, "userID", reg.UserID, "packageID", reg.PackageID)
	s.notifier.RegistrationCreated(ctx, reg, pkg)
	return reg, nil
}

func (s *registrationService) Get(ctx context.Context, actor domain.Actor, registrationID int32) (*domain.Registration, error) {
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NewAppError(domain.ErrCodeRegistrationNotFound)
	}
	if err != nil {
		return nil, internalError(err)
	}
	if reg.UserID != actor.UserID && !actor.LeadsClub(reg.ClubID) {
		return nil, domain.NewAppError(domain.ErrCodeUnauthorized)
	}
	return reg, nil
}

func (s *registrationService) ListMine(ctx context.Context, actor domain.Actor) ([]domain.Registration, error) {
	regs, err := s.regRepo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, internalError(err)
	}
	return regs, nil
}

// Cancel withdraws an application that has not been reviewed yet. The row is deleted.
func (s *registrationService) Cancel(ctx context.Context, actor domain.Actor, registrationID int32) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		reg, err := s.lock(ctx, registrationID)
		if err != nil {
			return err
		}
		if reg.UserID != actor.UserID {
			return domain.NewAppError(domain.ErrCodeUnauthorized)
		}
		if reg.Status != domain.RegistrationStatusPendingReview {
			return domain.NewAppErrorf(domain.ErrCodeInvalidApplicationStatus, "only pending registrations can be cancelled")
		}
		if err := s.regRepo.Delete(ctx, reg.ID); err != nil {
			return internalError(err)
		}
		logger.InfoContext(ctx, "Registration cancelled", "registrationID", reg.ID, "userID", actor.UserID)
		return nil
	})
}

// Renew reopens an expired registration. Payment metadata is cleared so a new
// link can be issued; the window is provisional until that payment settles.
func (s *registrationService) Renew(ctx context.Context, actor domain.Actor, registrationID int32, newPackageID *int32) (*domain.Registration, error) {
	var reg *domain.Registration
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		reg, err = s.lock(ctx, registrationID)
		if err != nil {
			return err
		}
		if reg.UserID != actor.UserID {
			return domain.NewAppError(domain.ErrCodeUnauthorized)
		}
		if reg.Status != domain.RegistrationStatusExpired {
			return domain.NewAppError(domain.ErrCodeCannotRenewSubscription)
		}

		pkgID := reg.PackageID
		if newPackageID != nil {
			pkgID = *newPackageID
		}
		pkg, err := s.loadPackage(ctx, pkgID)
		if err != nil {
			return err
		}
		if !pkg.IsActive {
			return domain.NewAppError(domain.ErrCodePackageNotActive)
		}
		if pkg.ClubID != reg.ClubID {
			return domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "package belongs to a different club")
		}

		member, err := s.regRepo.HasPaidMembershipInClub(ctx, reg.UserID, pkg.ClubID)
		if err != nil {
			return internalError(err)
		}
		if member {
			return domain.NewAppError(domain.ErrCodeAlreadyMember)
		}

		now := s.now()
		end := pkg.TermEnd(now, s.cfg.DefaultTermMonths)
		reg.PackageID = pkg.ID
		reg.Status = domain.RegistrationStatusApproved
		reg.ClearPayment()
		reg.StartDate = &now
		reg.EndDate = &end

		if err := s.regRepo.Update(ctx, reg); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return domain.NewAppError(domain.ErrCodeAlreadyRegistered)
			}
			return internalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Registration renewed", "registrationID", reg.ID, "packageID", reg.PackageID)
	s.notifier.RegistrationRenewed(ctx, reg)
	return reg, nil
}

func (s *registrationService) Leave(ctx context.Context, actor domain.Actor, registrationID int32) (*domain.Registration, error) {
	var reg *domain.Registration
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		reg, err = s.lock(ctx, registrationID)
		if err != nil {
			return err
		}
		if reg.UserID != actor.UserID {
			return domain.NewAppError(domain.ErrCodeUnauthorized)
		}
		if reg.Status != domain.RegistrationStatusApproved {
			return domain.NewAppErrorf(domain.ErrCodeInvalidApplicationStatus, "only approved registrations can leave")
		}
		reg.EndMembership(domain.RegistrationStatusLeft, s.now())
		return s.update(ctx, reg)
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Member left club", "registrationID", reg.ID, "clubID", reg.ClubID)
	return reg, nil
}

// IssuePaymentLinkGuard checks, in order: ownership, not already paid,
// approved, and a positive package price.
func (s *registrationService) IssuePaymentLinkGuard(ctx context.Context, actor domain.Actor, registrationID int32) (*domain.Registration, *domain.MembershipPackage, error) {
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, domain.NewAppError(domain.ErrCodeRegistrationNotFound)
	}
	if err != nil {
		return nil, nil, internalError(err)
	}
	if reg.UserID != actor.UserID {
		return nil, nil, domain.NewAppError(domain.ErrCodeUnauthorized)
	}
	if reg.IsPaid {
		return nil, nil, domain.NewAppError(domain.ErrCodePaymentAlreadyProcessed)
	}
	if reg.Status != domain.RegistrationStatusApproved {
		return nil, nil, domain.NewAppErrorf(domain.ErrCodeInvalidApplicationStatus, "registration must be approved before payment")
	}

	pkg, err := s.loadPackage(ctx, reg.PackageID)
	if err != nil {
		return nil, nil, err
	}
	if pkg.Price <= 0 {
		return nil, nil, domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "package has no price to pay")
	}
	return reg, pkg, nil
}

// AttachPaymentLink records a new gateway order for the registration. The
// registration shows the latest order code; earlier codes stay payable through
// their payment attempt rows.
func (s *registrationService) AttachPaymentLink(ctx context.Context, registrationID int32, orderCode int64, paymentLinkID string) (*domain.Registration, error) {
	var reg *domain.Registration
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		reg, err = s.lock(ctx, registrationID)
		if err != nil {
			return err
		}
		if reg.IsPaid {
			return domain.NewAppError(domain.ErrCodePaymentAlreadyProcessed)
		}
		if reg.Status != domain.RegistrationStatusApproved {
			return domain.NewAppErrorf(domain.ErrCodeInvalidApplicationStatus, "registration must be approved before payment")
		}

		attempt := &domain.PaymentAttempt{OrderCode: orderCode, RegistrationID: reg.ID, PaymentLinkID: paymentLinkID}
		if err := s.regRepo.AddPaymentAttempt(ctx, attempt); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return domain.WrapError(domain.ErrCodePaymentLinkCreationFailed, err)
			}
			return internalError(err)
		}

		reg.OrderCode = &orderCode
		reg.PaymentLinkID = &paymentLinkID
		if err := s.regRepo.Update(ctx, reg); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return domain.WrapError(domain.ErrCodePaymentLinkCreationFailed, err)
			}
			return internalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Payment link attached", "registrationID", reg.ID, "orderCode", orderCode)
	return reg, nil
}

// ApplyPaidTransition settles the payment attempt for orderCode and marks its
// registration paid. A replay of a settled attempt is a successful no-op
// (applied=false), as is money captured for a registration that another
// attempt or a cash confirmation already paid.
func (s *registrationService) ApplyPaidTransition(ctx context.Context, orderCode int64, observedAmount int64, reference string) (*domain.Registration, bool, error) {
	var reg *domain.Registration
	applied := false
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		attempt, err := s.regRepo.LockPaymentAttempt(ctx, orderCode)
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewAppError(domain.ErrCodePaymentNotFound)
		}
		if err != nil {
			return internalError(err)
		}

		reg, err = s.lock(ctx, attempt.RegistrationID)
		if err != nil {
			return err
		}

		if attempt.Settled() {
			logger.InfoContext(ctx, "Duplicate payment notification ignored", "registrationID", reg.ID, "orderCode", orderCode)
			return nil
		}

		now := s.now()
		if reg.IsPaid {
			logger.SecurityEvent(ctx, "Payment captured for an already paid registration",
				"registrationID", reg.ID, "orderCode", orderCode, "observedAmount", observedAmount, "reference", reference)
			return s.settleAttempt(ctx, orderCode, reference, now)
		}

		pkg, err := s.loadPackage(ctx, reg.PackageID)
		if err != nil {
			return err
		}
		if observedAmount != pkg.Price {
			logger.SecurityEvent(ctx, "Payment amount does not match package price",
				"registrationID", reg.ID, "orderCode", orderCode, "observedAmount", observedAmount, "expectedAmount", pkg.Price)
			return domain.NewAppError(domain.ErrCodeInvalidPaymentSignature)
		}
		if reg.Status != domain.RegistrationStatusApproved {
			return domain.NewAppErrorf(domain.ErrCodeInvalidApplicationStatus, "registration is %s, not approved", reg.Status)
		}

		reg.MarkPaid(now, pkg.TermEnd(now, s.cfg.DefaultTermMonths), domain.PaymentMethodGateway, reference)
		if err := s.update(ctx, reg); err != nil {
			return err
		}
		if err := s.settleAttempt(ctx, orderCode, reference, now); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if applied {
		logger.InfoContext(ctx, "Registration paid", "registrationID", reg.ID, "orderCode", orderCode, "endDate", reg.EndDate)
		s.notifier.PaymentConfirmed(ctx, reg)
	}
	return reg, applied, nil
}

func (s *registrationService) settleAttempt(ctx context.Context, orderCode int64, reference string, at time.Time) error {
	if err := s.regRepo.SettlePaymentAttempt(ctx, orderCode, reference, at); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewAppError(domain.ErrCodePaymentNotFound)
		}
		return internalError(err)
	}
	return nil
}

// ExpireOverdue moves paid memberships past their end date to EXPIRED.
func (s *registrationService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.regRepo.ExpireOverdue(ctx, now)
	if err != nil {
		return 0, internalError(err)
	}
	for i := range expired {
		s.notifier.MembershipExpired(ctx, &expired[i])
	}
	return len(expired), nil
}

// RemindExpiring notifies members whose membership ends during the single day
// that is daysAhead days from now, so a daily run reminds each member once.
func (s *registrationService) RemindExpiring(ctx context.Context, now time.Time, daysAhead int) (int, error) {
	if daysAhead <= 0 {
		return 0, nil
	}
	from := now.AddDate(0, 0, daysAhead-1)
	to := now.AddDate(0, 0, daysAhead)
	regs, err := s.regRepo.ListExpiringBetween(ctx, from, to)
	if err != nil {
		return 0, internalError(err)
	}
	for i := range regs {
		s.notifier.MembershipExpiring(ctx, &regs[i])
	}
	return len(regs), nil
}
