package service

import (
	"context"

	"github.com/google/uuid"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
)

const cashReferencePrefix = "CASH-"

func (s *registrationService) LeaderApprove(ctx context.Context, actor domain.Actor, registrationID int32, decision domain.RegistrationStatus) (*domain.Registration, error) {
	if decision != domain.RegistrationStatusApproved && decision != domain.RegistrationStatusRejected {
		return nil, domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "status must be APPROVED or REJECTED")
	}

	var reg *domain.Registration
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		reg, err = s.lock(ctx, registrationID)
		if err != nil {
			return err
		}
		if !actor.LeadsClub(reg.ClubID) {
			return domain.NewAppError(domain.ErrCodeNotClubLeader)
		}
		if reg.Status != domain.RegistrationStatusPendingReview {
			return domain.NewAppError(domain.ErrCodeApplicationAlreadyReviewed)
		}

		approver := actor.UserID
		reg.Status = decision
		reg.ApproverID = &approver
		if decision == domain.RegistrationStatusApproved {
			now := s.now()
			reg.JoinDate = &now
		}
		return s.update(ctx, reg)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Registration reviewed", "registrationID", reg.ID, "decision", decision, "approverID", actor.UserID)
	s.notifier.RegistrationReviewed(ctx, reg)
	return reg, nil
}

// ConfirmPayment records an offline (cash) payment taken by a club leader.
func (s *registrationService) ConfirmPayment(ctx context.Context, actor domain.Actor, registrationID int32) (*domain.Registration, error) {
	var reg *domain.Registration
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		reg, err = s.lock(ctx, registrationID)
		if err != nil {
			return err
		}
		if !actor.LeadsClub(reg.ClubID) {
			return domain.NewAppError(domain.ErrCodeNotClubLeader)
		}
		if reg.IsPaid {
			return domain.NewAppError(domain.ErrCodePaymentAlreadyProcessed)
		}
		if reg.Status != domain.RegistrationStatusApproved {
			return domain.NewAppErrorf(domain.ErrCodeInvalidApplicationStatus, "registration must be approved before payment")
		}

		pkg, err := s.loadPackage(ctx, reg.PackageID)
		if err != nil {
			return err
		}

		now := s.now()
		reg.MarkPaid(now, pkg.TermEnd(now, s.cfg.DefaultTermMonths), domain.PaymentMethodCash, cashReferencePrefix+uuid.NewString())
		return s.update(ctx, reg)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Cash payment confirmed", "registrationID", reg.ID, "leaderID", actor.UserID)
	s.notifier.PaymentConfirmed(ctx, reg)
	return reg, nil
}

func (s *registrationService) ListForClub(ctx context.Context, actor domain.Actor, clubID int32, status string) ([]domain.Registration, error) {
	if !actor.LeadsClub(clubID) {
		return nil, domain.NewAppError(domain.ErrCodeNotClubLeader)
	}

	var statuses []domain.RegistrationStatus
	if status != "" {
		st := domain.RegistrationStatus(status)
		if !st.Valid() {
			return nil, domain.NewAppErrorf(domain.ErrCodeInvalidRequest, "unknown status %q", status)
		}
		statuses = append(statuses, st)
	}

	regs, err := s.regRepo.ListByClubAndStatus(ctx, clubID, statuses)
	if err != nil {
		return nil, internalError(err)
	}
	return regs, nil
}
