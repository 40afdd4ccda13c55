package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository"
	"clubhub-backend/internal/service"
)

const (
	memberID int32 = 1
	leaderID int32 = 2
	clubID   int32 = 3
	pkgID    int32 = 4
	regID    int32 = 7
)

var (
	member = domain.Actor{UserID: memberID}
	leader = domain.Actor{UserID: leaderID, LeaderClubIDs: []int32{clubID}}
)

type regFixture struct {
	regRepo  *MockRegistrationRepo
	pkgRepo  *MockPackageRepo
	notifier *MockNotifier
	svc      service.RegistrationService
}

func newRegFixture() *regFixture {
	f := &regFixture{
		regRepo:  new(MockRegistrationRepo),
		pkgRepo:  new(MockPackageRepo),
		notifier: new(MockNotifier),
	}
	f.svc = service.NewRegistrationService(fakeTx{}, f.regRepo, f.pkgRepo, f.notifier, service.RegistrationConfig{DefaultTermMonths: 12})
	return f
}

func activePackage() *domain.MembershipPackage {
	return &domain.MembershipPackage{ID: pkgID, ClubID: clubID, Name: "Yearly", Price: 50000, TermMonths: 12, IsActive: true}
}

func registrationIn(status domain.RegistrationStatus) *domain.Registration {
	return &domain.Registration{ID: regID, UserID: memberID, PackageID: pkgID, ClubID: clubID, Status: status, JoinReason: "I like chess"}
}

func assertCode(t *testing.T, err error, code domain.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, domain.CodeOf(err), "error: %v", err)
}

func TestRegistrationService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newRegFixture()
		pkg := activePackage()
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(pkg, nil)
		f.regRepo.On("FindOccupying", ctx, memberID, pkgID).Return(nil, repository.ErrNotFound)
		f.regRepo.On("HasPaidMembershipInClub", ctx, memberID, clubID).Return(false, nil)
		f.regRepo.On("Create", ctx, mock.AnythingOfType("*domain.Registration")).
			Run(func(args mock.Arguments) { args.Get(1).(*domain.Registration).ID = regID }).
			Return(nil)
		f.notifier.On("RegistrationCreated", ctx, mock.AnythingOfType("*domain.Registration"), pkg).Return()

		reg, err := f.svc.Create(ctx, member, pkgID, "  I like chess ")
		require.NoError(t, err)
		assert.Equal(t, regID, reg.ID)
		assert.Equal(t, domain.RegistrationStatusPendingReview, reg.Status)
		assert.False(t, reg.IsPaid)
		assert.Equal(t, clubID, reg.ClubID)
		assert.Equal(t, "I like chess", reg.JoinReason)
		f.notifier.AssertExpectations(t)
	})

	t.Run("MissingJoinReason", func(t *testing.T) {
		f := newRegFixture()
		_, err := f.svc.Create(ctx, member, pkgID, "   ")
		assertCode(t, err, domain.ErrCodeInvalidRequest)
		f.pkgRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("PackageNotFound", func(t *testing.T) {
		f := newRegFixture()
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(nil, repository.ErrNotFound)

		_, err := f.svc.Create(ctx, member, pkgID, "reason")
		assertCode(t, err, domain.ErrCodePackageNotFound)
	})

	t.Run("PackageNotActive", func(t *testing.T) {
		f := newRegFixture()
		pkg := activePackage()
		pkg.IsActive = false
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(pkg, nil)

		_, err := f.svc.Create(ctx, member, pkgID, "reason")
		assertCode(t, err, domain.ErrCodePackageNotActive)
	})

	t.Run("AlreadyRegistered", func(t *testing.T) {
		f := newRegFixture()
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(activePackage(), nil)
		f.regRepo.On("FindOccupying", ctx, memberID, pkgID).Return(registrationIn(domain.RegistrationStatusExpired), nil)

		_, err := f.svc.Create(ctx, member, pkgID, "reason")
		assertCode(t, err, domain.ErrCodeAlreadyRegistered)
		f.regRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("AlreadyMember", func(t *testing.T) {
		f := newRegFixture()
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(activePackage(), nil)
		f.regRepo.On("FindOccupying", ctx, memberID, pkgID).Return(nil, repository.ErrNotFound)
		f.regRepo.On("HasPaidMembershipInClub", ctx, memberID, clubID).Return(true, nil)

		_, err := f.svc.Create(ctx, member, pkgID, "reason")
		assertCode(t, err, domain.ErrCodeAlreadyMember)
	})

	t.Run("ConcurrentDuplicateRejectedByStore", func(t *testing.T) {
		f := newRegFixture()
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(activePackage(), nil)
		f.regRepo.On("FindOccupying", ctx, memberID, pkgID).Return(nil, repository.ErrNotFound)
		f.regRepo.On("HasPaidMembershipInClub", ctx, memberID, clubID).Return(false, nil)
		f.regRepo.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate)

		_, err := f.svc.Create(ctx, member, pkgID, "reason")
		assertCode(t, err, domain.ErrCodeAlreadyRegistered)
		f.notifier.AssertNotCalled(t, "RegistrationCreated", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		f := newRegFixture()
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(nil, errors.New("connection reset"))

		_, err := f.svc.Create(ctx, member, pkgID, "reason")
		assertCode(t, err, domain.ErrCodeInternal)
	})
}

func TestRegistrationService_LeaderApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("Approve", func(t *testing.T) {
		f := newRegFixture()
		reg := registrationIn(domain.RegistrationStatusPendingReview)
		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)
		f.regRepo.On("Update", ctx, reg).Return(nil)
		f.notifier.On("RegistrationReviewed", ctx, reg).Return()

		res, err := f.svc.LeaderApprove(ctx, leader, regID, domain.RegistrationStatusApproved)
		require.NoError(t, err)
		assert.Equal(t, domain.RegistrationStatusApproved, res.Status)
		require.NotNil(t, res.ApproverID)
		assert.Equal(t, leaderID, *res.ApproverID)
		require.NotNil(t, res.JoinDate)
		assert.WithinDuration(t, time.Now(), *res.JoinDate, time.Second)
		assert.False(t, res.IsPaid)
	})

	t.Run("Reject", func(t *testing.T) {
		f := newRegFixture()
		reg := registrationIn(domain.RegistrationStatusPendingReview)
		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)
		f.regRepo.On("Update", ctx, reg).Return(nil)
		f.notifier.On("RegistrationReviewed", ctx, reg).Return()

		res, err := f.svc.LeaderApprove(ctx, leader, regID, domain.RegistrationStatusRejected)
		require.NoError(t, err)
		assert.Equal(t, domain.RegistrationStatusRejected, res.Status)
		assert.Equal(t, leaderID, *res.ApproverID)
		assert.Nil(t, res.JoinDate)
	})

	t.Run("InvalidDecision", func(t *testing.T) {
		f := newRegFixture()
		_, err := f.svc.LeaderApprove(ctx, leader, regID, domain.RegistrationStatusExpired)
		assertCode(t, err, domain.ErrCodeInvalidRequest)
		f.regRepo.AssertNotCalled(t, "LockByID", mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("LockByID", ctx, regID).Return(nil, repository.ErrNotFound)

		_, err := f.svc.LeaderApprove(ctx, leader, regID, domain.RegistrationStatusApproved)
		assertCode(t, err, domain.ErrCodeRegistrationNotFound)
	})

	t.Run("NotClubLeader", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("LockByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusPendingReview), nil)

		otherLeader := domain.Actor{UserID: 9, LeaderClubIDs: []int32{clubID + 1}}
		_, err := f.svc.LeaderApprove(ctx, otherLeader, regID, domain.RegistrationStatusApproved)
		assertCode(t, err, domain.ErrCodeNotClubLeader)
		f.regRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("AlreadyReviewed", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("LockByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusApproved), nil)

		_, err := f.svc.LeaderApprove(ctx, leader, regID, domain.RegistrationStatusRejected)
		assertCode(t, err, domain.ErrCodeApplicationAlreadyReviewed)
		f.regRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestRegistrationService_IssuePaymentLinkGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("GetByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusApproved), nil)
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(activePackage(), nil)

		reg, pkg, err := f.svc.IssuePaymentLinkGuard(ctx, member, regID)
		require.NoError(t, err)
		assert.Equal(t, regID, reg.ID)
		assert.Equal(t, int64(50000), pkg.Price)
	})

	t.Run("NotOwner", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("GetByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusApproved), nil)

		_, _, err := f.svc.IssuePaymentLinkGuard(ctx, domain.Actor{UserID: 99}, regID)
		assertCode(t, err, domain.ErrCodeUnauthorized)
	})

	t.Run("PaidIsCheckedBeforeStatus", func(t *testing.T) {
		f := newRegFixture()
		reg := registrationIn(domain.RegistrationStatusExpired)
		reg.IsPaid = true
		f.regRepo.On("GetByID", ctx, regID).Return(reg, nil)

		_, _, err := f.svc.IssuePaymentLinkGuard(ctx, member, regID)
		assertCode(t, err, domain.ErrCodePaymentAlreadyProcessed)
	})

	t.Run("NotApproved", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("GetByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusPendingReview), nil)

		_, _, err := f.svc.IssuePaymentLinkGuard(ctx, member, regID)
		assertCode(t, err, domain.ErrCodeInvalidApplicationStatus)
		f.pkgRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("FreePackage", func(t *testing.T) {
		f := newRegFixture()
		pkg := activePackage()
		pkg.Price = 0
		f.regRepo.On("GetByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusApproved), nil)
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(pkg, nil)

		_, _, err := f.svc.IssuePaymentLinkGuard(ctx, member, regID)
		assertCode(t, err, domain.ErrCodeInvalidRequest)
	})
}

func attemptFor(orderCode int64) *domain.PaymentAttempt {
	return &domain.PaymentAttempt{OrderCode: orderCode, RegistrationID: regID, PaymentLinkID: "plink"}
}

func TestRegistrationService_AttachPaymentLink(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newRegFixture()
		reg := registrationIn(domain.RegistrationStatusApproved)
		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)
		f.regRepo.On("AddPaymentAttempt", ctx, mock.MatchedBy(func(a *domain.PaymentAttempt) bool {
			return a.OrderCode == 123 && a.RegistrationID == regID && a.PaymentLinkID == "plink-1"
		})).Return(nil)
		f.regRepo.On("Update", ctx, reg).Return(nil)

		res, err := f.svc.AttachPaymentLink(ctx, regID, 123, "plink-1")
		require.NoError(t, err)
		assert.Equal(t, int64(123), *res.OrderCode)
		assert.Equal(t, "plink-1", *res.PaymentLinkID)
		assert.Equal(t, domain.RegistrationStatusApproved, res.Status)
		assert.False(t, res.IsPaid)
	})

	t.Run("DuplicateOrderCode", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("LockByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusApproved), nil)
		f.regRepo.On("AddPaymentAttempt", ctx, mock.Anything).Return(repository.ErrDuplicate)

		_, err := f.svc.AttachPaymentLink(ctx, regID, 123, "plink-1")
		assertCode(t, err, domain.ErrCodePaymentLinkCreationFailed)
		f.regRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("PaidMeanwhile", func(t *testing.T) {
		f := newRegFixture()
		reg := registrationIn(domain.RegistrationStatusApproved)
		reg.IsPaid = true
		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)

		_, err := f.svc.AttachPaymentLink(ctx, regID, 123, "plink-1")
		assertCode(t, err, domain.ErrCodePaymentAlreadyProcessed)
		f.regRepo.AssertNotCalled(t, "AddPaymentAttempt", mock.Anything, mock.Anything)
	})
}

func TestRegistrationService_ApplyPaidTransition(t *testing.T) {
	ctx := context.Background()
	orderCode := int64(123)

	withOrder := func() *domain.Registration {
		reg := registrationIn(domain.RegistrationStatusApproved)
		reg.OrderCode = &orderCode
		return reg
	}

	t.Run("Success", func(t *testing.T) {
		f := newRegFixture()
		reg := withOrder()
		f.regRepo.On("LockPaymentAttempt", ctx, orderCode).Return(attemptFor(orderCode), nil)
		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(activePackage(), nil)
		f.regRepo.On("Update", ctx, reg).Return(nil)
		f.regRepo.On("SettlePaymentAttempt", ctx, orderCode, "FT123", mock.AnythingOfType("time.Time")).Return(nil)
		f.notifier.On("PaymentConfirmed", ctx, reg).Return()

		res, applied, err := f.svc.ApplyPaidTransition(ctx, orderCode, 50000, "FT123")
		require.NoError(t, err)
		assert.True(t, applied)
		assert.True(t, res.IsPaid)
		assert.Equal(t, domain.PaymentMethodGateway, *res.PaymentMethod)
		assert.Equal(t, "FT123", *res.PaymentReference)
		assert.WithinDuration(t, time.Now(), *res.StartDate, time.Second)
		assert.WithinDuration(t, res.StartDate.AddDate(0, 12, 0), *res.EndDate, time.Second)
		f.regRepo.AssertCalled(t, "SettlePaymentAttempt", ctx, orderCode, "FT123", mock.AnythingOfType("time.Time"))
	})

	t.Run("SupersededLinkStillSettles", func(t *testing.T) {
		f := newRegFixture()
		reg := registrationIn(domain.RegistrationStatusApproved)
		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)
		f.regRepo.On("AddPaymentAttempt", ctx, mock.Anything).Return(nil)
		f.regRepo.On("Update", ctx, reg).Return(nil)

		_, err := f.svc.AttachPaymentLink(ctx, regID, 111, "plink-1")
		require.NoError(t, err)
		_, err = f.svc.AttachPaymentLink(ctx, regID, 222, "plink-2")
		require.NoError(t, err)
		assert.Equal(t, int64(222), *reg.OrderCode)

		// the member pays the first link after the second was issued
		f.regRepo.On("LockPaymentAttempt", ctx, int64(111)).Return(attemptFor(111), nil)
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(activePackage(), nil)
		f.regRepo.On("SettlePaymentAttempt", ctx, int64(111), "FT111", mock.AnythingOfType("time.Time")).Return(nil)
		f.notifier.On("PaymentConfirmed", ctx, reg).Return()

		res, applied, err := f.svc.ApplyPaidTransition(ctx, 111, 50000, "FT111")
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, regID, res.ID)
		assert.True(t, res.IsPaid)
		assert.Equal(t, "FT111", *res.PaymentReference)
		f.regRepo.AssertNumberOfCalls(t, "AddPaymentAttempt", 2)
		f.notifier.AssertNumberOfCalls(t, "PaymentConfirmed", 1)
	})

	t.Run("SettledAttemptIsNoop", func(t *testing.T) {
		f := newRegFixture()
		reg := withOrder()
		paidAt := time.Now().Add(-time.Hour)
		reg.MarkPaid(paidAt, paidAt.AddDate(1, 0, 0), domain.PaymentMethodGateway, "FT123")
		attempt := attemptFor(orderCode)
		attempt.SettledAt = &paidAt
		f.regRepo.On("LockPaymentAttempt", ctx, orderCode).Return(attempt, nil)
		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)

		res, applied, err := f.svc.ApplyPaidTransition(ctx, orderCode, 50000, "FT999")
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, paidAt, *res.PaymentDate)
		assert.Equal(t, "FT123", *res.PaymentReference)
		f.regRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.regRepo.AssertNotCalled(t, "SettlePaymentAttempt", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.notifier.AssertNotCalled(t, "PaymentConfirmed", mock.Anything, mock.Anything)
	})

	t.Run("SecondCaptureIsRecordedNotApplied", func(t *testing.T) {
		f := newRegFixture()
		reg := withOrder()
		paidAt := time.Now().Add(-time.Hour)
		reg.MarkPaid(paidAt, paidAt.AddDate(1, 0, 0), domain.PaymentMethodCash, "CASH-7")
		f.regRepo.On("LockPaymentAttempt", ctx, int64(111)).Return(attemptFor(111), nil)
		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)
		f.regRepo.On("SettlePaymentAttempt", ctx, int64(111), "FT111", mock.AnythingOfType("time.Time")).Return(nil)

		res, applied, err := f.svc.ApplyPaidTransition(ctx, 111, 50000, "FT111")
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, "CASH-7", *res.PaymentReference)
		f.regRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.notifier.AssertNotCalled(t, "PaymentConfirmed", mock.Anything, mock.Anything)
	})

	t.Run("AmountMismatch", func(t *testing.T) {
		f := newRegFixture()
		reg := withOrder()
		f.regRepo.On("LockPaymentAttempt", ctx, orderCode).Return(attemptFor(orderCode), nil)
		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(activePackage(), nil)

		_, applied, err := f.svc.ApplyPaidTransition(ctx, orderCode, 40000, "FT123")
		assertCode(t, err, domain.ErrCodeInvalidPaymentSignature)
		assert.False(t, applied)
		assert.False(t, reg.IsPaid)
		f.regRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.regRepo.AssertNotCalled(t, "SettlePaymentAttempt", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownOrderCode", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("LockPaymentAttempt", ctx, orderCode).Return(nil, repository.ErrNotFound)

		_, _, err := f.svc.ApplyPaidTransition(ctx, orderCode, 50000, "FT123")
		assertCode(t, err, domain.ErrCodePaymentNotFound)
		f.regRepo.AssertNotCalled(t, "LockByID", mock.Anything, mock.Anything)
	})

	t.Run("NotApproved", func(t *testing.T) {
		f := newRegFixture()
		reg := withOrder()
		reg.Status = domain.RegistrationStatusLeft
		f.regRepo.On("LockPaymentAttempt", ctx, orderCode).Return(attemptFor(orderCode), nil)
		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(activePackage(), nil)

		_, _, err := f.svc.ApplyPaidTransition(ctx, orderCode, 50000, "FT123")
		assertCode(t, err, domain.ErrCodeInvalidApplicationStatus)
		assert.False(t, reg.IsPaid)
	})

	t.Run("ZeroTermFallsBackToConfig", func(t *testing.T) {
		f := newRegFixture()
		reg := withOrder()
		pkg := activePackage()
		pkg.TermMonths = 0
		f.regRepo.On("LockPaymentAttempt", ctx, orderCode).Return(attemptFor(orderCode), nil)
		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(pkg, nil)
		f.regRepo.On("Update", ctx, reg).Return(nil)
		f.regRepo.On("SettlePaymentAttempt", ctx, orderCode, "FT123", mock.AnythingOfType("time.Time")).Return(nil)
		f.notifier.On("PaymentConfirmed", ctx, reg).Return()

		res, _, err := f.svc.ApplyPaidTransition(ctx, orderCode, 50000, "FT123")
		require.NoError(t, err)
		assert.WithinDuration(t, res.StartDate.AddDate(0, 12, 0), *res.EndDate, time.Second)
	})
}

func TestRegistrationService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("LockByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusPendingReview), nil)
		f.regRepo.On("Delete", ctx, regID).Return(nil)

		err := f.svc.Cancel(ctx, member, regID)
		assert.NoError(t, err)
		f.regRepo.AssertCalled(t, "Delete", ctx, regID)
	})

	t.Run("ApprovedCannotBeCancelled", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("LockByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusApproved), nil)

		err := f.svc.Cancel(ctx, member, regID)
		assertCode(t, err, domain.ErrCodeInvalidApplicationStatus)
		f.regRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("NotOwner", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("LockByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusPendingReview), nil)

		err := f.svc.Cancel(ctx, leader, regID)
		assertCode(t, err, domain.ErrCodeUnauthorized)
	})
}

func TestRegistrationService_Renew(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newRegFixture()
		reg := registrationIn(domain.RegistrationStatusExpired)
		past := time.Now().AddDate(-1, 0, 0)
		reg.MarkPaid(past, past.AddDate(1, 0, -1), domain.PaymentMethodGateway, "FT1")
		oldCode := int64(555)
		reg.OrderCode = &oldCode

		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(activePackage(), nil)
		f.regRepo.On("HasPaidMembershipInClub", ctx, memberID, clubID).Return(false, nil)
		f.regRepo.On("Update", ctx, reg).Return(nil)
		f.notifier.On("RegistrationRenewed", ctx, reg).Return()

		res, err := f.svc.Renew(ctx, member, regID, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.RegistrationStatusApproved, res.Status)
		assert.False(t, res.IsPaid)
		assert.Nil(t, res.OrderCode)
		assert.Nil(t, res.PaymentReference)
		assert.WithinDuration(t, time.Now(), *res.StartDate, time.Second)
		assert.WithinDuration(t, res.StartDate.AddDate(0, 12, 0), *res.EndDate, time.Second)
	})

	t.Run("SwitchPackage", func(t *testing.T) {
		f := newRegFixture()
		reg := registrationIn(domain.RegistrationStatusExpired)
		newPkg := &domain.MembershipPackage{ID: 40, ClubID: clubID, Name: "Semester", Price: 30000, TermMonths: 6, IsActive: true}
		newID := newPkg.ID

		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)
		f.pkgRepo.On("GetByID", ctx, newID).Return(newPkg, nil)
		f.regRepo.On("HasPaidMembershipInClub", ctx, memberID, clubID).Return(false, nil)
		f.regRepo.On("Update", ctx, reg).Return(nil)
		f.notifier.On("RegistrationRenewed", ctx, reg).Return()

		res, err := f.svc.Renew(ctx, member, regID, &newID)
		require.NoError(t, err)
		assert.Equal(t, newID, res.PackageID)
		assert.WithinDuration(t, res.StartDate.AddDate(0, 6, 0), *res.EndDate, time.Second)
	})

	t.Run("PackageFromOtherClub", func(t *testing.T) {
		f := newRegFixture()
		other := &domain.MembershipPackage{ID: 41, ClubID: clubID + 1, Price: 1000, IsActive: true}
		otherID := other.ID
		f.regRepo.On("LockByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusExpired), nil)
		f.pkgRepo.On("GetByID", ctx, otherID).Return(other, nil)

		_, err := f.svc.Renew(ctx, member, regID, &otherID)
		assertCode(t, err, domain.ErrCodeInvalidRequest)
	})

	t.Run("AlreadyMemberInClub", func(t *testing.T) {
		f := newRegFixture()
		reg := registrationIn(domain.RegistrationStatusExpired)
		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(activePackage(), nil)
		f.regRepo.On("HasPaidMembershipInClub", ctx, memberID, clubID).Return(true, nil)

		res, err := f.svc.Renew(ctx, member, regID, nil)
		assertCode(t, err, domain.ErrCodeAlreadyMember)
		assert.Nil(t, res)
		assert.Equal(t, domain.RegistrationStatusExpired, reg.Status)
		f.regRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.notifier.AssertNotCalled(t, "RegistrationRenewed", mock.Anything, mock.Anything)
	})

	t.Run("OnlyExpired", func(t *testing.T) {
		for _, st := range []domain.RegistrationStatus{
			domain.RegistrationStatusPendingReview,
			domain.RegistrationStatusApproved,
			domain.RegistrationStatusRejected,
			domain.RegistrationStatusLeft,
		} {
			f := newRegFixture()
			f.regRepo.On("LockByID", ctx, regID).Return(registrationIn(st), nil)

			_, err := f.svc.Renew(ctx, member, regID, nil)
			assertCode(t, err, domain.ErrCodeCannotRenewSubscription)
		}
	})
}

func TestRegistrationService_Leave(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newRegFixture()
		reg := registrationIn(domain.RegistrationStatusApproved)
		paidAt := time.Now().AddDate(0, -2, 0)
		reg.MarkPaid(paidAt, paidAt.AddDate(1, 0, 0), domain.PaymentMethodGateway, "FT1")
		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)
		f.regRepo.On("Update", ctx, reg).Return(nil)

		res, err := f.svc.Leave(ctx, member, regID)
		require.NoError(t, err)
		assert.Equal(t, domain.RegistrationStatusLeft, res.Status)
		assert.WithinDuration(t, time.Now(), *res.EndDate, time.Second)
		// the receipt survives, the paid flag does not
		assert.False(t, res.IsPaid)
		assert.Equal(t, paidAt, *res.PaymentDate)
		assert.Equal(t, "FT1", *res.PaymentReference)
	})

	t.Run("Pending", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("LockByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusPendingReview), nil)

		_, err := f.svc.Leave(ctx, member, regID)
		assertCode(t, err, domain.ErrCodeInvalidApplicationStatus)
	})
}

func TestRegistrationService_ConfirmPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newRegFixture()
		reg := registrationIn(domain.RegistrationStatusApproved)
		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)
		f.pkgRepo.On("GetByID", ctx, pkgID).Return(activePackage(), nil)
		f.regRepo.On("Update", ctx, reg).Return(nil)
		f.notifier.On("PaymentConfirmed", ctx, reg).Return()

		res, err := f.svc.ConfirmPayment(ctx, leader, regID)
		require.NoError(t, err)
		assert.True(t, res.IsPaid)
		assert.Equal(t, domain.PaymentMethodCash, *res.PaymentMethod)
		assert.True(t, strings.HasPrefix(*res.PaymentReference, "CASH-"))
		assert.NotNil(t, res.EndDate)
	})

	t.Run("NotLeader", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("LockByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusApproved), nil)

		_, err := f.svc.ConfirmPayment(ctx, member, regID)
		assertCode(t, err, domain.ErrCodeNotClubLeader)
	})

	t.Run("AlreadyPaid", func(t *testing.T) {
		f := newRegFixture()
		reg := registrationIn(domain.RegistrationStatusApproved)
		reg.IsPaid = true
		f.regRepo.On("LockByID", ctx, regID).Return(reg, nil)

		_, err := f.svc.ConfirmPayment(ctx, leader, regID)
		assertCode(t, err, domain.ErrCodePaymentAlreadyProcessed)
	})

	t.Run("Pending", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("LockByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusPendingReview), nil)

		_, err := f.svc.ConfirmPayment(ctx, leader, regID)
		assertCode(t, err, domain.ErrCodeInvalidApplicationStatus)
	})
}

func TestRegistrationService_GetAndList(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnerCanRead", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("GetByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusApproved), nil)

		reg, err := f.svc.Get(ctx, member, regID)
		require.NoError(t, err)
		assert.Equal(t, regID, reg.ID)
	})

	t.Run("LeaderCanRead", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("GetByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusApproved), nil)

		_, err := f.svc.Get(ctx, leader, regID)
		assert.NoError(t, err)
	})

	t.Run("StrangerCannotRead", func(t *testing.T) {
		f := newRegFixture()
		f.regRepo.On("GetByID", ctx, regID).Return(registrationIn(domain.RegistrationStatusApproved), nil)

		_, err := f.svc.Get(ctx, domain.Actor{UserID: 50}, regID)
		assertCode(t, err, domain.ErrCodeUnauthorized)
	})

	t.Run("ListForClubFiltersByStatus", func(t *testing.T) {
		f := newRegFixture()
		statuses := []domain.RegistrationStatus{domain.RegistrationStatusPendingReview}
		f.regRepo.On("ListByClubAndStatus", ctx, clubID, statuses).
			Return([]domain.Registration{*registrationIn(domain.RegistrationStatusPendingReview)}, nil)

		regs, err := f.svc.ListForClub(ctx, leader, clubID, "PENDING_REVIEW")
		require.NoError(t, err)
		assert.Len(t, regs, 1)
	})

	t.Run("ListForClubRequiresLeader", func(t *testing.T) {
		f := newRegFixture()
		_, err := f.svc.ListForClub(ctx, member, clubID, "")
		assertCode(t, err, domain.ErrCodeNotClubLeader)
	})

	t.Run("ListForClubUnknownStatus", func(t *testing.T) {
		f := newRegFixture()
		_, err := f.svc.ListForClub(ctx, leader, clubID, "ACTIVE")
		assertCode(t, err, domain.ErrCodeInvalidRequest)
	})
}

func TestRegistrationService_ExpireOverdue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC)

	f := newRegFixture()
	expired := []domain.Registration{
		*registrationIn(domain.RegistrationStatusExpired),
		{ID: 8, UserID: 5, PackageID: pkgID, ClubID: clubID, Status: domain.RegistrationStatusExpired},
	}
	f.regRepo.On("ExpireOverdue", ctx, now).Return(expired, nil)
	f.notifier.On("MembershipExpired", ctx, mock.AnythingOfType("*domain.Registration")).Return()

	count, err := f.svc.ExpireOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	f.notifier.AssertNumberOfCalls(t, "MembershipExpired", 2)
}

func TestRegistrationService_RemindExpiring(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	f := newRegFixture()
	f.regRepo.On("ListExpiringBetween", ctx, now.AddDate(0, 0, 6), now.AddDate(0, 0, 7)).
		Return([]domain.Registration{*registrationIn(domain.RegistrationStatusApproved)}, nil)
	f.notifier.On("MembershipExpiring", ctx, mock.AnythingOfType("*domain.Registration")).Return()

	count, err := f.svc.RemindExpiring(ctx, now, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
