package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/events"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
)

type notifier struct {
	userRepo  repository.UserRepository
	clubRepo  repository.ClubRepository
	noteRepo  repository.NotificationRepository
	emailSvc  EmailService
	publisher events.Publisher
}

func NewNotifier(
	userRepo repository.UserRepository,
	clubRepo repository.ClubRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	publisher events.Publisher,
) Notifier {
	return &notifier{
		userRepo:  userRepo,
		clubRepo:  clubRepo,
		noteRepo:  noteRepo,
		emailSvc:  emailSvc,
		publisher: publisher,
	}
}

// recipient resolves the member and club names. Either may be nil on lookup failure.
func (n *notifier) recipient(ctx context.Context, reg *domain.Registration) (*domain.User, string) {
	user, err := n.userRepo.GetByID(ctx, reg.UserID)
	if err != nil {
		logger.WarnContext(ctx, "Notification recipient lookup failed", "userID", reg.UserID, "error", err)
		user = nil
	}
	clubName := fmt.Sprintf("club #%d", reg.ClubID)
	if club, err := n.clubRepo.GetByID(ctx, reg.ClubID); err == nil {
		clubName = club.Name
	}
	return user, clubName
}

func (n *notifier) inApp(ctx context.Context, reg *domain.Registration, kind domain.NotificationType, title, message string) {
	note := &domain.Notification{
		UserID:  reg.UserID,
		ClubID:  reg.ClubID,
		Title:   title,
		Message: message,
		Attributes: map[string]string{
			"type":            string(kind),
			"registration_id": strconv.Itoa(int(reg.ID)),
		},
	}
	if err := n.noteRepo.Create(ctx, note); err != nil {
		logger.WarnContext(ctx, "Failed to store notification", "registrationID", reg.ID, "type", kind, "error", err)
	}
}

func (n *notifier) publish(ctx context.Context, key string, reg *domain.Registration) {
	evt := events.RegistrationEvent{
		RegistrationID: reg.ID,
		UserID:         reg.UserID,
		ClubID:         reg.ClubID,
		PackageID:      reg.PackageID,
		Status:         string(reg.Status),
		IsPaid:         reg.IsPaid,
		OccurredAt:     time.Now(),
	}
	if err := n.publisher.Publish(ctx, key, evt); err != nil {
		logger.WarnContext(ctx, "Failed to publish registration event", "routingKey", key, "registrationID", reg.ID, "error", err)
	}
}

func (n *notifier) mailed(ctx context.Context, reg *domain.Registration, err error) {
	if err != nil {
		logger.WarnContext(ctx, "Failed to send registration email", "registrationID", reg.ID, "error", err)
	}
}

func (n *notifier) RegistrationCreated(ctx context.Context, reg *domain.Registration, pkg *domain.MembershipPackage) {
	user, clubName := n.recipient(ctx, reg)
	n.inApp(ctx, reg, domain.NotificationRegistrationCreated, "Registration received",
		fmt.Sprintf("Your registration for %s (%s) is waiting for review", clubName, pkg.Name))
	if user != nil {
		n.mailed(ctx, reg, n.emailSvc.SendRegistrationReceived(ctx, user.Email, user.Name, clubName, pkg.Name))
	}
	n.publish(ctx, events.RegistrationCreated, reg)
}

func (n *notifier) RegistrationReviewed(ctx context.Context, reg *domain.Registration) {
	user, clubName := n.recipient(ctx, reg)
	approved := reg.Status == domain.RegistrationStatusApproved
	if approved {
		n.inApp(ctx, reg, domain.NotificationRegistrationApproved, "Application approved",
			fmt.Sprintf("Your application to %s was approved. Complete the payment to activate your membership", clubName))
	} else {
		n.inApp(ctx, reg, domain.NotificationRegistrationRejected, "Application rejected",
			fmt.Sprintf("Your application to %s was rejected", clubName))
	}
	if user != nil {
		n.mailed(ctx, reg, n.emailSvc.SendApplicationReviewed(ctx, user.Email, user.Name, clubName, approved))
	}
	n.publish(ctx, events.RegistrationReviewed, reg)
}

func (n *notifier) RegistrationRenewed(ctx context.Context, reg *domain.Registration) {
	n.publish(ctx, events.RegistrationRenewed, reg)
}

func (n *notifier) PaymentConfirmed(ctx context.Context, reg *domain.Registration) {
	user, clubName := n.recipient(ctx, reg)
	validUntil := time.Time{}
	if reg.EndDate != nil {
		validUntil = *reg.EndDate
	}
	n.inApp(ctx, reg, domain.NotificationPaymentConfirmed, "Payment confirmed",
		fmt.Sprintf("Your membership of %s is active until %s", clubName, validUntil.Format(emailDateLayout)))
	if user != nil {
		n.mailed(ctx, reg, n.emailSvc.SendPaymentConfirmed(ctx, user.Email, user.Name, clubName, validUntil))
	}
	n.publish(ctx, events.RegistrationPaid, reg)
}

func (n *notifier) MembershipExpiring(ctx context.Context, reg *domain.Registration) {
	if reg.EndDate == nil {
		return
	}
	user, clubName := n.recipient(ctx, reg)
	n.inApp(ctx, reg, domain.NotificationMembershipExpiring, "Membership ending soon",
		fmt.Sprintf("Your membership of %s ends on %s", clubName, reg.EndDate.Format(emailDateLayout)))
	if user != nil {
		n.mailed(ctx, reg, n.emailSvc.SendMembershipExpiring(ctx, user.Email, user.Name, clubName, *reg.EndDate))
	}
}

func (n *notifier) MembershipExpired(ctx context.Context, reg *domain.Registration) {
	user, clubName := n.recipient(ctx, reg)
	n.inApp(ctx, reg, domain.NotificationMembershipExpired, "Membership expired",
		fmt.Sprintf("Your membership of %s has expired and can be renewed", clubName))
	if user != nil {
		n.mailed(ctx, reg, n.emailSvc.SendMembershipExpired(ctx, user.Email, user.Name, clubName))
	}
	n.publish(ctx, events.RegistrationExpired, reg)
}
