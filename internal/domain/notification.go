package domain

import "time"

type NotificationType string

const (
	NotificationRegistrationCreated  NotificationType = "REGISTRATION_CREATED"
	NotificationRegistrationApproved NotificationType = "REGISTRATION_APPROVED"
	NotificationRegistrationRejected NotificationType = "REGISTRATION_REJECTED"
	NotificationPaymentConfirmed     NotificationType = "PAYMENT_CONFIRMED"
	NotificationMembershipExpiring   NotificationType = "MEMBERSHIP_EXPIRING"
	NotificationMembershipExpired    NotificationType = "MEMBERSHIP_EXPIRED"
)

type Notification struct {
	ID         int32             `json:"id"`
	UserID     int32             `json:"user_id"`
	ClubID     int32             `json:"club_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
}
