package domain

import "time"

type RegistrationStatus string

const (
	RegistrationStatusPendingReview RegistrationStatus = "PENDING_REVIEW"
	RegistrationStatusApproved      RegistrationStatus = "APPROVED"
	RegistrationStatusRejected      RegistrationStatus = "REJECTED"
	RegistrationStatusLeft          RegistrationStatus = "LEFT"
	RegistrationStatusExpired       RegistrationStatus = "EXPIRED"
)

// OccupyingStatuses are the statuses that hold the (user, package) slot.
// A new registration for the same pair is refused while one of these exists.
var OccupyingStatuses = []RegistrationStatus{
	RegistrationStatusPendingReview,
	RegistrationStatusApproved,
	RegistrationStatusExpired,
}

func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationStatusPendingReview, RegistrationStatusApproved, RegistrationStatusRejected,
		RegistrationStatusLeft, RegistrationStatusExpired:
		return true
	}
	return false
}

const (
	PaymentMethodGateway = "Gateway"
	PaymentMethodCash    = "Cash"
)

type Registration struct {
	ID               int32              `json:"id"`
	UserID           int32              `json:"user_id"`
	PackageID        int32              `json:"package_id"`
	ClubID           int32              `json:"club_id"` // read from the package, never written
	Status           RegistrationStatus `json:"status"`
	ApproverID       *int32             `json:"approver_id,omitempty"`
	JoinReason       string             `json:"join_reason"`
	IsPaid           bool               `json:"is_paid"`
	PaymentDate      *time.Time         `json:"payment_date,omitempty"`
	PaymentMethod    *string            `json:"payment_method,omitempty"`
	OrderCode        *int64             `json:"order_code,omitempty"`
	PaymentLinkID    *string            `json:"payment_link_id,omitempty"`
	PaymentReference *string            `json:"payment_reference,omitempty"`
	StartDate        *time.Time         `json:"start_date,omitempty"`
	EndDate          *time.Time         `json:"end_date,omitempty"`
	JoinDate         *time.Time         `json:"join_date,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// MarkPaid records a settled payment and opens the validity window [now, until).
func (r *Registration) MarkPaid(now, until time.Time, method, reference string) {
	r.IsPaid = true
	r.PaymentDate = &now
	r.PaymentMethod = &method
	r.PaymentReference = &reference
	r.StartDate = &now
	r.EndDate = &until
}

// ClearPayment drops every payment field so a new settlement attempt can start.
func (r *Registration) ClearPayment() {
	r.IsPaid = false
	r.PaymentDate = nil
	r.PaymentMethod = nil
	r.PaymentReference = nil
	r.OrderCode = nil
	r.PaymentLinkID = nil
}

// EndMembership closes an approved membership. Payment details stay as history
// but the registration no longer counts as a paid membership.
func (r *Registration) EndMembership(status RegistrationStatus, end time.Time) {
	r.Status = status
	r.IsPaid = false
	r.EndDate = &end
}

// PaymentAttempt is one gateway order issued for a registration. Every issued
// order code stays resolvable, so paying a superseded link still settles.
type PaymentAttempt struct {
	OrderCode      int64      `json:"order_code"`
	RegistrationID int32      `json:"registration_id"`
	PaymentLinkID  string     `json:"payment_link_id"`
	Reference      *string    `json:"payment_reference,omitempty"`
	SettledAt      *time.Time `json:"settled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (a *PaymentAttempt) Settled() bool {
	return a.SettledAt != nil
}
