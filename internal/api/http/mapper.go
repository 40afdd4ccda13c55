package http

import (
	"time"

	"clubhub-backend/internal/domain"
)

type registrationResponse struct {
	ID               int32      `json:"id"`
	UserID           int32      `json:"userId"`
	PackageID        int32      `json:"packageId"`
	ClubID           int32      `json:"clubId"`
	Status           string     `json:"status"`
	ApproverID       *int32     `json:"approverId,omitempty"`
	JoinReason       string     `json:"joinReason"`
	IsPaid           bool       `json:"isPaid"`
	PaymentDate      *time.Time `json:"paymentDate,omitempty"`
	PaymentMethod    *string    `json:"paymentMethod,omitempty"`
	OrderCode        *int64     `json:"orderCode,omitempty"`
	PaymentReference *string    `json:"paymentReference,omitempty"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	JoinDate         *time.Time `json:"joinDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type notificationResponse struct {
	ID         int32             `json:"id"`
	ClubID     int32             `json:"clubId"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"isRead"`
	Attributes map[string]string `json:"attributes,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

type notificationPage struct {
	Items []notificationResponse `json:"items"`
	Total int32                  `json:"total"`
	Page  int32                  `json:"page"`
}

func MapRegistration(r *domain.Registration) *registrationResponse {
	if r == nil {
		return nil
	}
	return &registrationResponse{
		ID:               r.ID,
		UserID:           r.UserID,
		PackageID:        r.PackageID,
		ClubID:           r.ClubID,
		Status:           string(r.Status),
		ApproverID:       r.ApproverID,
		JoinReason:       r.JoinReason,
		IsPaid:           r.IsPaid,
		PaymentDate:      r.PaymentDate,
		PaymentMethod:    r.PaymentMethod,
		OrderCode:        r.OrderCode,
		PaymentReference: r.PaymentReference,
		StartDate:        r.StartDate,
		EndDate:          r.EndDate,
		JoinDate:         r.JoinDate,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func MapRegistrations(regs []domain.Registration) []*registrationResponse {
	out := make([]*registrationResponse, 0, len(regs))
	for i := range regs {
		out = append(out, MapRegistration(&regs[i]))
	}
	return out
}

func MapNotifications(notes []domain.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, notificationResponse{
			ID:         n.ID,
			ClubID:     n.ClubID,
			Title:      n.Title,
			Message:    n.Message,
			IsRead:     n.IsRead,
			Attributes: n.Attributes,
			CreatedAt:  n.CreatedAt,
		})
	}
	return out
}
