package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"clubhub-backend/internal/config"
)

// Handlers groups everything NewRouter mounts.
type Handlers struct {
	Health        *HealthHandler
	Registrations *RegistrationHandler
	Leader        *LeaderHandler
	Payments      *PaymentHandler
	Notifications *NotificationHandler
}

// NewRouter registers every named route. Route names drive the security level
// looked up by the auth middleware.
func NewRouter(h Handlers, auth *AuthMiddleware) *mux.Router {
	router := mux.NewRouter()
	router.Use(RecoveryMiddleware, RequestIDMiddleware, LoggingMiddleware, auth.Handler)

	router.HandleFunc("/healthz", h.Health.Health).Methods(http.MethodGet).Name(config.RouteHealth)

	router.HandleFunc("/registers", h.Registrations.Create).Methods(http.MethodPost).Name(config.RouteCreateRegistration)
	router.HandleFunc("/registers/my-registrations", h.Registrations.ListMine).Methods(http.MethodGet).Name(config.RouteListMyRegistration)
	router.HandleFunc("/registers/{id:[0-9]+}", h.Registrations.Get).Methods(http.MethodGet).Name(config.RouteGetRegistration)
	router.HandleFunc("/registers/{id:[0-9]+}", h.Registrations.Cancel).Methods(http.MethodDelete).Name(config.RouteCancelRegistration)
	router.HandleFunc("/registers/{id:[0-9]+}/renew", h.Registrations.Renew).Methods(http.MethodPut).Name(config.RouteRenewRegistration)
	router.HandleFunc("/registers/{id:[0-9]+}/leave", h.Registrations.Leave).Methods(http.MethodPut).Name(config.RouteLeaveClub)

	router.HandleFunc("/leader/clubs/{clubId:[0-9]+}/registers", h.Leader.ListClubRegistrations).Methods(http.MethodGet).Name(config.RouteListClubRegisters)
	router.HandleFunc("/leader/registers/approve", h.Leader.Approve).Methods(http.MethodPut).Name(config.RouteLeaderApprove)
	router.HandleFunc("/leader/registers/confirm-payment", h.Leader.ConfirmPayment).Methods(http.MethodPut).Name(config.RouteConfirmPayment)

	router.HandleFunc("/payments/create-link", h.Payments.CreateLink).Methods(http.MethodPost).Name(config.RouteCreatePaymentLink)
	router.HandleFunc("/payments/webhook", h.Payments.Webhook).Methods(http.MethodPost).Name(config.RoutePaymentWebhook)

	router.HandleFunc("/notifications", h.Notifications.List).Methods(http.MethodGet).Name(config.RouteListNotifications)
	router.HandleFunc("/notifications/{id:[0-9]+}/read", h.Notifications.MarkRead).Methods(http.MethodPut).Name(config.RouteMarkNotification)

	return router
}
