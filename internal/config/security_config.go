package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// Route names registered on the HTTP router.
const (
	RouteHealth             = "Health"
	RouteCreateRegistration = "CreateRegistration"
	RouteListMyRegistration = "ListMyRegistrations"
	RouteGetRegistration    = "GetRegistration"
	RouteCancelRegistration = "CancelRegistration"
	RouteRenewRegistration  = "RenewRegistration"
	RouteLeaveClub          = "LeaveClub"
	RouteListClubRegisters  = "ListClubRegistrations"
	RouteLeaderApprove      = "LeaderApprove"
	RouteConfirmPayment     = "ConfirmPayment"
	RouteCreatePaymentLink  = "CreatePaymentLink"
	RoutePaymentWebhook     = "PaymentWebhook"
	RouteListNotifications  = "ListNotifications"
	RouteMarkNotification   = "MarkNotificationRead"
)

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	RouteHealth: SecurityPublic,

	// The gateway authenticates with the payload signature, not a bearer token
	RoutePaymentWebhook: SecurityPublic,

	RouteCreateRegistration: SecurityAccess,
	RouteListMyRegistration: SecurityAccess,
	RouteGetRegistration:    SecurityAccess,
	RouteCancelRegistration: SecurityAccess,
	RouteRenewRegistration:  SecurityAccess,
	RouteLeaveClub:          SecurityAccess,
	RouteCreatePaymentLink:  SecurityAccess,

	RouteListClubRegisters: SecurityAccess,
	RouteLeaderApprove:     SecurityAccess,
	RouteConfirmPayment:    SecurityAccess,

	RouteListNotifications: SecurityAccess,
	RouteMarkNotification:  SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
