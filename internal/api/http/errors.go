package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
)

const codeOK = "OK"

// envelope is the uniform JSON body of every response.
type envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

var statusByCode = map[domain.ErrorCode]int{
	domain.ErrCodeInvalidRequest:             http.StatusBadRequest,
	domain.ErrCodeUnauthenticated:            http.StatusUnauthorized,
	domain.ErrCodeUnauthorized:               http.StatusForbidden,
	domain.ErrCodeNotClubLeader:              http.StatusForbidden,
	domain.ErrCodePackageNotFound:            http.StatusNotFound,
	domain.ErrCodePackageNotActive:           http.StatusConflict,
	domain.ErrCodeRegistrationNotFound:       http.StatusNotFound,
	domain.ErrCodeAlreadyRegistered:          http.StatusConflict,
	domain.ErrCodeAlreadyMember:              http.StatusConflict,
	domain.ErrCodeApplicationAlreadyReviewed: http.StatusConflict,
	domain.ErrCodeInvalidApplicationStatus:   http.StatusConflict,
	domain.ErrCodePaymentAlreadyProcessed:    http.StatusConflict,
	domain.ErrCodePaymentNotFound:            http.StatusNotFound,
	domain.ErrCodeInvalidPaymentSignature:    http.StatusBadRequest,
	domain.ErrCodeCannotRenewSubscription:    http.StatusConflict,
	domain.ErrCodePaymentLinkCreationFailed:  http.StatusBadGateway,
	domain.ErrCodeNotificationNotFound:       http.StatusNotFound,
	domain.ErrCodeInternal:                   http.StatusInternalServerError,
}

// Codes whose detail must not reach the client.
var genericMessageCodes = map[domain.ErrorCode]bool{
	domain.ErrCodeInternal:                  true,
	domain.ErrCodeInvalidPaymentSignature:   true,
	domain.ErrCodePaymentLinkCreationFailed: true,
}

// HTTPStatus returns the status code used for an error code.
func HTTPStatus(code domain.ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Code: codeOK, Message: message, Data: data})
}

// writeError translates err into the status and envelope for its error code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrCodeInternal
	message := domain.DefaultMessage(code)

	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
	}
	if genericMessageCodes[code] {
		message = domain.DefaultMessage(code)
	}

	status := HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "code", code, "error", err)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", "method", r.Method, "path", r.URL.Path, "code", code, "error", err)
	}

	writeJSON(w, status, envelope{Code: string(code), Message: message})
}
