package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrCodeInvalidRequest             ErrorCode = "INVALID_REQUEST"
	ErrCodeUnauthenticated            ErrorCode = "UNAUTHENTICATED"
	ErrCodeUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrCodeNotClubLeader              ErrorCode = "NOT_CLUB_LEADER"
	ErrCodePackageNotFound            ErrorCode = "PACKAGE_NOT_FOUND"
	ErrCodePackageNotActive           ErrorCode = "PACKAGE_NOT_ACTIVE"
	ErrCodeRegistrationNotFound       ErrorCode = "REGISTRATION_NOT_FOUND"
	ErrCodeAlreadyRegistered          ErrorCode = "ALREADY_REGISTERED"
	ErrCodeAlreadyMember              ErrorCode = "ALREADY_MEMBER"
	ErrCodeApplicationAlreadyReviewed ErrorCode = "APPLICATION_ALREADY_REVIEWED"
	ErrCodeInvalidApplicationStatus   ErrorCode = "INVALID_APPLICATION_STATUS"
	ErrCodePaymentAlreadyProcessed    ErrorCode = "PAYMENT_ALREADY_PROCESSED"
	ErrCodePaymentNotFound            ErrorCode = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidPaymentSignature    ErrorCode = "INVALID_PAYMENT_SIGNATURE"
	ErrCodeCannotRenewSubscription    ErrorCode = "CANNOT_RENEW_SUBSCRIPTION"
	ErrCodePaymentLinkCreationFailed  ErrorCode = "PAYMENT_LINK_CREATION_FAILED"
	ErrCodeNotificationNotFound       ErrorCode = "NOTIFICATION_NOT_FOUND"
	ErrCodeInternal                   ErrorCode = "INTERNAL_ERROR"
)

var defaultMessages = map[ErrorCode]string{
	ErrCodeInvalidRequest:             "Invalid request",
	ErrCodeUnauthenticated:            "Authentication required",
	ErrCodeUnauthorized:               "You are not allowed to perform this action",
	ErrCodeNotClubLeader:              "Only the club president or vice-president can perform this action",
	ErrCodePackageNotFound:            "Membership package not found",
	ErrCodePackageNotActive:           "Membership package is not active",
	ErrCodeRegistrationNotFound:       "Registration not found",
	ErrCodeAlreadyRegistered:          "You have already registered for this package",
	ErrCodeAlreadyMember:              "You are already a member of this club",
	ErrCodeApplicationAlreadyReviewed: "This application has already been reviewed",
	ErrCodeInvalidApplicationStatus:   "The registration is not in a valid status for this action",
	ErrCodePaymentAlreadyProcessed:    "Payment has already been processed",
	ErrCodePaymentNotFound:            "Payment not found",
	ErrCodeInvalidPaymentSignature:    "Payment verification failed",
	ErrCodeCannotRenewSubscription:    "Only expired registrations can be renewed",
	ErrCodePaymentLinkCreationFailed:  "Payment link creation failed",
	ErrCodeNotificationNotFound:       "Notification not found",
	ErrCodeInternal:                   "Internal server error",
}

// DefaultMessage returns the human message registered for code.
func DefaultMessage(code ErrorCode) string {
	if msg, ok := defaultMessages[code]; ok {
		return msg
	}
	return defaultMessages[ErrCodeInternal]
}

// AppError is the single error type raised by the lifecycle and payment services.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func NewAppError(code ErrorCode) *AppError {
	return &AppError{Code: code, Message: DefaultMessage(code)}
}

func NewAppErrorf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func WrapError(code ErrorCode, err error) *AppError {
	return &AppError{Code: code, Message: DefaultMessage(code), Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another *AppError by code so errors.Is(err, NewAppError(code)) works.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// CodeOf extracts the error code carried by err. A nil error has no code and
// any error that is not an AppError reports ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}
