package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"clubhub-backend/internal/config"
	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
	"clubhub-backend/internal/security"
)

const headerRequestID = "X-Request-ID"

// AuthMiddleware authenticates requests to routes whose security level requires
// an access token and stores the resulting domain.Actor on the request context.
type AuthMiddleware struct {
	tokenManager security.TokenManager
	roles        repository.ClubRoleRepository
}

func NewAuthMiddleware(tm security.TokenManager, roles repository.ClubRoleRepository) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm, roles: roles}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routeName := ""
		if route := mux.CurrentRoute(r); route != nil {
			routeName = route.GetName()
		}

		if config.GetSecurityLevel(routeName) == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			writeError(w, r, domain.NewAppErrorf(domain.ErrCodeUnauthenticated, "authorization token is not provided"))
			return
		}

		claims, err := m.tokenManager.ValidateAccessToken(token)
		if err != nil {
			message := "invalid token"
			if errors.Is(err, security.ErrExpiredToken) {
				message = "token has expired"
			}
			logger.WarnContext(r.Context(), "Rejected bearer token", "route", routeName, "error", err)
			writeError(w, r, domain.NewAppErrorf(domain.ErrCodeUnauthenticated, "%s", message))
			return
		}

		leaderClubs, err := m.roles.ListLeaderClubIDs(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, r, domain.WrapError(domain.ErrCodeInternal, err))
			return
		}

		ctx := WithActor(r.Context(), domain.Actor{UserID: claims.UserID, LeaderClubIDs: leaderClubs})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		header = strings.TrimSpace(header[7:])
	}
	return header, header != ""
}

// RequestIDMiddleware propagates or assigns an X-Request-ID and attaches it to the logging context.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.InfoContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				logger.ErrorContext(r.Context(), "Handler panicked", "path", r.URL.Path, "panic", p)
				writeError(w, r, domain.NewAppError(domain.ErrCodeInternal))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
