package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avoronov/scrumboard-service/internal/apperrors"
	"github.com/avoronov/scrumboard-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := getRequestID(r.Context())

		log := s.log.With(
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("user_agent", r.UserAgent()),
		)
		log.Info("request started")

		t1 := time.Now()

		next.ServeHTTP(w, r)

		log.Info("request completed",
			slog.String("duration", time.Since(t1).String()),
		)
	})
}

type contextKey string

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = contextKey("requestID")
	callerKey       = contextKey("caller")
)

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getRequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey).(string); ok {
		return reqID
	}

	return ""
}

// authenticate verifies the Bearer token on protected routes and places the
// authenticated caller into the request context. Requests without a valid
// session never reach the handlers.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.respondError(w, http.StatusUnauthorized, apperrors.ErrNoSession.Error())
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		caller, err := s.parseToken(tokenString)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, caller)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) parseToken(tokenString string) (domain.SessionUser, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return s.jwtSecret, nil
	})
	if err != nil {
		return domain.SessionUser{}, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return domain.SessionUser{}, fmt.Errorf("invalid token claims")
	}

	// JSON numbers land as float64 in MapClaims.
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return domain.SessionUser{}, fmt.Errorf("missing user_id claim")
	}

	role, _ := claims["role"].(string)

	return domain.SessionUser{
		ID:   int64(userID),
		Role: role,
	}, nil
}

func callerFromContext(ctx context.Context) (domain.SessionUser, error) {
	caller, ok := ctx.Value(callerKey).(domain.SessionUser)
	if !ok || caller.ID <= 0 {
		return domain.SessionUser{}, apperrors.ErrNoSession
	}

	return caller, nil
}
