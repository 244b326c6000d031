package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"bloodlink/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeyUserID contextKey = "user_id"
	contextKeyUser   contextKey = "user"
)

const cookieAccessTokenName = "jwt"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

func (s *Service) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (s.config.CORSOrigin == "*" || origin == s.config.CORSOrigin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			h.Add("Vary", "Origin")
		}

		next.ServeHTTP(w, r)
	})
}

// Authenticate attaches the user id of a valid access token to the request
// context. Requests without a token, or with an invalid one, pass through
// unauthenticated.
func (s *Service) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := s.accessToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := s.tokens.Verify(r.Context(), raw)
		if err != nil {
			s.logger.WithError(err).Debug("ignoring invalid access token")
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessToken reads the bearer token from the Authorization header, falling
// back to the encrypted cookie set at login.
func (s *Service) accessToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	cookie, err := r.Cookie(cookieAccessTokenName)
	if err != nil {
		return ""
	}

	var token string
	if err := s.cookie.Decode(cookieAccessTokenName, cookie.Value, &token); err != nil {
		s.logger.WithError(err).Debug("failed to decrypt access token cookie")
		return ""
	}

	return token
}

// RequireAuth rejects requests without an authenticated user and loads that
// user into the context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.userIDFromContext(r.Context())
		if !ok {
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error:   "Unauthorized",
				Message: "Authentication required",
			})
			return
		}

		user, err := s.users.User(r.Context(), userID)
		if err != nil {
			if errors.Is(err, types.ErrUserNotFound) {
				s.writeJSON(w, http.StatusUnauthorized, errorResponse{
					Error:   "Unauthorized",
					Message: "User not found",
				})
				return
			}
			s.writeError(w, r, types.NewStoreError("load authenticated user", err))
			return
		}

		s.logger.WithField("user_id", user.ID).Debug("authenticated user")

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after RequireAuth.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.userFromContext(r.Context())
		if !ok || !user.IsAdmin {
			s.writeJSON(w, http.StatusForbidden, errorResponse{
				Error:   "Forbidden",
				Message: "Admin access required",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
