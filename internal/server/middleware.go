package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mealbridge/internal"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeyUserID contextKey = "user_id"
	contextKeyEmail  contextKey = "email"
	contextKeyName   contextKey = "name"
)

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

// RequireAuth verifies the bearer credential and puts the caller's identity
// in the request context. The token comes from the Authorization header or,
// for the browser client, the encrypted access-token cookie.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accessToken, ok := s.extractAccessToken(r)
		if !ok {
			s.unauthorized(w, "no credentials provided")
			return
		}

		set, err := s.jwksCache.Lookup(r.Context(), s.jwksURL)
		if err != nil {
			s.logger.WithError(err).Error("failed to fetch JWKS")
			s.unauthorized(w, "invalid token")
			return
		}

		token, err := jwt.Parse(
			[]byte(accessToken),
			jwt.WithKeySet(set),
			jwt.WithValidate(true),
		)
		if err != nil {
			s.logger.WithError(err).Debug("failed to parse JWT")
			s.unauthorized(w, "invalid token")
			return
		}

		userID, ok := token.Subject()
		if !ok || userID == "" {
			s.logger.Error("no user ID in JWT subject claim")
			s.unauthorized(w, "invalid token")
			return
		}

		// Every record in this system is keyed by mail, so the email claim
		// is not optional the way the subject's display name is.
		var email string
		if err := token.Get("email", &email); err != nil || email == "" {
			s.logger.WithField("user_id", userID).Warn("no email claim in JWT")
			s.unauthorized(w, "invalid token")
			return
		}

		var name string
		if err := token.Get("name", &name); err != nil {
			name = email
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, contextKeyUserID, userID)
		ctx = context.WithValue(ctx, contextKeyEmail, email)
		ctx = context.WithValue(ctx, contextKeyName, name)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) extractAccessToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if after, found := strings.CutPrefix(header, "Bearer "); found && after != "" {
		return after, true
	}

	cookie, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
	if err != nil {
		return "", false
	}

	var accessToken string
	if err := s.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, cookie.Value, &accessToken); err != nil {
		s.logger.WithError(err).Debug("failed to decrypt access token cookie")
		return "", false
	}

	return accessToken, true
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newPath := strings.TrimSuffix(path, "/")
			newURL := *r.URL
			newURL.Path = newPath

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// identity is the verified caller passed explicitly into coordinator calls.
type identity struct {
	UserID string
	Email  string
	Name   string
}

func (s *Service) identityFromContext(ctx context.Context) (identity, bool) {
	userID, _ := ctx.Value(contextKeyUserID).(string)
	email, _ := ctx.Value(contextKeyEmail).(string)
	name, _ := ctx.Value(contextKeyName).(string)

	if userID == "" || email == "" {
		return identity{}, false
	}

	return identity{UserID: userID, Email: email, Name: name}, true
}
