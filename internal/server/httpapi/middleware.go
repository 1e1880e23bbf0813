package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sergeyk-dev/authgate/internal/common"
	"github.com/sergeyk-dev/authgate/internal/server/auth"
	"github.com/sergeyk-dev/authgate/internal/server/models"
)

// accessTokenHeader carries the access token; the identity token travels in
// the standard Authorization header. Both are required on protected routes.
const accessTokenHeader = "X-Access-Token"

type sessionContextKey struct{}

// SessionFromContext returns the verified token pair attached by the
// authentication gate.
func SessionFromContext(ctx context.Context) (*auth.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*auth.Session)
	return s, ok
}

// protected wraps next with the dual-token gate and an optional role
// allow-list (nil or empty permits any verified subject).
func (s *Server) protected(roles []models.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idToken, _ := bearerToken(r.Header.Get("Authorization"))
		accessToken := r.Header.Get(accessTokenHeader)

		if idToken == "" || accessToken == "" {
			respondError(w, http.StatusUnauthorized, "Access denied. Both ID and Access tokens are required.")
			return
		}

		session, err := s.verifier.VerifyPair(idToken, accessToken)
		if err != nil {
			s.logger.Warn(r.Context(), "token verification failed", "error", err.Error())
			respondFailure(w, err)
			return
		}

		if err := s.authorizer.Authorize(r.Context(), session.Sub(), roles); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				respondError(w, http.StatusNotFound, "User not found in database.")
				return
			}
			respondFailure(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey{}, session)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}
	return token, true
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
			"request_id", w.Header().Get("X-Request-Id"),
		)
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+accessTokenHeader)
		next.ServeHTTP(w, r)
	})
}
