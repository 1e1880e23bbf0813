// Package httpapi exposes the service over HTTP/JSON: public account
// endpoints, token-protected profile endpoints, and admin endpoints gated on
// the locally stored role.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sergeyk-dev/authgate/internal/logging"
	"github.com/sergeyk-dev/authgate/internal/server/auth"
	"github.com/sergeyk-dev/authgate/internal/server/models"
	"github.com/sergeyk-dev/authgate/internal/server/services"
)

type Server struct {
	logger     logging.Logger
	accounts   *services.AccountService
	profiles   *services.ProfileService
	admin      *services.AdminService
	verifier   *auth.DualVerifier
	authorizer *auth.Authorizer
	corsOrigin string
	startedAt  time.Time

	httpServer *http.Server
}

func NewServer(addr string, logger logging.Logger, accounts *services.AccountService,
	profiles *services.ProfileService, admin *services.AdminService,
	verifier *auth.DualVerifier, authorizer *auth.Authorizer, corsOrigin string) *Server {

	s := &Server{
		logger:     logger,
		accounts:   accounts,
		profiles:   profiles,
		admin:      admin,
		verifier:   verifier,
		authorizer: authorizer,
		corsOrigin: corsOrigin,
		startedAt:  time.Now(),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes builds the router. Protected routes are wrapped by the
// authentication gate; the allow-list parameter is the role gate.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestID, s.logRequests, s.cors)

	r.HandleFunc("/signup", s.handleSignUp).Methods(http.MethodPost)
	r.HandleFunc("/confirm", s.handleConfirm).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/forgot-password", s.handleForgotPassword).Methods(http.MethodPost)
	r.HandleFunc("/reset-password", s.handleResetPassword).Methods(http.MethodPost)

	r.HandleFunc("/profile", s.protected(nil, s.handleGetProfile)).Methods(http.MethodGet)
	r.HandleFunc("/profile", s.protected(nil, s.handleUpdateProfile)).Methods(http.MethodPut)

	admins := []models.Role{models.RoleAdmin}
	anyRole := []models.Role{models.RoleUser, models.RoleAdmin}
	r.HandleFunc("/admin/users", s.protected(admins, s.handleListUsers)).Methods(http.MethodGet)
	r.HandleFunc("/admin/users/{id}/role", s.protected(admins, s.handleUpdateUserRole)).Methods(http.MethodPut)

	r.HandleFunc("/admin", s.protected(admins, s.handleAccessCheck("You have admin access to this protected resource."))).Methods(http.MethodGet)
	r.HandleFunc("/user", s.protected(anyRole, s.handleAccessCheck("You have user access to this protected resource."))).Methods(http.MethodGet)
	r.HandleFunc("/protected", s.protected(nil, s.handleAccessCheck("You have access to this general protected resource."))).Methods(http.MethodGet)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// CORS preflight for any route.
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodOptions)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
