package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sergeyk-dev/authgate/internal/server/models"
)

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type confirmRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Number    *string `json:"number"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return false
	}
	return true
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Please provide username, email, and password.")
		return
	}

	role := models.RoleUser
	if req.Role != "" {
		if !models.ValidRole(req.Role) {
			respondError(w, http.StatusBadRequest, "Please provide a valid role (user or admin).")
			return
		}
		role = models.Role(req.Role)
	}

	outcome, err := s.accounts.SignUp(r.Context(), req.Username, req.Email, req.Password, role)
	if err != nil {
		s.logger.Error(r.Context(), "signup failed", "username", req.Username, "error", err.Error())
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "User signed up successfully. Please check your email for confirmation.",
		"data":    outcome.Provider,
		"dbUser":  outcome.User,
	})
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Code == "" {
		respondError(w, http.StatusBadRequest, "Please provide username and confirmation code.")
		return
	}

	user, err := s.accounts.Confirm(r.Context(), req.Username, req.Code)
	if err != nil {
		s.logger.Error(r.Context(), "confirmation failed", "username", req.Username, "error", err.Error())
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Email confirmed successfully. Please login to access your account.",
		"dbUser":  user,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Please provide username or email and password.")
		return
	}

	outcome, err := s.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.logger.Error(r.Context(), "login failed", "login", req.Username, "error", err.Error())
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful.",
		"tokens":  outcome.Tokens,
		"user":    outcome.User,
		"profile": outcome.Profile,
	})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "Please provide an email address.")
		return
	}

	data, err := s.accounts.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Password reset code sent successfully. Check your email.",
		"data":    data,
	})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "Please provide email, verification code, and new password.")
		return
	}

	if err := s.accounts.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Password reset successfully.",
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Access denied.")
		return
	}

	profile, err := s.profiles.Get(r.Context(), session.Sub())
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Profile retrieved successfully.",
		"profile": profile,
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Access denied.")
		return
	}

	var req updateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	profile, err := s.profiles.Update(r.Context(), session.Sub(), req.FirstName, req.LastName, req.Number)
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully.",
		"profile": profile,
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.admin.ListUsers(r.Context())
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Users retrieved successfully.",
		"users":   users,
	})
}

func (s *Server) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user id.")
		return
	}

	var req updateRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !models.ValidRole(req.Role) {
		respondError(w, http.StatusBadRequest, "Please provide a valid role (user or admin).")
		return
	}

	user, err := s.admin.UpdateUserRole(r.Context(), id, models.Role(req.Role))
	if err != nil {
		respondFailure(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "User role updated successfully.",
		"user":    user,
	})
}

// handleAccessCheck backs the role-gated demo routes; the gate itself does
// all the work.
func (s *Server) handleAccessCheck(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := SessionFromContext(r.Context())

		resp := map[string]any{"message": message}
		if session != nil {
			resp["sub"] = session.Sub()
		}
		respondJSON(w, http.StatusOK, resp)
	}
}
