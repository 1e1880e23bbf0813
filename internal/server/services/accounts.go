// Package services contains server-side business logic. This file implements
// AccountService: signup and confirmation against the identity provider with
// local bookkeeping, the password-reset pass-throughs, and the login flow
// with user/profile reconciliation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sergeyk-dev/authgate/internal/common"
	"github.com/sergeyk-dev/authgate/internal/dbx"
	"github.com/sergeyk-dev/authgate/internal/server/auth"
	"github.com/sergeyk-dev/authgate/internal/server/cognito"
	"github.com/sergeyk-dev/authgate/internal/server/models"
	"github.com/sergeyk-dev/authgate/internal/server/repositories/repomanager"
)

// SignUpOutcome bundles the provider's registration result with the local
// row created alongside it.
type SignUpOutcome struct {
	Provider *cognito.SignUpResult
	User     *models.User
}

// LoginOutcome carries everything a successful login returns: the minted
// tokens and the reconciled local records.
type LoginOutcome struct {
	Tokens  *cognito.AuthResult
	User    *models.User
	Profile *models.Profile
}

// AccountService drives the account lifecycle. The provider owns credentials;
// the local store mirrors identity attributes keyed by the provider subject.
type AccountService struct {
	db       *sql.DB
	rm       repomanager.RepositoryManager
	provider cognito.Provider
	access   auth.TokenVerifier
}

// NewAccountService constructs an AccountService. access must verify pool
// access tokens; it is used to extract the subject and candidate attributes
// from the token minted at login.
func NewAccountService(db *sql.DB, rm repomanager.RepositoryManager, provider cognito.Provider, access auth.TokenVerifier) *AccountService {
	return &AccountService{db: db, rm: rm, provider: provider, access: access}
}

// SignUp registers the credentials with the provider and inserts the local
// row (UNCONFIRMED, no sub) in one transaction. If the provider call fails
// nothing is written; if the insert fails the transaction rolls back but the
// provider account remains, which the login reconciliation later heals.
func (s *AccountService) SignUp(ctx context.Context, username, email, password string, role models.Role) (*SignUpOutcome, error) {
	outcome := &SignUpOutcome{}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		data, err := s.provider.SignUp(ctx, username, password, email, string(role))
		if err != nil {
			return err
		}
		outcome.Provider = data

		user, err := s.rm.Users(tx).Create(ctx, &models.User{
			Username: username,
			Email:    email,
			Role:     role,
			Status:   models.StatusUnconfirmed,
		})
		if err != nil {
			return err
		}
		outcome.User = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// Confirm confirms the code with the provider, then marks the local row
// CONFIRMED by username. No transaction spans the two systems: a local row
// missing here (account registered provider-side only) is tolerated and
// created at first login.
func (s *AccountService) Confirm(ctx context.Context, username, code string) (*models.User, error) {
	if err := s.provider.ConfirmSignUp(ctx, username, code); err != nil {
		return nil, err
	}

	user, err := s.rm.Users(s.db).UpdateStatusByUsername(ctx, username, models.StatusConfirmed)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// ForgotPassword asks the provider to send a reset code to the account's
// delivery destination.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) (*cognito.DeliveryResult, error) {
	return s.provider.ForgotPassword(ctx, email)
}

// ResetPassword completes the reset flow with the emailed code.
func (s *AccountService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return s.provider.ConfirmForgotPassword(ctx, email, code, newPassword)
}

// Login authenticates against the provider, then reconciles the local user
// and profile rows with the verified subject inside a single transaction.
// After it returns, exactly one user row and one profile row exist for the
// subject and the user's sub is non-null.
func (s *AccountService) Login(ctx context.Context, login, password string) (*LoginOutcome, error) {
	tokens, err := s.provider.InitiateAuth(ctx, login, password)
	if err != nil {
		return nil, err
	}

	claims, err := s.access.Verify(tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("verifying minted access token: %w", err)
	}

	username := claims.PreferredUsername()
	if username == "" {
		username = login
	}
	email := claims.Email
	if email == "" {
		email = login
	}

	outcome := &LoginOutcome{Tokens: tokens}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, profile, err := s.reconcile(ctx, tx, login, claims.Subject, username, email)
		if err != nil {
			return err
		}
		outcome.User = user
		outcome.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// reconcileState classifies the pre-existing local state for a subject,
// computed once from the lookups below and then dispatched on.
type reconcileState int

const (
	// No row matches the login identifier: the account was created and
	// confirmed entirely provider-side.
	stateNoLocalRow reconcileState = iota
	// A row matches but has never seen a successful login.
	stateLocalRowNoSub
	// Steady state: row present, sub populated.
	stateLocalRowWithSub
)

// reconcile normalizes the local rows for a verified subject. The sub match
// wins the tie-break in the no-local-row branch: sub is the provider's
// durable identifier while username/email may have changed provider-side.
func (s *AccountService) reconcile(ctx context.Context, tx dbx.DBTX, login, sub, username, email string) (*models.User, *models.Profile, error) {
	usersRepo := s.rm.Users(tx)

	byLogin, err := usersRepo.GetByLogin(ctx, login)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, nil, err
	}

	var state reconcileState
	switch {
	case byLogin == nil:
		state = stateNoLocalRow
	case byLogin.Sub == nil:
		state = stateLocalRowNoSub
	default:
		state = stateLocalRowWithSub
	}

	var user *models.User
	switch state {
	case stateNoLocalRow:
		_, err := usersRepo.GetBySub(ctx, sub)
		switch {
		case err == nil:
			// Identifier drift: the subject already has a row under other
			// identifiers. Update it rather than inserting a duplicate.
			user, err = usersRepo.UpdateIdentifiersBySub(ctx, sub, username, email)
			if err != nil {
				return nil, nil, err
			}
		case errors.Is(err, common.ErrorNotFound):
			user, err = usersRepo.Create(ctx, &models.User{
				Username: username,
				Email:    email,
				Sub:      &sub,
				Role:     models.RoleUser,
				Status:   models.StatusConfirmed,
			})
			if err != nil {
				return nil, nil, err
			}
		default:
			return nil, nil, err
		}

	case stateLocalRowNoSub:
		user, err = usersRepo.SetSubByLogin(ctx, login, sub)
		if err != nil {
			return nil, nil, err
		}

	case stateLocalRowWithSub:
		user = byLogin
	}

	profile, err := s.ensureProfile(ctx, tx, sub)
	if err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

// ensureProfile makes profile creation idempotent: existence is checked
// before insertion, under the surrounding transaction's isolation.
func (s *AccountService) ensureProfile(ctx context.Context, tx dbx.DBTX, sub string) (*models.Profile, error) {
	repo := s.rm.Profiles(tx)

	profile, err := repo.GetBySub(ctx, sub)
	if err == nil {
		return profile, nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		return repo.Create(ctx, sub)
	}
	return nil, err
}
