package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergeyk-dev/authgate/internal/common"
	"github.com/sergeyk-dev/authgate/internal/dbx"
	"github.com/sergeyk-dev/authgate/internal/server/auth"
	"github.com/sergeyk-dev/authgate/internal/server/cognito"
	"github.com/sergeyk-dev/authgate/internal/server/models"
	"github.com/sergeyk-dev/authgate/internal/server/repositories/profiles"
	"github.com/sergeyk-dev/authgate/internal/server/repositories/users"
)

// memUsersRepo is an in-memory users.Repository. Keeping real state lets the
// reconciliation tests assert row counts and idempotence instead of call
// sequences.
type memUsersRepo struct {
	nextID int64
	rows   []*models.User
}

func (r *memUsersRepo) clone(u *models.User) *models.User {
	c := *u
	if u.Sub != nil {
		s := *u.Sub
		c.Sub = &s
	}
	return &c
}

func (r *memUsersRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.nextID++
	u := r.clone(user)
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.rows = append(r.rows, u)
	return r.clone(u), nil
}

func (r *memUsersRepo) GetByLogin(_ context.Context, login string) (*models.User, error) {
	for _, u := range r.rows {
		if u.Username == login || u.Email == login {
			return r.clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsersRepo) GetBySub(_ context.Context, sub string) (*models.User, error) {
	for _, u := range r.rows {
		if u.Sub != nil && *u.Sub == sub {
			return r.clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsersRepo) GetRoleBySub(ctx context.Context, sub string) (models.Role, error) {
	u, err := r.GetBySub(ctx, sub)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

func (r *memUsersRepo) UpdateIdentifiersBySub(_ context.Context, sub, username, email string) (*models.User, error) {
	for _, u := range r.rows {
		if u.Sub != nil && *u.Sub == sub {
			u.Username = username
			u.Email = email
			u.Status = models.StatusConfirmed
			u.UpdatedAt = time.Now()
			return r.clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsersRepo) SetSubByLogin(_ context.Context, login, sub string) (*models.User, error) {
	for _, u := range r.rows {
		if u.Username == login || u.Email == login {
			s := sub
			u.Sub = &s
			u.Status = models.StatusConfirmed
			u.UpdatedAt = time.Now()
			return r.clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsersRepo) UpdateStatusByUsername(_ context.Context, username, status string) (*models.User, error) {
	for _, u := range r.rows {
		if u.Username == username {
			u.Status = status
			u.UpdatedAt = time.Now()
			return r.clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsersRepo) UpdateRoleByID(_ context.Context, id int64, role models.Role) (*models.User, error) {
	for _, u := range r.rows {
		if u.ID == id {
			u.Role = role
			u.UpdatedAt = time.Now()
			return r.clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsersRepo) List(_ context.Context) ([]*models.User, error) {
	result := make([]*models.User, 0, len(r.rows))
	for _, u := range r.rows {
		result = append(result, r.clone(u))
	}
	return result, nil
}

type memProfilesRepo struct {
	nextID int64
	rows   map[string]*models.Profile
}

func newMemProfilesRepo() *memProfilesRepo {
	return &memProfilesRepo{rows: make(map[string]*models.Profile)}
}

func (r *memProfilesRepo) GetBySub(_ context.Context, sub string) (*models.Profile, error) {
	p, ok := r.rows[sub]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (r *memProfilesRepo) Create(_ context.Context, sub string) (*models.Profile, error) {
	r.nextID++
	p := &models.Profile{ID: r.nextID, Sub: sub, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.rows[sub] = p
	c := *p
	return &c, nil
}

func (r *memProfilesRepo) UpdateBySub(_ context.Context, sub string, firstName, lastName, number *string) (*models.Profile, error) {
	p, ok := r.rows[sub]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.FirstName = firstName
	p.LastName = lastName
	p.Number = number
	p.UpdatedAt = time.Now()
	c := *p
	return &c, nil
}

type fakeRepoManager struct {
	users    *memUsersRepo
	profiles *memProfilesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{users: &memUsersRepo{}, profiles: newMemProfilesRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository        { return m.profiles }

type fakeProvider struct {
	signUpResult *cognito.SignUpResult
	signUpErr    error
	confirmErr   error
	authResult   *cognito.AuthResult
	authErr      error
	delivery     *cognito.DeliveryResult
	forgotErr    error
	resetErr     error

	signUpCalls  int
	confirmCalls int
	authCalls    int
}

func (p *fakeProvider) SignUp(_ context.Context, _, _, _, _ string) (*cognito.SignUpResult, error) {
	p.signUpCalls++
	return p.signUpResult, p.signUpErr
}

func (p *fakeProvider) ConfirmSignUp(_ context.Context, _, _ string) error {
	p.confirmCalls++
	return p.confirmErr
}

func (p *fakeProvider) InitiateAuth(_ context.Context, _, _ string) (*cognito.AuthResult, error) {
	p.authCalls++
	return p.authResult, p.authErr
}

func (p *fakeProvider) ForgotPassword(_ context.Context, _ string) (*cognito.DeliveryResult, error) {
	return p.delivery, p.forgotErr
}

func (p *fakeProvider) ConfirmForgotPassword(_ context.Context, _, _, _ string) error {
	return p.resetErr
}

type fakeAccessVerifier struct {
	claims *auth.Claims
	err    error
}

func (v *fakeAccessVerifier) Verify(string) (*auth.Claims, error) { return v.claims, v.err }

func accessClaims(sub, username, email string) *auth.Claims {
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
		TokenUse:         "access",
		Username:         username,
		Email:            email,
	}
}

type accountFixture struct {
	svc      *AccountService
	rm       *fakeRepoManager
	provider *fakeProvider
	verifier *fakeAccessVerifier
	mock     sqlmock.Sqlmock
	db       *sql.DB
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rm := newFakeRepoManager()
	provider := &fakeProvider{
		signUpResult: &cognito.SignUpResult{UserSub: "sub-1", CodeDeliveryDestination: "a***@x.com"},
		authResult:   &cognito.AuthResult{IDToken: "id-token", AccessToken: "access-token", RefreshToken: "refresh-token"},
	}
	verifier := &fakeAccessVerifier{claims: accessClaims("sub-1", "alice", "alice@example.com")}

	return &accountFixture{
		svc:      NewAccountService(db, rm, provider, verifier),
		rm:       rm,
		provider: provider,
		verifier: verifier,
		mock:     mock,
		db:       db,
	}
}

func (f *accountFixture) expectTx() {
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
}

func TestSignUp_Success(t *testing.T) {
	f := newAccountFixture(t)
	f.expectTx()

	outcome, err := f.svc.SignUp(context.Background(), "alice", "alice@example.com", "Passw0rd!", models.RoleUser)
	require.NoError(t, err)

	assert.Equal(t, "sub-1", outcome.Provider.UserSub)
	assert.Equal(t, "alice", outcome.User.Username)
	assert.Equal(t, models.StatusUnconfirmed, outcome.User.Status)
	assert.Nil(t, outcome.User.Sub)

	require.Len(t, f.rm.users.rows, 1)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSignUp_ProviderErrorWritesNothing(t *testing.T) {
	f := newAccountFixture(t)
	f.provider.signUpErr = fmt.Errorf("%w: username exists", common.ErrProvider)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.SignUp(context.Background(), "alice", "alice@example.com", "Passw0rd!", models.RoleUser)
	assert.ErrorIs(t, err, common.ErrProvider)
	assert.Empty(t, f.rm.users.rows)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestConfirm_MarksLocalRowConfirmed(t *testing.T) {
	f := newAccountFixture(t)
	_, err := f.rm.users.Create(context.Background(), &models.User{
		Username: "alice", Email: "alice@example.com",
		Role: models.RoleUser, Status: models.StatusUnconfirmed,
	})
	require.NoError(t, err)

	user, err := f.svc.Confirm(context.Background(), "alice", "123456")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, models.StatusConfirmed, user.Status)
	assert.Equal(t, 1, f.provider.confirmCalls)
}

func TestConfirm_NoLocalRowTolerated(t *testing.T) {
	f := newAccountFixture(t)

	user, err := f.svc.Confirm(context.Background(), "ghost", "123456")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Equal(t, 1, f.provider.confirmCalls)
}

func TestConfirm_ProviderErrorLeavesStatus(t *testing.T) {
	f := newAccountFixture(t)
	f.provider.confirmErr = fmt.Errorf("%w: invalid code", common.ErrProvider)
	_, err := f.rm.users.Create(context.Background(), &models.User{
		Username: "alice", Email: "alice@example.com",
		Role: models.RoleUser, Status: models.StatusUnconfirmed,
	})
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), "alice", "bad")
	assert.ErrorIs(t, err, common.ErrProvider)
	assert.Equal(t, models.StatusUnconfirmed, f.rm.users.rows[0].Status)
}

func TestForgotPassword_PassThrough(t *testing.T) {
	f := newAccountFixture(t)
	f.provider.delivery = &cognito.DeliveryResult{Destination: "a***@x.com", Medium: "EMAIL"}

	result, err := f.svc.ForgotPassword(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "a***@x.com", result.Destination)
}

func TestResetPassword_ProviderError(t *testing.T) {
	f := newAccountFixture(t)
	f.provider.resetErr = fmt.Errorf("%w: expired code", common.ErrProvider)

	err := f.svc.ResetPassword(context.Background(), "alice@example.com", "000000", "NewPassw0rd!")
	assert.ErrorIs(t, err, common.ErrProvider)
}

func TestLogin_CreatesRowWhenNoLocalState(t *testing.T) {
	f := newAccountFixture(t)
	f.expectTx()

	outcome, err := f.svc.Login(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)

	assert.Equal(t, "access-token", outcome.Tokens.AccessToken)
	require.NotNil(t, outcome.User.Sub)
	assert.Equal(t, "sub-1", *outcome.User.Sub)
	assert.Equal(t, models.RoleUser, outcome.User.Role)
	assert.Equal(t, models.StatusConfirmed, outcome.User.Status)
	assert.Equal(t, "sub-1", outcome.Profile.Sub)

	assert.Len(t, f.rm.users.rows, 1)
	assert.Len(t, f.rm.profiles.rows, 1)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLogin_SubMatchUpdatesDriftedIdentifiers(t *testing.T) {
	f := newAccountFixture(t)
	sub := "sub-1"
	_, err := f.rm.users.Create(context.Background(), &models.User{
		Username: "old-name", Email: "old@example.com", Sub: &sub,
		Role: models.RoleAdmin, Status: models.StatusConfirmed,
	})
	require.NoError(t, err)
	f.expectTx()

	// The login identifier matches no local row, but the verified subject
	// already owns one under the stale identifiers.
	outcome, err := f.svc.Login(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)

	assert.Equal(t, "alice", outcome.User.Username)
	assert.Equal(t, "alice@example.com", outcome.User.Email)
	assert.Equal(t, models.RoleAdmin, outcome.User.Role, "role survives identifier refresh")
	assert.Len(t, f.rm.users.rows, 1, "no duplicate row inserted")
}

func TestLogin_PopulatesSubOnFirstLogin(t *testing.T) {
	f := newAccountFixture(t)
	_, err := f.rm.users.Create(context.Background(), &models.User{
		Username: "alice", Email: "alice@example.com",
		Role: models.RoleUser, Status: models.StatusUnconfirmed,
	})
	require.NoError(t, err)
	f.expectTx()

	outcome, err := f.svc.Login(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)

	require.NotNil(t, outcome.User.Sub)
	assert.Equal(t, "sub-1", *outcome.User.Sub)
	assert.Equal(t, models.StatusConfirmed, outcome.User.Status)
	assert.Len(t, f.rm.users.rows, 1)
	assert.Len(t, f.rm.profiles.rows, 1)
}

func TestLogin_SteadyStateLeavesRowUntouched(t *testing.T) {
	f := newAccountFixture(t)
	sub := "sub-1"
	seeded, err := f.rm.users.Create(context.Background(), &models.User{
		Username: "alice", Email: "alice@example.com", Sub: &sub,
		Role: models.RoleUser, Status: models.StatusConfirmed,
	})
	require.NoError(t, err)
	_, err = f.rm.profiles.Create(context.Background(), sub)
	require.NoError(t, err)
	f.expectTx()

	outcome, err := f.svc.Login(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)

	assert.Equal(t, seeded.UpdatedAt, outcome.User.UpdatedAt)
	assert.Len(t, f.rm.users.rows, 1)
	assert.Len(t, f.rm.profiles.rows, 1)
}

func TestLogin_Idempotent(t *testing.T) {
	f := newAccountFixture(t)
	f.expectTx()
	f.expectTx()

	first, err := f.svc.Login(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)
	second, err := f.svc.Login(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Len(t, f.rm.users.rows, 1)
	assert.Len(t, f.rm.profiles.rows, 1)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLogin_ProviderFailureWritesNothing(t *testing.T) {
	f := newAccountFixture(t)
	f.provider.authErr = fmt.Errorf("%w: incorrect username or password", common.ErrProvider)

	_, err := f.svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrProvider)
	assert.Empty(t, f.rm.users.rows)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLogin_MintedTokenVerificationFailure(t *testing.T) {
	f := newAccountFixture(t)
	f.verifier.claims = nil
	f.verifier.err = common.ErrInvalidToken

	_, err := f.svc.Login(context.Background(), "alice", "Passw0rd!")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.Empty(t, f.rm.users.rows)
}

func TestLogin_FallsBackToLoginForMissingClaims(t *testing.T) {
	f := newAccountFixture(t)
	f.verifier.claims = accessClaims("sub-1", "", "")
	f.expectTx()

	outcome, err := f.svc.Login(context.Background(), "alice@example.com", "Passw0rd!")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", outcome.User.Username)
	assert.Equal(t, "alice@example.com", outcome.User.Email)
}
