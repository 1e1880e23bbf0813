package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergeyk-dev/authgate/internal/common"
)

const (
	testIssuer   = "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_test"
	testClientID = "client-id"
)

var testKey = []byte("verifier-test-key")

func testKeyfunc(t *jwt.Token) (any, error) { return testKey, nil }

type tokenOpts struct {
	sub      string
	use      string
	issuer   string
	audience string
	clientID string
	email    string
	username string
	expires  time.Time
}

func signToken(t *testing.T, o tokenOpts) string {
	t.Helper()

	if o.issuer == "" {
		o.issuer = testIssuer
	}
	if o.expires.IsZero() {
		o.expires = time.Now().Add(time.Hour)
	}

	claims := jwt.MapClaims{
		"sub":       o.sub,
		"token_use": o.use,
		"iss":       o.issuer,
		"exp":       jwt.NewNumericDate(o.expires),
		"iat":       jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	if o.audience != "" {
		claims["aud"] = o.audience
	}
	if o.clientID != "" {
		claims["client_id"] = o.clientID
	}
	if o.email != "" {
		claims["email"] = o.email
	}
	if o.username != "" {
		claims["cognito:username"] = o.username
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	require.NoError(t, err)
	return s
}

func idVerifier() *Verifier {
	return NewVerifier(testKeyfunc, testIssuer, testClientID, TokenUseID)
}

func accessVerifier() *Verifier {
	return NewVerifier(testKeyfunc, testIssuer, testClientID, TokenUseAccess)
}

func TestVerifier_ValidIDToken(t *testing.T) {
	token := signToken(t, tokenOpts{sub: "sub-1", use: "id", audience: testClientID, email: "a@x.com", username: "alice"})

	claims, err := idVerifier().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "alice", claims.PreferredUsername())
}

func TestVerifier_ValidAccessToken(t *testing.T) {
	token := signToken(t, tokenOpts{sub: "sub-1", use: "access", clientID: testClientID})

	claims, err := accessVerifier().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", claims.Subject)
}

func TestVerifier_RejectsWrongTokenUse(t *testing.T) {
	// A valid access token presented where an id token is expected.
	token := signToken(t, tokenOpts{sub: "sub-1", use: "access", clientID: testClientID, audience: testClientID})

	_, err := idVerifier().Verify(token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerifier_RejectsWrongAudience(t *testing.T) {
	token := signToken(t, tokenOpts{sub: "sub-1", use: "id", audience: "other-client"})

	_, err := idVerifier().Verify(token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerifier_RejectsWrongClientID(t *testing.T) {
	token := signToken(t, tokenOpts{sub: "sub-1", use: "access", clientID: "other-client"})

	_, err := accessVerifier().Verify(token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerifier_RejectsWrongIssuer(t *testing.T) {
	token := signToken(t, tokenOpts{sub: "sub-1", use: "id", audience: testClientID, issuer: "https://evil.example.com"})

	_, err := idVerifier().Verify(token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerifier_ExpiredToken(t *testing.T) {
	token := signToken(t, tokenOpts{sub: "sub-1", use: "id", audience: testClientID, expires: time.Now().Add(-time.Hour)})

	_, err := idVerifier().Verify(token)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerifier_Garbage(t *testing.T) {
	_, err := idVerifier().Verify("not-a-token")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestDualVerifier_MatchingSubjects(t *testing.T) {
	d := NewDualVerifier(idVerifier(), accessVerifier())

	idToken := signToken(t, tokenOpts{sub: "sub-1", use: "id", audience: testClientID, email: "a@x.com"})
	accessToken := signToken(t, tokenOpts{sub: "sub-1", use: "access", clientID: testClientID})

	session, err := d.VerifyPair(idToken, accessToken)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", session.Sub())
	assert.Equal(t, "a@x.com", session.ID.Email)
	assert.Equal(t, "sub-1", session.Access.Subject)
}

func TestDualVerifier_SubjectMismatch(t *testing.T) {
	d := NewDualVerifier(idVerifier(), accessVerifier())

	// Both tokens are individually valid; only the subjects differ.
	idToken := signToken(t, tokenOpts{sub: "sub-1", use: "id", audience: testClientID})
	accessToken := signToken(t, tokenOpts{sub: "sub-2", use: "access", clientID: testClientID})

	_, err := d.VerifyPair(idToken, accessToken)
	assert.ErrorIs(t, err, common.ErrSubjectMismatch)
}

func TestDualVerifier_MissingTokens(t *testing.T) {
	d := NewDualVerifier(idVerifier(), accessVerifier())

	idToken := signToken(t, tokenOpts{sub: "sub-1", use: "id", audience: testClientID})

	_, err := d.VerifyPair("", "")
	assert.ErrorIs(t, err, common.ErrMissingCredentials)

	_, err = d.VerifyPair(idToken, "")
	assert.ErrorIs(t, err, common.ErrMissingCredentials)
}

func TestDualVerifier_InvalidTokenPropagates(t *testing.T) {
	d := NewDualVerifier(idVerifier(), accessVerifier())

	accessToken := signToken(t, tokenOpts{sub: "sub-1", use: "access", clientID: testClientID})

	_, err := d.VerifyPair("garbage", accessToken)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
