package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sergeyk-dev/authgate/internal/common"
)

// PoolIssuer returns the issuer URL of a user pool.
func PoolIssuer(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID)
}

// PoolKeyfunc builds a jwt.Keyfunc backed by the pool's published JWKS.
// Keys are fetched and refreshed in the background for the lifetime of ctx.
func PoolKeyfunc(ctx context.Context, region, userPoolID string) (jwt.Keyfunc, error) {
	jwksURL := PoolIssuer(region, userPoolID) + "/.well-known/jwks.json"
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("jwks init error: %w", err)
	}
	return k.Keyfunc, nil
}

// TokenVerifier validates a single raw token and returns its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*Claims, error)
}

// Verifier checks one kind of pool token: signature against the key source,
// expiry, issuer, audience, and the token_use tag.
type Verifier struct {
	keyfunc  jwt.Keyfunc
	issuer   string
	clientID string
	use      TokenUse
}

func NewVerifier(kf jwt.Keyfunc, issuer, clientID string, use TokenUse) *Verifier {
	return &Verifier{keyfunc: kf, issuer: issuer, clientID: clientID, use: use}
}

// Verify parses and validates tokenString. Expired tokens map to
// common.ErrTokenExpired, every other validation failure to
// common.ErrInvalidToken.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyfunc,
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidToken, err.Error())
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.TokenUse != string(v.use) {
		return nil, fmt.Errorf("%w: unexpected token_use %q", common.ErrInvalidToken, claims.TokenUse)
	}

	// Identity tokens carry the app client in aud, access tokens in client_id.
	switch v.use {
	case TokenUseID:
		if !audienceContains(claims.Audience, v.clientID) {
			return nil, fmt.Errorf("%w: audience mismatch", common.ErrInvalidToken)
		}
	case TokenUseAccess:
		if claims.ClientID != v.clientID {
			return nil, fmt.Errorf("%w: client_id mismatch", common.ErrInvalidToken)
		}
	}

	return claims, nil
}

func audienceContains(aud jwt.ClaimStrings, clientID string) bool {
	for _, a := range aud {
		if a == clientID {
			return true
		}
	}
	return false
}

// Session is the result of a successful dual-token verification.
type Session struct {
	ID     *Claims
	Access *Claims
}

// Sub returns the verified subject identifier shared by both tokens.
func (s *Session) Sub() string {
	return s.Access.Subject
}

// DualVerifier validates an identity/access token pair and cross-checks that
// both describe the same subject, so a caller cannot mix tokens from
// different sessions.
type DualVerifier struct {
	ID     TokenVerifier
	Access TokenVerifier
}

func NewDualVerifier(id, access TokenVerifier) *DualVerifier {
	return &DualVerifier{ID: id, Access: access}
}

// VerifyPair verifies both tokens independently and fails with
// common.ErrSubjectMismatch when their subjects differ.
func (d *DualVerifier) VerifyPair(idToken, accessToken string) (*Session, error) {
	if idToken == "" || accessToken == "" {
		return nil, common.ErrMissingCredentials
	}

	id, err := d.ID.Verify(idToken)
	if err != nil {
		return nil, err
	}
	access, err := d.Access.Verify(accessToken)
	if err != nil {
		return nil, err
	}

	if id.Subject != access.Subject {
		return nil, common.ErrSubjectMismatch
	}

	return &Session{ID: id, Access: access}, nil
}
