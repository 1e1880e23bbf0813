// Package auth verifies the identity and access tokens minted by the user
// pool and gates requests on the locally stored role.
package auth

import "github.com/golang-jwt/jwt/v5"

// TokenUse tags which kind of pool token a verifier accepts.
type TokenUse string

const (
	TokenUseID     TokenUse = "id"
	TokenUseAccess TokenUse = "access"
)

// Claims is the decoded payload of a pool token. Identity tokens carry
// cognito:username and email; access tokens carry client_id and username.
type Claims struct {
	jwt.RegisteredClaims
	TokenUse        string `json:"token_use"`
	ClientID        string `json:"client_id"`
	CognitoUsername string `json:"cognito:username"`
	Username        string `json:"username"`
	Email           string `json:"email"`
}

// PreferredUsername returns the provider-side username regardless of which
// token kind the claims came from.
func (c *Claims) PreferredUsername() string {
	if c.CognitoUsername != "" {
		return c.CognitoUsername
	}
	return c.Username
}
