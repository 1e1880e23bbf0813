// Package cognito talks to the external identity provider: account
// registration, confirmation, the password auth flow, and password resets.
// The provider owns credentials and token issuance; this service only shapes
// parameters and relays results.
package cognito

import "context"

// SignUpResult reports the outcome of a registration call.
type SignUpResult struct {
	UserConfirmed bool   `json:"userConfirmed"`
	UserSub       string `json:"userSub"`
	// Destination the confirmation code was delivered to, when reported.
	CodeDeliveryDestination string `json:"codeDeliveryDestination,omitempty"`
}

// AuthResult carries the three tokens minted by a successful password auth.
type AuthResult struct {
	IDToken      string `json:"idToken"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// DeliveryResult reports where a password-reset code was sent.
type DeliveryResult struct {
	Destination string `json:"destination,omitempty"`
	Medium      string `json:"medium,omitempty"`
}

// Provider is the identity-provider surface the service depends on. Every
// method returns an error wrapping common.ErrProvider when the provider
// rejects the call, carrying the provider's message.
type Provider interface {
	SignUp(ctx context.Context, username, password, email, role string) (*SignUpResult, error)
	ConfirmSignUp(ctx context.Context, username, code string) error
	InitiateAuth(ctx context.Context, username, password string) (*AuthResult, error)
	ForgotPassword(ctx context.Context, email string) (*DeliveryResult, error)
	ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error
}
