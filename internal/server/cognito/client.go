package cognito

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/sergeyk-dev/authgate/internal/common"
)

// api is the subset of the SDK client the Client uses; a seam for tests.
type api interface {
	SignUp(ctx context.Context, in *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, in *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
}

// Client implements Provider on top of the AWS Cognito user pools API.
// Safe for concurrent use.
type Client struct {
	api          api
	clientID     string
	clientSecret string
}

// Options configures the AWS client. AccessKeyID/SecretAccessKey are
// optional; when empty, the SDK's default credential chain applies.
type Options struct {
	Region          string
	ClientID        string
	ClientSecret    string
	AccessKeyID     string
	SecretAccessKey string
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("aws config error: %w", err)
	}

	return &Client{
		api:          cip.NewFromConfig(awsCfg),
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
	}, nil
}

func (c *Client) secretHash(identifier string) string {
	return SecretHash(identifier, c.clientID, c.clientSecret)
}

func providerErr(err error) error {
	return fmt.Errorf("%w: %s", common.ErrProvider, err.Error())
}

func (c *Client) SignUp(ctx context.Context, username, password, email, role string) (*SignUpResult, error) {
	out, err := c.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:   aws.String(c.clientID),
		Username:   aws.String(username),
		Password:   aws.String(password),
		SecretHash: aws.String(c.secretHash(username)),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("custom:role"), Value: aws.String(role)},
		},
	})
	if err != nil {
		return nil, providerErr(err)
	}

	result := &SignUpResult{
		UserConfirmed: out.UserConfirmed,
		UserSub:       aws.ToString(out.UserSub),
	}
	if out.CodeDeliveryDetails != nil {
		result.CodeDeliveryDestination = aws.ToString(out.CodeDeliveryDetails.Destination)
	}
	return result, nil
}

func (c *Client) ConfirmSignUp(ctx context.Context, username, code string) error {
	_, err := c.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		SecretHash:       aws.String(c.secretHash(username)),
	})
	if err != nil {
		return providerErr(err)
	}
	return nil
}

func (c *Client) InitiateAuth(ctx context.Context, username, password string) (*AuthResult, error) {
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"USERNAME":    username,
			"PASSWORD":    password,
			"SECRET_HASH": c.secretHash(username),
		},
	})
	if err != nil {
		return nil, providerErr(err)
	}
	if out.AuthenticationResult == nil {
		// Challenge responses (MFA, new password required) are not part of
		// the supported flow.
		return nil, fmt.Errorf("%w: authentication incomplete", common.ErrProvider)
	}

	return &AuthResult{
		IDToken:      aws.ToString(out.AuthenticationResult.IdToken),
		AccessToken:  aws.ToString(out.AuthenticationResult.AccessToken),
		RefreshToken: aws.ToString(out.AuthenticationResult.RefreshToken),
	}, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (*DeliveryResult, error) {
	out, err := c.api.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId:   aws.String(c.clientID),
		Username:   aws.String(email),
		SecretHash: aws.String(c.secretHash(email)),
	})
	if err != nil {
		return nil, providerErr(err)
	}

	result := &DeliveryResult{}
	if out.CodeDeliveryDetails != nil {
		result.Destination = aws.ToString(out.CodeDeliveryDetails.Destination)
		result.Medium = string(out.CodeDeliveryDetails.DeliveryMedium)
	}
	return result, nil
}

func (c *Client) ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error {
	_, err := c.api.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
		SecretHash:       aws.String(c.secretHash(email)),
	})
	if err != nil {
		return providerErr(err)
	}
	return nil
}
