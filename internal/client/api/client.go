// Package api is a thin JSON client for the authgate HTTP API, used by the
// CLI. It remembers the token pair from the last successful login and sends
// it on protected calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sergeyk-dev/authgate/internal/server/models"
)

type Client struct {
	baseURL string
	http    *http.Client

	idToken     string
	accessToken string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// LoggedIn reports whether a login has succeeded in this session.
func (c *Client) LoggedIn() bool {
	return c.idToken != "" && c.accessToken != ""
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.idToken)
		req.Header.Set("X-Access-Token", c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("server error (%d)", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

type SignUpResponse struct {
	Message string       `json:"message"`
	DBUser  *models.User `json:"dbUser"`
}

func (c *Client) SignUp(ctx context.Context, username, email, password string) (*SignUpResponse, error) {
	out := &SignUpResponse{}
	err := c.do(ctx, http.MethodPost, "/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, out, false)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Confirm(ctx context.Context, username, code string) error {
	return c.do(ctx, http.MethodPost, "/confirm", map[string]string{
		"username": username,
		"code":     code,
	}, nil, false)
}

type loginResponse struct {
	Message string `json:"message"`
	Tokens  struct {
		IDToken      string `json:"idToken"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"tokens"`
	User    *models.User    `json:"user"`
	Profile *models.Profile `json:"profile"`
}

// Login authenticates and stores the returned tokens for later calls.
func (c *Client) Login(ctx context.Context, login, password string) (*models.User, *models.Profile, error) {
	out := &loginResponse{}
	err := c.do(ctx, http.MethodPost, "/login", map[string]string{
		"username": login,
		"password": password,
	}, out, false)
	if err != nil {
		return nil, nil, err
	}

	c.idToken = out.Tokens.IDToken
	c.accessToken = out.Tokens.AccessToken
	return out.User, out.Profile, nil
}

type profileResponse struct {
	Message string          `json:"message"`
	Profile *models.Profile `json:"profile"`
}

func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	out := &profileResponse{}
	if err := c.do(ctx, http.MethodGet, "/profile", nil, out, true); err != nil {
		return nil, err
	}
	return out.Profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, firstName, lastName, number string) (*models.Profile, error) {
	out := &profileResponse{}
	err := c.do(ctx, http.MethodPut, "/profile", map[string]string{
		"first_name": firstName,
		"last_name":  lastName,
		"number":     number,
	}, out, true)
	if err != nil {
		return nil, err
	}
	return out.Profile, nil
}
