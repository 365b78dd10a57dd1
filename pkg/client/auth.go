package client

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Account struct {
	Id    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserId      uuid.UUID `json:"user_id"`
}

func (c *Client) Register(ctx context.Context, email, password string) (*Response[Account], error) {
	return callEnvelope[Account](ctx, c, http.MethodPost, "/auth/register", credentials{Email: email, Password: password})
}

// Login authenticates and, on success, keeps the token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*Response[Session], error) {
	res, err := callEnvelope[Session](ctx, c, http.MethodPost, "/auth/login", credentials{Email: email, Password: password})
	if err != nil {
		return res, err
	}
	if res.OK() && res.Data != nil {
		c.SetAuthToken(res.Data.AccessToken)
	}
	return res, nil
}

// Logout revokes the current token and forgets it.
func (c *Client) Logout(ctx context.Context) (*Response[struct{}], error) {
	res, err := callEnvelope[struct{}](ctx, c, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return res, err
	}
	if res.OK() {
		c.SetAuthToken("")
	}
	return res, nil
}
