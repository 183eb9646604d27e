package client

import (
	"context"
	"net/http"
	"time"
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Register creates an account and keeps the returned token.
func (c *APIClient) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	var res AuthResult
	in := map[string]string{"username": username, "email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/auth/register", in, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

// Login authenticates and keeps the returned token.
func (c *APIClient) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	var res AuthResult
	in := map[string]string{"username": username, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/auth/login", in, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.Token)
	return &res, nil
}

func (c *APIClient) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Refresh swaps the current token for a fresh one.
func (c *APIClient) Refresh(ctx context.Context) (string, error) {
	var res struct {
		Token string `json:"token"`
	}
	if err := c.Do(ctx, http.MethodPost, "/auth/refresh", nil, &res); err != nil {
		return "", err
	}
	c.SetToken(res.Token)
	return res.Token, nil
}

// Ping checks that the server answers /health.
func (c *APIClient) Ping(ctx context.Context) error {
	return c.Do(ctx, http.MethodGet, "/health", nil, nil)
}
