// Package http provides an HTTP gateway for the account service.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"filmdex/internal/httputil"
	"filmdex/pkg/discovery"
)

// ErrUnauthorized is returned for invalid credentials or tokens.
var ErrUnauthorized = errors.New("unauthorized")

// Gateway defines an HTTP gateway for the account service.
type Gateway struct {
	registry discovery.Registry
	client   *http.Client
}

// New creates a new HTTP gateway for the account service.
func New(registry discovery.Registry) *Gateway {
	return &Gateway{registry: registry, client: http.DefaultClient}
}

// Login exchanges credentials for a session token.
func (g *Gateway) Login(ctx context.Context, email, password string) (string, error) {
	base, err := httputil.ServiceURL(ctx, "account", g.registry)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/tokens", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return "", ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("account service: %s", resp.Status)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Validate checks a session token and returns the user id it carries.
func (g *Gateway) Validate(ctx context.Context, token string) (string, error) {
	base, err := httputil.ServiceURL(ctx, "account", g.registry)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/tokens/validate", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return "", ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("account service: %s", resp.Status)
	}
	var out struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.UserID, nil
}
