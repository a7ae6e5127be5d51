// Package client is the Go client for the notify service: REST calls,
// the real-time notification listener, and the background session keeper.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to the notify service REST surface. It stores the bearer
// token obtained at login and attaches it to subsequent calls.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Token returns the current bearer token, empty before login.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken installs a token obtained elsewhere.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// Login authenticates and stores the issued bearer token.
func (c *Client) Login(ctx context.Context, userID, password string) error {
	var res loginResponse
	status, err := c.doJSON(ctx, http.MethodPost, "/auth/login", loginRequest{UserID: userID, Password: password}, &res)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("login failed: status %d", status)
	}
	c.SetToken(res.Token)
	return nil
}

// ValidateSession asks the server whether the stored token is still valid.
// An unauthorized answer is a negative result, not an error.
func (c *Client) ValidateSession(ctx context.Context) (bool, error) {
	status, err := c.doJSON(ctx, http.MethodGet, "/auth/validate", nil, nil)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized:
		return false, nil
	default:
		return false, fmt.Errorf("validate session: status %d", status)
	}
}

type deviceRequest struct {
	DeviceToken string `json:"deviceToken"`
	Platform    string `json:"platform"`
}

// RegisterDevice registers this device for out-of-band push.
func (c *Client) RegisterDevice(ctx context.Context, deviceToken, platform string) error {
	status, err := c.doJSON(ctx, http.MethodPost, "/devices/register", deviceRequest{DeviceToken: deviceToken, Platform: platform}, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("register device: status %d", status)
	}
	return nil
}

type sendRequest struct {
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// SendNotification asks the server to fan a notification out to the user's
// live connections.
func (c *Client) SendNotification(ctx context.Context, userID, title, message string) error {
	status, err := c.doJSON(ctx, http.MethodPost, "/notifications/send", sendRequest{UserID: userID, Title: title, Message: message}, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("send notification: status %d", status)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close() //nolint:errcheck

	if out != nil && res.StatusCode == http.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return res.StatusCode, err
		}
	}
	return res.StatusCode, nil
}
