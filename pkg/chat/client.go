package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/identity/pkg/logger"
)

// User is the chat-side profile of an application user.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Image    string `json:"image,omitempty"`
}

// Client talks to the chat REST API.
type Client struct {
	baseURL  string
	apiKey   string
	secret   []byte
	timeout  time.Duration
	tokenTTL time.Duration
	http     *http.Client
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithLogger(log *slog.Logger) Option {
	return func(cl *Client) { cl.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(cl *Client) { cl.now = now }
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" || cfg.Secret == "" {
		return nil, ErrMissingCredentials
	}

	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		secret:   []byte(cfg.Secret),
		timeout:  cfg.Timeout,
		tokenTTL: cfg.TokenTTL,
		http:     http.DefaultClient,
		log:      logger.Discard(),
		now:      time.Now,
	}
	if c.timeout <= 0 {
		c.timeout = 5 * time.Second
	}
	if c.tokenTTL <= 0 {
		c.tokenTTL = time.Hour
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.Component("chat"))

	return c, nil
}

// ServerToken signs the token the backend presents to the REST API.
func (c *Client) ServerToken() (string, error) {
	return c.sign(jwt.MapClaims{"server": true})
}

// UserToken signs a connection token for userID. The issued-at time is
// backdated by a minute to tolerate client clock skew.
func (c *Client) UserToken(userID string) (string, error) {
	if userID == "" {
		return "", ErrInvalidUser
	}
	now := c.now()
	return c.sign(jwt.MapClaims{
		"user_id": userID,
		"iat":     jwt.NewNumericDate(now.Add(-time.Minute)),
		"exp":     jwt.NewNumericDate(now.Add(c.tokenTTL)),
	})
}

func (c *Client) sign(claims jwt.MapClaims) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", errors.Join(ErrTokenSigning, err)
	}
	return token, nil
}

// UpsertUser creates the user or replaces its profile.
func (c *Client) UpsertUser(ctx context.Context, u User) error {
	if u.ID == "" {
		return ErrInvalidUser
	}

	body, err := json.Marshal(map[string]any{
		"users": map[string]User{u.ID: u},
	})
	if err != nil {
		return err
	}

	start := c.now()
	if err := c.do(ctx, http.MethodPost, "/users", body); err != nil {
		c.log.ErrorContext(ctx, "chat user upsert failed", logger.UserID(u.ID), logger.Error(err))
		return err
	}
	c.log.DebugContext(ctx, "chat user upserted", logger.UserID(u.ID), logger.Duration(c.now().Sub(start)))
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) error {
	token, err := c.ServerToken()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path + "?" + url.Values{"api_key": {c.apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	req.Header.Set("Stream-Auth-Type", "jwt")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
