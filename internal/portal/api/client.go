// Package api implements the typed REST client for the internship-portal
// backend. Every call attaches the session's bearer credential except the
// login and registration endpoints; non-2xx responses surface as *APIError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	e "github.com/gurisdeprograma/ProjetoJPA/internal/portal/errors"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/session"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer credential for outgoing requests and
// purges it when it turns out to be corrupt or rejected by the backend.
type TokenSource interface {
	Token() string
	Purge()
}

// paths that must never carry an Authorization header.
var publicPaths = []string{
	"/auth/login",
	"/estudantes/registro",
	"/empresas/registro",
}

// Client issues requests against the backend REST surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *zap.Logger
	maxRetries uint64
}

// NewClient constructs a Client for the given API root. A nil httpClient
// falls back to a default with a 15s timeout.
func NewClient(baseURL string, tokens TokenSource, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		tokens:     tokens,
		logger:     logger.Named("api_client"),
		maxRetries: 3,
	}
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// do issues one request and decodes a 2xx response into out (when non-nil).
// GETs are retried with exponential backoff on transport errors and 5xx;
// everything else runs exactly once so mutations are never replayed.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	attempt := func() error {
		return c.once(ctx, method, path, payload, out)
	}
	if method != http.MethodGet {
		return attempt()
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	return backoff.Retry(func() error {
		err := attempt()
		if err == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			return backoff.Permanent(err)
		}
		// a 2xx body that fails to decode will not improve on replay
		if errors.Is(err, e.ErrMalformedResponse) {
			return backoff.Permanent(err)
		}
		c.logger.Debug("retrying request",
			zap.String("path", path),
			zap.Error(err),
		)
		return err
	}, policy)
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if !isPublicPath(path) {
		tok := c.tokens.Token()
		if session.UsableToken(tok) {
			req.Header.Set("Authorization", "Bearer "+tok)
		} else if tok != "" {
			c.logger.Warn("corrupt credential in store, purging",
				zap.String("path", path),
			)
			c.tokens.Purge()
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", e.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", e.ErrMalformedResponse, method, path, err)
	}
	return nil
}

// mapError builds an *APIError from a non-2xx response. A rejected
// credential is purged before returning so the next guard check fails
// closed into a re-login.
func (c *Client) mapError(resp *http.Response, raw []byte) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		kind:       classify(resp.StatusCode),
	}
	if len(raw) > 0 {
		// a plain-text error body is kept as the message
		if err := json.Unmarshal(raw, &apiErr.Body); err != nil {
			apiErr.Body.Message = strings.TrimSpace(string(raw))
		}
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.logger.Info("credential rejected by backend, purging",
			zap.Int("status", resp.StatusCode),
		)
		c.tokens.Purge()
	}
	return apiErr
}
