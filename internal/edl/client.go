// Package edl talks to the Earthdata Login token endpoints. It mints one
// bearer token per run, clearing out existing tokens first when the provider
// reports the per-account token cap has been reached.
package edl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/earthdata-tools/edl-token-rotator/internal/creds"
	dserrors "github.com/earthdata-tools/edl-token-rotator/internal/errors"
	"github.com/earthdata-tools/edl-token-rotator/internal/logging"
)

const (
	tokenPath  = "/api/users/token"
	tokensPath = "/api/users/tokens"
	revokePath = "/api/users/revoke_token"

	// Provider error code for the hard cap on concurrently live tokens.
	errCodeMaxTokenLimit = "max_token_limit"
)

// HTTPClient is the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an Earthdata Login token API client.
type Client struct {
	baseURL string
	client  HTTPClient
	logger  *logging.Logger
}

// NewClient creates a token API client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client HTTPClient) {
	c.client = client
}

// tokenResponse is the parsed shape of every token endpoint reply. Exactly
// one of AccessToken or Error is set on a well-formed reply; downstream logic
// branches only on this struct, never on raw JSON keys.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// AcquireToken exchanges the credentials for a fresh bearer token.
//
// When the provider reports max_token_limit, all existing tokens are revoked
// and the creation is retried exactly once. Any other provider error code, on
// either attempt, is returned as *errors.ProviderError. Transport and decode
// failures are returned as plain wrapped errors.
func (c *Client) AcquireToken(ctx context.Context, cr creds.Credentials) (string, error) {
	resp, err := c.createToken(ctx, cr)
	if err != nil {
		return "", err
	}

	switch {
	case resp.Error == "":
		if resp.AccessToken == "" {
			return "", fmt.Errorf("EDL response contained neither access_token nor error")
		}
		c.logger.Info("Successfully generated EDL bearer token.")
		return resp.AccessToken, nil
	case resp.Error == errCodeMaxTokenLimit:
		c.logger.Warn("Token limit reached; revoking existing tokens.")
		return c.remediate(ctx, cr)
	default:
		c.logger.Error("Error encountered when trying to retrieve bearer token from EDL.")
		return "", &dserrors.ProviderError{
			Code:        resp.Error,
			Description: resp.ErrorDescription,
		}
	}
}

// remediate revokes every live token, then retries the creation once. The
// revoke calls are best effort; their responses are not validated. If two
// runs overlap, this can revoke a token the other run minted moments earlier;
// the last stored token wins, which is acceptable at the 59-day cadence.
func (c *Client) remediate(ctx context.Context, cr creds.Credentials) (string, error) {
	tokens, err := c.listTokens(ctx, cr)
	if err != nil {
		return "", err
	}
	revoked := 0
	for _, t := range tokens {
		if t.AccessToken == "" {
			continue
		}
		if err := c.revokeToken(ctx, cr, t.AccessToken); err != nil {
			return "", err
		}
		revoked++
	}
	c.logger.Debug("Revoked %d existing token(s).", revoked)

	resp, err := c.createToken(ctx, cr)
	if err != nil {
		return "", err
	}
	if resp.Error != "" {
		c.logger.Error("Error encountered when trying to retrieve bearer token from EDL.")
		return "", &dserrors.ProviderError{
			Code:        resp.Error,
			Description: resp.ErrorDescription,
		}
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("EDL response contained neither access_token nor error")
	}
	c.logger.Info("Successfully generated EDL bearer token.")
	return resp.AccessToken, nil
}

func (c *Client) createToken(ctx context.Context, cr creds.Credentials) (tokenResponse, error) {
	body, err := c.do(ctx, http.MethodPost, c.baseURL+tokenPath, cr)
	if err != nil {
		return tokenResponse{}, err
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return tokenResponse{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	return resp, nil
}

func (c *Client) listTokens(ctx context.Context, cr creds.Credentials) ([]tokenResponse, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+tokensPath, cr)
	if err != nil {
		return nil, err
	}

	var tokens []tokenResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode token list: %w", err)
	}
	return tokens, nil
}

func (c *Client) revokeToken(ctx context.Context, cr creds.Credentials, token string) error {
	revokeURL := c.baseURL + revokePath + "?token=" + url.QueryEscape(token)
	_, err := c.do(ctx, http.MethodPost, revokeURL, cr)
	return err
}

func (c *Client) do(ctx context.Context, method, rawURL string, cr creds.Credentials) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build EDL request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(cr.Username, cr.Password)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("EDL request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read EDL response: %w", err)
	}
	return body, nil
}
