package chatlog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"chatterdash/config"
	"chatterdash/internal/models"
)

// customHeaderRoundTripper adds custom headers to every request
type customHeaderRoundTripper struct {
	headers map[string]string
	rt      http.RoundTripper
}

// RoundTrip implements the RoundTripper interface
func (c *customHeaderRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req = req.Clone(req.Context())

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	return c.rt.RoundTrip(req)
}

// Client handles communication with the remote chat-log service
type Client struct {
	// BaseURL is the base URL of the chat-log service
	BaseURL string

	// HTTPClient is the HTTP client used for requests
	HTTPClient *http.Client

	// Authentication
	Username string
	Password string
	Token    string

	// Custom headers (for proxy bypass tokens, etc.)
	Headers map[string]string
}

// NewClient creates a chat-log client with default settings
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Headers: make(map[string]string),
	}
}

// NewClientFromConfig creates a chat-log client from process configuration
func NewClientFromConfig(cfg config.ChatlogConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// Custom redirect policy to preserve headers and auth across redirects
	checkRedirect := func(req *http.Request, via []*http.Request) error {
		if len(via) > 0 {
			for key, value := range cfg.Headers {
				req.Header.Set(key, value)
			}
			if cfg.Token != "" {
				req.Header.Set("Authorization", "Bearer "+cfg.Token)
			} else if cfg.Username != "" && cfg.Password != "" {
				req.SetBasicAuth(cfg.Username, cfg.Password)
			}
		}

		if len(via) >= 10 {
			return fmt.Errorf("too many redirects")
		}
		return nil
	}

	httpClient := &http.Client{
		Timeout:       timeout,
		CheckRedirect: checkRedirect,
	}
	if len(cfg.Headers) > 0 {
		httpClient.Transport = &customHeaderRoundTripper{
			headers: cfg.Headers,
			rt:      http.DefaultTransport,
		}
	}

	return &Client{
		BaseURL:    cfg.URL,
		HTTPClient: httpClient,
		Username:   cfg.Username,
		Password:   cfg.Password,
		Token:      cfg.Token,
		Headers:    cfg.Headers,
	}
}

func (c *Client) addAuth(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	} else if c.Username != "" && c.Password != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}
}

// FetchMentions retrieves mentions for an identity from the chat-log service.
// A non-nil since bounds the request to records newer than the cursor; a nil
// since asks for the full feed.
func (c *Client) FetchMentions(ctx context.Context, identity string, since *time.Time) ([]models.MentionRecord, error) {
	query := url.Values{}
	query.Set("username", identity)
	if since != nil {
		query.Set("since", since.UTC().Format(time.RFC3339))
	}
	reqURL := fmt.Sprintf("%s/api/mentions?%s", c.BaseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Chatterdash/1.0")
	c.addAuth(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	// A proxy or login page in front of the service answers with HTML
	if len(body) > 0 && body[0] == '<' {
		return nil, &FetchError{Err: fmt.Errorf("received HTML response instead of JSON")}
	}

	var mentions []models.MentionRecord
	if err := json.Unmarshal(body, &mentions); err != nil {
		return nil, &FetchError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return mentions, nil
}

// HideMention asks the chat-log service to stop returning a mention. The
// server marks it hidden rather than deleting it outright.
func (c *Client) HideMention(ctx context.Context, id int64) error {
	reqURL := fmt.Sprintf("%s/api/mentions/%d", c.BaseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL, nil)
	if err != nil {
		return &HideError{MentionID: id, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Chatterdash/1.0")
	c.addAuth(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &HideError{MentionID: id, Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HideError{MentionID: id, Status: resp.StatusCode}
	}

	return nil
}

// TestConnection verifies the chat-log service is reachable
func (c *Client) TestConnection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Chatterdash/1.0")
	c.addAuth(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("chatlog returned status %d", resp.StatusCode)
	}

	return nil
}
