package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/mansukim1125/run-configurations/internal/domain/runconfig"
	"github.com/mansukim1125/run-configurations/internal/providers/terminal"
)

// DefaultAddr is where the daemon listens by default
const DefaultAddr = "http://127.0.0.1:7878"

// ErrConfirmationRequired is returned by Delete when the daemon asks for
// confirmation; the APIError carries the prompt.
var ErrConfirmationRequired = errors.New("confirmation required")

// APIError is a non-2xx response from the daemon
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Prompt     string `json:"prompt,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// Unwrap maps 409 responses carrying a prompt to ErrConfirmationRequired
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusConflict && e.Prompt != "" {
		return ErrConfirmationRequired
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the daemon
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the run configuration daemon. Requests are not retried.
type Client struct {
	resty *resty.Client
}

// New creates a client for the daemon at baseURL
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultAddr
	}
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("User-Agent", "runctl/0.1").
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	return &Client{resty: r}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.resty.R().SetContext(ctx).SetError(&APIError{})
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		apiErr, _ := resp.Error().(*APIError)
		if apiErr == nil || apiErr.Message == "" {
			apiErr = &APIError{Message: http.StatusText(resp.StatusCode())}
		}
		apiErr.StatusCode = resp.StatusCode()
		return apiErr
	}
	return nil
}

// Health returns the daemon's health document
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := check(c.request(ctx).SetResult(&out).Get("/health"))
	return out, err
}

// List returns stored configurations whose name matches pattern ("" for all)
func (c *Client) List(ctx context.Context, pattern string) ([]runconfig.RunConfiguration, error) {
	var out struct {
		Configurations []runconfig.RunConfiguration `json:"configurations"`
	}
	req := c.request(ctx).SetResult(&out)
	if pattern != "" {
		req.SetQueryParam("name", pattern)
	}
	if err := check(req.Get("/configurations")); err != nil {
		return nil, err
	}
	return out.Configurations, nil
}

// Get returns one configuration
func (c *Client) Get(ctx context.Context, id string) (runconfig.RunConfiguration, error) {
	var out runconfig.RunConfiguration
	err := check(c.request(ctx).SetResult(&out).Get("/configurations/" + url.PathEscape(id)))
	return out, err
}

// Create saves a new configuration built from dto
func (c *Client) Create(ctx context.Context, dto runconfig.DTO) (runconfig.RunConfiguration, error) {
	var out runconfig.RunConfiguration
	err := check(c.request(ctx).SetBody(dto).SetResult(&out).Post("/configurations"))
	return out, err
}

// Update replaces the configuration stored under id
func (c *Client) Update(ctx context.Context, id string, dto runconfig.DTO) (runconfig.RunConfiguration, error) {
	var out runconfig.RunConfiguration
	err := check(c.request(ctx).SetBody(dto).SetResult(&out).Put("/configurations/" + url.PathEscape(id)))
	return out, err
}

// Delete removes a configuration. Without confirm the daemon refuses and
// the error wraps ErrConfirmationRequired.
func (c *Client) Delete(ctx context.Context, id string, confirm bool) error {
	req := c.request(ctx)
	if confirm {
		req.SetQueryParam("confirm", "true")
	}
	return check(req.Delete("/configurations/" + url.PathEscape(id)))
}

// Run executes a configuration and returns its terminal id
func (c *Client) Run(ctx context.Context, id string) (string, error) {
	var out struct {
		TerminalID string `json:"terminal_id"`
	}
	err := check(c.request(ctx).SetResult(&out).Post("/configurations/" + url.PathEscape(id) + "/run"))
	return out.TerminalID, err
}

// Tree returns the sidebar items
func (c *Client) Tree(ctx context.Context) ([]runconfig.TreeItem, error) {
	var out struct {
		Items []runconfig.TreeItem `json:"items"`
	}
	err := check(c.request(ctx).SetResult(&out).Get("/tree"))
	return out.Items, err
}

// Refresh asks connected views to reload
func (c *Client) Refresh(ctx context.Context) error {
	return check(c.request(ctx).Post("/refresh"))
}

// Sessions maps configuration ids to terminal ids
func (c *Client) Sessions(ctx context.Context) (map[string]string, error) {
	var out struct {
		Sessions map[string]string `json:"sessions"`
	}
	err := check(c.request(ctx).SetResult(&out).Get("/sessions"))
	return out.Sessions, err
}

// Terminals lists the daemon's terminals
func (c *Client) Terminals(ctx context.Context) ([]terminal.SessionInfo, error) {
	var out struct {
		Terminals []terminal.SessionInfo `json:"terminals"`
	}
	err := check(c.request(ctx).SetResult(&out).Get("/terminals"))
	return out.Terminals, err
}

// Output drains a terminal's buffered output
func (c *Client) Output(ctx context.Context, terminalID string) ([]byte, error) {
	resp, err := c.request(ctx).
		SetHeader("Accept", "application/octet-stream").
		Get("/terminals/" + url.PathEscape(terminalID) + "/output")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// Input writes text to a terminal, followed by a carriage return when
// newline is set
func (c *Client) Input(ctx context.Context, terminalID, text string, newline bool) error {
	body := map[string]any{"text": text, "newline": newline}
	return check(c.request(ctx).SetBody(body).Post("/terminals/" + url.PathEscape(terminalID) + "/input"))
}

// Kill terminates a terminal
func (c *Client) Kill(ctx context.Context, terminalID string) error {
	return check(c.request(ctx).Delete("/terminals/" + url.PathEscape(terminalID)))
}
