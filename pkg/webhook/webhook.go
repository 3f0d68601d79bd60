// Package webhook posts embed-style messages to a chat webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
)

// Palette used by the attendance reporters and event notifications.
const (
	ColorGreen   = 0x2ECC71
	ColorAmber   = 0xF1C40F
	ColorRed     = 0xE74C3C
	ColorDarkRed = 0x992D22
	ColorBlue    = 0x3498DB
)

// Field is a named value rendered inside an embed.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Footer is the small print under an embed.
type Footer struct {
	Text string `json:"text"`
}

// Embed is one rich block of a message.
type Embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color"`
	Fields      []Field `json:"fields,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

// Message is the POST body.
type Message struct {
	Username string  `json:"username,omitempty"`
	Embeds   []Embed `json:"embeds"`
}

// StatusError reports an unexpected webhook response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook responded %d: %s", e.StatusCode, e.Body)
}

// Client posts messages to a single webhook URL.
type Client struct {
	url      string
	username string
	http     *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUsername sets the display name sent with every message.
func WithUsername(name string) Option {
	return func(c *Client) {
		c.username = name
	}
}

// New builds a client. The timeout applies to each post.
func New(url string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{url: url, http: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post delivers msg. Only 200 and 204 count as success; everything else is
// returned as a transport error.
func (c *Client) Post(ctx context.Context, msg Message) error {
	if msg.Username == "" {
		msg.Username = c.username
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode webhook message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "post webhook")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return appErrors.Wrap(&StatusError{StatusCode: resp.StatusCode, Body: string(snippet)},
		appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "post webhook")
}
