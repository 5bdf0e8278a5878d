// Package notify delivers trade and signal notifications to external
// messaging services.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PushPlusURL is the PushPlus message endpoint.
const PushPlusURL = "https://www.pushplus.plus/send"

// PushPlus sends markdown notifications through the PushPlus service.
type PushPlus struct {
	token      string
	url        string
	httpClient *http.Client
}

// PushPlusOption customizes the client.
type PushPlusOption func(*PushPlus)

// WithPushPlusURL points the client at a different endpoint (tests).
func WithPushPlusURL(u string) PushPlusOption {
	return func(p *PushPlus) { p.url = u }
}

// WithPushPlusHTTPClient replaces the underlying HTTP client.
func WithPushPlusHTTPClient(h *http.Client) PushPlusOption {
	return func(p *PushPlus) { p.httpClient = h }
}

// NewPushPlus creates a PushPlus notifier for the given token.
func NewPushPlus(token string, opts ...PushPlusOption) *PushPlus {
	p := &PushPlus{
		token: token,
		url:   PushPlusURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type pushPlusRequest struct {
	Token    string `json:"token"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Template string `json:"template"`
}

type pushPlusResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Send delivers a markdown message. A non-200 service code is an error.
func (p *PushPlus) Send(ctx context.Context, title, content string) error {
	if p.token == "" {
		return fmt.Errorf("pushplus token is not configured")
	}

	body, err := json.Marshal(pushPlusRequest{
		Token:    p.token,
		Title:    title,
		Content:  content,
		Template: "markdown",
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushplus returned HTTP %d", resp.StatusCode)
	}

	var result pushPlusResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode pushplus response: %w", err)
	}
	if result.Code != 200 {
		return fmt.Errorf("pushplus rejected message: %s (code %d)", result.Msg, result.Code)
	}
	return nil
}
