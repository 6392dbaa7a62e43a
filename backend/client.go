package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/tbxark/briefpay/types"
)

const (
	briefsPath = "/api/briefs/"

	submitFailedMessage       = "Failed to submit brief. Please try again."
	unexpectedResponseMessage = "Unexpected response from the server. Please try again."

	maxErrorBody = 64 << 10
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		userAgent:  "briefpay",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type errorBody struct {
	Detail any `json:"detail"`
}

// SubmitBrief posts the brief and returns the payment intent issued for it.
func (c *Client) SubmitBrief(ctx context.Context, brief *types.BriefRequest) (*types.BriefResponse, error) {
	payload, err := sonic.Marshal(brief)
	if err != nil {
		return nil, types.NewUnhandledError("Could not encode the brief.", fmt.Errorf("marshal brief: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+briefsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, types.NewUnhandledError(submitFailedMessage, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	slog.Debug("Submitting brief", "url", req.URL.String(), "topic", brief.Topic, "word_count", brief.WordCount)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, types.NewNetworkError(submitFailedMessage, fmt.Errorf("post brief: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		message := detailMessage(body)
		if message == "" {
			message = submitFailedMessage
		}
		return nil, types.NewNetworkError(message, fmt.Errorf("post brief: unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewNetworkError(submitFailedMessage, fmt.Errorf("read response: %w", err))
	}
	var out types.BriefResponse
	if err := sonic.Unmarshal(body, &out); err != nil {
		return nil, types.NewUnhandledError(unexpectedResponseMessage, fmt.Errorf("decode response: %w", err))
	}
	slog.Debug("Brief accepted", "response", out)
	return &out, nil
}

func detailMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var eb errorBody
	if err := sonic.Unmarshal(body, &eb); err != nil {
		return ""
	}
	detail, ok := eb.Detail.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(detail)
}
