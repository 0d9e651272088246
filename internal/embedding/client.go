package embedding

import (
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client wraps the OpenAI client shared by embedding and chat generation.
type Client struct {
	client *openai.Client
}

// NewClient creates an OpenAI client for apiKey. An empty baseURL keeps the
// public API endpoint. An empty apiKey is accepted; requests then fail with an
// authentication error from the server.
//
// SDK-level retries are disabled because callers retry rate-limit errors with
// their own backoff.
func NewClient(apiKey, baseURL string) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)
	return &Client{client: &client}
}

// Client returns the underlying OpenAI client for use in other packages (e.g., chat completions).
func (c *Client) Client() *openai.Client {
	return c.client
}
