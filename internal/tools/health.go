package tools

import (
	"context"
	"errors"
	"fmt"

	"http-mcp-server/internal/probe"
)

// DefaultHealthURL is probed when check_remote_health gets no url.
const DefaultHealthURL = "https://httpbin.org/status/200"

type healthTool struct {
	client     *probe.Client
	defaultURL string
}

// NewHealthCheck returns the check_remote_health tool. A nil client gets
// probe defaults; an empty defaultURL falls back to DefaultHealthURL.
func NewHealthCheck(client *probe.Client, defaultURL string) Tool {
	if client == nil {
		client = probe.New(nil)
	}
	if defaultURL == "" {
		defaultURL = DefaultHealthURL
	}
	return &healthTool{client: client, defaultURL: defaultURL}
}

func (t *healthTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        "check_remote_health",
		Description: "Check health and status of a remote URL",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"url": {
					Type:        "string",
					Description: "URL to check (include http:// or https://)",
					Default:     t.defaultURL,
				},
			},
		},
	}
}

func (t *healthTool) Execute(ctx context.Context, args Arguments) (string, error) {
	url, _, err := args.String("url")
	if err != nil {
		return "", err
	}
	if url == "" {
		url = t.defaultURL
	}

	res, err := t.client.Check(ctx, url)
	switch {
	case err == nil:
	case errors.Is(err, probe.ErrInvalidURL):
		return "", &Failure{Kind: KindInvalidArgument, Message: fmt.Sprintf("Cannot check %s: %v", url, err), Err: err}
	case probe.IsTimeout(err):
		return "", &Failure{Kind: KindTimeout, Message: fmt.Sprintf("Timeout while checking %s", url), Err: err}
	default:
		return "", &Failure{Kind: KindNetwork, Message: fmt.Sprintf("Failed to check %s: %v", url, err), Err: err}
	}

	return fmt.Sprintf("Health Check Results:\nURL: %s\nStatus Code: %d\nHealthy: %t\nResponse Time: %.2fs",
		res.URL, res.StatusCode, res.Healthy(), res.Elapsed.Seconds()), nil
}
