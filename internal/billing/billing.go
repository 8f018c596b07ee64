// Package billing delegates subscription lifecycle to the external payment
// provider; the core only flips the resulting paid/subscription flags.
package billing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client cancels subscriptions with the payment provider.
type Client interface {
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

// HTTPClient talks to a Stripe-compatible billing API.
type HTTPClient struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(secretKey, baseURL string) (*HTTPClient, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, fmt.Errorf("BILLING_SECRET_KEY is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("BILLING_API_URL is required")
	}
	return &HTTPClient{
		secretKey:  secretKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// CancelSubscription cancels the subscription immediately.
func (c *HTTPClient) CancelSubscription(ctx context.Context, subscriptionID string) error {
	url := c.baseURL + "/subscriptions/" + subscriptionID
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("billing cancel failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// PlaceholderClient is used when billing credentials are not configured.
type PlaceholderClient struct{}

func (PlaceholderClient) CancelSubscription(ctx context.Context, subscriptionID string) error {
	_ = ctx
	_ = subscriptionID
	return errors.New("billing client not configured")
}

var _ Client = (*HTTPClient)(nil)
