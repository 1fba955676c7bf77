package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// ClientTimeout is the total request timeout for processor API calls.
	ClientTimeout = 30 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
)

// Client is a minimal REST client for the processor's customer and
// hosted-checkout endpoints. Form-encoded requests, bearer auth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

// ClientConfig holds construction parameters for Client.
type ClientConfig struct {
	BaseURL   string
	SecretKey string

	// HTTPClient overrides the default transport. Used in tests.
	HTTPClient *http.Client
}

// NewClient creates a processor API client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: ClientTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   DialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		secretKey:  cfg.SecretKey,
	}
}

// CreateCustomer provisions a processor customer record for a user.
func (c *Client) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("metadata[userId]", userID)

	var result struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "/v1/customers", form, &result); err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}

	return result.ID, nil
}

// CheckoutParams describes a hosted checkout session.
type CheckoutParams struct {
	CustomerID string
	PriceID    string
	PriceType  string // PriceTypeSubscription or PriceTypePerListing
	UserID     string
	SuccessURL string
	CancelURL  string
}

// CreateCheckoutSession creates a hosted checkout page and returns its URL.
// Metadata carries the user id and price type so the completion webhook can
// route the purchase.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error) {
	mode := "payment"
	if params.PriceType == PriceTypeSubscription {
		mode = "subscription"
	}

	form := url.Values{}
	form.Set("customer", params.CustomerID)
	form.Set("mode", mode)
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("metadata[userId]", params.UserID)
	form.Set("metadata[priceType]", params.PriceType)

	var result struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := c.postForm(ctx, "/v1/checkout/sessions", form, &result); err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	return result.URL, nil
}

// postForm issues a form-encoded POST and decodes the JSON response.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("processor API status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
