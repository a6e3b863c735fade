// Package balance queries the Factory usage API for the remaining token
// allowance of an API key.
package balance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"droidswitch/config/models"
	"droidswitch/internal/utils"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	// DefaultEndpoint is the usage API queried by Fetch
	DefaultEndpoint = "https://app.factory.ai/api/organization/members/chat-usage"
	// DefaultTimeout bounds a single request
	DefaultTimeout = 15 * time.Second
	// DefaultDelay separates consecutive requests in FetchAll
	DefaultDelay = 200 * time.Millisecond
)

// Client fetches usage snapshots
type Client struct {
	endpoint string
	client   *http.Client
	delay    time.Duration
	log      logrus.FieldLogger
}

// Option configures a Client
type Option func(*Client)

// WithEndpoint overrides the usage API URL
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

// WithDelay sets the pause between requests in FetchAll
func WithDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.delay = delay
	}
}

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a Client for the Factory usage API
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
		delay:    DefaultDelay,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch queries the usage of one API key
func (c *Client) Fetch(ctx context.Context, apiKey string) (*models.BalanceInfo, error) {
	log := c.log.WithField("key", utils.MaskAPIKey(apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("x-factory-client", "web-browser")
	req.Header.Set("Content-Type", "application/json")

	log.Debug("querying usage")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).Debug("usage query rejected")
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	info, err := Parse(body)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"used":      info.Used,
		"allowance": info.Allowance,
		"remaining": info.Remaining,
	}).Debug("usage query succeeded")
	return info, nil
}

// FetchAll queries each key in order, pausing between requests. Keys whose
// query failed are logged and left out of the result.
func (c *Client) FetchAll(ctx context.Context, apiKeys []string) map[string]*models.BalanceInfo {
	results := make(map[string]*models.BalanceInfo, len(apiKeys))

	for i, key := range apiKeys {
		if i > 0 && c.delay > 0 {
			timer := time.NewTimer(c.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return results
			case <-timer.C:
			}
		}

		info, err := c.Fetch(ctx, key)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return results
			}
			c.log.WithField("key", utils.MaskAPIKey(key)).Warnf("failed to query balance: %v", err)
			continue
		}
		results[key] = info
	}

	return results
}

var requiredFields = []string{
	"usage.standard.userTokens",
	"usage.standard.totalAllowance",
	"usage.standard.orgOverageUsed",
	"usage.standard.usedRatio",
}

// Parse decodes a usage response body into a BalanceInfo
func Parse(body []byte) (*models.BalanceInfo, error) {
	if !gjson.ValidBytes(body) {
		return nil, &ShapeError{Body: string(body), Err: errors.New("invalid JSON")}
	}

	fields := gjson.GetManyBytes(body, requiredFields...)
	for i, field := range fields {
		if field.Type != gjson.Number {
			return nil, &ShapeError{
				Body: string(body),
				Err:  fmt.Errorf("missing numeric field %s", requiredFields[i]),
			}
		}
	}

	used := fields[0].Uint()
	allowance := fields[1].Uint()
	ratio := fields[3].Float()

	info := &models.BalanceInfo{
		Used:        used,
		Allowance:   allowance,
		Overage:     fields[2].Uint(),
		UsedRatio:   ratio,
		PercentUsed: ratio * 100,
		Exceeded:    ratio > 1.0,
	}
	if allowance > used {
		info.Remaining = allowance - used
	}

	if end := gjson.GetBytes(body, "usage.endDate"); end.Type == gjson.Number {
		info.ExpiryDate = time.UnixMilli(end.Int()).UTC().Format(time.RFC3339)
	}

	return info, nil
}
