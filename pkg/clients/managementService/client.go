// Package managementService reads the network status published by Orbs network
// nodes: the registered guardians and the history of the committee.
package managementService

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeout    = 5 * time.Second
	DefaultRetries    = 3
	DefaultRetryDelay = 300 * time.Millisecond
)

type Guardian struct {
	EthAddress     string  `json:"EthAddress"`
	Name           string  `json:"Name"`
	Website        string  `json:"Website"`
	Ip             string  `json:"Ip"`
	EffectiveStake float64 `json:"EffectiveStake"`
	DelegatedStake float64 `json:"DelegatedStake"`
}

// Guardians is published either as a map keyed by address or as a list.
type Guardians []Guardian

func (g *Guardians) UnmarshalJSON(data []byte) error {
	var list []Guardian
	if err := json.Unmarshal(data, &list); err == nil {
		*g = list
		return nil
	}
	byAddress := make(map[string]Guardian)
	if err := json.Unmarshal(data, &byAddress); err != nil {
		return err
	}
	keys := make([]string, 0, len(byAddress))
	for k := range byAddress {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Guardian, 0, len(keys))
	for _, k := range keys {
		out = append(out, byAddress[k])
	}
	*g = out
	return nil
}

type CommitteeMember struct {
	EthAddress     string  `json:"EthAddress"`
	EffectiveStake float64 `json:"EffectiveStake"`
	Weight         float64 `json:"Weight"`
}

type CommitteeEvent struct {
	RefTime   int64             `json:"RefTime"`
	RefBlock  uint64            `json:"RefBlock"`
	Committee []CommitteeMember `json:"Committee"`
}

type Payload struct {
	Guardians         Guardians         `json:"Guardians"`
	CurrentCommittee  []CommitteeMember `json:"CurrentCommittee"`
	CurrentCandidates []json.RawMessage `json:"CurrentCandidates"`
	CommitteeEvents   []CommitteeEvent  `json:"CommitteeEvents"`
}

type Status struct {
	Payload Payload         `json:"Payload"`
	Error   json.RawMessage `json:"error,omitempty"`
}

type ClientConfig struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:    DefaultTimeout,
		Retries:    DefaultRetries,
		RetryDelay: DefaultRetryDelay,
	}
}

type Client struct {
	httpClient *http.Client
	config     *ClientConfig
	logger     *zap.Logger
}

func NewClient(cfg *ClientConfig, logger *zap.Logger) *Client {
	if cfg == nil {
		cfg = DefaultClientConfig()
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 1
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}
}

// SetHttpClient swaps the transport, for tests.
func (c *Client) SetHttpClient(client *http.Client) {
	c.httpClient = client
}

// FetchStatus reads the status of one node, retrying a few times before giving up.
func (c *Client) FetchStatus(ctx context.Context, url string) (*Status, error) {
	var lastErr error
	for attempt := 0; attempt < c.config.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}
		status, err := c.fetchStatusOnce(ctx, url)
		if err == nil {
			return status, nil
		}
		lastErr = err
		c.logger.Sugar().Debugw("Failed to fetch management status",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return nil, lastErr
}

func (c *Client) fetchStatusOnce(ctx context.Context, url string) (*Status, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	contentType := resp.Header.Get("content-type")
	if resp.StatusCode != http.StatusOK || !strings.Contains(strings.ToLower(contentType), "application/json") {
		return nil, fmt.Errorf("invalid response for url '%s': Status Code: %d, Content-Type: %s, Content: %s",
			url, resp.StatusCode, contentType, string(body))
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("invalid response for url '%s': %w", url, err)
	}
	if len(status.Error) > 0 && string(status.Error) != "null" {
		return nil, fmt.Errorf("invalid response for url '%s'", url)
	}
	return &status, nil
}

// AllNodesFailedError carries the failure of every node that was tried.
type AllNodesFailedError struct {
	What     string
	Warnings []string
}

func (e *AllNodesFailedError) Error() string {
	return fmt.Sprintf("Error while creating %s, all Network Node URL failed to respond. %s", e.What, strings.Join(e.Warnings, ""))
}

// FetchFirstStatus tries the urls in order and returns the first valid status.
// what names the result being built, for the error.
func (c *Client) FetchFirstStatus(ctx context.Context, urls []string, what string) (*Status, error) {
	failure := &AllNodesFailedError{What: what, Warnings: make([]string, 0, len(urls))}
	for _, url := range urls {
		status, err := c.FetchStatus(ctx, url)
		if err == nil {
			return status, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		failure.Warnings = append(failure.Warnings, fmt.Sprintf("Warning: access to URL %s failed, trying another. Error: %s\n", url, err))
		c.logger.Sugar().Warnw("Network node failed to respond", zap.String("url", url), zap.Error(err))
	}
	return nil, failure
}
