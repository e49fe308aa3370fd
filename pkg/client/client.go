package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/terra-clan/swim-timer/internal/models"
)

// Client is a Go SDK for the swim-timer API
type Client struct {
	baseURL    string
	observer   string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithObserver labels every request with the given observer name
func WithObserver(name string) Option {
	return func(c *Client) {
		c.observer = name
	}
}

// NewClient creates a new swim-timer client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is returned when the server answers with an error envelope
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s - %s (HTTP %d)", e.Code, e.Message, e.StatusCode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StopResult reports the outcome of a stop request
type StopResult = models.StopResponse

// FinishResult reports the outcome of a finish tap
type FinishResult = models.FinishResponse

// StartRace starts the race clock
func (c *Client) StartRace(ctx context.Context) (*models.RaceStatus, error) {
	var status models.RaceStatus
	if err := c.call(ctx, http.MethodPost, "/api/v1/race/start", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// StopRace stops the race clock. Stopping an already stopped race is not an error.
func (c *Client) StopRace(ctx context.Context) (*StopResult, error) {
	var result StopResult
	if err := c.call(ctx, http.MethodPost, "/api/v1/race/stop", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ResetRace clears the clock and all finish records
func (c *Client) ResetRace(ctx context.Context) (*models.RaceStatus, error) {
	var status models.RaceStatus
	if err := c.call(ctx, http.MethodPost, "/api/v1/race/reset", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetState retrieves the race status
func (c *Client) GetState(ctx context.Context) (*models.RaceStatus, error) {
	var status models.RaceStatus
	if err := c.call(ctx, http.MethodGet, "/api/v1/race", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// RecordFinish records a finish for a participant.
// A repeated tap returns the original record with Created set to false.
func (c *Client) RecordFinish(ctx context.Context, participantID int) (*FinishResult, error) {
	var result FinishResult
	path := "/api/v1/race/finishes/" + strconv.Itoa(participantID)
	if err := c.call(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// HasFinished reports whether a participant already has a finish record
func (c *Client) HasFinished(ctx context.Context, participantID int) (bool, error) {
	var result struct {
		Finished bool `json:"finished"`
	}
	path := "/api/v1/race/finishes/" + strconv.Itoa(participantID)
	if err := c.call(ctx, http.MethodGet, path, nil, &result); err != nil {
		return false, err
	}
	return result.Finished, nil
}

// ListFinishes retrieves all finish records in recording order
func (c *Client) ListFinishes(ctx context.Context) ([]models.FinishRecord, error) {
	var result struct {
		Finishes []models.FinishRecord `json:"finishes"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/race/finishes", nil, &result); err != nil {
		return nil, err
	}
	return result.Finishes, nil
}

// GetSnapshot retrieves the ranked results
func (c *Client) GetSnapshot(ctx context.Context) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := c.call(ctx, http.MethodGet, "/api/v1/results", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SelectCategory restricts the race to one race category
func (c *Client) SelectCategory(ctx context.Context, raceCategory string) (*models.RaceStatus, error) {
	body, err := json.Marshal(models.SelectCategoryRequest{RaceCategory: raceCategory})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var status models.RaceStatus
	if err := c.call(ctx, http.MethodPut, "/api/v1/roster/category", bytes.NewReader(body), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ExportCSV downloads the results CSV
func (c *Client) ExportCSV(ctx context.Context) ([]byte, error) {
	return c.doRequest(ctx, http.MethodGet, "/api/v1/results/export.csv", nil)
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	return err
}

// call performs a request and decodes the envelope data into out
func (c *Client) call(ctx context.Context, method, path string, body io.Reader, out any) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	var result envelope
	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		apiErr := &APIError{StatusCode: http.StatusOK, Code: "unknown_error"}
		if result.Error != nil {
			apiErr.Code = result.Error.Code
			apiErr.Message = result.Error.Message
		}
		return apiErr
	}

	if out == nil || len(result.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(result.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.observer != "" {
		req.Header.Set("X-Observer", c.observer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "http_error", Message: string(respBody)}
		var result envelope
		if json.Unmarshal(respBody, &result) == nil && result.Error != nil {
			apiErr.Code = result.Error.Code
			apiErr.Message = result.Error.Message
		}
		return nil, apiErr
	}

	return respBody, nil
}
