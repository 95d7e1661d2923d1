// Package client is a typed HTTP client for the profile API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"matrimony-backend/internal/formflow"
	"matrimony-backend/internal/models"
	"matrimony-backend/internal/profile"
)

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, e.Message, strings.Join(e.Details, "; "))
}

// Client talks to the profile endpoints on behalf of one signed-in user
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client. A nil httpClient uses a client with a 30s timeout.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

type profileResponse struct {
	Profile              *models.Profile  `json:"profile"`
	CompletionPercentage int              `json:"completionPercentage"`
	NextSection          *profile.Section `json:"nextSection"`
}

type sectionResponse struct {
	SectionData json.RawMessage `json:"sectionData"`
	IsEmpty     bool            `json:"isEmpty"`
}

// Load fetches the caller's profile, creating it on the server if absent
func (c *Client) Load(ctx context.Context) (*formflow.ProfileState, error) {
	var res profileResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/profile", nil, &res); err != nil {
		return nil, err
	}
	return &formflow.ProfileState{
		Profile:              res.Profile,
		CompletionPercentage: res.CompletionPercentage,
		NextSection:          res.NextSection,
	}, nil
}

// Section fetches one section's values prepared for editing
func (c *Client) Section(ctx context.Context, section profile.Section) (profile.Payload, bool, error) {
	var res sectionResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/profile/"+string(section), nil, &res); err != nil {
		return nil, false, err
	}
	payload, err := profile.Decode(section, res.SectionData)
	if err != nil {
		return nil, false, err
	}
	return payload, res.IsEmpty, nil
}

// SubmitSection sends one section payload
func (c *Client) SubmitSection(ctx context.Context, payload profile.Payload) (*formflow.Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s section: %w", payload.Section(), err)
	}

	var res profileResponse
	if err := c.do(ctx, http.MethodPut, "/api/v1/profile/"+string(payload.Section()), body, &res); err != nil {
		return nil, err
	}
	return &formflow.Result{
		Profile:              res.Profile,
		CompletionPercentage: res.CompletionPercentage,
		NextSection:          res.NextSection,
	}, nil
}

// MarkReady submits a complete profile for review
func (c *Client) MarkReady(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/profile/ready", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope struct {
			Error   string   `json:"error"`
			Details []string `json:"details"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
			apiErr.Message, apiErr.Details = envelope.Error, envelope.Details
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
