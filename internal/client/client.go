// Package client is the API client behind the dashboard and project views.
// It owns the client-side validation rules: requests that would fail
// validation are never dispatched.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/voiceclone-ai/voice-clone-backend/internal/recorder"
)

var (
	ErrEmptyName = errors.New("name is required")
	ErrEmptyText = errors.New("text is required")
	ErrNoSamples = errors.New("at least one voice sample is required")
	ErrNoCapture = errors.New("no captured recording to upload")
)

const (
	defaultTimeout = 15 * time.Second
	// Synthesis is slow; generation requests get a longer budget.
	generateTimeout = 3 * time.Minute
)

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type VoiceSample struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"project_id"`
	Name            string    `json:"name"`
	AudioURL        string    `json:"audio_url"`
	DurationSeconds *int      `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

type GeneratedAudio struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	TextInput string    `json:"text_input"`
	AudioURL  string    `json:"audio_url"`
	CreatedAt time.Time `json:"created_at"`
}

// SampleRef is the sample metadata sent along with a generation request.
type SampleRef struct {
	Name     string `json:"name"`
	AudioURL string `json:"audioUrl"`
}

type Client struct {
	baseURL        string
	userID         string
	defaultClient  *http.Client
	generateClient *http.Client
}

type Option func(*Client)

// WithUserID sets the X-User-Id header on every request.
func WithUserID(id string) Option {
	return func(c *Client) { c.userID = id }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.defaultClient = hc
		c.generateClient = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        baseURL,
		defaultClient:  &http.Client{Timeout: defaultTimeout},
		generateClient: &http.Client{Timeout: generateTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	name = trim(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	body := map[string]string{"name": name, "description": trim(description)}
	var out struct {
		Project *Project `json:"project"`
	}
	if err := c.call(ctx, c.defaultClient, http.MethodPost, "/api/v1/projects", body, &out); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return out.Project, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var out struct {
		Projects []Project `json:"projects"`
	}
	if err := c.call(ctx, c.defaultClient, http.MethodGet, "/api/v1/projects", nil, &out); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out.Projects, nil
}

func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var out struct {
		Project *Project `json:"project"`
	}
	if err := c.call(ctx, c.defaultClient, http.MethodGet, "/api/v1/projects/"+projectID, nil, &out); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return out.Project, nil
}

func (c *Client) ListSamples(ctx context.Context, projectID string) ([]VoiceSample, error) {
	var out struct {
		Samples []VoiceSample `json:"samples"`
	}
	if err := c.call(ctx, c.defaultClient, http.MethodGet, "/api/v1/projects/"+projectID+"/samples", nil, &out); err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	return out.Samples, nil
}

func (c *Client) ListGenerated(ctx context.Context, projectID string) ([]GeneratedAudio, error) {
	var out struct {
		Generated []GeneratedAudio `json:"generated"`
	}
	if err := c.call(ctx, c.defaultClient, http.MethodGet, "/api/v1/projects/"+projectID+"/generated", nil, &out); err != nil {
		return nil, fmt.Errorf("list generated audio: %w", err)
	}
	return out.Generated, nil
}

// UploadSample serializes the captured take as a base64 data URL and submits
// it. The recorder resets to idle only after the server accepts the sample.
func (c *Client) UploadSample(ctx context.Context, projectID, name string, rec *recorder.Recorder) error {
	name = trim(name)
	if name == "" {
		return ErrEmptyName
	}
	if rec.State() != recorder.StateCaptured {
		return ErrNoCapture
	}

	duration := rec.Duration()
	body := map[string]any{
		"projectId": projectID,
		"name":      name,
		"audioData": "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(rec.Audio()),
		"duration":  duration,
	}
	if err := c.call(ctx, c.defaultClient, http.MethodPost, "/upload-voice-sample", body, nil); err != nil {
		return fmt.Errorf("upload voice sample: %w", err)
	}

	rec.Reset()
	return nil
}

// GenerateSpeech submits text plus the project's sample metadata. Empty text
// and an empty sample list are rejected before any request is made.
func (c *Client) GenerateSpeech(ctx context.Context, projectID, text string, samples []SampleRef) error {
	if trim(text) == "" {
		return ErrEmptyText
	}
	if len(samples) == 0 {
		return ErrNoSamples
	}

	body := map[string]any{
		"projectId": projectID,
		"text":      text,
		"samples":   samples,
	}
	if err := c.call(ctx, c.generateClient, http.MethodPost, "/generate-speech", body, nil); err != nil {
		return fmt.Errorf("generate speech: %w", err)
	}
	return nil
}

// call issues one JSON request/response round trip. A non-2xx status is
// returned as an error carrying the server's error message when present.
func (c *Client) call(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set("X-User-Id", c.userID)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
