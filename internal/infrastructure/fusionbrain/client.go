package fusionbrain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/basel-ax/aiimage/internal/domain"
)

const (
	defaultBaseURL = "https://api-key.fusionbrain.ai"

	statusInitial    = "INITIAL"
	statusProcessing = "PROCESSING"
	statusDone       = "DONE"
	statusFail       = "FAIL"

	// the API rejects sides above 1024 pixels
	maxSide = 1024
)

// Options tunes the polling of a running generation
type Options struct {
	BaseURL       string
	CheckInterval time.Duration
	MaxAttempts   int
	HTTPClient    *http.Client
}

// Client represents the Fusion Brain API client
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	secretKey     string
	checkInterval time.Duration
	maxAttempts   int
}

// Status is the state of a generation run
type Status struct {
	UUID             string
	Status           string
	Files            []string
	Censored         bool
	ErrorDescription string
}

// NewClient creates a new Fusion Brain API client
func NewClient(apiKey, secretKey string, opts Options) (*Client, error) {
	if apiKey == "" || secretKey == "" {
		return nil, fmt.Errorf("fusionbrain: API key and secret key are required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = 2 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 30
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		httpClient:    opts.HTTPClient,
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		apiKey:        apiKey,
		secretKey:     secretKey,
		checkInterval: opts.CheckInterval,
		maxAttempts:   opts.MaxAttempts,
	}, nil
}

// GenerateImage starts a generation run and waits for it to finish.
// Finished files are base64 payloads and are returned as data URIs.
func (c *Client) GenerateImage(ctx context.Context, req domain.ImageGenerationRequest) (*domain.ImageGenerationResponse, error) {
	uuid, err := c.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	status, err := c.WaitForGeneration(ctx, uuid)
	if err != nil {
		return nil, err
	}

	out := &domain.ImageGenerationResponse{}
	for _, file := range status.Files {
		if file == "" {
			continue
		}
		out.Images = append(out.Images, domain.GeneratedImage{URL: "data:image/png;base64," + file})
	}
	return out, nil
}

// Run submits a generation request and returns the run UUID
func (c *Client) Run(ctx context.Context, req domain.ImageGenerationRequest) (string, error) {
	pipelineID, err := c.getPipelineID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get pipeline ID: %w", err)
	}

	numImages := req.NumImages
	if numImages <= 0 {
		numImages = 1
	}
	width, height := dimensions(req.Size)

	params := map[string]interface{}{
		"type":      "GENERATE",
		"width":     width,
		"height":    height,
		"numImages": numImages,
		"generateParams": map[string]string{
			"query": req.Prompt,
		},
	}

	if style := pipelineStyle(req.Style); style != "" {
		params["style"] = style
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("pipeline_id", pipelineID); err != nil {
		return "", fmt.Errorf("failed to write pipeline_id: %w", err)
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal params: %w", err)
	}

	if err := writer.WriteField("params", string(paramsJSON)); err != nil {
		return "", fmt.Errorf("failed to write params: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/key/api/v1/pipeline/run", body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var result struct {
		UUID   string `json:"uuid"`
		Status string `json:"status"`
	}
	if err := c.do(httpReq, &result); err != nil {
		return "", err
	}
	if result.UUID == "" {
		return "", fmt.Errorf("run response has no uuid (status %q)", result.Status)
	}

	return result.UUID, nil
}

// CheckGenerationStatus checks the status of a generation run
func (c *Client) CheckGenerationStatus(ctx context.Context, uuid string) (*Status, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/key/api/v1/pipeline/status/%s", c.baseURL, uuid), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result struct {
		UUID             string `json:"uuid"`
		Status           string `json:"status"`
		ErrorDescription string `json:"errorDescription"`
		Result           struct {
			Files    []string `json:"files"`
			Censored bool     `json:"censored"`
		} `json:"result"`
	}
	if err := c.do(httpReq, &result); err != nil {
		return nil, err
	}

	return &Status{
		UUID:             result.UUID,
		Status:           result.Status,
		Files:            result.Result.Files,
		Censored:         result.Result.Censored,
		ErrorDescription: result.ErrorDescription,
	}, nil
}

// WaitForGeneration polls the run until it is done, failed or out of attempts
func (c *Client) WaitForGeneration(ctx context.Context, uuid string) (*Status, error) {
	for i := 0; i < c.maxAttempts; i++ {
		status, err := c.CheckGenerationStatus(ctx, uuid)
		if err != nil {
			return nil, fmt.Errorf("failed to check generation status: %w", err)
		}

		switch status.Status {
		case statusDone:
			if status.Censored {
				return nil, fmt.Errorf("generation %s was censored", uuid)
			}
			return status, nil
		case statusFail:
			return nil, fmt.Errorf("generation failed: %s", status.ErrorDescription)
		case statusInitial, statusProcessing:
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.checkInterval):
			}
		default:
			return nil, fmt.Errorf("unknown status: %s", status.Status)
		}
	}

	return nil, fmt.Errorf("max attempts reached waiting for generation")
}

// getPipelineID retrieves the pipeline ID for the Kandinsky model
func (c *Client) getPipelineID(ctx context.Context) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/key/api/v1/pipelines", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	var pipelines []struct {
		ID string `json:"id"`
	}
	if err := c.do(httpReq, &pipelines); err != nil {
		return "", err
	}

	if len(pipelines) == 0 {
		return "", fmt.Errorf("no pipelines found")
	}

	return pipelines[0].ID, nil
}

func (c *Client) do(httpReq *http.Request, v any) error {
	httpReq.Header.Set("X-Key", "Key "+c.apiKey)
	httpReq.Header.Set("X-Secret", "Secret "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// dimensions scales the requested size so the longer side fits the API limit
func dimensions(size domain.Size) (int, int) {
	w, h := size.Dimensions()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxSide {
		return w, h
	}
	// keep multiples of 64
	w = w * maxSide / longest / 64 * 64
	h = h * maxSide / longest / 64 * 64
	return w, h
}

func pipelineStyle(style domain.Style) string {
	switch style {
	case domain.StyleVivid:
		return "UHD"
	case domain.StyleNatural:
		return "DEFAULT"
	}
	return ""
}

var _ domain.ImageGenerator = (*Client)(nil)
