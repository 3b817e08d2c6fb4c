package model

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/owlvision/owlvision-mcp/internal/detect"
)

// DefaultModelName is the detection model loaded when none is configured.
const DefaultModelName = "google/owlvit-base-patch32"

// AvailableModels lists the model names the inference backend is known to
// serve.
var AvailableModels = []string{
	"google/owlvit-base-patch32",
	"google/owlvit-base-patch16",
	"google/owlvit-large-patch14",
}

// Client talks to the inference backend over HTTP. The backend owns the
// heavyweight model; the client sends an encoded image plus prompts and
// receives raw, unthresholded candidates back. All confidence filtering
// happens locally so that the adaptive-threshold protocol never has to go
// back over the wire.
//
// Client implements detect.Model.
type Client struct {
	BaseURL    string
	ModelName  string
	HTTPClient *http.Client
}

// NewClient returns a client for the backend at baseURL serving modelName.
func NewClient(baseURL, modelName string) *Client {
	if modelName == "" {
		modelName = DefaultModelName
	}
	return &Client{
		BaseURL:    baseURL,
		ModelName:  modelName,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// inputPayload is the prepared request body carried inside detect.Inputs.
type inputPayload struct {
	Model      string   `json:"model"`
	Image      string   `json:"image"`
	Prompts    []string `json:"prompts,omitempty"`
	QueryImage string   `json:"query_image,omitempty"`
}

// promptCandidates is one prompt's worth of raw output. Boxes are normalized
// to [0,1] in (x1,y1,x2,y2) order; scores are unthresholded.
type promptCandidates struct {
	PromptIndex int          `json:"prompt_index"`
	Boxes       [][4]float64 `json:"boxes"`
	Scores      []float64    `json:"scores"`
}

// rawDetections is the backend's inference response, cached for the lifetime
// of one request and re-filtered by the threshold ladder.
type rawDetections struct {
	Results []promptCandidates `json:"results"`
}

type loadRequest struct {
	Model string `json:"model"`
}

type loadResponse struct {
	Model string `json:"model"`
	Ready bool   `json:"ready"`
}

// Load asks the backend to load the client's model, blocking until it is
// ready. Called once per process by the model handle; a failure here aborts
// the current action only.
func (c *Client) Load(ctx context.Context) error {
	var resp loadResponse
	if err := c.post(ctx, "/v1/models/load", loadRequest{Model: c.ModelName}, &resp); err != nil {
		return fmt.Errorf("failed to load model %q: %w", c.ModelName, err)
	}
	if !resp.Ready {
		return fmt.Errorf("backend reports model %q not ready", c.ModelName)
	}
	return nil
}

// Infer runs one batched text-guided inference pass: one image paired with
// all prompts. This is the expensive step of a request and is never retried.
func (c *Client) Infer(ctx context.Context, in *detect.Inputs) (*detect.RawOutput, error) {
	payload, ok := in.Payload.(*inputPayload)
	if !ok {
		return nil, fmt.Errorf("inputs were not prepared by this backend")
	}

	var raw rawDetections
	if err := c.post(ctx, "/v1/detect", payload, &raw); err != nil {
		return nil, err
	}
	return &detect.RawOutput{Payload: &raw}, nil
}

// InferExemplar runs one image-guided inference pass against the exemplar
// matching endpoint.
func (c *Client) InferExemplar(ctx context.Context, in *detect.Inputs) (*detect.RawOutput, error) {
	payload, ok := in.Payload.(*inputPayload)
	if !ok {
		return nil, fmt.Errorf("inputs were not prepared by this backend")
	}

	var raw rawDetections
	if err := c.post(ctx, "/v1/detect_by_example", payload, &raw); err != nil {
		return nil, err
	}
	return &detect.RawOutput{Payload: &raw}, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

// encodeImage serializes img as base64 PNG for the wire.
func encodeImage(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
