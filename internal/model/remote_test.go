package model

import (
	"context"
	"image"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlvision/owlvision-mcp/internal/detect"
)

const testBackendURL = "http://backend.test"

func newTestClient() *Client {
	c := NewClient(testBackendURL, "")
	c.HTTPClient = http.DefaultClient
	return c
}

func TestNewClient_DefaultModel(t *testing.T) {
	c := NewClient(testBackendURL, "")
	assert.Equal(t, DefaultModelName, c.ModelName)

	c = NewClient(testBackendURL, "google/owlvit-large-patch14")
	assert.Equal(t, "google/owlvit-large-patch14", c.ModelName)
}

func TestClient_Load(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testBackendURL+"/v1/models/load",
		httpmock.NewJsonResponderOrPanic(200, loadResponse{Model: DefaultModelName, Ready: true}))

	err := newTestClient().Load(context.Background())
	assert.NoError(t, err)
}

func TestClient_LoadFailures(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
	}{
		{"backend error", httpmock.NewStringResponder(500, "out of memory")},
		{"not ready", httpmock.NewJsonResponderOrPanic(200, loadResponse{Ready: false})},
		{"network error", httpmock.NewErrorResponder(assert.AnError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Activate()
			defer httpmock.DeactivateAndReset()
			httpmock.RegisterResponder(http.MethodPost, testBackendURL+"/v1/models/load", tt.responder)

			err := newTestClient().Load(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestClient_Infer(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testBackendURL+"/v1/detect",
		httpmock.NewJsonResponderOrPanic(200, rawDetections{Results: []promptCandidates{
			{PromptIndex: 0, Boxes: [][4]float64{{0.1, 0.1, 0.5, 0.5}}, Scores: []float64{0.42}},
		}}))

	client := newTestClient()
	proc := &Processor{ModelName: client.ModelName}

	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	in, err := proc.PrepareInputs(context.Background(), img, []string{"a photo of a cat"})
	require.NoError(t, err)

	raw, err := client.Infer(context.Background(), in)
	require.NoError(t, err)

	out, err := proc.PostProcess(raw, 0.1, in.TargetSize)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0.42, out[0].Score)
}

func TestClient_InferRejectsForeignInputs(t *testing.T) {
	client := newTestClient()

	_, err := client.Infer(context.Background(), &detect.Inputs{Payload: 42})
	assert.Error(t, err)

	_, err = client.InferExemplar(context.Background(), &detect.Inputs{Payload: "nope"})
	assert.Error(t, err)
}

func TestClient_InferBackendError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testBackendURL+"/v1/detect",
		httpmock.NewStringResponder(500, "cuda out of memory"))

	client := newTestClient()
	proc := &Processor{ModelName: client.ModelName}

	in, err := proc.PrepareInputs(context.Background(), image.NewRGBA(image.Rect(0, 0, 150, 150)), []string{"a photo of a cat"})
	require.NoError(t, err)

	_, err = client.Infer(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestHandle_LazyLoadAndRetry(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	calls := 0
	httpmock.RegisterResponder(http.MethodPost, testBackendURL+"/v1/models/load",
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return httpmock.NewStringResponse(500, "warming up"), nil
			}
			return httpmock.NewJsonResponse(200, loadResponse{Ready: true})
		})

	h := NewHandle(testBackendURL, "", 800)
	h.client.HTTPClient = http.DefaultClient

	// First attempt fails and leaves the handle unloaded.
	_, _, err := h.EnsureLoaded(context.Background())
	require.Error(t, err)

	// Second attempt retries the load and succeeds.
	m, p, err := h.EnsureLoaded(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.NotNil(t, p)

	// Further calls reuse the cached handle without another load request.
	_, _, err = h.EnsureLoaded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestHandle_ModelName(t *testing.T) {
	h := NewHandle(testBackendURL, "", 800)
	assert.Equal(t, DefaultModelName, h.ModelName())
}
