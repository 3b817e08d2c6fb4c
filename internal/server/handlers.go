package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"strings"

	"github.com/owlvision/owlvision-mcp/internal/detect"
	"github.com/owlvision/owlvision-mcp/internal/imaging"
	"github.com/owlvision/owlvision-mcp/internal/query"
	"github.com/owlvision/owlvision-mcp/internal/render"
	"github.com/owlvision/owlvision-mcp/internal/translate"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "detect_objects", "format_queries").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies defaults from settings for optional parameters
//  3. Resolves images through the cache (paths and fetched URLs alike)
//  4. Calls into the query/detect/render pipeline
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image acquisition
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_fetch_url":
		return s.handleImageFetchURL(args)
	case "crop_exemplar":
		return s.handleCropExemplar(args)

	// Query tools
	case "translate_term":
		return s.handleTranslateTerm(args)
	case "format_queries":
		return s.handleFormatQueries(args)

	// Detection
	case "detect_objects":
		return s.handleDetectObjects(args)
	case "detect_simple":
		return s.handleDetectSimple(args)
	case "detect_by_example":
		return s.handleDetectByExample(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// resolveImage loads an image by local path or by URL. Fetched URLs land in
// the cache under the URL itself, so both forms are interchangeable in every
// tool that takes a path.
func (s *Server) resolveImage(ctx context.Context, path string) (image.Image, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return imaging.FetchURL(ctx, s.cache, path)
	}
	return s.cache.Load(path)
}

// === Image Acquisition Handlers ===

type imagePathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageFetchURLArgs struct {
	URL string `json:"url"`
}

type fetchURLResult struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleImageFetchURL(args json.RawMessage) (interface{}, error) {
	var a imageFetchURLArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	img, err := imaging.FetchURL(ctx, s.cache, a.URL)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	return &fetchURLResult{URL: a.URL, Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

type cropExemplarArgs struct {
	Path string `json:"path"`
	X1   int    `json:"x1"`
	Y1   int    `json:"y1"`
	X2   int    `json:"x2"`
	Y2   int    `json:"y2"`
}

func (s *Server) handleCropExemplar(args json.RawMessage) (interface{}, error) {
	var a cropExemplarArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	img, err := s.resolveImage(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.CropExemplar(s.cache, img, a.X1, a.Y1, a.X2, a.Y2)
}

// === Query Tool Handlers ===

type translateTermArgs struct {
	Term   string `json:"term"`
	UseAPI bool   `json:"use_api"`
}

type translateTermResult struct {
	Term        string `json:"term"`
	Translation string `json:"translation,omitempty"`
	Found       bool   `json:"found"`
	NonLatin    bool   `json:"non_latin"`
}

func (s *Server) handleTranslateTerm(args json.RawMessage) (interface{}, error) {
	var a translateTermArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.Term) == "" {
		return nil, fmt.Errorf("term must not be empty")
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	tr := *s.formatter.Translator
	tr.UseAPI = tr.UseAPI && a.UseAPI

	result := &translateTermResult{
		Term:     a.Term,
		NonLatin: translate.IsNonLatin(a.Term),
	}
	if en, ok := tr.Translate(ctx, a.Term); ok {
		result.Translation = en
		result.Found = true
	}
	return result, nil
}

type formatQueriesArgs struct {
	Queries         []string `json:"queries"`
	TranslationMode string   `json:"translation_mode"`
}

type formatQueriesResult struct {
	Prompts  []query.Prompt `json:"prompts"`
	Mode     string         `json:"mode"`
	Warnings []string       `json:"warnings,omitempty"`
}

func (s *Server) handleFormatQueries(args json.RawMessage) (interface{}, error) {
	var a formatQueriesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	mode := query.ParseMode(a.TranslationMode)
	prompts, warnings, err := s.formatter.Format(ctx, a.Queries, mode)
	if err != nil {
		return nil, err
	}
	return &formatQueriesResult{Prompts: prompts, Mode: mode.String(), Warnings: warnings}, nil
}

// === Detection Handlers ===

// defaultQueries is the fixed query set for the detect_simple smoke tool.
var defaultQueries = []string{"person", "car", "dog"}

// emptyResultHints suggests what to try when a request finds nothing. These
// ride along with found=false responses; an empty result is still a success.
var emptyResultHints = []string{
	"lower confidence_threshold and retry",
	"use simpler or more specific object names",
	"check that the object is clearly visible and not too small in the image",
}

type detectionReport struct {
	Label string     `json:"label"`
	Score float64    `json:"score"`
	Box   detect.Box `json:"box"`
}

type detectResult struct {
	Found               bool                `json:"found"`
	SuccessfulThreshold float64             `json:"successful_threshold,omitempty"`
	Detections          []detectionReport   `json:"detections"`
	Warnings            []string            `json:"warnings,omitempty"`
	Hints               []string            `json:"hints,omitempty"`
	Image               *render.Result      `json:"image,omitempty"`
	Diagnostics         *detect.Diagnostics `json:"diagnostics,omitempty"`
}

// buildDetectResult assembles the wire-level response for a detection
// outcome, rendering the annotated image when anything was found.
func buildDetectResult(img image.Image, res *detect.Result, labels []string, warnings []string, debug bool) (*detectResult, error) {
	out := &detectResult{
		Found:               res.Found,
		SuccessfulThreshold: res.SuccessfulThreshold,
		Detections:          make([]detectionReport, 0, len(res.Detections)),
		Warnings:            warnings,
	}

	for _, d := range res.Detections {
		label := "unknown"
		if d.PromptIndex >= 0 && d.PromptIndex < len(labels) {
			label = labels[d.PromptIndex]
		}
		out.Detections = append(out.Detections, detectionReport{
			Label: label,
			Score: d.Score,
			Box:   d.Box,
		})
	}

	if res.Found {
		rendered, err := render.Overlay(img, res.Detections, labels)
		if err != nil {
			return nil, fmt.Errorf("failed to render detections: %w", err)
		}
		out.Image = rendered
	} else {
		out.Hints = emptyResultHints
	}

	if debug {
		diag := res.Diagnostics
		out.Diagnostics = &diag
	}
	return out, nil
}

func validateThreshold(name string, v float64) error {
	if v <= 0 || v > 1 {
		return fmt.Errorf("%s must be in (0, 1], got %g", name, v)
	}
	return nil
}

type detectObjectsArgs struct {
	Path                string   `json:"path"`
	Queries             []string `json:"queries"`
	ConfidenceThreshold float64  `json:"confidence_threshold"`
	TranslationMode     string   `json:"translation_mode"`
	Debug               bool     `json:"debug"`
}

func (s *Server) handleDetectObjects(args json.RawMessage) (interface{}, error) {
	var a detectObjectsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.runTextDetection(a)
}

type detectSimpleArgs struct {
	Path                string  `json:"path"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

func (s *Server) handleDetectSimple(args json.RawMessage) (interface{}, error) {
	var a detectSimpleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.runTextDetection(detectObjectsArgs{
		Path:                a.Path,
		Queries:             defaultQueries,
		ConfidenceThreshold: a.ConfidenceThreshold,
	})
}

// runTextDetection is the shared core of detect_objects and detect_simple:
// resolve the image, normalize queries into prompts, make sure the model is
// up, run the adaptive-threshold detection, and render the outcome.
func (s *Server) runTextDetection(a detectObjectsArgs) (interface{}, error) {
	threshold := a.ConfidenceThreshold
	if threshold == 0 {
		threshold = s.settings.Detection.ConfidenceThreshold
	}
	if err := validateThreshold("confidence_threshold", threshold); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	img, err := s.resolveImage(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	prompts, warnings, err := s.formatter.Format(ctx, a.Queries, query.ParseMode(a.TranslationMode))
	if err != nil {
		return nil, err
	}

	mdl, proc, err := s.handle.EnsureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	res, err := detect.Detect(ctx, mdl, proc, img, query.Texts(prompts), threshold)
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(prompts))
	for i, p := range prompts {
		labels[i] = p.Label()
	}
	return buildDetectResult(img, res, labels, warnings, a.Debug || s.settings.Debug)
}

type detectByExampleArgs struct {
	Path                string  `json:"path"`
	ExemplarPath        string  `json:"exemplar_path"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	NMSThreshold        float64 `json:"nms_threshold"`
	Debug               bool    `json:"debug"`
}

func (s *Server) handleDetectByExample(args json.RawMessage) (interface{}, error) {
	var a detectByExampleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	threshold := a.ConfidenceThreshold
	if threshold == 0 {
		threshold = s.settings.Detection.ConfidenceThreshold
	}
	if err := validateThreshold("confidence_threshold", threshold); err != nil {
		return nil, err
	}
	nms := a.NMSThreshold
	if nms == 0 {
		nms = s.settings.Detection.NMSThreshold
	}
	if err := validateThreshold("nms_threshold", nms); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	target, err := s.resolveImage(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	exemplar, err := s.resolveImage(ctx, a.ExemplarPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load exemplar: %w", err)
	}

	mdl, proc, err := s.handle.EnsureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	res, err := detect.DetectByExample(ctx, mdl, proc, target, exemplar, threshold, nms)
	if err != nil {
		return nil, err
	}
	return buildDetectResult(target, res, []string{render.ExemplarLabel}, nil, a.Debug || s.settings.Debug)
}
