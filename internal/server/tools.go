package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the image-path argument shared by most tools.
func pathProperty(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": desc,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image acquisition
		{
			Name:        "image_load",
			Description: "Load an image file into the cache and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_fetch_url",
			Description: "Download an image from a URL into the cache. The URL can then be used wherever a path is accepted.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"url": map[string]interface{}{
						"type":        "string",
						"description": "HTTP or HTTPS URL of the image",
					},
				},
				"required": []string{"url"},
			},
		},
		{
			Name:        "crop_exemplar",
			Description: "Cut a rectangular region out of an image and save it as a temp PNG, for use as the exemplar in detect_by_example.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Path or URL of the source image"),
					"x1":   map[string]interface{}{"type": "integer", "description": "Left edge X coordinate"},
					"y1":   map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate"},
					"x2":   map[string]interface{}{"type": "integer", "description": "Right edge X coordinate"},
					"y2":   map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate"},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},

		// Query tools
		{
			Name:        "translate_term",
			Description: "Translate an object term to English using the built-in lexicon, with longest-match precedence for compound terms.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"term": map[string]interface{}{
						"type":        "string",
						"description": "The term to translate",
					},
					"use_api": map[string]interface{}{
						"type":        "boolean",
						"description": "Allow the remote translation API on lexicon misses (requires translation.allow_api)",
					},
				},
				"required": []string{"term"},
			},
		},
		{
			Name:        "format_queries",
			Description: "Normalize raw text queries into detector-ready prompts: trim, truncate to 50 characters, translate non-Latin terms, wrap in the canonical template, cap at 5 prompts.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"queries": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Raw user queries, in order",
					},
					"translation_mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"lexicon", "lexicon+api"},
						"description": "How non-Latin queries are translated (default: lexicon)",
					},
				},
				"required": []string{"queries"},
			},
		},

		// Detection
		{
			Name:        "detect_objects",
			Description: "Text-guided open-vocabulary detection. Queries are normalized into prompts, inference runs once, and post-processing retries at progressively looser confidence thresholds until detections are found. Returns scored boxes and a rendered image with boxes burned in.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Path or URL of the image to detect in"),
					"queries": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Object queries, e.g. [\"cat\", \"リモコン\"]",
					},
					"confidence_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Base confidence threshold in [0,1] the adaptive ladder starts from (default from config)",
					},
					"translation_mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"lexicon", "lexicon+api"},
						"description": "How non-Latin queries are translated (default: lexicon)",
					},
					"debug": map[string]interface{}{
						"type":        "boolean",
						"description": "Include diagnostic context in the response",
					},
				},
				"required": []string{"path", "queries"},
			},
		},
		{
			Name:        "detect_simple",
			Description: "Basic detection with a fixed query set (person, car, dog). A quick smoke check that the pipeline works on an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Path or URL of the image to detect in"),
					"confidence_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Base confidence threshold in [0,1] (default from config)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "detect_by_example",
			Description: "Image-guided detection: find regions of the target image visually similar to an exemplar image. Single-pass, no adaptive threshold ladder; detections carry a similarity score and a placeholder label.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":          pathProperty("Path or URL of the target image"),
					"exemplar_path": pathProperty("Path or URL of the exemplar image"),
					"confidence_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Similarity score threshold in [0,1] (default from config)",
					},
					"nms_threshold": map[string]interface{}{
						"type":        "number",
						"description": "IoU threshold for non-maximum suppression (default from config)",
					},
				},
				"required": []string{"path", "exemplar_path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
