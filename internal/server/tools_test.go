package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"image_fetch_url",
		"crop_exemplar",
		"translate_term",
		"format_queries",
		"detect_objects",
		"detect_simple",
		"detect_by_example",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Error("Tool InputSchema is nil")
			}

			schemaType, ok := tool.InputSchema["type"]
			if !ok {
				t.Error("InputSchema missing 'type' field")
			}
			if schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			props, ok := tool.InputSchema["properties"]
			if !ok {
				t.Error("InputSchema missing 'properties' field")
			}
			if props == nil {
				t.Error("InputSchema properties is nil")
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	toolsRequiringPath := []string{
		"image_load",
		"image_dimensions",
		"crop_exemplar",
		"detect_objects",
		"detect_simple",
		"detect_by_example",
	}

	tools := GetToolDefinitions()
	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	for _, name := range toolsRequiringPath {
		tool, ok := toolMap[name]
		if !ok {
			continue
		}

		t.Run(name, func(t *testing.T) {
			required, ok := tool.InputSchema["required"]
			if !ok {
				t.Error("InputSchema missing 'required' field")
				return
			}

			requiredList, ok := required.([]string)
			if !ok {
				t.Error("'required' should be a string slice")
				return
			}

			hasPath := false
			for _, r := range requiredList {
				if r == "path" {
					hasPath = true
					break
				}
			}

			if !hasPath {
				t.Error("Tool should require 'path' parameter")
			}
		})
	}
}

func TestToolDefinitions_DetectObjectsRequirements(t *testing.T) {
	tools := GetToolDefinitions()

	var tool Tool
	for _, tt := range tools {
		if tt.Name == "detect_objects" {
			tool = tt
			break
		}
	}

	if tool.Name == "" {
		t.Fatal("detect_objects tool not found")
	}

	required, ok := tool.InputSchema["required"].([]string)
	if !ok {
		t.Fatal("required should be a string slice")
	}

	expectedRequired := map[string]bool{
		"path":    true,
		"queries": true,
	}

	for _, r := range required {
		delete(expectedRequired, r)
	}
	for missing := range expectedRequired {
		t.Errorf("detect_objects should require '%s' parameter", missing)
	}
}

func TestToolDefinitions_CropExemplarCoordinates(t *testing.T) {
	tools := GetToolDefinitions()

	var tool Tool
	for _, tt := range tools {
		if tt.Name == "crop_exemplar" {
			tool = tt
			break
		}
	}

	if tool.Name == "" {
		t.Fatal("crop_exemplar tool not found")
	}

	required, ok := tool.InputSchema["required"].([]string)
	if !ok {
		t.Fatal("required should be a string slice")
	}

	// crop_exemplar requires path, x1, y1, x2, y2
	expectedRequired := map[string]bool{
		"path": true,
		"x1":   true,
		"y1":   true,
		"x2":   true,
		"y2":   true,
	}

	for _, r := range required {
		delete(expectedRequired, r)
	}
	for missing := range expectedRequired {
		t.Errorf("crop_exemplar should require '%s' parameter", missing)
	}
}

func TestToolDefinitions_TranslationModeEnum(t *testing.T) {
	tools := GetToolDefinitions()

	for _, name := range []string{"format_queries", "detect_objects"} {
		var tool Tool
		for _, tt := range tools {
			if tt.Name == name {
				tool = tt
				break
			}
		}
		if tool.Name == "" {
			t.Fatalf("%s tool not found", name)
		}

		props, ok := tool.InputSchema["properties"].(map[string]interface{})
		if !ok {
			t.Fatalf("%s: properties should be a map", name)
		}

		modeProp, ok := props["translation_mode"].(map[string]interface{})
		if !ok {
			t.Fatalf("%s: translation_mode property should exist and be a map", name)
		}

		enum, ok := modeProp["enum"].([]string)
		if !ok {
			t.Fatalf("%s: translation_mode should have enum", name)
		}

		enumMap := make(map[string]bool)
		for _, e := range enum {
			enumMap[e] = true
		}
		if !enumMap["lexicon"] || !enumMap["lexicon+api"] {
			t.Errorf("%s: translation_mode enum missing modes: %v", name, enum)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	tools, ok := result["tools"]
	if !ok {
		t.Fatal("Result should contain 'tools' key")
	}

	toolsList, ok := tools.([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	expected := GetToolDefinitions()
	if len(toolsList) != len(expected) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(expected))
	}
}
