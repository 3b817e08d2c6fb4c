// Package server implements the MCP (Model Context Protocol) server for
// open-vocabulary object detection.
//
// This package provides a JSON-RPC 2.0 server that exposes the detection
// pipeline through the MCP protocol. It's designed to work with Claude and
// other MCP-compatible clients, enabling AI systems to find arbitrary objects
// in images by describing them in natural language.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image acquisition:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_fetch_url: Download an image from a URL into the cache
//   - crop_exemplar: Cut a region out for use as a visual exemplar
//
// Query tools:
//   - translate_term: Look a term up in the built-in lexicon
//   - format_queries: Normalize raw queries into detector-ready prompts
//
// Detection:
//   - detect_objects: Text-guided detection with adaptive thresholds
//   - detect_simple: Fixed-query smoke check (person, car, dog)
//   - detect_by_example: Image-guided similarity detection
//
// # Detection Semantics
//
// A detection request runs inference exactly once. If nothing clears the
// requested confidence threshold, only the local post-processing step is
// retried at progressively looser thresholds; the first step that yields
// boxes wins and is reported as successful_threshold. A request that finds
// nothing at any threshold still succeeds: the response carries found=false,
// diagnostics about what was tried, and hints for improving the query.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images keyed by path or
// URL, so a sequence of tool calls against the same image decodes it once.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(settings)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
