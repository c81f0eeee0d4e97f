// Package server exposes the sheet music scanner as MCP tools over stdio.
//
// # Protocol
//
// The server communicates using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logging goes to stderr so it never interleaves with responses.
//
// Supported methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - sheet_scan: Recognise notes; returns notes, placements, stave and skipped count
//   - sheet_preprocess: Binarize a page in place and return its path
//   - sheet_detect_stave: Return the five stave line rows and their spacing
//   - sheet_image_info: Width, height, format and file size
//
// # Error Handling
//
// Errors are JSON-RPC error responses:
//   - -32700: the request line is not JSON
//   - -32601: unknown method or tool
//   - -32602: malformed or missing arguments
//   - -32000: the tool failed; data is {"type": ..., "detail": ...} where
//     type is invalid_image, insufficient_stave_data, pitch_out_of_range,
//     template_load or internal
//
// # Usage
//
//	srv := server.New(sc)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
