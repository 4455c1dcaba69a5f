// Package server implements the MCP (Model Context Protocol) server for
// spritepack.
//
// The server exposes the packer and the palette tools over JSON-RPC 2.0 so
// MCP clients can build spritesheets and inspect sprite palettes.
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
// A line that is not valid JSON is answered with a -32700 parse error.
//
// # Available Tools
//
// Packing:
//   - spritesheet_pack: Pack a directory of sprites and write pages plus manifests
//
// Palette Operations:
//   - image_palette: Median-cut palette with per-color share
//   - palette_distance: Wasserstein distance and weighted intersection of two palettes
//
// Sprite Geometry:
//   - image_trim_bounds: Trimmed size and offset of an image
//
// # Image Caching
//
// Decoded images are cached by path and reused across tool calls for the
// lifetime of the process. spritesheet_pack reads its source directory
// fresh on every call.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: {"code": "SIZE_EXCEEDED", "message": "..."} for coded errors,
//     otherwise the Go error string
//
// # Usage
//
// The server is started by "spritepack serve":
//
//	srv := server.New(logger, version)
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    return err
//	}
package server
