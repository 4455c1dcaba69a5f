package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Packing
		{
			Name:        "spritesheet_pack",
			Description: "Pack every image in a directory into spritesheet pages and write each page with its JSON manifest. Output files are named after their content hash.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source":      pathProperty("Absolute path to the directory holding the sprite images"),
					"destination": pathProperty("Absolute path to the output directory (created if missing)"),
					"prefix": map[string]interface{}{
						"type":        "string",
						"description": "Output name template; [hash] is replaced by the content hash. Default [hash]",
					},
					"max_width": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum page width in pixels. Default 4096",
					},
					"max_height": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum page height in pixels. Default 4096",
					},
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels between sprites. Default 0",
					},
					"border": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels between sprites and the page edge. Default 0",
					},
					"pow2": map[string]interface{}{
						"type":        "boolean",
						"description": "Round page sizes up to powers of two",
					},
					"rotate": map[string]interface{}{
						"type":        "boolean",
						"description": "Allow sprites to be rotated a quarter turn",
					},
					"extrude": map[string]interface{}{
						"type":        "boolean",
						"description": "Bleed sprite edges into the padding",
					},
					"trim": map[string]interface{}{
						"type":        "boolean",
						"description": "Trim transparent margins. Default true",
					},
					"downscale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor in (0, 1]. Default 1",
					},
					"group": map[string]interface{}{
						"type":        "boolean",
						"description": "Keep sprites with similar palettes on the same page. Default true",
					},
					"algorithm": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"wasserstein", "intersection"},
						"description": "Palette distance used for grouping. Default wasserstein",
					},
					"quantize": map[string]interface{}{
						"type":        "boolean",
						"description": "Reduce PNG pages with pngquant",
					},
				},
				"required": []string{"source", "destination"},
			},
		},

		// Palette Operations
		{
			Name:        "image_palette",
			Description: "Extract the median-cut palette of an image. Returns each color as hex, RGB and HSL with its share of the opaque pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"colors": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of colors (2-256). Default 4",
						"default":     4,
					},
					"bits": map[string]interface{}{
						"type":        "integer",
						"description": "Histogram bits per channel (1-8). Default 4",
						"default":     4,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "palette_distance",
			Description: "Compare the palettes of two images with both the Wasserstein distance and the weighted intersection.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path_a": pathProperty("Absolute path to the first image"),
					"path_b": pathProperty("Absolute path to the second image"),
					"colors": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of colors per palette (2-256). Default 4",
						"default":     4,
					},
				},
				"required": []string{"path_a", "path_b"},
			},
		},

		// Sprite Geometry
		{
			Name:        "image_trim_bounds",
			Description: "Report the size an image has once its transparent margins are trimmed, and where the trimmed region sits in the original.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"alpha_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Pixels with alpha at or below this fraction (0-1) count as transparent. Default 0",
						"default":     0,
					},
				},
				"required": []string{"path"},
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
