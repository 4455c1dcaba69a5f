package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/spritepack/internal/atlas"
	"github.com/ironsheep/spritepack/internal/bitmap"
	"github.com/ironsheep/spritepack/internal/errors"
	"github.com/ironsheep/spritepack/internal/palette"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "spritesheet_pack", "image_palette").
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
// Tool execution errors return a JSON-RPC error response with code -32000
// whose data carries the error code and message.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("Tool failed", "tool", params.Name, "err", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", toolError(err))
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

// toolError describes err for the client, keeping its code when it has one.
func toolError(err error) interface{} {
	code := errors.GetCode(err)
	if code == "" {
		return err.Error()
	}
	return map[string]string{
		"code":    string(code),
		"message": errors.UserMessage(err),
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "spritesheet_pack":
		return s.handleSpritesheetPack(ctx, args)
	case "image_palette":
		return s.handleImagePalette(args)
	case "palette_distance":
		return s.handlePaletteDistance(args)
	case "image_trim_bounds":
		return s.handleImageTrimBounds(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
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
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Packing Handlers ===

type spritesheetPackArgs struct {
	Source      string  `json:"source"`
	Destination string  `json:"destination"`
	Prefix      string  `json:"prefix"`
	MaxWidth    int     `json:"max_width"`
	MaxHeight   int     `json:"max_height"`
	Padding     int     `json:"padding"`
	Border      int     `json:"border"`
	Pow2        bool    `json:"pow2"`
	Rotate      bool    `json:"rotate"`
	Extrude     bool    `json:"extrude"`
	Trim        *bool   `json:"trim"`
	Downscale   float64 `json:"downscale"`
	Group       *bool   `json:"group"`
	Algorithm   string  `json:"algorithm"`
	Quantize    bool    `json:"quantize"`
}

// SpritesheetPackResult is returned by spritesheet_pack.
type SpritesheetPackResult struct {
	Destination string           `json:"destination"`
	Files       []string         `json:"files"`
	Pages       []atlas.PageInfo `json:"pages"`
	Skipped     []string         `json:"skipped,omitempty"`
}

// options overlays the supplied arguments on the library defaults.
func (a spritesheetPackArgs) options() atlas.Options {
	opts := atlas.DefaultOptions()
	if a.Prefix != "" {
		opts.Prefix = a.Prefix
	}
	if a.MaxWidth != 0 {
		opts.Pack.MaxWidth = a.MaxWidth
	}
	if a.MaxHeight != 0 {
		opts.Pack.MaxHeight = a.MaxHeight
	}
	opts.Pack.Padding = a.Padding
	opts.Pack.Border = a.Border
	opts.Pack.Pow2 = a.Pow2
	opts.Pack.Rotate = a.Rotate
	opts.Extrude = a.Extrude
	if a.Trim != nil {
		opts.Trim = *a.Trim
	}
	if a.Downscale != 0 {
		opts.Downscale = a.Downscale
	}
	if a.Group != nil {
		opts.Group.Enabled = *a.Group
	}
	if a.Algorithm != "" {
		opts.Group.Algorithm = a.Algorithm
	}
	opts.Quantize.Enabled = a.Quantize
	return opts
}

func (s *Server) handleSpritesheetPack(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a spritesheetPackArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Source == "" || a.Destination == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "source and destination are required")
	}

	files, err := atlas.ReadDir(ctx, a.Source)
	if err != nil {
		return nil, err
	}
	result, err := atlas.New(a.options(), s.logger).Generate(ctx, files)
	if err != nil {
		return nil, err
	}
	if err := atlas.WriteDir(a.Destination, result.Files); err != nil {
		return nil, err
	}

	out := &SpritesheetPackResult{
		Destination: a.Destination,
		Files:       make([]string, len(result.Files)),
		Pages:       result.Pages,
		Skipped:     result.Skipped,
	}
	for i, f := range result.Files {
		out.Files[i] = f.Name
	}
	return out, nil
}

// === Palette Handlers ===

type imagePaletteArgs struct {
	Path   string `json:"path"`
	Colors int    `json:"colors"`
	Bits   int    `json:"bits"`
}

// PaletteResult is returned by image_palette.
type PaletteResult struct {
	Path     string           `json:"path"`
	Width    int              `json:"width"`
	Height   int              `json:"height"`
	Pixels   int              `json:"pixels"` // pixels counted into the palette
	Swatches []palette.Swatch `json:"swatches"`
}

func (s *Server) handleImagePalette(args json.RawMessage) (interface{}, error) {
	var a imagePaletteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts := palette.DefaultOptions()
	if a.Colors != 0 {
		opts.Colors = a.Colors
	}
	if a.Bits != 0 {
		opts.Bits = a.Bits
	}

	img, p, err := s.loadPalette(a.Path, opts)
	if err != nil {
		return nil, err
	}
	return &PaletteResult{
		Path:     a.Path,
		Width:    img.Width,
		Height:   img.Height,
		Pixels:   p.Total,
		Swatches: p.Swatches(),
	}, nil
}

type paletteDistanceArgs struct {
	PathA  string `json:"path_a"`
	PathB  string `json:"path_b"`
	Colors int    `json:"colors"`
}

// PaletteDistanceResult is returned by palette_distance.
type PaletteDistanceResult struct {
	Wasserstein  float64  `json:"wasserstein"`
	Intersection float64  `json:"intersection"`
	ColorsA      []string `json:"colors_a"`
	ColorsB      []string `json:"colors_b"`
}

func (s *Server) handlePaletteDistance(args json.RawMessage) (interface{}, error) {
	var a paletteDistanceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts := palette.DefaultOptions()
	if a.Colors != 0 {
		opts.Colors = a.Colors
	}

	_, pa, err := s.loadPalette(a.PathA, opts)
	if err != nil {
		return nil, err
	}
	_, pb, err := s.loadPalette(a.PathB, opts)
	if err != nil {
		return nil, err
	}
	wasserstein, err := palette.WassersteinDistance(pa, pb)
	if err != nil {
		return nil, err
	}
	return &PaletteDistanceResult{
		Wasserstein:  wasserstein,
		Intersection: palette.WeightedIntersection(pa, pb),
		ColorsA:      pa.Colors(),
		ColorsB:      pb.Colors(),
	}, nil
}

func (s *Server) loadPalette(path string, opts palette.Options) (*bitmap.Bitmap, *palette.Palette, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, nil, err
	}
	p, err := palette.Quantize(img.Pix, opts)
	if err != nil {
		return nil, nil, err
	}
	return img, p, nil
}

// === Sprite Geometry Handlers ===

type imageTrimBoundsArgs struct {
	Path           string  `json:"path"`
	AlphaThreshold float64 `json:"alpha_threshold"`
}

// TrimBoundsResult is returned by image_trim_bounds. Frame is the trimmed
// region within the original image.
type TrimBoundsResult struct {
	Path       string       `json:"path"`
	SourceSize bitmap.Size  `json:"sourceSize"`
	Frame      bitmap.Frame `json:"frame"`
	Trimmed    bool         `json:"trimmed"`
	Edges      []string     `json:"edges,omitempty"` // sides that lost margin
}

var edgeNames = [4]string{"top", "right", "bottom", "left"}

func (s *Server) handleImageTrimBounds(args json.RawMessage) (interface{}, error) {
	var a imageTrimBoundsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.AlphaThreshold < 0 || a.AlphaThreshold > 1 {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "alpha_threshold must be in [0, 1], got %g", a.AlphaThreshold)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	trimmed := bitmap.Trim(img, a.AlphaThreshold)
	result := &TrimBoundsResult{
		Path:       a.Path,
		SourceSize: trimmed.Size,
		Frame: bitmap.Frame{
			X:      -trimmed.Frame.X,
			Y:      -trimmed.Frame.Y,
			Width:  trimmed.Width,
			Height: trimmed.Height,
		},
		Trimmed: trimmed != img,
	}
	for i, cut := range trimmed.TrimmedEdges() {
		if cut {
			result.Edges = append(result.Edges, edgeNames[i])
		}
	}
	return result, nil
}
