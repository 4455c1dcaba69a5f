package atlas

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/spritepack/internal/bitmap"
	"github.com/ironsheep/spritepack/internal/packer"
)

// Manifest describes one page in the JSON-hash layout read by common game
// engines.
type Manifest struct {
	Frames map[string]FrameEntry `json:"frames"`
	Meta   Meta                  `json:"meta"`
}

// FrameEntry locates one sprite on the page.
type FrameEntry struct {
	// Frame is the sprite's rectangle on the page. Width and height are given
	// in the sprite's own orientation; a rotated sprite covers h x w pixels.
	Frame   packer.Rect `json:"frame"`
	Rotated bool        `json:"rotated"`
	Trimmed bool        `json:"trimmed"`

	// SpriteSourceSize is the kept region within the original image.
	SpriteSourceSize packer.Rect `json:"spriteSourceSize"`
	SourceSize       bitmap.Size `json:"sourceSize"`
	Pivot            Point       `json:"pivot"`
}

// Point is a normalized anchor.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Meta describes the page image.
type Meta struct {
	Image  string      `json:"image"`
	Format string      `json:"format"`
	Size   bitmap.Size `json:"size"`
	Scale  float64     `json:"scale"`
}

// newFrameEntry builds the manifest entry of sprite placed at (x, y).
// sprite is the buffer before any placement rotation.
func newFrameEntry(sprite *bitmap.Bitmap, x, y int, rotated, trimmed bool) FrameEntry {
	size := sprite.CanonicalSize()
	return FrameEntry{
		Frame:   packer.Rect{X: x, Y: y, Width: size.Width, Height: size.Height},
		Rotated: rotated,
		Trimmed: trimmed,
		SpriteSourceSize: packer.Rect{
			X:      -sprite.Frame.X,
			Y:      -sprite.Frame.Y,
			Width:  size.Width,
			Height: size.Height,
		},
		SourceSize: sprite.Size,
		Pivot:      Point{X: 0.5, Y: 0.5},
	}
}

// Encode returns the compact JSON form of the manifest. Frames are written in
// name order, so equal manifests encode to equal bytes.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return data, nil
}
