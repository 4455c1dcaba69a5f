package atlas

import (
	"github.com/ironsheep/spritepack/internal/bitmap"
	"github.com/ironsheep/spritepack/internal/codec"
	"github.com/ironsheep/spritepack/internal/packer"
)

// Sheet is a rendered page before encoding.
type Sheet struct {
	Canvas *bitmap.Bitmap
	Format codec.Format
	Frames map[string]FrameEntry
}

// Render draws every placement of page onto a blank canvas sized to the page
// bounds. Sprites placed rotated are turned clockwise first. With extrude set,
// the untrimmed edges of each sprite bleed into the padding around it.
func Render(page *packer.Page[*bitmap.Bitmap], padding int, extrude, trimmed bool) *Sheet {
	sheet := &Sheet{
		Canvas: bitmap.New("page", page.Width, page.Height),
		Format: codec.JPEG,
		Frames: make(map[string]FrameEntry, len(page.Placements)),
	}

	for _, p := range page.Placements {
		sprite := p.Value
		if !sprite.Opaque() {
			sheet.Format = codec.PNG
		}

		placed := sprite
		if p.Rotated {
			placed = bitmap.Rotate(sprite, false)
		}
		bitmap.Copy(placed, sheet.Canvas, p.X, p.Y, 0, 0, placed.Width, placed.Height)
		if extrude {
			bitmap.Extrude(sheet.Canvas, padding, p.X, p.Y, placed.Width, placed.Height, placed.TrimmedEdges())
		}
		sheet.Frames[sprite.Name] = newFrameEntry(sprite, p.X, p.Y, p.Rotated, trimmed)
	}
	return sheet
}
