package palette

import (
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/spritepack/internal/errors"
)

// Options controls median-cut quantization.
type Options struct {
	// Colors is the target number of boxes, in [2, 256].
	Colors int `json:"colors" toml:"colors"`

	// Bits is the histogram precision per channel, in [1, 8].
	Bits int `json:"bits" toml:"bits"`

	// AlphaThreshold excludes pixels whose alpha is at or below it.
	AlphaThreshold uint8 `json:"alpha_threshold" toml:"alpha_threshold"`
}

// DefaultOptions returns the options used for sprite grouping.
func DefaultOptions() Options {
	return Options{Colors: 4, Bits: 4}
}

// Validate checks that the options are within range.
func (o Options) Validate() error {
	if o.Colors < 2 || o.Colors > 256 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "palette colors must be in [2, 256], got %d", o.Colors)
	}
	if o.Bits < 1 || o.Bits > 8 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "palette bits must be in [1, 8], got %d", o.Bits)
	}
	return nil
}

// Palette is an immutable set of color boxes with their combined pixel mass.
type Palette struct {
	Boxes []*ColorBox
	Total int
}

// Swatch is one palette color in several representations.
type Swatch struct {
	Hex    string   `json:"hex"`    // "#rrggbb"
	RGB    RGBColor `json:"rgb"`    // 8-bit components
	HSL    HSLColor `json:"hsl"`    // hue in degrees, saturation/lightness in percent
	Weight float64  `json:"weight"` // share of the palette's pixel mass (0-1)
	Pixels int      `json:"pixels"` // pixels represented by this color
}

// RGBColor is an 8-bit RGB triple.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSLColor is a color in HSL space.
type HSLColor struct {
	H int `json:"h"` // 0-360 degrees
	S int `json:"s"` // 0-100 percent
	L int `json:"l"` // 0-100 percent
}

// Quantize extracts a palette of at most opts.Colors boxes from an RGBA8
// pixel grid.
//
// Parameters:
//   - pix: Row-major RGBA8 pixels, four bytes per pixel. Only the RGB
//     channels are histogrammed at opts.Bits per channel.
//   - opts: Box count, histogram precision and alpha cutoff.
//
// Returns:
//   - *Palette: Boxes ordered by the median cut, each weighted by its pixel
//     count. When no pixel passes the alpha threshold the palette is empty.
//   - error: Non-nil if opts or pix is invalid.
//
// # Errors
//
//   - INVALID_CONFIGURATION if opts.Colors is outside [2, 256] or opts.Bits
//     outside [1, 8]
//   - INVALID_INPUT if len(pix) is not a multiple of 4
func Quantize(pix []uint8, opts Options) (*Palette, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(pix)%4 != 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "pixel grid length %d is not a multiple of 4", len(pix))
	}

	shift := 8 - opts.Bits
	histogram := make([]uint32, 1<<(3*opts.Bits))
	lo := [3]int{0xFF, 0xFF, 0xFF}
	hi := [3]int{0, 0, 0}
	occupied := false
	for i := 0; i < len(pix); i += 4 {
		if pix[i+3] <= opts.AlphaThreshold {
			continue
		}
		c := [3]int{int(pix[i]) >> shift, int(pix[i+1]) >> shift, int(pix[i+2]) >> shift}
		histogram[c[0]+c[1]<<opts.Bits+c[2]<<(2*opts.Bits)]++
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], c[k])
			hi[k] = max(hi[k], c[k])
		}
		occupied = true
	}
	if !occupied {
		return &Palette{}, nil
	}

	queue := []*ColorBox{newBox(opts.Bits, histogram, lo, hi)}
	queue = split(queue, 0.75*float64(opts.Colors), func(b *ColorBox) int {
		return b.Count
	})
	queue = split(queue, float64(opts.Colors), func(b *ColorBox) int {
		return b.Count * b.Volume
	})
	return newPalette(queue), nil
}

// split repeatedly cuts the box with the largest key until the queue holds
// target boxes or no box can be cut.
func split(queue []*ColorBox, target float64, key func(*ColorBox) int) []*ColorBox {
	for float64(len(queue)) < target {
		sort.SliceStable(queue, func(i, j int) bool {
			return key(queue[i]) < key(queue[j])
		})
		box := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if box.Count == 0 {
			break
		}

		a, b := box.medianCut()
		queue = append(queue, a)
		if b == nil || b.Count == 0 {
			break
		}
		queue = append(queue, b)
	}
	return queue
}

func newPalette(boxes []*ColorBox) *Palette {
	p := &Palette{Boxes: boxes}
	for _, b := range boxes {
		p.Total += b.Count
	}
	return p
}

// Len returns the number of colors in the palette.
func (p *Palette) Len() int {
	return len(p.Boxes)
}

// Weights returns each box's share of the total mass.
func (p *Palette) Weights() []float64 {
	weights := make([]float64, len(p.Boxes))
	for i, b := range p.Boxes {
		weights[i] = float64(b.Count) / float64(p.Total)
	}
	return weights
}

// Colors returns the box averages as "#rrggbb" strings.
func (p *Palette) Colors() []string {
	colors := make([]string, len(p.Boxes))
	for i, b := range p.Boxes {
		colors[i] = boxColor(b).Hex()
	}
	return colors
}

// Swatches returns the palette colors ordered by descending mass.
func (p *Palette) Swatches() []Swatch {
	swatches := make([]Swatch, 0, len(p.Boxes))
	for _, b := range p.Boxes {
		c := boxColor(b)
		h, s, l := c.Hsl()
		swatches = append(swatches, Swatch{
			Hex:    c.Hex(),
			RGB:    RGBColor{R: uint8(b.Average[0]), G: uint8(b.Average[1]), B: uint8(b.Average[2])},
			HSL:    HSLColor{H: int(h + 0.5), S: int(s*100 + 0.5), L: int(l*100 + 0.5)},
			Weight: float64(b.Count) / float64(p.Total),
			Pixels: b.Count,
		})
	}
	sort.SliceStable(swatches, func(i, j int) bool {
		return swatches[i].Pixels > swatches[j].Pixels
	})
	return swatches
}

func boxColor(b *ColorBox) colorful.Color {
	return colorful.Color{
		R: float64(b.Average[0]) / 255,
		G: float64(b.Average[1]) / 255,
		B: float64(b.Average[2]) / 255,
	}
}
