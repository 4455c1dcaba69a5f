package atlas

import (
	"strings"

	"github.com/ironsheep/spritepack/internal/codec"
	"github.com/ironsheep/spritepack/internal/errors"
	"github.com/ironsheep/spritepack/internal/packer"
	"github.com/ironsheep/spritepack/internal/palette"
)

// Options configures a spritesheet run.
type Options struct {
	// Prefix is the output name template. Every "[hash]" is replaced by the
	// content hash of the file; the extension is appended.
	Prefix string `json:"prefix" toml:"prefix"`

	Trim      bool    `json:"trim" toml:"trim"`
	Extrude   bool    `json:"extrude" toml:"extrude"`
	Downscale float64 `json:"downscale" toml:"downscale"` // in (0, 1]

	Pack     PackOptions     `json:"pack" toml:"pack"`
	Quantize QuantizeOptions `json:"quantize" toml:"quantize"`
	Group    GroupOptions    `json:"group" toml:"group"`
}

// PackOptions is the page geometry.
type PackOptions struct {
	MaxWidth  int    `json:"max_width" toml:"max_width"`
	MaxHeight int    `json:"max_height" toml:"max_height"`
	Padding   int    `json:"padding" toml:"padding"`
	Border    int    `json:"border" toml:"border"`
	Pow2      bool   `json:"pow2" toml:"pow2"`
	Rotate    bool   `json:"rotate" toml:"rotate"`
	Heuristic string `json:"heuristic" toml:"heuristic"` // "side" or "area"
}

// QuantizeOptions enables lossy PNG compression of the finished pages.
type QuantizeOptions struct {
	Enabled bool `json:"enabled" toml:"enabled"`
	codec.QuantizeOptions
}

// GroupOptions controls palette-aware page grouping.
type GroupOptions struct {
	Enabled   bool    `json:"enabled" toml:"enabled"`
	Colors    int     `json:"colors" toml:"colors"`       // palette size per sprite
	Threshold float64 `json:"threshold" toml:"threshold"` // largest accepted penalty
	Diminish  float64 `json:"diminish" toml:"diminish"`   // threshold growth per sprite on the page
	Opaque    float64 `json:"opaque" toml:"opaque"`       // penalty for mixing opaque and transparent sprites
	Algorithm string  `json:"algorithm" toml:"algorithm"` // "wasserstein" or "intersection"
}

// DefaultOptions returns the library defaults.
func DefaultOptions() Options {
	return Options{
		Prefix:    HashToken,
		Trim:      true,
		Downscale: 1,
		Pack: PackOptions{
			MaxWidth:  4096,
			MaxHeight: 4096,
			Heuristic: "side",
		},
		Group: GroupOptions{
			Enabled:   true,
			Colors:    4,
			Threshold: 0.8,
			Algorithm: string(palette.Wasserstein),
		},
	}
}

// Validate rejects out-of-range options before any work starts.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Prefix) == "" {
		return errors.New(errors.ErrCodeInvalidConfiguration, "output prefix must not be empty")
	}
	if !(o.Downscale > 0 && o.Downscale <= 1) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "downscale must be in (0, 1], got %g", o.Downscale)
	}
	if _, err := o.packerOptions(); err != nil {
		return err
	}
	if err := o.Quantize.Validate(); err != nil {
		return err
	}
	if o.Group.Enabled {
		if err := o.paletteOptions().Validate(); err != nil {
			return err
		}
		if _, err := palette.ParseAlgorithm(o.Group.Algorithm); err != nil {
			return err
		}
		if o.Group.Threshold < 0 || o.Group.Diminish < 0 || o.Group.Opaque < 0 {
			return errors.New(errors.ErrCodeInvalidConfiguration, "group threshold, diminish and opaque must not be negative")
		}
	}
	return nil
}

func (o Options) packerOptions() (packer.Options, error) {
	opts := packer.Options{
		MaxWidth:  o.Pack.MaxWidth,
		MaxHeight: o.Pack.MaxHeight,
		Padding:   o.Pack.Padding,
		Border:    o.Pack.Border,
		Pow2:      o.Pack.Pow2,
		Rotate:    o.Pack.Rotate,
	}
	switch o.Pack.Heuristic {
	case "", "side":
		opts.Heuristic = packer.SideHeuristic
	case "area":
		opts.Heuristic = packer.AreaHeuristic
	default:
		return opts, errors.New(errors.ErrCodeInvalidConfiguration, "unknown pack heuristic %q (want side or area)", o.Pack.Heuristic)
	}
	return opts, opts.Validate()
}

func (o Options) paletteOptions() palette.Options {
	opts := palette.DefaultOptions()
	opts.Colors = o.Group.Colors
	return opts
}
