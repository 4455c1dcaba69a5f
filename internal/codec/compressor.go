package codec

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ironsheep/spritepack/internal/errors"
)

// Compressor reduces the size of a finished PNG page.
type Compressor interface {
	Compress(ctx context.Context, data []byte) ([]byte, error)
}

// QuantizeOptions configures pngquant. Zero values select pngquant defaults.
type QuantizeOptions struct {
	// Colors is the palette size, in [2, 256]. Defaults to 256.
	Colors int `json:"colors,omitempty" toml:"colors"`

	// Quality is the upper bound of the accepted quality range, in [0, 100].
	// It also sets the JPEG quality of opaque pages (100 when unset).
	Quality int `json:"quality,omitempty" toml:"quality"`

	// Dithering is the Floyd-Steinberg dithering level, in [0, 1].
	Dithering float64 `json:"dithering,omitempty" toml:"dithering"`

	// Ordered disables error diffusion in favor of ordered dithering.
	Ordered bool `json:"ordered,omitempty" toml:"ordered"`

	// Speed trades quality for time, in [1, 11]. Defaults to 1.
	Speed int `json:"speed,omitempty" toml:"speed"`

	// Posterize drops this many low bits of each channel, in [0, 4].
	Posterize int `json:"posterize,omitempty" toml:"posterize"`
}

// Validate checks every option range.
func (o QuantizeOptions) Validate() error {
	switch {
	case o.Colors != 0 && (o.Colors < 2 || o.Colors > 256):
		return errors.New(errors.ErrCodeInvalidConfiguration, "quantize colors must be in [2, 256], got %d", o.Colors)
	case o.Quality < 0 || o.Quality > 100:
		return errors.New(errors.ErrCodeInvalidConfiguration, "quantize quality must be in [0, 100], got %d", o.Quality)
	case o.Dithering < 0 || o.Dithering > 1:
		return errors.New(errors.ErrCodeInvalidConfiguration, "dithering must be in [0, 1], got %g", o.Dithering)
	case o.Speed != 0 && (o.Speed < 1 || o.Speed > 11):
		return errors.New(errors.ErrCodeInvalidConfiguration, "quantize speed must be in [1, 11], got %d", o.Speed)
	case o.Posterize < 0 || o.Posterize > 4:
		return errors.New(errors.ErrCodeInvalidConfiguration, "posterize must be in [0, 4], got %d", o.Posterize)
	}
	return nil
}

// JPEGQuality returns the quality used for opaque pages.
func (o QuantizeOptions) JPEGQuality() int {
	if o.Quality > 0 {
		return o.Quality
	}
	return 100
}

// Pngquant runs the pngquant binary.
type Pngquant struct {
	// Path is the executable, looked up in PATH when not absolute.
	Path    string
	Options QuantizeOptions
}

// NewPngquant returns a compressor running "pngquant" from PATH.
func NewPngquant(opts QuantizeOptions) *Pngquant {
	return &Pngquant{Path: "pngquant", Options: opts}
}

// Args returns the pngquant command line for the configured options. Input
// is read from stdin and the result written to stdout.
func (p *Pngquant) Args() []string {
	o := p.Options
	speed := o.Speed
	if speed == 0 {
		speed = 1
	}
	colors := o.Colors
	if colors == 0 {
		colors = 256
	}

	args := []string{"--strip", "--speed", strconv.Itoa(speed)}
	if o.Quality > 0 {
		args = append(args, "--quality", "0-"+strconv.Itoa(o.Quality))
	}
	if o.Ordered {
		args = append(args, "--ordered")
	} else if o.Dithering > 0 {
		args = append(args, "--floyd="+strconv.FormatFloat(o.Dithering, 'f', -1, 64))
	}
	if o.Posterize > 0 {
		args = append(args, "--posterize", strconv.Itoa(o.Posterize))
	}
	return append(args, strconv.Itoa(colors), "-")
}

// Compress pipes data through pngquant and returns the reduced PNG.
func (p *Pngquant) Compress(ctx context.Context, data []byte) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.Path, p.Args()...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// A killed process reports "signal: killed"; the caller needs the cancellation.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Wrap(errors.ErrCodeExternalTool, err, "pngquant failed: %s", msg)
		}
		return nil, errors.Wrap(errors.ErrCodeExternalTool, err, "pngquant failed")
	}
	if stderr.Len() > 0 {
		return nil, errors.New(errors.ErrCodeExternalTool, "pngquant reported: %s", strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, errors.New(errors.ErrCodeExternalTool, "pngquant produced no output")
	}
	return stdout.Bytes(), nil
}
