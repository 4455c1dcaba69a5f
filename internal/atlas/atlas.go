package atlas

import (
	"context"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/spritepack/internal/bitmap"
	"github.com/ironsheep/spritepack/internal/codec"
	"github.com/ironsheep/spritepack/internal/errors"
	"github.com/ironsheep/spritepack/internal/packer"
	"github.com/ironsheep/spritepack/internal/palette"
)

// File is a named blob, used for both inputs and outputs.
type File struct {
	Name string
	Data []byte
}

// PageInfo summarizes one written page.
type PageInfo struct {
	Image    string `json:"image"`
	Manifest string `json:"manifest"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Sprites  int    `json:"sprites"`
}

// Result is the output of a run.
type Result struct {
	// Files holds, for every page, the encoded image followed by its manifest.
	Files []File

	Pages   []PageInfo
	Skipped []string // inputs that are not raster images
}

// Generator builds spritesheets. The zero value is not usable; call New.
type Generator struct {
	Options Options
	Logger  *log.Logger

	// Compressor reduces PNG pages when Options.Quantize.Enabled is set.
	// New installs pngquant.
	Compressor codec.Compressor
}

// New returns a generator. A nil logger discards all output.
func New(opts Options, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Generator{
		Options:    opts,
		Logger:     logger,
		Compressor: codec.NewPngquant(opts.Quantize.QuantizeOptions),
	}
}

// Generate decodes every image among files, packs them into pages and
// returns the encoded pages and manifests. Files that are not images are
// skipped. Any failure aborts the whole run.
//
// Parameters:
//   - ctx: Checked between pages and passed to the compressor.
//   - files: Input files keyed by slash-separated relative name. The name,
//     minus its extension, becomes the sprite key in the manifest.
//
// Returns:
//   - *Result: Page images and manifests in page order, page summaries and
//     the names of skipped files.
//   - error: Non-nil on the first failure. No partial result is returned.
//
// # Errors
//
//   - INVALID_CONFIGURATION if the options fail validation or two pages
//     would be written under the same name
//   - INVALID_INPUT if an image cannot be decoded
//   - SIZE_EXCEEDED if a sprite does not fit on an empty page
//   - ctx.Err() if the context is canceled
func (g *Generator) Generate(ctx context.Context, files []File) (*Result, error) {
	opts := g.Options
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	packOpts, err := opts.packerOptions()
	if err != nil {
		return nil, err
	}
	result := &Result{}

	g.Logger.Info("Decoding images")
	var sprites []*bitmap.Bitmap
	for _, f := range files {
		if !codec.IsImage(f.Name) {
			g.Logger.Debugf("Skipping %s (not an image)", f.Name)
			result.Skipped = append(result.Skipped, f.Name)
			continue
		}
		sprite, err := codec.Decode(f.Name, f.Data)
		if err != nil {
			return nil, err
		}
		sprites = append(sprites, sprite)
	}

	g.Logger.Infof("Processing %d images", len(sprites))
	for i, sprite := range sprites {
		sprites[i] = g.prepare(sprite)
	}

	g.Logger.Info("Packing sprites")
	group, err := g.grouping(sprites)
	if err != nil {
		return nil, err
	}
	items := make([]packer.Item[*bitmap.Bitmap], len(sprites))
	for i, sprite := range sprites {
		items[i] = packer.Item[*bitmap.Bitmap]{Width: sprite.Width, Height: sprite.Height, Value: sprite}
	}
	pages, err := packer.Pack(items, packOpts, group)
	if err != nil {
		return nil, err
	}

	names := make(map[string]bool)
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.Logger.Infof("Rendering spritesheet %d/%d", i+1, len(pages))

		image, manifest, info, err := g.renderPage(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, name := range []string{image.Name, manifest.Name} {
			if names[name] {
				return nil, errors.New(errors.ErrCodeInvalidConfiguration,
					"output name %q is used twice; include %s in the prefix", name, HashToken)
			}
			names[name] = true
		}
		result.Files = append(result.Files, image, manifest)
		result.Pages = append(result.Pages, info)
	}
	return result, nil
}

// prepare applies the configured downscale and trim to one sprite.
func (g *Generator) prepare(sprite *bitmap.Bitmap) *bitmap.Bitmap {
	if d := g.Options.Downscale; d < 1 {
		w := max(1, int(math.Floor(float64(sprite.Width)*d)))
		h := max(1, int(math.Floor(float64(sprite.Height)*d)))
		scaled := bitmap.Downsample(sprite, w, h)
		scaled.Name = sprite.Name
		sprite = scaled
	}
	if g.Options.Trim {
		sprite = bitmap.Trim(sprite, 0)
	}
	g.Logger.Debug("Prepared sprite", "name", sprite.Name, "width", sprite.Width, "height", sprite.Height)
	return sprite
}

// grouping builds the palette affinity gate, or nil when grouping is off.
func (g *Generator) grouping(sprites []*bitmap.Bitmap) (*packer.Grouping[*bitmap.Bitmap], error) {
	opts := g.Options.Group
	if !opts.Enabled {
		return nil, nil
	}
	algorithm, err := palette.ParseAlgorithm(opts.Algorithm)
	if err != nil {
		return nil, err
	}

	palettes := make(map[*bitmap.Bitmap]*palette.Palette, len(sprites))
	opaque := make(map[*bitmap.Bitmap]bool, len(sprites))
	for _, sprite := range sprites {
		p, err := palette.Quantize(sprite.Pix, g.Options.paletteOptions())
		if err != nil {
			return nil, err
		}
		palettes[sprite] = p
		opaque[sprite] = sprite.Opaque()
	}

	penalty := func(item *bitmap.Bitmap, page []*bitmap.Bitmap) (float64, error) {
		var mismatch float64
		best := math.Inf(1)
		for _, other := range page {
			if opaque[other] != opaque[item] {
				mismatch = opts.Opaque
			}
			d, err := palette.Distance(algorithm, palettes[item], palettes[other])
			if err != nil {
				return 0, err
			}
			best = min(best, d)
		}
		return mismatch + best, nil
	}

	return &packer.Grouping[*bitmap.Bitmap]{
		Penalty:   penalty,
		Threshold: opts.Threshold,
		Diminish:  opts.Diminish,
	}, nil
}

// renderPage draws, encodes and names one page and its manifest.
func (g *Generator) renderPage(ctx context.Context, page *packer.Page[*bitmap.Bitmap]) (File, File, PageInfo, error) {
	opts := g.Options
	sheet := Render(page, opts.Pack.Padding, opts.Extrude, opts.Trim)
	g.Logger.Debug("Rendered page", "width", page.Width, "height", page.Height, "sprites", len(page.Placements), "format", sheet.Format)

	data, err := g.encode(ctx, sheet)
	if err != nil {
		return File{}, File{}, PageInfo{}, err
	}
	image := File{Name: NameFor(opts.Prefix, data) + "." + string(sheet.Format), Data: data}

	manifest := &Manifest{
		Frames: sheet.Frames,
		Meta: Meta{
			Image:  image.Name,
			Format: sheet.Format.PixelFormat(),
			Size:   bitmap.Size{Width: page.Width, Height: page.Height},
			Scale:  opts.Downscale,
		},
	}
	manifestData, err := manifest.Encode()
	if err != nil {
		return File{}, File{}, PageInfo{}, err
	}
	manifestFile := File{Name: NameFor(opts.Prefix, manifestData) + ".json", Data: manifestData}

	return image, manifestFile, PageInfo{
		Image:    image.Name,
		Manifest: manifestFile.Name,
		Width:    page.Width,
		Height:   page.Height,
		Format:   string(sheet.Format),
		Sprites:  len(page.Placements),
	}, nil
}

func (g *Generator) encode(ctx context.Context, sheet *Sheet) ([]byte, error) {
	q := g.Options.Quantize
	if sheet.Format == codec.JPEG {
		return codec.Encode(sheet.Canvas, codec.JPEG, q.JPEGQuality())
	}

	data, err := codec.Encode(sheet.Canvas, codec.PNG, 0)
	if err != nil {
		return nil, err
	}
	if !q.Enabled {
		return data, nil
	}
	if g.Compressor == nil {
		return nil, errors.New(errors.ErrCodeInternal, "quantization enabled without a compressor")
	}
	reduced, err := g.Compressor.Compress(ctx, data)
	if err != nil {
		return nil, err
	}
	g.Logger.Debugf("Compressed page: %d -> %d bytes", len(data), len(reduced))
	return reduced, nil
}
