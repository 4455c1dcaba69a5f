package atlas

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"strings"
	"testing"

	"github.com/ironsheep/spritepack/internal/codec"
	"github.com/ironsheep/spritepack/internal/errors"
)

// createSpriteFile encodes a w x h PNG whose rectangle (x0,y0)-(x1,y1) is
// filled with c and everything else is transparent
func createSpriteFile(t *testing.T, name string, w, h, x0, y0, x1, y1 int, c color.NRGBA) File {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode sprite: %v", err)
	}
	return File{Name: name, Data: buf.Bytes()}
}

// createSolidFile encodes a w x h PNG filled entirely with c
func createSolidFile(t *testing.T, name string, w, h int, c color.NRGBA) File {
	t.Helper()
	return createSpriteFile(t, name, w, h, 0, 0, w, h, c)
}

// fakeCompressor records calls and returns a fixed payload or error
type fakeCompressor struct {
	calls int
	out   []byte
	err   error
}

func (f *fakeCompressor) Compress(_ context.Context, data []byte) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func ungroupedOptions() Options {
	opts := DefaultOptions()
	opts.Group.Enabled = false
	return opts
}

func decodeManifest(t *testing.T, f File) Manifest {
	t.Helper()
	var m Manifest
	if err := json.Unmarshal(f.Data, &m); err != nil {
		t.Fatalf("manifest %s is not valid JSON: %v", f.Name, err)
	}
	return m
}

func mustGenerate(t *testing.T, g *Generator, files []File) *Result {
	t.Helper()
	res, err := g.Generate(context.Background(), files)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return res
}

var hashedName = regexp.MustCompile(`^[0-9a-f]{20}\.(png|jpg|json)$`)

func TestGenerate_SinglePage(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 200}
	files := []File{
		createSpriteFile(t, "hero.png", 10, 10, 2, 3, 8, 9, red),
		createSolidFile(t, "tile.png", 8, 8, color.NRGBA{0, 0, 255, 255}),
		{Name: "readme.txt", Data: []byte("not a sprite")},
	}

	res := mustGenerate(t, New(ungroupedOptions(), nil), files)
	if len(res.Files) != 2 || len(res.Pages) != 1 {
		t.Fatalf("got %d files and %d pages, want 2 and 1", len(res.Files), len(res.Pages))
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "readme.txt" {
		t.Errorf("Skipped: got %v", res.Skipped)
	}

	img, manifest := res.Files[0], res.Files[1]
	for _, f := range res.Files {
		if !hashedName.MatchString(f.Name) {
			t.Errorf("output name %q is not a content hash", f.Name)
		}
	}
	if !strings.HasSuffix(img.Name, ".png") {
		t.Errorf("page with transparency should be PNG, got %s", img.Name)
	}

	m := decodeManifest(t, manifest)
	if m.Meta.Image != img.Name {
		t.Errorf("meta.image: got %q, want %q", m.Meta.Image, img.Name)
	}
	if m.Meta.Format != "RGBA8888" || m.Meta.Scale != 1 {
		t.Errorf("meta: got %+v", m.Meta)
	}

	hero, ok := m.Frames["hero.png"]
	if !ok {
		t.Fatalf("hero.png missing from frames: %v", m.Frames)
	}
	if hero.Frame.Width != 6 || hero.Frame.Height != 6 {
		t.Errorf("hero frame: got %+v, want 6x6", hero.Frame)
	}
	if hero.SpriteSourceSize.X != 2 || hero.SpriteSourceSize.Y != 3 {
		t.Errorf("hero spriteSourceSize: got %+v, want offset (2,3)", hero.SpriteSourceSize)
	}
	if hero.SourceSize.Width != 10 || hero.SourceSize.Height != 10 {
		t.Errorf("hero sourceSize: got %+v", hero.SourceSize)
	}
	if !hero.Trimmed || hero.Rotated || hero.Pivot != (Point{0.5, 0.5}) {
		t.Errorf("hero flags: %+v", hero)
	}
	if _, ok := m.Frames["tile.png"]; !ok {
		t.Error("tile.png missing from frames")
	}

	page, err := codec.Decode(img.Name, img.Data)
	if err != nil {
		t.Fatalf("page image is not decodable: %v", err)
	}
	if page.Width != m.Meta.Size.Width || page.Height != m.Meta.Size.Height {
		t.Errorf("page %dx%d does not match meta size %+v", page.Width, page.Height, m.Meta.Size)
	}

	// The trimmed hero must be translucent red across its whole frame.
	f := hero.Frame
	for y := f.Y; y < f.Y+f.Height; y++ {
		for x := f.X; x < f.X+f.Width; x++ {
			i := (y*page.Width + x) * 4
			if got := page.Pix[i : i+4]; !bytes.Equal(got, []byte{255, 0, 0, 200}) {
				t.Fatalf("hero pixel (%d,%d): got %v", x, y, got)
			}
		}
	}
}

func TestGenerate_OpaquePageIsJPEG(t *testing.T) {
	files := []File{createSolidFile(t, "bg.png", 16, 16, color.NRGBA{10, 200, 30, 255})}

	res := mustGenerate(t, New(ungroupedOptions(), nil), files)
	if !strings.HasSuffix(res.Files[0].Name, ".jpg") {
		t.Errorf("opaque page should be JPEG, got %s", res.Files[0].Name)
	}
	if m := decodeManifest(t, res.Files[1]); m.Meta.Format != "RGB888" {
		t.Errorf("meta.format: got %s, want RGB888", m.Meta.Format)
	}
}

func TestGenerate_Downscale(t *testing.T) {
	opts := ungroupedOptions()
	opts.Downscale = 0.5
	files := []File{createSolidFile(t, "big.png", 8, 6, color.NRGBA{255, 255, 255, 255})}

	res := mustGenerate(t, New(opts, nil), files)
	m := decodeManifest(t, res.Files[1])
	if m.Meta.Scale != 0.5 {
		t.Errorf("meta.scale: got %g, want 0.5", m.Meta.Scale)
	}
	if m.Meta.Size.Width != 4 || m.Meta.Size.Height != 3 {
		t.Errorf("page size: got %+v, want 4x3", m.Meta.Size)
	}
	if fr := m.Frames["big.png"]; fr.SourceSize.Width != 4 {
		t.Errorf("sourceSize after downscale: got %+v", fr.SourceSize)
	}
}

func TestGenerate_Rotation(t *testing.T) {
	opts := ungroupedOptions()
	opts.Pack.MaxWidth, opts.Pack.MaxHeight = 20, 10
	opts.Pack.Rotate = true
	files := []File{createSpriteFile(t, "tall.png", 10, 20, 0, 0, 10, 20, color.NRGBA{9, 9, 9, 128})}

	res := mustGenerate(t, New(opts, nil), files)
	m := decodeManifest(t, res.Files[1])
	fr := m.Frames["tall.png"]
	if !fr.Rotated {
		t.Fatal("sprite should be rotated to fit")
	}
	if fr.Frame.Width != 10 || fr.Frame.Height != 20 {
		t.Errorf("frame should keep sprite orientation, got %+v", fr.Frame)
	}
	if m.Meta.Size.Width != 20 || m.Meta.Size.Height != 10 {
		t.Errorf("page size: got %+v, want 20x10", m.Meta.Size)
	}
}

func TestGenerate_Quantize(t *testing.T) {
	opts := ungroupedOptions()
	opts.Quantize.Enabled = true
	files := []File{createSpriteFile(t, "ghost.png", 4, 4, 1, 1, 3, 3, color.NRGBA{1, 2, 3, 128})}

	fake := &fakeCompressor{out: []byte("reduced")}
	g := New(opts, nil)
	g.Compressor = fake

	res := mustGenerate(t, g, files)
	if fake.calls != 1 {
		t.Errorf("compressor called %d times, want 1", fake.calls)
	}
	if string(res.Files[0].Data) != "reduced" {
		t.Error("page bytes should come from the compressor")
	}
	if res.Files[0].Name != Hash([]byte("reduced"))+".png" {
		t.Errorf("page should be named after the compressed bytes, got %s", res.Files[0].Name)
	}
}

func TestGenerate_QuantizeSkipsJPEG(t *testing.T) {
	opts := ungroupedOptions()
	opts.Quantize.Enabled = true
	fake := &fakeCompressor{out: []byte("reduced")}
	g := New(opts, nil)
	g.Compressor = fake

	mustGenerate(t, g, []File{createSolidFile(t, "bg.png", 4, 4, color.NRGBA{1, 2, 3, 255})})
	if fake.calls != 0 {
		t.Errorf("compressor should not run on JPEG pages, got %d calls", fake.calls)
	}
}

func TestGenerate_CompressorFailure(t *testing.T) {
	opts := ungroupedOptions()
	opts.Quantize.Enabled = true
	g := New(opts, nil)
	g.Compressor = &fakeCompressor{err: errors.New(errors.ErrCodeExternalTool, "pngquant reported: boom")}

	_, err := g.Generate(context.Background(), []File{createSpriteFile(t, "a.png", 4, 4, 1, 1, 3, 3, color.NRGBA{A: 100})})
	if !errors.Is(err, errors.ErrCodeExternalTool) {
		t.Errorf("expected EXTERNAL_TOOL, got %v", err)
	}
}

func TestGenerate_Errors(t *testing.T) {
	huge := createSolidFile(t, "huge.png", 300, 300, color.NRGBA{A: 255})
	small := createSolidFile(t, "small.png", 2, 2, color.NRGBA{A: 255})

	tests := []struct {
		name   string
		modify func(*Options)
		files  []File
		code   errors.Code
	}{
		{"size exceeded", func(o *Options) { o.Pack.MaxWidth, o.Pack.MaxHeight = 256, 256 }, []File{huge}, errors.ErrCodeSizeExceeded},
		{"zero downscale", func(o *Options) { o.Downscale = 0 }, []File{small}, errors.ErrCodeInvalidConfiguration},
		{"group colors", func(o *Options) { o.Group.Colors = 1 }, []File{small}, errors.ErrCodeInvalidConfiguration},
		{"algorithm", func(o *Options) { o.Group.Algorithm = "cosine" }, []File{small}, errors.ErrCodeInvalidConfiguration},
		{"heuristic", func(o *Options) { o.Pack.Heuristic = "best" }, []File{small}, errors.ErrCodeInvalidConfiguration},
		{"quantize colors", func(o *Options) { o.Quantize.Colors = 300 }, []File{small}, errors.ErrCodeInvalidConfiguration},
		{"empty prefix", func(o *Options) { o.Prefix = "" }, []File{small}, errors.ErrCodeInvalidConfiguration},
		{"bad image", func(o *Options) {}, []File{{Name: "bad.png", Data: []byte("nope")}}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			_, err := New(opts, nil).Generate(context.Background(), tt.files)
			if !errors.Is(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestGenerate_DuplicateOutputNames(t *testing.T) {
	opts := ungroupedOptions()
	opts.Prefix = "atlas"
	opts.Pack.MaxWidth, opts.Pack.MaxHeight = 10, 10
	files := []File{
		createSolidFile(t, "a.png", 10, 10, color.NRGBA{A: 255}),
		createSolidFile(t, "b.png", 10, 10, color.NRGBA{R: 255, A: 255}),
	}

	_, err := New(opts, nil).Generate(context.Background(), files)
	if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("expected INVALID_CONFIGURATION for colliding names, got %v", err)
	}
}

func TestGenerate_GroupingSeparatesPalettes(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	blue := color.NRGBA{0, 0, 255, 255}
	files := []File{
		createSolidFile(t, "red1.png", 8, 8, red),
		createSolidFile(t, "blue.png", 8, 8, blue),
		createSolidFile(t, "red2.png", 8, 8, red),
	}

	tests := []struct {
		name   string
		modify func(*Options)
		pages  int
	}{
		{"ungrouped", func(o *Options) { o.Group.Enabled = false }, 1},
		{"strict threshold", func(o *Options) { o.Group.Threshold = 0 }, 2},
		{"strict intersection", func(o *Options) {
			o.Group.Threshold = 0
			o.Group.Algorithm = "intersection"
		}, 2},
		{"loose threshold", func(o *Options) { o.Group.Threshold = 100 }, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			res := mustGenerate(t, New(opts, nil), files)
			if len(res.Pages) != tt.pages {
				t.Errorf("got %d pages, want %d", len(res.Pages), tt.pages)
			}
			sprites := 0
			for _, p := range res.Pages {
				sprites += p.Sprites
			}
			if sprites != 3 {
				t.Errorf("pages hold %d sprites, want 3", sprites)
			}
		})
	}
}

func TestGenerate_GroupingOpacityMismatch(t *testing.T) {
	solid := color.NRGBA{255, 0, 0, 255}
	translucent := color.NRGBA{255, 0, 0, 128}
	// Same color everywhere, so palette distance is zero and only opacity
	// mismatch can separate sprites. Equal sizes keep input order.
	mixed := []File{
		createSolidFile(t, "solid.png", 8, 8, solid),
		createSolidFile(t, "ghost.png", 8, 8, translucent),
	}
	twoOpaque := []File{
		createSolidFile(t, "solid1.png", 8, 8, solid),
		createSolidFile(t, "solid2.png", 8, 8, solid),
		createSolidFile(t, "ghost.png", 8, 8, translucent),
	}

	tests := []struct {
		name   string
		files  []File
		opaque float64
		pages  int
	}{
		{"no mismatch penalty", mixed, 0, 1},
		{"penalty above threshold", mixed, 5, 2},
		{"penalty below threshold", mixed, 0.5, 1},
		// Two opaque sprites already on the page: counted once, 0.5 stays
		// under the 0.8 threshold.
		{"counted once per page", twoOpaque, 0.5, 1},
		{"same opacity never penalized", []File{twoOpaque[0], twoOpaque[1]}, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Trim = false
			opts.Group.Threshold = 0.8
			opts.Group.Opaque = tt.opaque

			res := mustGenerate(t, New(opts, nil), tt.files)
			if len(res.Pages) != tt.pages {
				t.Errorf("got %d pages, want %d", len(res.Pages), tt.pages)
			}
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	files := []File{
		createSpriteFile(t, "a.png", 12, 12, 2, 2, 9, 10, color.NRGBA{200, 100, 50, 255}),
		createSolidFile(t, "b.png", 5, 7, color.NRGBA{0, 100, 200, 255}),
	}

	first := mustGenerate(t, New(DefaultOptions(), nil), files)
	second := mustGenerate(t, New(DefaultOptions(), nil), files)
	for i := range first.Files {
		if first.Files[i].Name != second.Files[i].Name {
			t.Errorf("file %d: %s vs %s", i, first.Files[i].Name, second.Files[i].Name)
		}
	}
}

func TestGenerate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(ungroupedOptions(), nil).Generate(ctx, []File{createSolidFile(t, "a.png", 2, 2, color.NRGBA{A: 255})})
	if err == nil {
		t.Error("expected an error for a canceled context")
	}
}

func TestGenerate_NoImages(t *testing.T) {
	res := mustGenerate(t, New(DefaultOptions(), nil), []File{{Name: "notes.md", Data: []byte("#")}})
	if len(res.Files) != 0 || len(res.Pages) != 0 {
		t.Errorf("expected no output, got %d files", len(res.Files))
	}
}
