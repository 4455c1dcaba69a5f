package palette

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ironsheep/spritepack/internal/errors"
)

// createPixels returns a w*h RGBA grid filled with one color
func createPixels(w, h int, r, g, b, a uint8) []uint8 {
	pix := make([]uint8, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = r, g, b, a
	}
	return pix
}

// createRandomPixels returns n random pixels, roughly a quarter of them
// fully transparent
func createRandomPixels(seed int64, n int) []uint8 {
	r := rand.New(rand.NewSource(seed))
	pix := make([]uint8, n*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i] = uint8(r.Intn(256))
		pix[i+1] = uint8(r.Intn(256))
		pix[i+2] = uint8(r.Intn(256))
		if r.Intn(4) > 0 {
			pix[i+3] = uint8(r.Intn(256))
		}
	}
	return pix
}

func countAbove(pix []uint8, threshold uint8) int {
	n := 0
	for i := 3; i < len(pix); i += 4 {
		if pix[i] > threshold {
			n++
		}
	}
	return n
}

func mustQuantize(t *testing.T, pix []uint8, opts Options) *Palette {
	t.Helper()
	p, err := Quantize(pix, opts)
	if err != nil {
		t.Fatalf("Quantize failed: %v", err)
	}
	return p
}

func TestQuantize_MassConservation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"defaults", DefaultOptions()},
		{"many colors", Options{Colors: 64, Bits: 5}},
		{"full precision", Options{Colors: 16, Bits: 8}},
		{"one bit", Options{Colors: 8, Bits: 1}},
		{"alpha threshold", Options{Colors: 12, Bits: 4, AlphaThreshold: 128}},
	}

	pix := createRandomPixels(42, 2000)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustQuantize(t, pix, tt.opts)

			sum := 0
			for _, b := range p.Boxes {
				sum += b.Count
			}
			want := countAbove(pix, tt.opts.AlphaThreshold)
			if sum != want || p.Total != want {
				t.Errorf("box counts sum to %d (Total %d), want %d", sum, p.Total, want)
			}
			if p.Len() > tt.opts.Colors {
				t.Errorf("got %d boxes, want at most %d", p.Len(), tt.opts.Colors)
			}
			for i, b := range p.Boxes {
				for c := 0; c < 3; c++ {
					if b.Min[c] > b.Max[c] {
						t.Errorf("box %d channel %d: min %d > max %d", i, c, b.Min[c], b.Max[c])
					}
				}
			}
		})
	}
}

func TestQuantize_SingleColor(t *testing.T) {
	p := mustQuantize(t, createPixels(4, 4, 255, 0, 0, 255), DefaultOptions())

	if p.Len() != 1 {
		t.Fatalf("got %d boxes, want 1", p.Len())
	}
	// Red cell 15 at 4 bits centers on (15 + 0.5) * 16 = 248.
	if got := p.Colors()[0]; got != "#f80808" {
		t.Errorf("color: got %s, want #f80808", got)
	}
	if p.Total != 16 {
		t.Errorf("total: got %d, want 16", p.Total)
	}
}

func TestQuantize_TwoColors(t *testing.T) {
	pix := append(createPixels(4, 2, 0, 0, 0, 255), createPixels(4, 2, 255, 255, 255, 255)...)
	p := mustQuantize(t, pix, Options{Colors: 2, Bits: 4})

	if p.Len() != 2 {
		t.Fatalf("got %d boxes, want 2", p.Len())
	}
	colors := map[string]bool{}
	for _, c := range p.Colors() {
		colors[c] = true
	}
	if !colors["#080808"] || !colors["#f8f8f8"] {
		t.Errorf("colors: got %v, want #080808 and #f8f8f8", p.Colors())
	}
	for _, b := range p.Boxes {
		if b.Count != 8 {
			t.Errorf("box count: got %d, want 8", b.Count)
		}
	}
}

func TestQuantize_FullyTransparent(t *testing.T) {
	p := mustQuantize(t, createPixels(3, 3, 10, 20, 30, 0), DefaultOptions())
	if p.Len() != 0 || p.Total != 0 {
		t.Errorf("expected empty palette, got %d boxes with total %d", p.Len(), p.Total)
	}

	other := mustQuantize(t, createPixels(3, 3, 10, 20, 30, 255), DefaultOptions())
	d, err := WassersteinDistance(p, other)
	if err != nil || d != 0 {
		t.Errorf("Wasserstein with empty palette: got %g, %v", d, err)
	}
	if d := WeightedIntersection(other, p); d != 0 {
		t.Errorf("intersection with empty palette: got %g", d)
	}
}

func TestQuantize_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"too few colors", Options{Colors: 1, Bits: 4}},
		{"too many colors", Options{Colors: 257, Bits: 4}},
		{"zero bits", Options{Colors: 4, Bits: 0}},
		{"too many bits", Options{Colors: 4, Bits: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Quantize(createPixels(2, 2, 1, 2, 3, 255), tt.opts)
			if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
				t.Errorf("expected INVALID_CONFIGURATION, got %v", err)
			}
		})
	}
}

func TestQuantize_RaggedGrid(t *testing.T) {
	_, err := Quantize([]uint8{1, 2, 3}, DefaultOptions())
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestWassersteinDistance_Properties(t *testing.T) {
	opts := Options{Colors: 8, Bits: 4}
	palettes := []*Palette{
		mustQuantize(t, createRandomPixels(1, 500), opts),
		mustQuantize(t, createRandomPixels(2, 800), opts),
		mustQuantize(t, createPixels(5, 5, 200, 40, 40, 255), opts),
		mustQuantize(t, createRandomPixels(3, 50), Options{Colors: 3, Bits: 3}),
	}

	for i, p := range palettes {
		d, err := WassersteinDistance(p, p)
		if err != nil {
			t.Fatalf("palette %d: %v", i, err)
		}
		if math.Abs(d) > 1e-12 {
			t.Errorf("palette %d: distance to itself %g, want 0", i, d)
		}

		for j, q := range palettes {
			pq, err := WassersteinDistance(p, q)
			if err != nil {
				t.Fatalf("(%d,%d): %v", i, j, err)
			}
			qp, err := WassersteinDistance(q, p)
			if err != nil {
				t.Fatalf("(%d,%d): %v", j, i, err)
			}
			if math.Abs(pq-qp) > 1e-9 {
				t.Errorf("(%d,%d): not symmetric, %g vs %g", i, j, pq, qp)
			}
			if pq < -1e-12 {
				t.Errorf("(%d,%d): negative distance %g", i, j, pq)
			}
		}
	}
}

func TestWassersteinDistance_Ordering(t *testing.T) {
	opts := DefaultOptions()
	black := mustQuantize(t, createPixels(4, 4, 0, 0, 0, 255), opts)
	gray := mustQuantize(t, createPixels(4, 4, 60, 60, 60, 255), opts)
	white := mustQuantize(t, createPixels(4, 4, 255, 255, 255, 255), opts)

	near, err := WassersteinDistance(black, gray)
	if err != nil {
		t.Fatal(err)
	}
	far, err := WassersteinDistance(black, white)
	if err != nil {
		t.Fatal(err)
	}
	if !(near > 0 && near < far) {
		t.Errorf("expected 0 < black-gray (%g) < black-white (%g)", near, far)
	}
}

func TestWeightedIntersection(t *testing.T) {
	opts := DefaultOptions()
	red := mustQuantize(t, createPixels(4, 4, 255, 0, 0, 255), opts)
	blue := mustQuantize(t, createPixels(4, 4, 0, 0, 255, 255), opts)

	if d := WeightedIntersection(red, red); d != 0 {
		t.Errorf("single color against itself: got %g, want 0", d)
	}
	// Red and blue sit 15 cells apart on two channels.
	if d := WeightedIntersection(red, blue); d != 15 {
		t.Errorf("red vs blue: got %g, want 15", d)
	}

	p := mustQuantize(t, createRandomPixels(5, 300), Options{Colors: 6, Bits: 4})
	q := mustQuantize(t, createRandomPixels(6, 300), Options{Colors: 6, Bits: 4})
	if a, b := WeightedIntersection(p, q), WeightedIntersection(q, p); math.Abs(a-b) > 1e-12 {
		t.Errorf("not symmetric: %g vs %g", a, b)
	}
}

func TestDistance_Algorithms(t *testing.T) {
	opts := DefaultOptions()
	red := mustQuantize(t, createPixels(2, 2, 255, 0, 0, 255), opts)
	blue := mustQuantize(t, createPixels(2, 2, 0, 0, 255, 255), opts)

	for _, name := range []string{"", "wasserstein", "intersection"} {
		t.Run(name, func(t *testing.T) {
			algorithm, err := ParseAlgorithm(name)
			if err != nil {
				t.Fatalf("ParseAlgorithm(%q): %v", name, err)
			}
			d, err := Distance(algorithm, red, blue)
			if err != nil {
				t.Fatalf("Distance: %v", err)
			}
			if d <= 0 {
				t.Errorf("expected positive distance, got %g", d)
			}
		})
	}

	if _, err := ParseAlgorithm("histogram"); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("expected INVALID_CONFIGURATION for unknown algorithm, got %v", err)
	}
}

func TestSwatches(t *testing.T) {
	pix := append(createPixels(4, 3, 255, 0, 0, 255), createPixels(4, 1, 0, 0, 255, 255)...)
	p := mustQuantize(t, pix, Options{Colors: 2, Bits: 4})

	swatches := p.Swatches()
	if len(swatches) != 2 {
		t.Fatalf("got %d swatches, want 2", len(swatches))
	}
	if swatches[0].Pixels != 12 || swatches[1].Pixels != 4 {
		t.Errorf("swatches not ordered by mass: %+v", swatches)
	}
	if swatches[0].Hex != "#f80808" {
		t.Errorf("dominant color: got %s, want #f80808", swatches[0].Hex)
	}
	if swatches[0].HSL.H != 0 || swatches[1].HSL.H != 240 {
		t.Errorf("hues: got %d and %d, want 0 and 240", swatches[0].HSL.H, swatches[1].HSL.H)
	}

	var total float64
	for _, s := range swatches {
		total += s.Weight
	}
	if math.Abs(total-1) > 1e-12 {
		t.Errorf("weights sum to %g, want 1", total)
	}
}

func TestColorBox_Distance(t *testing.T) {
	box := &ColorBox{Bits: 4, Min: [3]int{2, 2, 2}, Max: [3]int{5, 5, 5}}

	tests := []struct {
		name    string
		r, g, b int
		want    int
	}{
		{"inside", 3 << 4, 4 << 4, 5 << 4, 0},
		{"below", 0, 3 << 4, 3 << 4, 2},
		{"above", 3 << 4, 3 << 4, 9 << 4, 4},
		{"worst channel wins", 0, 15 << 4, 3 << 4, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Distance(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
