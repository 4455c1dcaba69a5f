package palette

import "math"

// ColorBox is a sub-cube of a reduced-bit-depth RGB histogram.
//
// Min and Max are inclusive cell bounds per channel (R, G, B). The histogram
// is shared between all boxes cut from the same source.
type ColorBox struct {
	Bits    int
	Min     [3]int
	Max     [3]int
	Count   int    // pixels inside the box
	Volume  int    // number of cells inside the box
	Average [3]int // mass-weighted centroid in 8-bit RGB, or the center if empty

	histogram []uint32
}

func newBox(bits int, histogram []uint32, lo, hi [3]int) *ColorBox {
	b := &ColorBox{
		Bits:      bits,
		Min:       lo,
		Max:       hi,
		Volume:    (hi[0] - lo[0] + 1) * (hi[1] - lo[1] + 1) * (hi[2] - lo[2] + 1),
		histogram: histogram,
	}

	multiplier := float64(int(1) << (8 - bits))
	var sum [3]float64
	for r := lo[0]; r <= hi[0]; r++ {
		for g := lo[1]; g <= hi[1]; g++ {
			for bl := lo[2]; bl <= hi[2]; bl++ {
				n := int(histogram[b.index(r, g, bl)])
				if n == 0 {
					continue
				}
				b.Count += n
				sum[0] += float64(n) * (float64(r) + 0.5) * multiplier
				sum[1] += float64(n) * (float64(g) + 0.5) * multiplier
				sum[2] += float64(n) * (float64(bl) + 0.5) * multiplier
			}
		}
	}

	for c := 0; c < 3; c++ {
		if b.Count > 0 {
			b.Average[c] = int(sum[c] / float64(b.Count))
		} else {
			b.Average[c] = int(multiplier * 0.5 * float64(lo[c]+hi[c]+1))
		}
	}
	return b
}

// index returns the histogram cell of reduced channel values (r, g, b).
func (b *ColorBox) index(r, g, bl int) int {
	return r + g<<b.Bits + bl<<(2*b.Bits)
}

// Distance returns the Chebyshev gap, in histogram cells, between the box and
// an 8-bit RGB color. It is zero when the color falls inside the box.
func (b *ColorBox) Distance(red, green, blue int) int {
	shift := 8 - b.Bits
	color := [3]int{red >> shift, green >> shift, blue >> shift}
	gap := 0
	for c := 0; c < 3; c++ {
		gap = max(gap, color[c]-b.Max[c], b.Min[c]-color[c])
	}
	return gap
}

// Overlap grows from 0 for nested boxes to 1 for boxes that just touch and
// beyond 1 as they move apart. The largest value over the three channels is
// returned.
func (b *ColorBox) Overlap(other *ColorBox) float64 {
	result := math.Inf(-1)
	for c := 0; c < 3; c++ {
		size := min(b.Max[c]-b.Min[c]+1, other.Max[c]-other.Min[c]+1)
		d := min(b.Max[c], other.Max[c]) - max(b.Min[c], other.Min[c])
		result = max(result, 1-float64(d)/float64(size))
	}
	return result
}

// medianCut splits the box in two across its longest channel. The second box
// is nil when the box cannot be split.
func (b *ColorBox) medianCut() (*ColorBox, *ColorBox) {
	if b.Count <= 1 {
		return b, nil
	}

	var dims [3]int
	for c := 0; c < 3; c++ {
		dims[c] = b.Max[c] - b.Min[c] + 1
	}
	axisA := 0
	for c := 1; c < 3; c++ {
		if dims[c] > dims[axisA] {
			axisA = c
		}
	}
	axisB := (axisA + 1) % 3
	axisC := (axisA + 2) % 3

	// lookbehind[a] is the mass in cells <= a along axisA.
	lookbehind := make([]int, b.Max[axisA]+1)
	total := 0
	for a := b.Min[axisA]; a <= b.Max[axisA]; a++ {
		for i := b.Min[axisB]; i <= b.Max[axisB]; i++ {
			for j := b.Min[axisC]; j <= b.Max[axisC]; j++ {
				total += int(b.histogram[a<<(axisA*b.Bits)+i<<(axisB*b.Bits)+j<<(axisC*b.Bits)])
			}
		}
		lookbehind[a] = total
	}

	split := -1
	lookahead := make([]int, len(lookbehind))
	for i := range lookahead {
		lookahead[i] = total - lookbehind[i]
		if split == -1 && float64(lookbehind[i]) > 0.5*float64(total) {
			split = i
		}
	}

	left := split - b.Min[axisA]
	right := b.Max[axisA] - split
	if left <= right {
		split = max(0, min(b.Max[axisA]-1, split+right/2))
	} else {
		split = min(b.Max[axisA], max(b.Min[axisA], int(float64(split)-1-0.5*float64(left))))
	}

	for lookbehind[split] == 0 {
		split++
	}
	for split > 0 && lookahead[split] == 0 && lookbehind[split-1] != 0 {
		split--
	}

	maxA, minB := b.Max, b.Min
	maxA[axisA] = split
	if lookahead[split] == 0 {
		// Everything lies at or below split; only the first half is occupied.
		return newBox(b.Bits, b.histogram, b.Min, maxA), nil
	}
	minB[axisA] = split + 1
	return newBox(b.Bits, b.histogram, b.Min, maxA), newBox(b.Bits, b.histogram, minB, b.Max)
}
