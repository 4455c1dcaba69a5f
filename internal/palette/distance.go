package palette

import (
	"github.com/ironsheep/spritepack/internal/emd"
	"github.com/ironsheep/spritepack/internal/errors"
)

// Algorithm selects the palette similarity metric.
type Algorithm string

const (
	Wasserstein  Algorithm = "wasserstein"
	Intersection Algorithm = "intersection"
)

// maxSquaredDistance is the largest squared distance along one 8-bit channel,
// used to bring transport costs into [0, ~3].
const maxSquaredDistance = 0xFE01

// ParseAlgorithm returns the named algorithm; an empty name selects Wasserstein.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case "", Wasserstein:
		return Wasserstein, nil
	case Intersection:
		return Intersection, nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfiguration, "unknown palette algorithm %q (want %q or %q)", name, Wasserstein, Intersection)
}

// Distance scores the dissimilarity of two palettes with the given algorithm.
func Distance(algorithm Algorithm, u, v *Palette) (float64, error) {
	switch algorithm {
	case Wasserstein:
		return WassersteinDistance(u, v)
	case Intersection:
		return WeightedIntersection(u, v), nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfiguration, "unknown palette algorithm %q", algorithm)
}

// WeightedIntersection sums, over every pair of boxes, the smaller of the two
// box-to-average gaps weighted by both boxes' relative mass.
func WeightedIntersection(u, v *Palette) float64 {
	if u.Total == 0 || v.Total == 0 {
		return 0
	}
	var out float64
	for _, bu := range u.Boxes {
		for _, bv := range v.Boxes {
			gap := min(
				bu.Distance(bv.Average[0], bv.Average[1], bv.Average[2]),
				bv.Distance(bu.Average[0], bu.Average[1], bu.Average[2]),
			)
			out += float64(gap) * (float64(bv.Count) / float64(v.Total)) * (float64(bu.Count) / float64(u.Total))
		}
	}
	return out
}

// WassersteinDistance is the Earth Mover's Distance between two palettes.
// Moving mass between boxes costs the squared distance of their averages,
// scaled from half up to full (and beyond) as the boxes become disjoint.
func WassersteinDistance(u, v *Palette) (float64, error) {
	if u.Total == 0 || v.Total == 0 {
		return 0, nil
	}
	cost := func(i, j int) float64 {
		bu, bv := u.Boxes[i], v.Boxes[j]
		return (0.5 + 0.5*bu.Overlap(bv)) * squaredDistance(bu.Average, bv.Average) / maxSquaredDistance
	}
	return emd.New(u.Len(), v.Len(), cost).Distance(u.Weights(), v.Weights())
}

func squaredDistance(a, b [3]int) float64 {
	var sum float64
	for c := 0; c < 3; c++ {
		d := float64(a[c] - b[c])
		sum += d * d
	}
	return sum
}
