package emd

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/ironsheep/spritepack/internal/errors"
)

// lineCost returns the absolute distance between points placed on a line
func lineCost(posU, posV []float64) CostFunc {
	return func(u, v int) float64 {
		return math.Abs(posU[u] - posV[v])
	}
}

// lineEMD computes the exact 1-D transport cost from the cumulative
// distributions, independent of the simplex solver
func lineEMD(posU, wU, posV, wV []float64) float64 {
	type mass struct {
		x float64
		w float64
	}
	var all []mass
	for i := range posU {
		all = append(all, mass{posU[i], wU[i]})
	}
	for i := range posV {
		all = append(all, mass{posV[i], -wV[i]})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].x < all[j].x })

	var total, cdf float64
	for i := 0; i < len(all)-1; i++ {
		cdf += all[i].w
		total += math.Abs(cdf) * (all[i+1].x - all[i].x)
	}
	return total
}

// randomWeights returns n non-negative weights summing to 1
func randomWeights(r *rand.Rand, n int) []float64 {
	w := make([]float64, n)
	var sum float64
	for i := range w {
		w[i] = r.Float64() + 0.01
		sum += w[i]
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

func TestDistance_Identical(t *testing.T) {
	pos := []float64{0, 3, 7, 12}
	w := []float64{0.1, 0.4, 0.3, 0.2}

	got, err := New(4, 4, lineCost(pos, pos)).Distance(w, w)
	if err != nil {
		t.Fatalf("Distance failed: %v", err)
	}
	if math.Abs(got) > 1e-12 {
		t.Errorf("distance to itself: got %g, want 0", got)
	}
}

func TestDistance_RequiresPivoting(t *testing.T) {
	// The Northwest-Corner start pairs row 0 with column 0 (cost 10 each way);
	// the optimum swaps them for a cost of zero.
	posU := []float64{0, 10}
	posV := []float64{10, 0}
	w := []float64{0.5, 0.5}

	got, err := New(2, 2, lineCost(posU, posV)).Distance(w, w)
	if err != nil {
		t.Fatalf("Distance failed: %v", err)
	}
	if math.Abs(got) > 1e-12 {
		t.Errorf("got %g, want 0", got)
	}
}

func TestDistance_KnownValue(t *testing.T) {
	// All mass at 0 moves to 2 and 4 in equal halves: 0.5*2 + 0.5*4 = 3.
	got, err := New(1, 2, lineCost([]float64{0}, []float64{2, 4})).Distance([]float64{1}, []float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("Distance failed: %v", err)
	}
	if math.Abs(got-3) > 1e-12 {
		t.Errorf("got %g, want 3", got)
	}
}

func TestDistance_MatchesLineSolution(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	sizes := [][2]int{{2, 3}, {4, 4}, {5, 2}, {6, 7}, {8, 8}, {1, 5}}
	for _, size := range sizes {
		rows, cols := size[0], size[1]
		posU := make([]float64, rows)
		posV := make([]float64, cols)
		for i := range posU {
			posU[i] = r.Float64() * 100
		}
		for i := range posV {
			posV[i] = r.Float64() * 100
		}
		wU := randomWeights(r, rows)
		wV := randomWeights(r, cols)

		got, err := New(rows, cols, lineCost(posU, posV)).Distance(wU, wV)
		if err != nil {
			t.Fatalf("%dx%d: Distance failed: %v", rows, cols, err)
		}
		want := lineEMD(posU, wU, posV, wV)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("%dx%d: got %.12f, want %.12f", rows, cols, got, want)
		}
	}
}

func TestDistance_Symmetric(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	posU := []float64{1, 5, 9, 2, 14}
	posV := []float64{3, 8, 0}
	wU := randomWeights(r, len(posU))
	wV := randomWeights(r, len(posV))

	forward, err := New(len(posU), len(posV), lineCost(posU, posV)).Distance(wU, wV)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	backward, err := New(len(posV), len(posU), lineCost(posV, posU)).Distance(wV, wU)
	if err != nil {
		t.Fatalf("backward: %v", err)
	}
	if math.Abs(forward-backward) > 1e-9 {
		t.Errorf("not symmetric: %g vs %g", forward, backward)
	}
}

func TestSolve_FlowsConserveMass(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	posU := []float64{0, 4, 9, 13}
	posV := []float64{2, 6, 11}
	wU := randomWeights(r, 4)
	wV := randomWeights(r, 3)

	res, err := New(4, 3, lineCost(posU, posV)).Solve(wU, wV)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	var cost float64
	for u := 0; u < 4; u++ {
		var row float64
		for v := 0; v < 3; v++ {
			f := res.Flows.At(u, v)
			if f < -1e-12 {
				t.Errorf("negative flow %g at (%d,%d)", f, u, v)
			}
			row += f
			cost += f * math.Abs(posU[u]-posV[v])
		}
		if math.Abs(row-wU[u]) > 1e-9 {
			t.Errorf("row %d: flow sum %g, want %g", u, row, wU[u])
		}
	}
	for v := 0; v < 3; v++ {
		var col float64
		for u := 0; u < 4; u++ {
			col += res.Flows.At(u, v)
		}
		if math.Abs(col-wV[v]) > 1e-9 {
			t.Errorf("column %d: flow sum %g, want %g", v, col, wV[v])
		}
	}
	if math.Abs(cost-res.Distance) > 1e-9 {
		t.Errorf("flow cost %g does not match Distance %g", cost, res.Distance)
	}
}

func TestDistance_DoesNotModifyWeights(t *testing.T) {
	wU := []float64{0.25, 0.75}
	wV := []float64{0.5, 0.5}
	if _, err := New(2, 2, lineCost([]float64{0, 1}, []float64{0, 1})).Distance(wU, wV); err != nil {
		t.Fatalf("Distance failed: %v", err)
	}
	if wU[0] != 0.25 || wU[1] != 0.75 || wV[0] != 0.5 || wV[1] != 0.5 {
		t.Errorf("weights modified: %v %v", wU, wV)
	}
}

func TestDistance_InvalidInput(t *testing.T) {
	cost := lineCost([]float64{0, 1}, []float64{0, 1})

	tests := []struct {
		name   string
		wU, wV []float64
	}{
		{"unbalanced", []float64{0.5, 0.5}, []float64{0.5, 0.7}},
		{"wrong length", []float64{1}, []float64{0.5, 0.5}},
		{"negative weight", []float64{1.5, -0.5}, []float64{0.5, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(2, 2, cost).Distance(tt.wU, tt.wV)
			if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
				t.Errorf("expected INVALID_CONFIGURATION, got %v", err)
			}
		})
	}
}

func TestDistance_Empty(t *testing.T) {
	got, err := New(0, 0, nil).Distance(nil, nil)
	if err != nil {
		t.Fatalf("Distance failed: %v", err)
	}
	if got != 0 {
		t.Errorf("got %g, want 0", got)
	}
}
