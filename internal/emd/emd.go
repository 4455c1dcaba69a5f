package emd

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/spritepack/internal/errors"
)

// epsilon absorbs floating-point noise in the optimality test.
const epsilon = 1e-12

// balanceTolerance is the relative mismatch allowed between total supply and
// total demand.
const balanceTolerance = 1e-9

// CostFunc returns the cost of moving one unit of mass from row u to column v.
type CostFunc func(u, v int) float64

// Result is an optimal transport plan.
type Result struct {
	// Distance is the total cost of the plan: sum of flow x cost over the basis.
	Distance float64

	// Flows[u][v] is the mass moved from row u to column v.
	Flows *mat.Dense
}

type nodeState uint8

const (
	undiscovered nodeState = iota
	discovered
	completed
)

// entry is one basic variable of the transport plan. Entries sharing a row
// or a column are linked through adj.
type entry struct {
	row, col int
	flow     float64
	adj      []int // slots sharing row or col
	cur      int   // next adj position to explore
	prev     int   // parent slot in the current walk, -1 for none
	state    nodeState
}

// Solver computes optimal transport between rows and columns under a fixed
// cost function. A Solver is not safe for concurrent use.
type Solver struct {
	rows, cols int
	cost       []float64 // rows*cols, row-major

	basis  []entry
	active []bool
	free   int // the one slot not in the basis

	dualU, dualV       []float64
	visitedU, visitedV []bool
	inBasis            []bool
}

// New creates a solver for rows supply points and cols demand points.
// The cost function is evaluated once per pair and cached.
func New(rows, cols int, cost CostFunc) *Solver {
	s := &Solver{
		rows:     rows,
		cols:     cols,
		cost:     make([]float64, rows*cols),
		dualU:    make([]float64, rows),
		dualV:    make([]float64, cols),
		visitedU: make([]bool, rows),
		visitedV: make([]bool, cols),
		inBasis:  make([]bool, rows*cols),
	}
	for u := 0; u < rows; u++ {
		for v := 0; v < cols; v++ {
			s.cost[u*cols+v] = cost(u, v)
		}
	}
	return s
}

// Distance returns the minimum transport cost between weightsU and weightsV.
func (s *Solver) Distance(weightsU, weightsV []float64) (float64, error) {
	if err := s.solve(weightsU, weightsV); err != nil {
		return 0, err
	}
	return s.total(), nil
}

// Solve returns the minimum transport cost together with the full flow matrix.
//
// Parameters:
//   - weightsU: Supply at each row, one entry per row.
//   - weightsV: Demand at each column, one entry per column.
//
// The totals must agree within a relative tolerance.
//
// # Errors
//
//   - INVALID_CONFIGURATION if a weights slice has the wrong length, holds a
//     negative value, or supply and demand do not balance
//   - SOLVER_INVARIANT if the network simplex loses its basis tree
func (s *Solver) Solve(weightsU, weightsV []float64) (*Result, error) {
	if err := s.solve(weightsU, weightsV); err != nil {
		return nil, err
	}
	flows := mat.NewDense(max(1, s.rows), max(1, s.cols), nil)
	for i := range s.basis {
		if s.active[i] {
			flows.Set(s.basis[i].row, s.basis[i].col, s.basis[i].flow)
		}
	}
	return &Result{Distance: s.total(), Flows: flows}, nil
}

func (s *Solver) total() float64 {
	var distance float64
	for i := range s.basis {
		if s.active[i] {
			e := &s.basis[i]
			distance += e.flow * s.costOf(e.row, e.col)
		}
	}
	return distance
}

func (s *Solver) costOf(u, v int) float64 {
	return s.cost[u*s.cols+v]
}

func (s *Solver) solve(weightsU, weightsV []float64) error {
	if len(weightsU) != s.rows || len(weightsV) != s.cols {
		return errors.New(errors.ErrCodeInvalidConfiguration,
			"weights length %d/%d does not match solver size %d/%d", len(weightsU), len(weightsV), s.rows, s.cols)
	}
	for _, w := range slices.Concat(weightsU, weightsV) {
		if w < 0 || math.IsNaN(w) {
			return errors.New(errors.ErrCodeInvalidConfiguration, "transport weights must be non-negative, got %v", w)
		}
	}
	supply, demand := floats.Sum(weightsU), floats.Sum(weightsV)
	if math.Abs(supply-demand) > balanceTolerance*math.Max(1, math.Max(supply, demand)) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "unbalanced transport problem: supply %g, demand %g", supply, demand)
	}

	s.basis = make([]entry, s.rows+s.cols)
	s.active = make([]bool, s.rows+s.cols)
	if s.rows == 0 || s.cols == 0 {
		return nil
	}
	s.initializeFlow(slices.Clone(weightsU), slices.Clone(weightsV))

	maxPivots := 1000 + 50*s.rows*s.cols
	for pivots := 0; ; pivots++ {
		if err := s.price(); err != nil {
			return err
		}
		u, v := s.enteringPair()
		if u < 0 {
			return nil
		}
		if pivots >= maxPivots {
			return errors.New(errors.ErrCodeSolverInvariant, "no optimal basis after %d pivots", pivots)
		}
		if err := s.pivot(u, v); err != nil {
			return err
		}
	}
}

// initializeFlow builds the starting basis with the Northwest-Corner rule.
func (s *Solver) initializeFlow(weightsU, weightsV []float64) {
	u, v, i := 0, 0, 0
	for {
		if u == s.rows-1 {
			for ; v < s.cols; v++ {
				s.insert(i, u, v, weightsV[v])
				i++
			}
			break
		}
		if v == s.cols-1 {
			for ; u < s.rows; u++ {
				s.insert(i, u, v, weightsU[u])
				i++
			}
			break
		}
		if weightsU[u] <= weightsV[v] {
			s.insert(i, u, v, weightsU[u])
			weightsV[v] -= weightsU[u]
			u++
		} else {
			s.insert(i, u, v, weightsV[v])
			weightsU[u] -= weightsV[v]
			v++
		}
		i++
	}
	s.free = i
}

// insert places a new basic entry in slot and links it to every active entry
// sharing its row or column.
func (s *Solver) insert(slot, row, col int, flow float64) {
	s.basis[slot] = entry{row: row, col: col, flow: flow, prev: -1}
	for i := range s.basis {
		if !s.active[i] || i == slot {
			continue
		}
		if s.basis[i].row == row || s.basis[i].col == col {
			s.basis[i].adj = append(s.basis[i].adj, slot)
			s.basis[slot].adj = append(s.basis[slot].adj, i)
		}
	}
	s.active[slot] = true
}

// remove unlinks slot from the basis; it becomes the free slot.
func (s *Solver) remove(slot int) {
	for _, j := range s.basis[slot].adj {
		adj := s.basis[j].adj
		if k := slices.Index(adj, slot); k >= 0 {
			s.basis[j].adj = slices.Delete(adj, k, k+1)
		}
	}
	s.basis[slot] = entry{prev: -1}
	s.active[slot] = false
	s.free = slot
}

func (s *Solver) resetTraversal() {
	for i := range s.basis {
		if s.active[i] {
			s.basis[i].cur = 0
			s.basis[i].prev = -1
			s.basis[i].state = undiscovered
		}
	}
}

// price walks the basis tree and assigns dual potentials.
func (s *Solver) price() error {
	clear(s.visitedU)
	clear(s.visitedV)
	s.resetTraversal()

	root := slices.Index(s.active, true)
	s.dualU[s.basis[root].row] = 0
	s.visitedU[s.basis[root].row] = true

	node := root
	for node >= 0 {
		e := &s.basis[node]
		if e.state == undiscovered {
			e.state = discovered
			c := s.costOf(e.row, e.col)
			switch {
			case s.visitedU[e.row]:
				s.dualV[e.col] = c - s.dualU[e.row]
				s.visitedV[e.col] = true
			case s.visitedV[e.col]:
				s.dualU[e.row] = c - s.dualV[e.col]
				s.visitedU[e.row] = true
			default:
				return errors.New(errors.ErrCodeSolverInvariant, "basis entry (%d,%d) not adjacent to the tree", e.row, e.col)
			}
		}

		next := -1
		for e.cur < len(e.adj) {
			a := e.adj[e.cur]
			e.cur++
			if s.basis[a].state == undiscovered {
				next = a
				break
			}
		}
		if next < 0 {
			e.state = completed
			node = e.prev
			continue
		}
		s.basis[next].prev = node
		node = next
	}
	return nil
}

// enteringPair returns the non-basic pair with the most negative reduced
// cost, or (-1, -1) when the basis is optimal.
func (s *Solver) enteringPair() (int, int) {
	clear(s.inBasis)
	for i := range s.basis {
		if s.active[i] {
			s.inBasis[s.basis[i].row*s.cols+s.basis[i].col] = true
		}
	}

	minU, minV := -1, -1
	var minDelta float64
	for u := 0; u < s.rows; u++ {
		for v := 0; v < s.cols; v++ {
			if s.inBasis[u*s.cols+v] {
				continue
			}
			delta := s.costOf(u, v) - s.dualU[u] - s.dualV[v]
			if minU < 0 || delta < minDelta {
				minDelta = delta
				minU, minV = u, v
			}
		}
	}
	if minU < 0 || minDelta >= -epsilon {
		return -1, -1
	}
	return minU, minV
}

// pivot brings (u, v) into the basis, shifts flow around the cycle it closes
// and drops the first decreasing entry that reaches zero.
func (s *Solver) pivot(u, v int) error {
	root := s.free
	s.insert(root, u, v, 0)
	s.resetTraversal()

	node := root
	for {
		e := &s.basis[node]
		e.state = discovered

		next, closed := -1, false
		for e.cur < len(e.adj) {
			a := e.adj[e.cur]
			// Moves alternate between sharing a row and sharing a column.
			if e.prev >= 0 {
				p := &s.basis[e.prev]
				if p.row == s.basis[a].row || p.col == s.basis[a].col {
					e.cur++
					continue
				}
			}
			if a == root {
				closed = true
				break
			}
			e.cur++
			if s.basis[a].state == undiscovered {
				next = a
				break
			}
		}

		if closed {
			s.basis[root].prev = node
			break
		}
		if next < 0 {
			e.state = completed
			node = e.prev
			if node < 0 {
				return errors.New(errors.ErrCodeSolverInvariant, "no cycle through entering pair (%d,%d)", u, v)
			}
			continue
		}
		s.basis[next].prev = node
		node = next
	}

	leave, minFlow := -1, 0.0
	sign := -1
	for n := s.basis[root].prev; n != root; n = s.basis[n].prev {
		if sign < 0 && (leave < 0 || s.basis[n].flow < minFlow) {
			minFlow = s.basis[n].flow
			leave = n
		}
		sign = -sign
	}
	if leave < 0 {
		return errors.New(errors.ErrCodeSolverInvariant, "no leaving entry on cycle through (%d,%d)", u, v)
	}

	s.basis[root].flow = minFlow
	sign = -1
	for n := s.basis[root].prev; n != root; n = s.basis[n].prev {
		s.basis[n].flow += float64(sign) * minFlow
		sign = -sign
	}
	s.remove(leave)
	return nil
}
