// Package emd computes the Earth Mover's Distance (discrete Wasserstein
// metric) between two weighted point sets with the transportation simplex
// method.
//
// The caller supplies the number of supply rows and demand columns together
// with a cost function over (row, column) index pairs; the solver never looks
// at the points themselves. Row and column masses must be non-negative and
// sum to the same total; normalize them before calling.
//
// # Algorithm
//
//  1. Initialization: the Northwest-Corner rule builds a feasible basis of
//     rows+columns-1 entries forming a spanning tree over row and column nodes.
//  2. Pricing: a depth-first walk of the tree derives dual potentials so that
//     cost(u,v) = dualU[u] + dualV[v] on every basic entry.
//  3. Optimality: the non-basic pair with the most negative reduced cost
//     cost(u,v) - dualU[u] - dualV[v] enters the basis; if none is below
//     -1e-12 the basis is optimal.
//  4. Pivot: the entering entry closes a unique cycle in the tree. Flow is
//     shifted around the cycle by the smallest flow on its decreasing entries
//     and the first such entry to reach zero leaves the basis.
//
// # Storage
//
// Basis entries live in a fixed arena of rows+columns slots addressed by
// index. Each entry lists the slots sharing its row or column, and a cursor
// into that list lets the depth-first walks resume where they left off, so a
// walk costs O(tree size) per pivot.
//
// # Errors
//
// Losing the tree structure (an entry not reachable from its parent, or no
// cycle for an entering entry) cannot happen for balanced inputs and is
// reported as a SOLVER_INVARIANT error.
package emd
