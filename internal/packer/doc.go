// Package packer assigns rectangles to pages with a free-rectangle guillotine
// packer.
//
// Each page keeps a list of free rectangles, starting with the whole page
// inside its border. Items are packed longest side first. For every item the
// pages are tried in creation order; within a page every free rectangle is
// scored by a Heuristic for the item as-is and, if rotation is allowed, turned
// a quarter. The lowest score wins. After a placement every free rectangle the
// item overlaps is replaced by the strips left above, below, left and right of
// it, and free rectangles contained in others are pruned.
//
// # Padding and Border
//
// Items occupy width+Padding by height+Padding internally, and the first free
// rectangle is Padding larger than the area inside the border, so the padding
// only ever appears between items. Page bounds track the furthest placed edge
// plus Border, rounded up to a power of two when Pow2 is set.
//
// # Grouping
//
// An optional Grouping adds an affinity gate: a page that already holds items
// only accepts a new one when its Penalty is within
//
//	Threshold * max(1, Diminish * len(page.Placements))
//
// Geometry is checked first; the penalty is only computed for pages that
// have room. An item that fits no existing page opens a new one, and an item
// too large for an empty page fails with SIZE_EXCEEDED.
package packer
