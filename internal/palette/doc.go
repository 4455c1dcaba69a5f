// Package palette extracts small representative color palettes from sprite
// pixels with a modified median-cut quantizer, and scores how similar two
// palettes are.
//
// # Quantization
//
// Quantize builds a histogram over RGB cells reduced to Options.Bits bits per
// channel, ignoring pixels whose alpha is at or below Options.AlphaThreshold.
// A single ColorBox spanning the occupied cells is then split repeatedly:
//
//  1. While fewer than 0.75*Colors boxes exist, the box holding the most
//     pixels is split.
//  2. While fewer than Colors boxes exist, the box maximizing
//     count*volume is split.
//
// A box is cut across its longest channel at the cell where cumulative mass
// first exceeds half, nudged toward the side with less remaining extent and
// moved to the nearest occupied cell so that neither half is empty. Splitting
// stops early when no box can be split any further.
//
// # Similarity
//
// Two metrics compare palettes:
//   - WeightedIntersection: mass-weighted sum of box-to-color gaps over all
//     cross pairs. Cheap.
//   - WassersteinDistance: Earth Mover's Distance between the two palettes,
//     with cost growing with the squared distance of box averages and with
//     how disjoint the boxes are. Exact, solved by package emd.
//
// Both are symmetric in their arguments, and WassersteinDistance is zero for
// a palette compared with itself.
// A palette with no boxes (a fully transparent sprite) is at distance zero
// from every palette.
package palette
