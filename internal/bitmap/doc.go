// Package bitmap provides the raw RGBA8 pixel buffer used throughout the
// sprite atlas pipeline, together with the pure transforms applied to sprites
// before and after packing.
//
// A Bitmap owns a tightly packed, non-premultiplied RGBA grid of
// Width*Height*4 bytes plus the placement metadata needed to rebuild the
// sprite's original geometry after it has been trimmed and rotated:
//   - Size: the original, untrimmed dimensions (never changes across transforms)
//   - Frame: where the original canvas lies relative to this buffer
//   - Rotation: clockwise quarter-turns applied so far, modulo 4
//
// # Coordinate System
//
// Pixel coordinates are 0-based with the origin at the top-left corner,
// X increasing rightward and Y increasing downward. Rectangles are given as
// (x, y, width, height).
//
// # Canonical Orientation
//
// Frame is always recorded in the sprite's canonical (unrotated) orientation.
// Transforms that need an answer in the current orientation, such as which
// edges were trimmed, apply a fixed permutation derived from Rotation:
// canonical side s appears at current side (s + Rotation) mod 4, with sides
// numbered top, right, bottom, left.
//
// # Mutability
//
// Trim, Rotate and Downsample return new buffers and never modify their input.
// Trim returns its input unchanged when there is nothing to remove.
// Copy and Extrude write into an existing target; Extrude is the only
// transform that edits a page canvas in place.
package bitmap
