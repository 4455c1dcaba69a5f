// Package codec converts between encoded image bytes and bitmap.Bitmap values
// and wraps the external lossy PNG compressor.
//
// # Decoding
//
// Decode accepts any format registered with the standard image package plus
// WebP. Images are decoded through github.com/disintegration/imaging and
// converted to non-premultiplied 8-bit RGBA, so alpha survives exactly for
// 8-bit sources. IsImage tells raster inputs apart from other files by
// extension:
//
//	.png .jpg .jpeg .gif .bmp .tif .tiff .webp
//
// # Encoding
//
// Encode writes PNG (best compression) or JPEG at a given quality. Pages with
// any transparency must be written as PNG; opaque pages may use JPEG.
//
// # Compression
//
// Pngquant runs the pngquant binary with the PNG on stdin and reads the
// reduced PNG from stdout. A non-zero exit status or any output on stderr is
// an EXTERNAL_TOOL error carrying the captured text; the uncompressed bytes
// are never passed through silently.
//
// # Caching
//
// ImageCache keeps decoded bitmaps keyed by path for long-running callers such
// as the MCP server. It is safe for concurrent use. Cached bitmaps are shared:
// callers must treat them as read-only, which every transform in package
// bitmap already does.
package codec
