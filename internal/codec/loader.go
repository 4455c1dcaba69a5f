package codec

import (
	"fmt"
	"os"
	"sync"

	"github.com/ironsheep/spritepack/internal/bitmap"
)

// ImageCache provides thread-safe caching of decoded bitmaps to avoid
// redundant disk reads and decodes.
//
// Bitmaps are keyed by the exact path string given to Load; different paths
// to the same file produce separate entries. Cached bitmaps remain in memory
// until removed with Evict or Clear.
//
// # Example Usage
//
//	cache := codec.NewImageCache()
//	sprite, err := cache.Load("/path/to/sprite.png")
//	if err != nil {
//	    return err
//	}
//	trimmed := bitmap.Trim(sprite, 0) // transforms never modify the cached copy
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*bitmap.Bitmap
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*bitmap.Bitmap),
	}
}

// Load returns the cached bitmap for path, reading and decoding the file on
// first use. The bitmap is named after path.
//
// Parameters:
//   - path: File path to a PNG, JPEG, GIF, BMP, TIFF or WebP image. The exact
//     string is the cache key.
//
// Returns:
//   - *bitmap.Bitmap: The decoded image, shared by later calls. Callers must
//     not modify it.
//   - error: Non-nil if the file cannot be read or decoded.
//
// # Errors
//
//   - Returns a wrapped fs error if the file does not exist or cannot be read
//   - Returns INVALID_INPUT if the data is not a supported image
func (c *ImageCache) Load(path string) (*bitmap.Bitmap, error) {
	c.mu.RLock()
	if b, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return b, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	b, err := Decode(path, data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = b
	c.mu.Unlock()

	return b, nil
}

// Len returns the number of cached bitmaps.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all bitmaps from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*bitmap.Bitmap)
	c.mu.Unlock()
}

// Evict removes the bitmap loaded from path. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}
