package codec

import (
	"bytes"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/spritepack/internal/bitmap"
	"github.com/ironsheep/spritepack/internal/errors"
)

// Format is an output image format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpg"
)

// PixelFormat returns the manifest pixel format tag for f.
func (f Format) PixelFormat() string {
	if f == JPEG {
		return "RGB888"
	}
	return "RGBA8888"
}

// IsImage reports whether name has a decodable raster extension.
func IsImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".webp" {
		return true
	}
	_, err := imaging.FormatFromExtension(ext)
	return err == nil
}

// Decode converts encoded image bytes into a bitmap named name.
func Decode(name string, data []byte) (*bitmap.Bitmap, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to decode %s", name)
	}
	return bitmap.FromNRGBA(name, imaging.Clone(img)), nil
}

// Encode writes b as PNG or JPEG. quality is used for JPEG only, in [1, 100].
func Encode(b *bitmap.Bitmap, format Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case PNG:
		err = imaging.Encode(&buf, b.Image(), imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case JPEG:
		err = imaging.Encode(&buf, b.Image(), imaging.JPEG, imaging.JPEGQuality(quality))
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "unsupported output format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExternalTool, err, "failed to encode %s", b.Name)
	}
	return buf.Bytes(), nil
}
