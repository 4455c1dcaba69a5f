package bitmap

import "math"

// Downsample resizes source to width x height with an area-weighted box filter.
//
// Each target pixel covers the source rectangle
// [x*scaleX, (x+1)*scaleX) x [y*scaleY, (y+1)*scaleY) where
// scaleX = srcWidth/width and scaleY = srcHeight/height. Every source pixel
// overlapping that rectangle contributes its channels weighted by the
// fractional overlap area; the sum is divided by the covered area and rounded.
// Non-integer scale factors are handled exactly.
//
// The result is a fresh, untrimmed buffer: Size and Frame describe the new
// dimensions. Dimensions below one pixel are raised to one.
func Downsample(source *Bitmap, width, height int) *Bitmap {
	width = max(1, width)
	height = max(1, height)
	target := New(source.Name, width, height)
	if source.Width == 0 || source.Height == 0 {
		return target
	}

	scaleX := float64(source.Width) / float64(width)
	scaleY := float64(source.Height) / float64(height)

	for y := 0; y < height; y++ {
		top := float64(y) * scaleY
		bottom := float64(y+1) * scaleY
		for x := 0; x < width; x++ {
			left := float64(x) * scaleX
			right := float64(x+1) * scaleX

			var sum [4]float64
			var covered float64
			for sy := int(top); float64(sy) < bottom && sy < source.Height; sy++ {
				dy := math.Min(float64(sy+1), bottom) - math.Max(float64(sy), top)
				for sx := int(left); float64(sx) < right && sx < source.Width; sx++ {
					area := (math.Min(float64(sx+1), right) - math.Max(float64(sx), left)) * dy
					if area <= 0 {
						continue
					}
					si := source.at(sx, sy)
					sum[0] += area * float64(source.Pix[si])
					sum[1] += area * float64(source.Pix[si+1])
					sum[2] += area * float64(source.Pix[si+2])
					sum[3] += area * float64(source.Pix[si+3])
					covered += area
				}
			}
			if covered == 0 {
				continue
			}

			ti := target.at(x, y)
			for c := 0; c < 4; c++ {
				target.Pix[ti+c] = uint8(math.Min(255, math.Round(sum[c]/covered)))
			}
		}
	}
	return target
}
