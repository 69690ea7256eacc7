package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/parallel"
)

// ITU-R BT.601 luma weights.
const (
	LumaRed   = 0.299
	LumaGreen = 0.587
	LumaBlue  = 0.114
)

// ContrastOptions configures NormalizeContrast.
type ContrastOptions struct {
	// TilesX and TilesY are the number of equalization tiles along each axis.
	TilesX int
	TilesY int

	// ClipLimit is the histogram clip level as a fraction of the tile area.
	// Bins above it are cut and the excess is spread over all bins.
	ClipLimit float64

	// Bins is the number of histogram bins per tile (at most 256).
	Bins int

	// SmoothingWidth and SmoothingHeight are the box filter window size.
	SmoothingWidth  int
	SmoothingHeight int
}

// NormalizeContrast converts a color image to a smoothed, contrast-equalized
// luminance field in [0,1].
//
// The steps are:
//
//  1. Luminance: 0.299*R + 0.587*G + 0.114*B, rounded to 8 bits
//  2. Adaptive equalization (CLAHE) over TilesX x TilesY tiles
//  3. Box average over a SmoothingWidth x SmoothingHeight window
//
// The output has the same dimensions as img.
func NormalizeContrast(img image.Image, opts ContrastOptions) *Field {
	gray := Luminance(img)
	equalized := EqualizeAdaptive(gray, opts)
	return BoxBlur(equalized, opts.SmoothingWidth, opts.SmoothingHeight)
}

// Luminance converts img to 8-bit luma using BT.601 weights.
func Luminance(img image.Image) *image.Gray {
	rgba := effect.GrayscaleWithWeights(img, LumaRed, LumaGreen, LumaBlue)
	bounds := rgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+bounds.Dx()*4]
		dst := gray.Pix[y*gray.Stride : y*gray.Stride+bounds.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return gray
}

// EqualizeAdaptive applies contrast limited adaptive histogram equalization
// to an 8-bit image and returns the result scaled to [0,1].
//
// Every tile gets its own lookup table built from its clipped cumulative
// histogram. Each output pixel is a bilinear blend of the lookup tables of
// the four tiles whose centers surround it; pixels outside the outermost
// tile centers use the nearest tiles only.
func EqualizeAdaptive(gray *image.Gray, opts ContrastOptions) *Field {
	width := gray.Rect.Dx()
	height := gray.Rect.Dy()
	out := NewField(width, height)
	if width == 0 || height == 0 {
		return out
	}

	tilesX := clamp(opts.TilesX, 1, width)
	tilesY := clamp(opts.TilesY, 1, height)
	bins := clamp(opts.Bins, 1, 256)

	luts := make([][]float64, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		y0 := ty * height / tilesY
		y1 := (ty + 1) * height / tilesY
		for tx := 0; tx < tilesX; tx++ {
			x0 := tx * width / tilesX
			x1 := (tx + 1) * width / tilesX
			luts[ty*tilesX+tx] = tileLUT(gray, x0, y0, x1, y1, bins, opts.ClipLimit)
		}
	}

	tileW := float64(width) / float64(tilesX)
	tileH := float64(height) / float64(tilesY)

	// Column interpolation terms are shared by every row.
	colLo := make([]int, width)
	colHi := make([]int, width)
	colW := make([]float64, width)
	for x := 0; x < width; x++ {
		colLo[x], colHi[x], colW[x] = tileNeighbors(x, tileW, tilesX)
	}

	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			rowLo, rowHi, ay := tileNeighbors(y, tileH, tilesY)
			off := gray.PixOffset(gray.Rect.Min.X, gray.Rect.Min.Y+y)
			row := gray.Pix[off : off+width]
			for x := 0; x < width; x++ {
				bin := int(row[x]) * bins / 256
				ax := colW[x]
				top := (1-ax)*luts[rowLo*tilesX+colLo[x]][bin] + ax*luts[rowLo*tilesX+colHi[x]][bin]
				bottom := (1-ax)*luts[rowHi*tilesX+colLo[x]][bin] + ax*luts[rowHi*tilesX+colHi[x]][bin]
				out.Pix[y*width+x] = (1-ay)*top + ay*bottom
			}
		}
	})

	return out
}

// tileNeighbors returns the two tile indices whose centers bracket pixel i
// along one axis, and the weight of the second one.
func tileNeighbors(i int, tileSize float64, tiles int) (lo, hi int, weight float64) {
	pos := (float64(i)+0.5)/tileSize - 0.5
	lo = int(math.Floor(pos))
	weight = pos - float64(lo)
	hi = lo + 1
	if lo < 0 {
		lo, hi, weight = 0, 0, 0
	}
	if hi > tiles-1 {
		lo, hi, weight = tiles-1, tiles-1, 0
	}
	return lo, hi, weight
}

// tileLUT builds the equalization lookup table of one tile.
func tileLUT(gray *image.Gray, x0, y0, x1, y1, bins int, clipLimit float64) []float64 {
	hist := histogram.Histogram{Bins: make([]int, bins)}
	for y := y0; y < y1; y++ {
		row := gray.Pix[gray.PixOffset(gray.Rect.Min.X, gray.Rect.Min.Y+y):]
		for x := x0; x < x1; x++ {
			hist.Bins[int(row[x])*bins/256]++
		}
	}

	area := (x1 - x0) * (y1 - y0)
	limit := int(clipLimit * float64(area))
	if limit < 1 {
		limit = 1
	}
	clipHistogram(hist.Bins, limit)

	cdf := hist.Cumulative()
	lut := make([]float64, bins)
	for i, c := range cdf.Bins {
		lut[i] = float64(c) / float64(area)
	}
	return lut
}

// clipHistogram cuts every bin at limit and spreads the removed counts evenly
// over all bins. The leftover that does not divide evenly is handed out one
// count at a time at a regular stride, so the total is preserved.
func clipHistogram(bins []int, limit int) {
	excess := 0
	for i, c := range bins {
		if c > limit {
			excess += c - limit
			bins[i] = limit
		}
	}
	if excess == 0 {
		return
	}

	n := len(bins)
	batch := excess / n
	residual := excess - batch*n
	for i := range bins {
		bins[i] += batch
	}
	if residual > 0 {
		step := n / residual
		if step < 1 {
			step = 1
		}
		for i := 0; i < n && residual > 0; i += step {
			bins[i]++
			residual--
		}
	}
}

// BoxBlur averages f over a kw x kh window anchored at its center
// (offsets -k/2 .. k-1-k/2 on each axis). Borders are mirrored without
// repeating the edge pixel.
func BoxBlur(f *Field, kw, kh int) *Field {
	if kw <= 1 && kh <= 1 {
		out := NewField(f.Width, f.Height)
		copy(out.Pix, f.Pix)
		return out
	}
	return boxVertical(boxHorizontal(f, kw), kh)
}

func boxHorizontal(f *Field, k int) *Field {
	out := NewField(f.Width, f.Height)
	if k < 1 {
		k = 1
	}
	anchor := k / 2
	scale := 1 / float64(k)
	parallel.Line(f.Height, func(start, end int) {
		for y := start; y < end; y++ {
			row := f.Pix[y*f.Width : (y+1)*f.Width]
			for x := 0; x < f.Width; x++ {
				var sum float64
				for i := -anchor; i < k-anchor; i++ {
					sum += row[reflect101(x+i, f.Width)]
				}
				out.Pix[y*f.Width+x] = sum * scale
			}
		}
	})
	return out
}

func boxVertical(f *Field, k int) *Field {
	out := NewField(f.Width, f.Height)
	if k < 1 {
		k = 1
	}
	anchor := k / 2
	scale := 1 / float64(k)
	parallel.Line(f.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < f.Width; x++ {
				var sum float64
				for i := -anchor; i < k-anchor; i++ {
					sum += f.Pix[reflect101(y+i, f.Height)*f.Width+x]
				}
				out.Pix[y*f.Width+x] = sum * scale
			}
		}
	})
	return out
}
