package imaging

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// DefaultEdgeThreshold is the gradient magnitude, on a [0,1] field, at or
// above which a pixel is an edge pixel. It is tuned against the output range
// of NormalizeContrast; changing the equalization or smoothing changes the
// right value.
const DefaultEdgeThreshold = 0.033

// Kernel3 is a 3x3 correlation kernel indexed [row][col].
type Kernel3 [3][3]float64

// SobelVertical is the vertical derivative kernel (rows above minus rows below).
var SobelVertical = Kernel3{
	{1, 2, 1},
	{0, 0, 0},
	{-1, -2, -1},
}

// Transpose returns the kernel mirrored across its main diagonal.
func (k Kernel3) Transpose() Kernel3 {
	var t Kernel3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			t[c][r] = k[r][c]
		}
	}
	return t
}

// Scale returns the kernel with every coefficient divided by d.
func (k Kernel3) Scale(d float64) Kernel3 {
	var s Kernel3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			s[r][c] = k[r][c] / d
		}
	}
	return s
}

// EdgeOptions configures DetectEdges.
type EdgeOptions struct {
	// Kernel is the vertical derivative kernel; its transpose is used for the
	// horizontal derivative.
	Kernel Kernel3

	// Scale divides every kernel coefficient.
	Scale float64

	// Threshold is the minimum magnitude of an edge pixel.
	Threshold float64
}

// EdgeResult holds the directional responses, their magnitude and the
// binarized edge mask. All rasters have the size of the input field.
type EdgeResult struct {
	Vertical   *Field
	Horizontal *Field
	Magnitude  *Field
	Mask       *Mask
}

// DetectEdges computes directional gradients of f and binarizes their
// magnitude.
//
// Parameters:
//   - f: Smoothed luminance field, typically the output of NormalizeContrast.
//   - opts: Kernel, kernel scale and threshold.
//
// # Algorithm
//
//  1. Gradient computation: correlate f with Kernel/Scale (dI/dy) and its
//     transpose (dI/dx). Border pixels mirror their neighbours.
//
//  2. Magnitude: sqrt(Gx² + Gy²)
//
//  3. Binarization: magnitude >= Threshold marks an edge pixel
//
// Unlike a Canny detector there is no non-maximum suppression; edges stay as
// wide as the smoothed intensity ramp, which the morphological opening that
// follows relies on.
func DetectEdges(f *Field, opts EdgeOptions) *EdgeResult {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	vk := opts.Kernel.Scale(scale)
	hk := vk.Transpose()

	vertical := Correlate3(f, vk)
	horizontal := Correlate3(f, hk)

	magnitude := NewField(f.Width, f.Height)
	mask := NewMask(f.Width, f.Height)
	for i := range magnitude.Pix {
		gy := vertical.Pix[i]
		gx := horizontal.Pix[i]
		m := math.Sqrt(gx*gx + gy*gy)
		magnitude.Pix[i] = m
		mask.Pix[i] = m >= opts.Threshold
	}

	return &EdgeResult{
		Vertical:   vertical,
		Horizontal: horizontal,
		Magnitude:  magnitude,
		Mask:       mask,
	}
}

// Correlate3 correlates f with a 3x3 kernel centered on each pixel.
// Out-of-range samples are mirrored without repeating the edge pixel.
func Correlate3(f *Field, k Kernel3) *Field {
	out := NewField(f.Width, f.Height)
	if f.Width == 0 || f.Height == 0 {
		return out
	}
	parallel.Line(f.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < f.Width; x++ {
				var sum float64
				for ky := -1; ky <= 1; ky++ {
					py := reflect101(y+ky, f.Height)
					for kx := -1; kx <= 1; kx++ {
						c := k[ky+1][kx+1]
						if c == 0 {
							continue
						}
						px := reflect101(x+kx, f.Width)
						sum += f.Pix[py*f.Width+px] * c
					}
				}
				out.Pix[y*f.Width+x] = sum
			}
		}
	})
	return out
}
