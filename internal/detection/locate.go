package detection

import (
	"errors"
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/gem-preprocess/internal/imaging"
)

// ErrEmptyMask is returned when a measurement needs at least one foreground
// pixel and the mask has none.
var ErrEmptyMask = errors.New("mask has no foreground pixels")

// Centroid is the mean position of the foreground pixels of a mask.
type Centroid struct {
	Row float64 `json:"row"`
	Col float64 `json:"col"`
}

// CropBorder removes n pixels from every edge of m.
func CropBorder(m *imaging.Mask, n int) *imaging.Mask {
	if 2*n >= m.Width || 2*n >= m.Height {
		return imaging.NewMask(0, 0)
	}
	return m.Crop(image.Rect(n, n, m.Width-n, m.Height-n))
}

// Pad appends bottom background rows and right background columns to m.
func Pad(m *imaging.Mask, bottom, right int) *imaging.Mask {
	out := imaging.NewMask(m.Width+right, m.Height+bottom)
	for y := 0; y < m.Height; y++ {
		copy(out.Pix[y*out.Width:y*out.Width+m.Width], m.Pix[y*m.Width:(y+1)*m.Width])
	}
	return out
}

// CentroidOf returns the area-weighted center of the foreground of m.
//
// Returns ErrEmptyMask if m has no foreground pixels; the centroid of an
// empty region is undefined.
func CentroidOf(m *imaging.Mask) (Centroid, error) {
	rowCounts := make([]float64, m.Height)
	colCounts := make([]float64, m.Width)
	total := 0
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Pix[y*m.Width+x] {
				rowCounts[y]++
				colCounts[x]++
				total++
			}
		}
	}
	if total == 0 {
		return Centroid{}, ErrEmptyMask
	}

	return Centroid{
		Row: stat.Mean(indices(m.Height), rowCounts),
		Col: stat.Mean(indices(m.Width), colCounts),
	}, nil
}

func indices(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// CenteredWindow returns the width x height rectangle whose top-left corner is
// (round(c.Col) - width/2, round(c.Row) - height/2).
//
// Rounding is half-to-even. The window is not clamped and may start at
// negative coordinates; see WindowFits and ClampWindow.
func CenteredWindow(c Centroid, width, height int) image.Rectangle {
	x0 := int(math.RoundToEven(c.Col)) - width/2
	y0 := int(math.RoundToEven(c.Row)) - height/2
	return image.Rect(x0, y0, x0+width, y0+height)
}

// WindowFits reports whether window lies entirely inside canvas.
func WindowFits(window, canvas image.Rectangle) bool {
	return window.In(canvas)
}

// ClampWindow shifts window by the smallest amount that places it inside
// canvas, keeping its size. A window larger than canvas is aligned to the
// canvas top-left corner.
func ClampWindow(window, canvas image.Rectangle) image.Rectangle {
	shift := image.Point{}
	if window.Max.X > canvas.Max.X {
		shift.X = canvas.Max.X - window.Max.X
	}
	if window.Max.Y > canvas.Max.Y {
		shift.Y = canvas.Max.Y - window.Max.Y
	}
	if window.Min.X+shift.X < canvas.Min.X {
		shift.X = canvas.Min.X - window.Min.X
	}
	if window.Min.Y+shift.Y < canvas.Min.Y {
		shift.Y = canvas.Min.Y - window.Min.Y
	}
	return window.Add(shift)
}
