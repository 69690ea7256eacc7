package imaging

import "image"

// Field is a single-channel floating point raster stored row-major.
//
// Fields carry intermediate numeric results of the pipeline (equalized
// luminance, gradient responses, magnitudes). Index (x, y) lives at
// Pix[y*Width+x].
type Field struct {
	Width  int
	Height int
	Pix    []float64
}

// NewField allocates a zeroed field of the given size.
func NewField(width, height int) *Field {
	return &Field{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// At returns the value at (x, y). No bounds checking is performed.
func (f *Field) At(x, y int) float64 {
	return f.Pix[y*f.Width+x]
}

// Set stores v at (x, y). No bounds checking is performed.
func (f *Field) Set(x, y int, v float64) {
	f.Pix[y*f.Width+x] = v
}

// Mask is a binary raster stored row-major. True marks a foreground pixel.
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

// NewMask allocates an all-background mask of the given size.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]bool, width*height),
	}
}

// At reports whether (x, y) is foreground. Coordinates outside the mask are
// background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set marks (x, y) as foreground or background. No bounds checking is performed.
func (m *Mask) Set(x, y int, v bool) {
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Empty reports whether the mask has no foreground pixels.
func (m *Mask) Empty() bool {
	for _, v := range m.Pix {
		if v {
			return false
		}
	}
	return true
}

// Image renders the mask as a grayscale image, foreground white (255).
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v {
			img.Pix[i] = 255
		}
	}
	return img
}

// FieldImage renders a [0,1] field as an 8-bit grayscale image. Values
// outside the range are clamped.
func FieldImage(f *Field) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	for i, v := range f.Pix {
		switch {
		case v <= 0:
			img.Pix[i] = 0
		case v >= 1:
			img.Pix[i] = 255
		default:
			img.Pix[i] = uint8(v*255 + 0.5)
		}
	}
	return img
}

// reflect101 maps an out-of-range index into [0, n) by mirroring around the
// edge pixels without repeating them (…, 2, 1 | 0, 1, 2, … n-2, n-1 | n-2, …).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
