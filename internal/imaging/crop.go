package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Interpolation names a resampling filter for the final resize.
type Interpolation string

// Supported interpolation modes.
const (
	Nearest    Interpolation = "nearest"
	Box        Interpolation = "box"
	Linear     Interpolation = "linear"
	CatmullRom Interpolation = "catmullrom"
	Lanczos    Interpolation = "lanczos"
)

// Filter returns the resample filter for the mode.
func (i Interpolation) Filter() (imaging.ResampleFilter, error) {
	switch i {
	case Nearest, "":
		return imaging.NearestNeighbor, nil
	case Box:
		return imaging.Box, nil
	case Linear:
		return imaging.Linear, nil
	case CatmullRom:
		return imaging.CatmullRom, nil
	case Lanczos:
		return imaging.Lanczos, nil
	default:
		return imaging.ResampleFilter{}, fmt.Errorf("unknown interpolation: %s", i)
	}
}

// opaqueBlack is the fill of padded and suppressed pixels.
var opaqueBlack = color.NRGBA{0, 0, 0, 255}

// CropAndPad removes border pixels from every edge of img and appends pad
// black pixels along the bottom and the right edge.
//
// The result has size (w - 2*border + pad) x (h - 2*border + pad) and its
// origin at (0,0); pixel (x, y) of the result is pixel
// (x + border, y + border) of img.
func CropAndPad(img image.Image, border, pad int) (*image.NRGBA, error) {
	bounds := img.Bounds()
	inner := image.Rect(
		bounds.Min.X+border, bounds.Min.Y+border,
		bounds.Max.X-border, bounds.Max.Y-border,
	)
	if inner.Empty() {
		return nil, fmt.Errorf("border %d leaves nothing of a %dx%d image", border, bounds.Dx(), bounds.Dy())
	}

	cropped := imaging.Crop(img, inner)
	canvas := imaging.New(inner.Dx()+pad, inner.Dy()+pad, opaqueBlack)
	return imaging.Paste(canvas, cropped, image.Pt(0, 0)), nil
}

// CompositeOptions configures Composite.
type CompositeOptions struct {
	Width         int
	Height        int
	Interpolation Interpolation
}

// Composite cuts window out of canvas and hull, forces every pixel outside
// the hull to opaque black and resizes the result.
//
// Parameters:
//   - canvas: Border-cropped, padded color image (see CropAndPad).
//   - hull: Foreground mask with the same size as canvas.
//   - window: Region to keep, in canvas coordinates. Must lie inside canvas.
//   - opts: Output size and interpolation.
//
// Returns:
//   - *image.NRGBA: opts.Width x opts.Height image, background exactly (0,0,0).
//   - error: Non-nil if the window leaves the canvas or the sizes disagree.
//
// With nearest-neighbour interpolation every output pixel is a copy of an
// input pixel, so background stays zero by construction. Other filters blend
// across the hull boundary; the hull is then resized with nearest-neighbour
// and applied a second time.
func Composite(canvas image.Image, hull *Mask, window image.Rectangle, opts CompositeOptions) (*image.NRGBA, error) {
	bounds := canvas.Bounds()
	if bounds.Dx() != hull.Width || bounds.Dy() != hull.Height {
		return nil, fmt.Errorf("hull %dx%d does not match canvas %dx%d",
			hull.Width, hull.Height, bounds.Dx(), bounds.Dy())
	}
	if !window.In(image.Rect(0, 0, bounds.Dx(), bounds.Dy())) {
		return nil, fmt.Errorf("window (%d,%d)-(%d,%d) outside canvas %dx%d",
			window.Min.X, window.Min.Y, window.Max.X, window.Max.Y, bounds.Dx(), bounds.Dy())
	}
	filter, err := opts.Interpolation.Filter()
	if err != nil {
		return nil, err
	}

	segmented := imaging.Crop(canvas, window.Add(bounds.Min))
	windowMask := hull.Crop(window)
	Suppress(segmented, windowMask)

	if opts.Width == window.Dx() && opts.Height == window.Dy() {
		return segmented, nil
	}

	resized := imaging.Resize(segmented, opts.Width, opts.Height, filter)
	if opts.Interpolation != Nearest && opts.Interpolation != "" {
		scaled := imaging.Resize(windowMask.Image(), opts.Width, opts.Height, imaging.NearestNeighbor)
		for i := 0; i < len(scaled.Pix); i += 4 {
			if scaled.Pix[i] == 0 {
				resized.Pix[i], resized.Pix[i+1], resized.Pix[i+2] = 0, 0, 0
				resized.Pix[i+3] = 255
			}
		}
	}
	return resized, nil
}

// Suppress sets every pixel of img that is background in mask to opaque
// black. img and mask must have the same size; img must have its origin at
// (0,0).
func Suppress(img *image.NRGBA, mask *Mask) {
	for y := 0; y < mask.Height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+mask.Width*4]
		for x := 0; x < mask.Width; x++ {
			if mask.Pix[y*mask.Width+x] {
				continue
			}
			row[x*4+0] = 0
			row[x*4+1] = 0
			row[x*4+2] = 0
			row[x*4+3] = 255
		}
	}
}

// Crop returns the part of m inside r as a new mask with origin (0,0).
// Pixels of r that fall outside m are background.
func (m *Mask) Crop(r image.Rectangle) *Mask {
	out := NewMask(r.Dx(), r.Dy())
	for y := 0; y < out.Height; y++ {
		sy := y + r.Min.Y
		if sy < 0 || sy >= m.Height {
			continue
		}
		for x := 0; x < out.Width; x++ {
			sx := x + r.Min.X
			if sx < 0 || sx >= m.Width {
				continue
			}
			out.Pix[y*out.Width+x] = m.Pix[sy*m.Width+sx]
		}
	}
	return out
}

// Thumbnail scales img to width x height with a box filter.
func Thumbnail(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Box)
}

// Clone returns an independent NRGBA copy of img.
func Clone(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}
