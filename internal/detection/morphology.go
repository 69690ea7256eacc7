package detection

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/gem-preprocess/internal/imaging"
)

// Disk returns the offsets of a disk-shaped structuring element: every
// (dx, dy) with dx² + dy² <= radius². A radius of 3 gives the 29-pixel disk
// inside a 7x7 square.
func Disk(radius int) []image.Point {
	if radius < 0 {
		return nil
	}
	offsets := make([]image.Point, 0, (2*radius+1)*(2*radius+1))
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				offsets = append(offsets, image.Point{X: dx, Y: dy})
			}
		}
	}
	return offsets
}

// Erode keeps a foreground pixel only if every in-bounds pixel under the
// structuring element is foreground. Offsets that fall outside the mask do
// not remove the pixel.
func Erode(m *imaging.Mask, element []image.Point) *imaging.Mask {
	out := imaging.NewMask(m.Width, m.Height)
	parallel.Line(m.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < m.Width; x++ {
				if !m.Pix[y*m.Width+x] {
					continue
				}
				keep := true
				for _, o := range element {
					px, py := x+o.X, y+o.Y
					if px < 0 || py < 0 || px >= m.Width || py >= m.Height {
						continue
					}
					if !m.Pix[py*m.Width+px] {
						keep = false
						break
					}
				}
				out.Pix[y*m.Width+x] = keep
			}
		}
	})
	return out
}

// Dilate marks every pixel within the structuring element of a foreground
// pixel as foreground.
//
// The element is assumed symmetric (true for Disk), so dilation can be
// computed per output pixel, which keeps each row owned by one goroutine.
func Dilate(m *imaging.Mask, element []image.Point) *imaging.Mask {
	out := imaging.NewMask(m.Width, m.Height)
	parallel.Line(m.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < m.Width; x++ {
				for _, o := range element {
					if m.At(x+o.X, y+o.Y) {
						out.Pix[y*m.Width+x] = true
						break
					}
				}
			}
		}
	})
	return out
}

// Open performs a morphological opening (erosion followed by dilation) with
// a disk of the given radius. Features narrower than the disk disappear;
// larger shapes keep their outline.
func Open(m *imaging.Mask, radius int) *imaging.Mask {
	element := Disk(radius)
	return Dilate(Erode(m, element), element)
}
