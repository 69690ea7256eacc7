package detection

import (
	"image"
	"sort"

	"github.com/ironsheep/gem-preprocess/internal/imaging"
)

// Component is one 8-connected group of foreground pixels.
type Component struct {
	// Label identifies the component in Labels.Pix (1-based).
	Label int `json:"label"`

	// Area is the number of pixels in the component.
	Area int `json:"area"`

	// Bounds is the bounding box; Max is exclusive.
	Bounds image.Rectangle `json:"bounds"`
}

// Labels is a labeled partition of a mask. Background pixels carry label 0.
type Labels struct {
	Width      int
	Height     int
	Pix        []int
	Components []Component
}

// Label partitions the foreground of m into 8-connected components.
//
// Components are numbered 1, 2, ... in raster order of their first pixel.
// The flood fill is iterative (explicit stack), so large components cannot
// overflow the goroutine stack.
func Label(m *imaging.Mask) *Labels {
	labels := &Labels{
		Width:  m.Width,
		Height: m.Height,
		Pix:    make([]int, m.Width*m.Height),
	}

	var stack []image.Point
	next := 1
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.Pix[y*m.Width+x] || labels.Pix[y*m.Width+x] != 0 {
				continue
			}

			comp := Component{
				Label:  next,
				Bounds: image.Rect(x, y, x+1, y+1),
			}
			labels.Pix[y*m.Width+x] = next
			stack = append(stack[:0], image.Point{X: x, Y: y})

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				comp.Area++
				comp.Bounds = comp.Bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

				// 8-connected neighbors
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
							continue
						}
						i := ny*m.Width + nx
						if m.Pix[i] && labels.Pix[i] == 0 {
							labels.Pix[i] = next
							stack = append(stack, image.Point{X: nx, Y: ny})
						}
					}
				}
			}

			labels.Components = append(labels.Components, comp)
			next++
		}
	}

	return labels
}

// FilterComponents returns a mask holding only the components whose area is
// strictly greater than minArea, together with those components sorted by
// area (largest first).
//
// If no component survives, the mask is all background and the slice is
// empty; deciding whether that is an error is left to the caller.
func FilterComponents(labels *Labels, minArea int) (*imaging.Mask, []Component) {
	keep := make([]bool, len(labels.Components)+1)
	kept := make([]Component, 0)
	for _, c := range labels.Components {
		if c.Area > minArea {
			keep[c.Label] = true
			kept = append(kept, c)
		}
	}

	mask := imaging.NewMask(labels.Width, labels.Height)
	for i, l := range labels.Pix {
		if l != 0 && keep[l] {
			mask.Pix[i] = true
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Area > kept[j].Area
	})
	return mask, kept
}

// CleanMask runs the complete mask clean-up: opening with a disk of
// the given radius, 8-connected labeling and the area filter.
func CleanMask(edges *imaging.Mask, radius, minArea int) (*imaging.Mask, []Component) {
	opened := Open(edges, radius)
	return FilterComponents(Label(opened), minArea)
}
