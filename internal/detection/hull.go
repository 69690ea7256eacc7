package detection

import (
	"math"
	"sort"

	"github.com/ironsheep/gem-preprocess/internal/imaging"
)

// vertex is a polygon corner in pixel units. Pixel (x, y) covers the unit
// square centered on (x, y).
type vertex struct {
	X, Y float64
}

// ConvexHull returns a mask of the smallest convex polygon containing every
// foreground pixel of m, pixels taken as unit squares.
//
// A pixel belongs to the hull mask when its center lies inside or on the
// polygon. The result has the size of m; an empty mask produces an empty
// hull.
//
// # Algorithm
//
//  1. For each row keep the leftmost and rightmost foreground pixel; the
//     corners of those pixels span the same hull as all foreground corners.
//  2. Monotone chain over the corners.
//  3. Scan conversion: for each row, intersect the horizontal line through
//     the pixel centers with the polygon edges and fill the span.
func ConvexHull(m *imaging.Mask) *imaging.Mask {
	out := imaging.NewMask(m.Width, m.Height)

	points := make([]vertex, 0)
	for y := 0; y < m.Height; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		left, right := -1, -1
		for x, v := range row {
			if v {
				if left < 0 {
					left = x
				}
				right = x
			}
		}
		if left < 0 {
			continue
		}
		fy := float64(y)
		points = append(points,
			vertex{float64(left) - 0.5, fy - 0.5},
			vertex{float64(left) - 0.5, fy + 0.5},
			vertex{float64(right) + 0.5, fy - 0.5},
			vertex{float64(right) + 0.5, fy + 0.5},
		)
	}
	if len(points) == 0 {
		return out
	}

	polygon := monotoneChain(points)
	fillConvex(out, polygon)
	return out
}

// monotoneChain returns the convex hull of points in counter-clockwise order
// without collinear vertices.
func monotoneChain(points []vertex) []vertex {
	sort.Slice(points, func(i, j int) bool {
		if points[i].X != points[j].X {
			return points[i].X < points[j].X
		}
		return points[i].Y < points[j].Y
	})

	cross := func(o, a, b vertex) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]vertex, 0, 2*len(points))
	for _, p := range points {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(points) - 2; i >= 0; i-- {
		p := points[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// fillConvex marks every pixel of m whose center lies in the convex polygon.
func fillConvex(m *imaging.Mask, polygon []vertex) {
	const eps = 1e-9

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, v := range polygon {
		minY = math.Min(minY, v.Y)
		maxY = math.Max(maxY, v.Y)
	}

	for y := int(math.Ceil(minY - eps)); y <= int(math.Floor(maxY+eps)); y++ {
		if y < 0 || y >= m.Height {
			continue
		}
		fy := float64(y)
		left, right := math.Inf(1), math.Inf(-1)
		for i := range polygon {
			a := polygon[i]
			b := polygon[(i+1)%len(polygon)]
			lo, hi := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
			if fy < lo-eps || fy > hi+eps {
				continue
			}
			if a.Y == b.Y {
				left = math.Min(left, math.Min(a.X, b.X))
				right = math.Max(right, math.Max(a.X, b.X))
				continue
			}
			x := a.X + (fy-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			left = math.Min(left, x)
			right = math.Max(right, x)
		}
		if left > right {
			continue
		}
		x0 := int(math.Ceil(left - eps))
		x1 := int(math.Floor(right + eps))
		if x0 < 0 {
			x0 = 0
		}
		if x1 > m.Width-1 {
			x1 = m.Width - 1
		}
		for x := x0; x <= x1; x++ {
			m.Pix[y*m.Width+x] = true
		}
	}
}
