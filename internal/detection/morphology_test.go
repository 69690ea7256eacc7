package detection

import (
	"image"
	"testing"

	"github.com/ironsheep/gem-preprocess/internal/imaging"
)

// createRectMask creates a width x height mask with the rectangle r set.
func createRectMask(width, height int, r image.Rectangle) *imaging.Mask {
	m := imaging.NewMask(width, height)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Set(x, y, true)
		}
	}
	return m
}

func masksEqual(a, b *imaging.Mask) bool {
	if a.Width != b.Width || a.Height != b.Height {
		return false
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			return false
		}
	}
	return true
}

func TestDisk(t *testing.T) {
	tests := []struct {
		radius int
		want   int
	}{
		{-1, 0},
		{0, 1},
		{1, 5},
		{2, 13},
		{3, 29},
	}

	for _, tt := range tests {
		if got := len(Disk(tt.radius)); got != tt.want {
			t.Errorf("Disk(%d): got %d offsets, want %d", tt.radius, got, tt.want)
		}
	}
}

func TestDisk_Shape(t *testing.T) {
	offsets := make(map[image.Point]bool)
	for _, p := range Disk(3) {
		offsets[p] = true
	}

	in := []image.Point{{0, 0}, {3, 0}, {0, -3}, {2, 2}, {-2, 2}}
	out := []image.Point{{3, 1}, {1, 3}, {3, 3}, {-3, -1}}
	for _, p := range in {
		if !offsets[p] {
			t.Errorf("offset %v missing from disk", p)
		}
	}
	for _, p := range out {
		if offsets[p] {
			t.Errorf("offset %v should be outside the disk", p)
		}
	}
}

func TestErode_RemovesThinFeatures(t *testing.T) {
	m := createRectMask(30, 30, image.Rect(10, 10, 20, 20))
	m.Set(2, 2, true)

	out := Erode(m, Disk(3))

	if out.At(2, 2) {
		t.Error("isolated pixel survived erosion")
	}
	// only centers at least 3 pixels from every side of the square remain
	if got := out.Count(); got != 16 {
		t.Errorf("eroded square: got %d pixels, want 16", got)
	}
	if !out.At(13, 13) || !out.At(16, 16) || out.At(12, 13) {
		t.Error("eroded square is misplaced")
	}
}

func TestErode_OutsideDoesNotRemove(t *testing.T) {
	m := createRectMask(6, 6, image.Rect(0, 0, 6, 6))

	out := Erode(m, Disk(3))

	if got := out.Count(); got != 36 {
		t.Errorf("full mask after erosion: got %d pixels, want 36", got)
	}
}

func TestDilate_SinglePixel(t *testing.T) {
	m := imaging.NewMask(20, 20)
	m.Set(10, 10, true)

	out := Dilate(m, Disk(3))

	if got := out.Count(); got != 29 {
		t.Errorf("dilated pixel: got %d pixels, want 29", got)
	}
	if !out.At(13, 10) || out.At(13, 11) {
		t.Error("dilation does not follow the disk")
	}
}

func TestDilate_ClipsAtBorder(t *testing.T) {
	m := imaging.NewMask(5, 5)
	m.Set(0, 0, true)

	out := Dilate(m, Disk(1))

	if got := out.Count(); got != 3 {
		t.Errorf("dilated corner pixel: got %d pixels, want 3", got)
	}
}

func TestOpen_RemovesNoiseKeepsShape(t *testing.T) {
	m := createRectMask(60, 60, image.Rect(20, 20, 40, 40))
	m.Set(5, 5, true)
	m.Set(50, 8, true)
	for x := 0; x < 60; x++ {
		m.Set(x, 52, true)
	}

	out := Open(m, 3)

	if out.At(5, 5) || out.At(50, 8) {
		t.Error("isolated pixels survived opening")
	}
	for x := 0; x < 60; x++ {
		if out.At(x, 52) {
			t.Fatalf("one pixel line survived opening at x=%d", x)
		}
	}
	// straight sides survive, corners are rounded off
	if !out.At(30, 20) || !out.At(20, 30) || !out.At(30, 30) {
		t.Error("square interior or sides lost")
	}
	if out.At(20, 20) {
		t.Error("square corner should be rounded off")
	}
}

func TestOpen_AntiExtensiveAndIdempotent(t *testing.T) {
	m := createRectMask(50, 50, image.Rect(10, 10, 30, 25))
	for y := 20; y < 40; y++ {
		for x := 25; x < 28; x++ {
			m.Set(x, y, true)
		}
	}

	once := Open(m, 3)
	twice := Open(once, 3)

	for i := range once.Pix {
		if once.Pix[i] && !m.Pix[i] {
			t.Fatalf("opening added pixel %d", i)
		}
	}
	if !masksEqual(once, twice) {
		t.Error("opening an opened mask changed it")
	}
}

func TestOpen_ZeroRadiusIsIdentity(t *testing.T) {
	m := createRectMask(10, 10, image.Rect(2, 3, 5, 9))
	m.Set(8, 0, true)

	if !masksEqual(Open(m, 0), m) {
		t.Error("opening with a single-pixel element changed the mask")
	}
}
