package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// createInMemoryImage creates a solid color image of the given size.
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestReflect101(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{0, 5, 0},
		{3, 5, 3},
		{-1, 5, 1},
		{-2, 5, 2},
		{5, 5, 3},
		{6, 5, 2},
		{-3, 1, 0},
		{7, 1, 0},
	}

	for _, tt := range tests {
		if got := reflect101(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect101(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestLuminance(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want uint8
	}{
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"white", color.RGBA{255, 255, 255, 255}, 255},
		{"gem color", color.RGBA{200, 180, 160, 255}, 184},
		{"pure green", color.RGBA{0, 255, 0, 255}, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gray := Luminance(createInMemoryImage(4, 3, tt.c))
			if gray.Bounds().Dx() != 4 || gray.Bounds().Dy() != 3 {
				t.Fatalf("dimensions: got %dx%d, want 4x3", gray.Bounds().Dx(), gray.Bounds().Dy())
			}
			if got := gray.GrayAt(2, 1).Y; got != tt.want {
				t.Errorf("luma: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClipHistogram(t *testing.T) {
	bins := make([]int, 16)
	bins[3] = 1000
	bins[7] = 40
	bins[12] = 5

	total := 0
	for _, c := range bins {
		total += c
	}

	clipHistogram(bins, 50)

	after := 0
	for i, c := range bins {
		after += c
		// limit plus the even share plus at most one residual count
		if c > 50+(1000-50)/16+1 {
			t.Errorf("bin %d: %d exceeds clipped level", i, c)
		}
	}
	if after != total {
		t.Errorf("total: got %d, want %d", after, total)
	}
	if bins[3] >= 1000 {
		t.Errorf("peak bin was not clipped: %d", bins[3])
	}
}

func TestClipHistogram_NoExcess(t *testing.T) {
	bins := []int{1, 2, 3, 4}
	clipHistogram(bins, 10)
	want := []int{1, 2, 3, 4}
	for i := range bins {
		if bins[i] != want[i] {
			t.Errorf("bin %d changed: got %d, want %d", i, bins[i], want[i])
		}
	}
}

func TestEqualizeAdaptive_Uniform(t *testing.T) {
	gray := Luminance(createInMemoryImage(64, 48, color.RGBA{20, 20, 20, 255}))
	f := EqualizeAdaptive(gray, ContrastOptions{TilesX: 8, TilesY: 8, ClipLimit: 0.01, Bins: 256})

	first := f.Pix[0]
	if first < 0 || first > 1 {
		t.Fatalf("value %f outside [0,1]", first)
	}
	for i, v := range f.Pix {
		if math.Abs(v-first) > 1e-12 {
			t.Fatalf("pixel %d: got %f, want constant %f", i, v, first)
		}
	}
}

func TestEqualizeAdaptive_SingleTileIsMonotonic(t *testing.T) {
	width, height := 256, 4
	gray := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gray.SetGray(x, y, color.Gray{Y: uint8(x)})
		}
	}

	f := EqualizeAdaptive(gray, ContrastOptions{TilesX: 1, TilesY: 1, ClipLimit: 0.01, Bins: 256})

	for x := 1; x < width; x++ {
		if f.At(x, 0) < f.At(x-1, 0) {
			t.Fatalf("mapping decreases at %d: %f < %f", x, f.At(x, 0), f.At(x-1, 0))
		}
	}
	if got := f.At(width-1, 0); math.Abs(got-1) > 1e-12 {
		t.Errorf("brightest pixel: got %f, want 1", got)
	}
}

func TestEqualizeAdaptive_RaisesLocalContrast(t *testing.T) {
	// Dim image with a faint bright square: equalization should stretch the
	// small step between the two levels.
	img := createInMemoryImage(160, 160, color.RGBA{40, 40, 40, 255})
	for y := 60; y < 100; y++ {
		for x := 60; x < 100; x++ {
			img.Set(x, y, color.RGBA{60, 60, 60, 255})
		}
	}

	f := EqualizeAdaptive(Luminance(img), ContrastOptions{TilesX: 4, TilesY: 4, ClipLimit: 0.1, Bins: 256})

	inside := f.At(80, 80)
	outside := f.At(10, 10)
	if inside-outside <= 20.0/255.0 {
		t.Errorf("contrast not raised: inside %f, outside %f", inside, outside)
	}
}

func TestBoxBlur_Impulse(t *testing.T) {
	f := NewField(20, 20)
	f.Set(10, 10, 64)

	out := BoxBlur(f, 8, 8)

	nonZero := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			v := out.At(x, y)
			if v == 0 {
				continue
			}
			nonZero++
			if math.Abs(v-1) > 1e-12 {
				t.Errorf("(%d,%d): got %f, want 1", x, y, v)
			}
			// window offsets are -4..+3, so the impulse reaches x in 7..14
			if x < 7 || x > 14 || y < 7 || y > 14 {
				t.Errorf("impulse spread to (%d,%d)", x, y)
			}
		}
	}
	if nonZero != 64 {
		t.Errorf("spread: got %d pixels, want 64", nonZero)
	}
}

func TestBoxBlur_ConstantStaysConstant(t *testing.T) {
	f := NewField(13, 9)
	for i := range f.Pix {
		f.Pix[i] = 0.25
	}

	out := BoxBlur(f, 8, 8)

	for i, v := range out.Pix {
		if math.Abs(v-0.25) > 1e-12 {
			t.Fatalf("pixel %d: got %f, want 0.25", i, v)
		}
	}
}

func TestNormalizeContrast_Dimensions(t *testing.T) {
	img := createInMemoryImage(50, 30, color.RGBA{90, 120, 30, 255})
	f := NormalizeContrast(img, ContrastOptions{
		TilesX: 8, TilesY: 8, ClipLimit: 0.01, Bins: 256,
		SmoothingWidth: 8, SmoothingHeight: 8,
	})

	if f.Width != 50 || f.Height != 30 {
		t.Errorf("dimensions: got %dx%d, want 50x30", f.Width, f.Height)
	}
	for i, v := range f.Pix {
		if v < 0 || v > 1+1e-9 {
			t.Fatalf("pixel %d: %f outside [0,1]", i, v)
		}
	}
}
