package detection

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// goldenAngle spreads consecutive label hues around the color wheel.
const goldenAngle = 137.50776405003785

// Colorize renders the labels as an image: background black, each
// component in its own color. Colors depend only on the label number, so
// the same labeling always renders the same way.
func (l *Labels) Colorize() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, l.Width, l.Height))
	palette := make([][3]uint8, len(l.Components)+1)
	for i := 1; i < len(palette); i++ {
		hue := math.Mod(float64(i)*goldenAngle, 360)
		r, g, b := colorful.Hsv(hue, 0.65, 0.95).RGB255()
		palette[i] = [3]uint8{r, g, b}
	}

	for i, label := range l.Pix {
		c := palette[label]
		img.Pix[i*4+0] = c[0]
		img.Pix[i*4+1] = c[1]
		img.Pix[i*4+2] = c[2]
		img.Pix[i*4+3] = 255
	}
	return img
}
