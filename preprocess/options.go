package preprocess

import (
	"image"

	"github.com/rs/zerolog"
)

// Preview is what the preview hook receives once a run has succeeded.
//
// Every image except Original is a private copy: the hook may keep, modify
// or display them without affecting the Result returned by Run.
type Preview struct {
	// Original is the input image as passed to Run.
	Original image.Image

	// Thumbnail is the input scaled down by 5 (384x216 for the default
	// input size), convenient to show next to Final.
	Thumbnail *image.NRGBA

	// Final is a copy of Result.Image.
	Final *image.NRGBA

	// Equalized is the smoothed, contrast-normalized luminance.
	Equalized *image.Gray

	// Edges is the binarized gradient magnitude.
	Edges *image.Gray

	// Components shows every component found after the opening, one color
	// per component, including the ones the area filter dropped.
	Components *image.NRGBA

	// Foreground is the cleaned mask: surviving components only.
	Foreground *image.Gray

	// Hull is the convex hull mask on the border-cropped, padded canvas.
	Hull *image.Gray
}

// PreviewFunc receives intermediate and final images for inspection.
type PreviewFunc func(Preview)

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Stages log at debug level, a clamped crop
// window at warn level and failures at error level.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
		p.logSet = true
	}
}

// WithPreview installs a hook called after every successful run. Building
// the preview images costs extra time and memory, so they are only
// produced when a hook is set.
func WithPreview(fn PreviewFunc) Option {
	return func(p *Pipeline) {
		p.preview = fn
	}
}
