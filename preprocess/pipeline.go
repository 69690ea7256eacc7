package preprocess

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/gem-preprocess/internal/detection"
	"github.com/ironsheep/gem-preprocess/internal/imaging"
	"github.com/ironsheep/gem-preprocess/internal/logger"
)

// Centroid is a (row, column) position in padded-canvas coordinates.
type Centroid struct {
	Row float64 `json:"row"`
	Col float64 `json:"col"`
}

// Result is the successful outcome of a run.
type Result struct {
	// Image is the OutputWidth x OutputHeight gem image. Pixels outside the
	// convex hull of the gem are exactly (0,0,0); alpha is always 255.
	Image *image.NRGBA `json:"-"`

	// Centroid of the hull on the border-cropped, padded canvas.
	Centroid Centroid `json:"centroid"`

	// Window is the crop window on the same canvas.
	Window image.Rectangle `json:"window"`

	// Clamped is set when CropClamp moved the window back inside the
	// canvas.
	Clamped bool `json:"clamped"`

	// Components is the number of components that survived the area filter.
	Components int `json:"components"`

	// ForegroundArea is the pixel count of the cleaned mask.
	ForegroundArea int `json:"foreground_area"`

	// HullArea is the pixel count of the convex hull mask.
	HullArea int `json:"hull_area"`
}

// Pipeline turns rig photographs into classifier input. It holds no
// per-run state: one Pipeline may serve concurrent Run calls.
type Pipeline struct {
	cfg     Config
	log     zerolog.Logger
	logSet  bool
	preview PreviewFunc
}

// New validates cfg and builds a pipeline.
//
// Without WithLogger the logger comes from GEMPREP_LOG_LEVEL (disabled when
// unset).
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if !p.logSet {
		log, err := logger.FromEnv()
		if err != nil {
			return nil, &Error{Stage: StageConfig, Kind: ErrInvalidConfig, Detail: err.Error()}
		}
		p.log = log
	}
	return p, nil
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Run preprocesses one image with the default configuration.
func Run(img image.Image) (*Result, error) {
	p, err := New(DefaultConfig())
	if err != nil {
		return nil, err
	}
	return p.Run(img)
}

// Run isolates the gem in img and returns the normalized image.
//
// # Stages
//
//  1. Contrast normalization: luminance, adaptive equalization, box blur
//  2. Edge detection: gradient magnitude thresholded at EdgeThreshold
//  3. Mask building: disk opening, 8-connected labeling, area filter
//  4. Crop location: border crop, padding, convex hull, centroid, window
//  5. Compositing: same crop and pad on the color image, window crop,
//     background suppression, resize
//
// # Errors
//
// The returned error is an *Error wrapping ErrDimensionMismatch,
// ErrEmptyForegroundMask or ErrCropOutOfBounds. No partial result is
// returned on failure. Run is deterministic: retrying an input that failed
// fails the same way.
func (p *Pipeline) Run(img image.Image) (*Result, error) {
	start := time.Now()
	res, tr, err := p.run(img)
	if err != nil {
		p.log.Error().
			Str("stage", string(StageOf(err))).
			Err(err).
			Dur("elapsed", time.Since(start)).
			Msg("preprocessing failed")
		return nil, err
	}

	p.log.Debug().
		Int("components", res.Components).
		Int("hull_area", res.HullArea).
		Dur("elapsed", time.Since(start)).
		Msg("preprocessing done")

	if p.preview != nil {
		p.preview(tr.preview(img, res.Image, p.cfg))
	}
	return res, nil
}

// trace keeps the intermediate rasters of a run for the preview hook.
type trace struct {
	equalized *imaging.Field
	edges     *imaging.Mask
	labels    *detection.Labels
	cleaned   *imaging.Mask
	hull      *imaging.Mask
}

func (t *trace) preview(original image.Image, final *image.NRGBA, cfg Config) Preview {
	return Preview{
		Original:   original,
		Thumbnail:  imaging.Thumbnail(original, cfg.InputWidth/5, cfg.InputHeight/5),
		Final:      imaging.Clone(final),
		Equalized:  imaging.FieldImage(t.equalized),
		Edges:      t.edges.Image(),
		Components: t.labels.Colorize(),
		Foreground: t.cleaned.Image(),
		Hull:       t.hull.Image(),
	}
}

func (p *Pipeline) run(img image.Image) (*Result, *trace, error) {
	cfg := p.cfg
	if err := p.checkInput(img); err != nil {
		return nil, nil, err
	}

	equalized := imaging.NormalizeContrast(img, imaging.ContrastOptions{
		TilesX:          cfg.TilesX,
		TilesY:          cfg.TilesY,
		ClipLimit:       cfg.ClipLimit,
		Bins:            cfg.HistogramBins,
		SmoothingWidth:  cfg.SmoothingSize,
		SmoothingHeight: cfg.SmoothingSize,
	})
	p.log.Debug().Str("stage", string(StageContrast)).Msg("contrast normalized")

	edges := imaging.DetectEdges(equalized, imaging.EdgeOptions{
		Kernel:    cfg.GradientKernel,
		Scale:     cfg.GradientScale,
		Threshold: cfg.EdgeThreshold,
	})
	p.log.Debug().
		Str("stage", string(StageEdges)).
		Int("edge_pixels", edges.Mask.Count()).
		Float64("threshold", cfg.EdgeThreshold).
		Msg("edges detected")

	opened := detection.Open(edges.Mask, cfg.StructuringRadius)
	labels := detection.Label(opened)
	cleaned, kept := detection.FilterComponents(labels, cfg.MinComponentArea)
	foreground := cleaned.Count()
	p.log.Debug().
		Str("stage", string(StageMask)).
		Int("components", len(labels.Components)).
		Int("kept", len(kept)).
		Int("foreground_pixels", foreground).
		Msg("mask built")
	if len(kept) == 0 {
		return nil, nil, &Error{
			Stage:  StageMask,
			Kind:   ErrEmptyForegroundMask,
			Detail: fmt.Sprintf("none of %d components is larger than %d pixels", len(labels.Components), cfg.MinComponentArea),
		}
	}

	walls := detection.CropBorder(cleaned, cfg.BorderCrop)
	padded := detection.Pad(walls, cfg.Pad, cfg.Pad)
	hull := detection.ConvexHull(padded)
	c, err := detection.CentroidOf(hull)
	if errors.Is(err, detection.ErrEmptyMask) {
		return nil, nil, &Error{
			Stage:  StageLocate,
			Kind:   ErrEmptyForegroundMask,
			Detail: fmt.Sprintf("no foreground left after removing a %d pixel border", cfg.BorderCrop),
		}
	}
	if err != nil {
		return nil, nil, &Error{Stage: StageLocate, Kind: err}
	}

	canvas := image.Rect(0, 0, padded.Width, padded.Height)
	window := detection.CenteredWindow(c, cfg.CropWidth, cfg.CropHeight)
	clamped := false
	if !detection.WindowFits(window, canvas) {
		if cfg.CropPolicy != CropClamp {
			return nil, nil, &Error{
				Stage: StageLocate,
				Kind:  ErrCropOutOfBounds,
				Detail: fmt.Sprintf("window (%d,%d)-(%d,%d) around centroid (%.1f,%.1f) leaves canvas %dx%d",
					window.Min.X, window.Min.Y, window.Max.X, window.Max.Y, c.Row, c.Col, canvas.Dx(), canvas.Dy()),
			}
		}
		moved := detection.ClampWindow(window, canvas)
		p.log.Warn().
			Str("stage", string(StageLocate)).
			Int("from_x", window.Min.X).
			Int("from_y", window.Min.Y).
			Int("to_x", moved.Min.X).
			Int("to_y", moved.Min.Y).
			Msg("crop window clamped to canvas")
		window = moved
		clamped = true
	}
	hullArea := hull.Count()
	p.log.Debug().
		Str("stage", string(StageLocate)).
		Float64("row", c.Row).
		Float64("col", c.Col).
		Int("x", window.Min.X).
		Int("y", window.Min.Y).
		Int("hull_area", hullArea).
		Msg("crop located")

	colorCanvas, err := imaging.CropAndPad(img, cfg.BorderCrop, cfg.Pad)
	if err != nil {
		return nil, nil, &Error{Stage: StageComposite, Kind: err}
	}
	out, err := imaging.Composite(colorCanvas, hull, window, imaging.CompositeOptions{
		Width:         cfg.OutputWidth,
		Height:        cfg.OutputHeight,
		Interpolation: imaging.Interpolation(cfg.Interpolation),
	})
	if err != nil {
		return nil, nil, &Error{Stage: StageComposite, Kind: err}
	}

	res := &Result{
		Image:          out,
		Centroid:       Centroid{Row: c.Row, Col: c.Col},
		Window:         window,
		Clamped:        clamped,
		Components:     len(kept),
		ForegroundArea: foreground,
		HullArea:       hullArea,
	}
	t := &trace{
		equalized: equalized,
		edges:     edges.Mask,
		labels:    labels,
		cleaned:   cleaned,
		hull:      hull,
	}
	return res, t, nil
}

// checkInput rejects images whose size or pixel format the pipeline was not
// tuned for.
func (p *Pipeline) checkInput(img image.Image) error {
	if img == nil {
		return &Error{Stage: StageInput, Kind: ErrDimensionMismatch, Detail: "nil image"}
	}

	bounds := img.Bounds()
	if bounds.Dx() != p.cfg.InputWidth || bounds.Dy() != p.cfg.InputHeight {
		return &Error{
			Stage:  StageInput,
			Kind:   ErrDimensionMismatch,
			Detail: fmt.Sprintf("got %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), p.cfg.InputWidth, p.cfg.InputHeight),
		}
	}

	switch img.(type) {
	case *image.Gray, *image.Gray16, *image.Alpha, *image.Alpha16:
		return &Error{Stage: StageInput, Kind: ErrDimensionMismatch, Detail: "single-channel image, want 3 color channels"}
	case *image.RGBA64, *image.NRGBA64:
		return &Error{Stage: StageInput, Kind: ErrDimensionMismatch, Detail: "16-bit image, want 8-bit channels"}
	case *image.CMYK:
		return &Error{Stage: StageInput, Kind: ErrDimensionMismatch, Detail: "4-channel CMYK image, want 3 color channels"}
	}
	return nil
}
