package preprocess

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ironsheep/gem-preprocess/internal/imaging"
)

// CropPolicy decides what happens when the centered crop window leaves the
// padded canvas.
type CropPolicy string

const (
	// CropFail rejects the input with ErrCropOutOfBounds.
	CropFail CropPolicy = "fail"

	// CropClamp shifts the window back inside the canvas, logs a warning and
	// sets Result.Clamped. The gem is then no longer centered.
	CropClamp CropPolicy = "clamp"
)

// Interpolation modes accepted by Config.Interpolation.
const (
	InterpolationNearest    = string(imaging.Nearest)
	InterpolationBox        = string(imaging.Box)
	InterpolationLinear     = string(imaging.Linear)
	InterpolationCatmullRom = string(imaging.CatmullRom)
	InterpolationLanczos    = string(imaging.Lanczos)
)

// DefaultEdgeThreshold is the default Config.EdgeThreshold.
const DefaultEdgeThreshold = imaging.DefaultEdgeThreshold

// Config holds every tunable of the pipeline. Start from DefaultConfig and
// override fields; New validates the result.
type Config struct {
	// InputWidth and InputHeight are the only accepted input size.
	// The crop arithmetic below is tuned to it.
	InputWidth  int `json:"input_width"`
	InputHeight int `json:"input_height"`

	// ClipLimit is the adaptive equalization clip level as a fraction of
	// the tile area.
	ClipLimit float64 `json:"clip_limit"`

	// TilesX and TilesY are the number of equalization tiles per axis.
	TilesX int `json:"tiles_x"`
	TilesY int `json:"tiles_y"`

	// HistogramBins is the number of histogram bins per tile (1-256).
	HistogramBins int `json:"histogram_bins"`

	// SmoothingSize is the side of the square box filter applied after
	// equalization.
	SmoothingSize int `json:"smoothing_size"`

	// GradientKernel is the vertical derivative kernel; its transpose gives
	// the horizontal one. Coefficients are divided by GradientScale.
	GradientKernel [3][3]float64 `json:"gradient_kernel"`
	GradientScale  float64       `json:"gradient_scale"`

	// EdgeThreshold is the gradient magnitude at or above which a pixel is
	// an edge. It depends on the equalization and smoothing settings.
	EdgeThreshold float64 `json:"edge_threshold"`

	// StructuringRadius is the radius of the disk used for the opening.
	StructuringRadius int `json:"structuring_radius"`

	// MinComponentArea is the area a component must exceed to be kept.
	MinComponentArea int `json:"min_component_area"`

	// BorderCrop is removed from every edge to drop the rig walls.
	BorderCrop int `json:"border_crop"`

	// Pad is appended along the bottom and right edges before cropping.
	Pad int `json:"pad"`

	// CropWidth and CropHeight are the size of the window centered on the
	// gem.
	CropWidth  int `json:"crop_width"`
	CropHeight int `json:"crop_height"`

	// OutputWidth and OutputHeight are the size of the returned image.
	OutputWidth  int `json:"output_width"`
	OutputHeight int `json:"output_height"`

	// Interpolation is the resize filter: nearest, box, linear,
	// catmullrom or lanczos.
	Interpolation string `json:"interpolation"`

	// CropPolicy is fail or clamp.
	CropPolicy CropPolicy `json:"crop_policy"`
}

// DefaultConfig returns the configuration for 1920x1080 rig photographs
// producing 224x224 classifier input.
func DefaultConfig() Config {
	return Config{
		InputWidth:        1920,
		InputHeight:       1080,
		ClipLimit:         0.01,
		TilesX:            8,
		TilesY:            8,
		HistogramBins:     256,
		SmoothingSize:     8,
		GradientKernel:    imaging.SobelVertical,
		GradientScale:     4,
		EdgeThreshold:     DefaultEdgeThreshold,
		StructuringRadius: 3,
		MinComponentArea:  250,
		BorderCrop:        10,
		Pad:               672,
		CropWidth:         672,
		CropHeight:        672,
		OutputWidth:       224,
		OutputHeight:      224,
		Interpolation:     InterpolationNearest,
		CropPolicy:        CropFail,
	}
}

// Validate reports the first inconsistent setting, wrapped in
// ErrInvalidConfig.
func (c Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return &Error{Stage: StageConfig, Kind: ErrInvalidConfig, Detail: fmt.Sprintf(format, args...)}
	}

	switch {
	case c.InputWidth <= 0 || c.InputHeight <= 0:
		return invalid("input size %dx%d must be positive", c.InputWidth, c.InputHeight)
	case c.BorderCrop < 0:
		return invalid("border crop %d must not be negative", c.BorderCrop)
	case 2*c.BorderCrop >= c.InputWidth || 2*c.BorderCrop >= c.InputHeight:
		return invalid("border crop %d leaves nothing of %dx%d", c.BorderCrop, c.InputWidth, c.InputHeight)
	case c.Pad < 0:
		return invalid("pad %d must not be negative", c.Pad)
	case c.ClipLimit <= 0 || c.ClipLimit > 1:
		return invalid("clip limit %g must be in (0, 1]", c.ClipLimit)
	case c.TilesX < 1 || c.TilesY < 1 || c.TilesX > c.InputWidth || c.TilesY > c.InputHeight:
		return invalid("tile grid %dx%d does not fit %dx%d", c.TilesX, c.TilesY, c.InputWidth, c.InputHeight)
	case c.HistogramBins < 1 || c.HistogramBins > 256:
		return invalid("histogram bins %d must be in [1, 256]", c.HistogramBins)
	case c.SmoothingSize < 1:
		return invalid("smoothing size %d must be at least 1", c.SmoothingSize)
	case c.GradientScale == 0:
		return invalid("gradient scale must not be zero")
	case c.EdgeThreshold <= 0:
		return invalid("edge threshold %g must be positive", c.EdgeThreshold)
	case c.StructuringRadius < 0:
		return invalid("structuring radius %d must not be negative", c.StructuringRadius)
	case c.MinComponentArea < 0:
		return invalid("minimum component area %d must not be negative", c.MinComponentArea)
	case c.CropWidth <= 0 || c.CropHeight <= 0:
		return invalid("crop size %dx%d must be positive", c.CropWidth, c.CropHeight)
	case c.CropWidth > c.canvasWidth() || c.CropHeight > c.canvasHeight():
		return invalid("crop %dx%d larger than padded canvas %dx%d",
			c.CropWidth, c.CropHeight, c.canvasWidth(), c.canvasHeight())
	case c.OutputWidth <= 0 || c.OutputHeight <= 0:
		return invalid("output size %dx%d must be positive", c.OutputWidth, c.OutputHeight)
	}

	if _, err := imaging.Interpolation(c.Interpolation).Filter(); err != nil {
		return invalid("%v", err)
	}
	if c.CropPolicy != CropFail && c.CropPolicy != CropClamp {
		return invalid("unknown crop policy: %s", c.CropPolicy)
	}
	return nil
}

// DecodeConfig reads a JSON configuration from r. Fields missing from the
// document keep their DefaultConfig value; unknown fields are rejected. The
// result is validated.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, &Error{Stage: StageConfig, Kind: ErrInvalidConfig, Detail: fmt.Sprintf("failed to parse config: %v", err)}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) canvasWidth() int  { return c.InputWidth - 2*c.BorderCrop + c.Pad }
func (c Config) canvasHeight() int { return c.InputHeight - 2*c.BorderCrop + c.Pad }

// Environment variables read by LoadEnv.
const (
	EnvClipLimit         = "GEMPREP_CLIP_LIMIT"
	EnvSmoothingSize     = "GEMPREP_SMOOTHING_SIZE"
	EnvEdgeThreshold     = "GEMPREP_EDGE_THRESHOLD"
	EnvStructuringRadius = "GEMPREP_STRUCTURING_RADIUS"
	EnvMinComponentArea  = "GEMPREP_MIN_COMPONENT_AREA"
	EnvBorderCrop        = "GEMPREP_BORDER_CROP"
	EnvInterpolation     = "GEMPREP_INTERPOLATION"
	EnvCropPolicy        = "GEMPREP_CROP_POLICY"
)

// ConfigFromEnv returns DefaultConfig with the GEMPREP_* environment
// overrides applied.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := cfg.LoadEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnv overrides fields from the variables visible through lookup.
// Unset or empty variables leave the field alone. The geometry of the rig
// (input, pad, crop and output sizes) is not overridable.
func (c *Config) LoadEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}
	parseErr := func(key, value string, err error) error {
		return &Error{Stage: StageConfig, Kind: ErrInvalidConfig, Detail: fmt.Sprintf("%s=%q: %v", key, value, err)}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{EnvClipLimit, &c.ClipLimit},
		{EnvEdgeThreshold, &c.EdgeThreshold},
	}
	for _, f := range floats {
		if v, ok := get(f.key); ok {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return parseErr(f.key, v, err)
			}
			*f.dst = parsed
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvSmoothingSize, &c.SmoothingSize},
		{EnvStructuringRadius, &c.StructuringRadius},
		{EnvMinComponentArea, &c.MinComponentArea},
		{EnvBorderCrop, &c.BorderCrop},
	}
	for _, f := range ints {
		if v, ok := get(f.key); ok {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return parseErr(f.key, v, err)
			}
			*f.dst = parsed
		}
	}

	if v, ok := get(EnvInterpolation); ok {
		c.Interpolation = v
	}
	if v, ok := get(EnvCropPolicy); ok {
		c.CropPolicy = CropPolicy(v)
	}
	return nil
}
