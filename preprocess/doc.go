// Package preprocess isolates a gem from a fixed-geometry rig photograph and
// produces fixed-size, background-suppressed classifier input.
//
// The pipeline is a single deterministic transform:
//
//	1920x1080 color photo
//	  -> contrast normalization (luminance, CLAHE, 8x8 box blur)
//	  -> edge mask (Sobel pair / 4, magnitude >= 0.033)
//	  -> cleaned mask (disk opening r=3, components > 250 px)
//	  -> convex hull on the border-cropped, padded canvas, centroid
//	  -> 672x672 window centered on the centroid
//	  -> background forced to black, nearest-neighbour resize to 224x224
//
// # Usage
//
//	res, err := preprocess.Run(img)
//	switch {
//	case errors.Is(err, preprocess.ErrEmptyForegroundMask):
//	    // nothing detected
//	case errors.Is(err, preprocess.ErrCropOutOfBounds):
//	    // gem too close to the top or left wall
//	case err != nil:
//	    return err
//	}
//	classify(res.Image)
//
// Every threshold lives in Config; DefaultConfig returns the values the rig
// was tuned with.
//
// # Concurrency
//
// A Pipeline is immutable after New. Run keeps all state in local buffers,
// so concurrent calls on different images are safe.
//
// # Inspection
//
// WithPreview installs a hook that receives the input, the result and the
// intermediate masks after each successful run. Nothing is displayed or
// written by this package.
package preprocess
