// Package imaging provides the pixel-level stages of the gem preprocessing
// pipeline.
//
// This package implements contrast normalization, gradient edge detection and
// the final compositing of the color image. Numeric work happens on two raster
// types defined here: Field (float64, one channel) and Mask (bool). Both are
// row-major with their origin at (0,0), X increasing rightward and Y
// increasing downward.
//
// # Stages
//
//   - NormalizeContrast: BT.601 luminance, CLAHE, box smoothing
//   - DetectEdges: 3x3 gradient pair, magnitude, fixed threshold
//   - CropAndPad / Composite: border removal, padding, window crop,
//     background suppression and resize of the color image
//
// # Border Handling
//
// Filters sample outside the raster by mirroring around the edge pixel
// without repeating it (reflect-101), so a constant image stays constant and
// produces no gradient at its border.
//
// # Thread Safety
//
// All functions are pure: they allocate their outputs and never modify their
// inputs (Suppress is the exception and says so). Row loops run on several
// goroutines, each row written by exactly one of them, so results do not
// depend on scheduling.
package imaging
