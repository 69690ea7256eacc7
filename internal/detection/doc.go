// Package detection provides the mask-level stages of the gem preprocessing
// pipeline: cleaning the edge mask and locating the crop window.
//
// # Mask Building
//
//  1. Opening: erosion then dilation with a disk (Disk, Open)
//  2. Labeling: 8-connected components by iterative flood fill (Label)
//  3. Filtering: keep components larger than a minimum area
//     (FilterComponents)
//
// # Crop Location
//
//  1. Border crop and padding of the cleaned mask (CropBorder, Pad)
//  2. Convex hull of the foreground, pixels taken as unit squares
//     (ConvexHull)
//  3. Centroid of the hull (CentroidOf)
//  4. Window centered on the rounded centroid (CenteredWindow), checked
//     with WindowFits and optionally moved with ClampWindow
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X (column) increases rightward
//   - Y (row) increases downward
//   - Rectangles use inclusive top-left and exclusive bottom-right
//
// Centroid reports (Row, Col) to match how the window is derived from it.
package detection
