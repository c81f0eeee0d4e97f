// Package imaging provides the pixel-level stages of sheet music recognition:
// decoding and encoding page images, binarizing them, and drawing the
// annotation overlay.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X (column): horizontal position, 0 = leftmost pixel
//   - Y (row): vertical position, 0 = topmost pixel
//
// Images produced here (binarized pages, annotated copies) are always
// anchored at the origin, whatever the bounds of their source.
//
// # Binarization
//
// Preprocess converts a photographed page into an *image.Gray holding only
// two values, Ink (0) and Background (255):
//
//  1. Luma grayscale (BT.601 weights).
//  2. Adaptive mean threshold: a pixel is ink when it is darker than the
//     mean of its 21x21 neighbourhood minus 4. Uneven lighting across a
//     photographed page is absorbed by the local mean.
//  3. Morphological opening with a small elliptical element removes isolated
//     specks while keeping stave lines and note heads.
//  4. Ink is written as 0 and background as 255.
//
// A page that is already binarized is a fixed point: preprocessing it again
// leaves every row's ink count unchanged.
//
// # Annotation
//
// Annotate draws stave lines and detection rings onto a colour copy of the
// page. Colours are hex strings ("#FF0000") parsed with go-colorful; optional
// pitch labels use the basicfont 7x13 face.
//
// # Thread Safety
//
// All functions are stateless and never modify their input images, so they
// can be called concurrently.
package imaging
