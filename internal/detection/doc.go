// Package detection finds the stave and the note heads on a binarized page.
//
// # Stave Detection
//
// Stave lines are the longest unbroken ink runs on a page of music, so the
// rows they sit on are the darkest rows of the ink-per-row histogram:
//
//  1. Count ink pixels per row (BlacksPerRow).
//  2. Find strict local maxima of the histogram (FindPeaks).
//  3. Keep the five peaks with the most ink and sort them top to bottom.
//  4. The line spacing is the mean gap between consecutive lines.
//
// Pages with fewer than five peaks fail with InsufficientStaveData.
//
// # Symbol Matching
//
// Each template is scored against every position of the page with the
// normalized correlation coefficient (Correlate), which is insensitive to
// overall brightness and contrast. Positions scoring above the threshold
// (0.55 by default) are raw matches. Raw matches of the same symbol are
// merged by Cluster: a match joins the first cluster whose seed its
// template-sized box overlaps. Each cluster becomes one Detection centred on
// the mean match position plus half the template size.
//
// # Correlation Backends
//
// The default backend is pure Go: window sums come from integral images and
// template dot products from gonum, with surface rows spread over all CPUs.
// Building with the gocv tag switches to OpenCV's matchTemplate. InitBackend
// performs the one-time backend setup and should be called at startup.
//
// # Coordinate System
//
// Rows grow downward from 0 at the top of the page, columns grow rightward
// from 0 at the left. Detections are reported in page pixels.
package detection
