// Package imageprocessor extracts image signatures, loads pixel grids into
// OpenCV Mats and provides the histogram, template-matching and edge
// primitives the matching rules are built on.
package imageprocessor
