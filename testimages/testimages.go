// Package testimages generates deterministic synthetic images for tests.
package testimages

import (
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// Ramp returns a smooth color image: red grows left to right, green grows
// top to bottom, blue is constant. Its structure survives rescaling.
func Ramp(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: 64,
				A: 255,
			})
		}
	}
	return img
}

// Shapes returns a Ramp with solid blocks drawn on it, so it carries hard
// edges as well as smooth gradients.
func Shapes(w, h int) *image.RGBA {
	img := Ramp(w, h)
	blocks := []struct {
		r image.Rectangle
		c color.RGBA
	}{
		{image.Rect(w/10, h/10, w*3/10, h*4/10), color.RGBA{R: 250, G: 240, B: 30, A: 255}},
		{image.Rect(w*6/10, h/8, w*9/10, h*3/10), color.RGBA{R: 20, G: 30, B: 200, A: 255}},
		{image.Rect(w*4/10, h*5/10, w*7/10, h*9/10), color.RGBA{R: 240, G: 20, B: 160, A: 255}},
		{image.Rect(w/12, h*7/10, w*3/12, h*11/12), color.RGBA{R: 10, G: 10, B: 10, A: 255}},
	}
	for _, b := range blocks {
		draw.Draw(img, b.r, &image.Uniform{C: b.c}, image.Point{}, draw.Src)
	}
	return img
}

// Checkerboard returns a grayscale checkerboard with the given cell size
func Checkerboard(w, h, cell int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if ((x/cell)+(y/cell))%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 235})
			} else {
				img.SetGray(x, y, color.Gray{Y: 20})
			}
		}
	}
	return img
}

// Crop copies the rectangle r of src into a new image anchored at (0,0)
func Crop(src image.Image, r image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst
}

// WritePNG encodes img into dir/name and returns the path
func WritePNG(tb testing.TB, dir, name string, img image.Image) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		tb.Fatalf("encode %s: %v", path, err)
	}
	return path
}

// WriteJPEG encodes img into dir/name with the given quality and returns the path
func WriteJPEG(tb testing.TB, dir, name string, img image.Image, quality int) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		tb.Fatalf("encode %s: %v", path, err)
	}
	return path
}

// WriteFile writes raw bytes into dir/name and returns the path
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}
