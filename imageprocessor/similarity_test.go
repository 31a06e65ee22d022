package imageprocessor

import (
	"image"
	"testing"

	"imagedetective/testimages"
)

func loadFixture(t *testing.T, path string) *Image {
	t.Helper()
	img, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage(%s): %v", path, err)
	}
	t.Cleanup(img.Close)
	return img
}

func TestLoadImage_Failures(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadImage(dir + "/missing.png"); err == nil {
		t.Errorf("expected error for missing file")
	}
	broken := testimages.WriteFile(t, dir, "broken.jpg", []byte("garbage"))
	if _, err := LoadImage(broken); err == nil {
		t.Errorf("expected error for corrupt file")
	}
}

func TestColorSimilarity_Identical(t *testing.T) {
	dir := t.TempDir()
	img := loadFixture(t, testimages.WritePNG(t, dir, "shapes.png", testimages.Shapes(400, 300)))

	full, best := ColorSimilarity(img.Color, img.Color)
	if full < 0.99 {
		t.Errorf("identical full correlation = %.3f, want ~1", full)
	}
	if best < full {
		t.Errorf("best %.3f < full %.3f", best, full)
	}
}

func TestColorSimilarity_QuadrantNeverBelowFull(t *testing.T) {
	dir := t.TempDir()
	target := loadFixture(t, testimages.WritePNG(t, dir, "target.png", testimages.Shapes(600, 400)))
	pairs := []*Image{
		loadFixture(t, testimages.WritePNG(t, dir, "crop.png", testimages.Crop(testimages.Shapes(600, 400), image.Rect(0, 0, 300, 200)))),
		loadFixture(t, testimages.WriteJPEG(t, dir, "board.jpg", testimages.Checkerboard(300, 200, 10), 90)),
		loadFixture(t, testimages.WritePNG(t, dir, "ramp.png", testimages.Ramp(100, 100))),
	}

	for _, cand := range pairs {
		full, best := ColorSimilarity(target.Color, cand.Color)
		if best < full {
			t.Errorf("%s: best %.3f < full %.3f", cand.Path, best, full)
		}
		if full < 0 || full > 1 || best < 0 || best > 1 {
			t.Errorf("%s: similarities out of range: %.3f %.3f", cand.Path, full, best)
		}
	}
}

func TestSizeAwareSimilarity_QuarterCrop(t *testing.T) {
	dir := t.TempDir()
	original := testimages.Shapes(1000, 1000)
	target := loadFixture(t, testimages.WritePNG(t, dir, "target.png", original))
	crop := loadFixture(t, testimages.WritePNG(t, dir, "crop.png", testimages.Crop(original, image.Rect(0, 0, 500, 500))))

	sim, ok := SizeAwareSimilarity(target.Gray, crop.Gray)
	if !ok {
		t.Fatalf("size-aware attempt did not run for a 25%% crop")
	}
	if sim < 0.8 {
		t.Errorf("size-aware similarity of a 25%% crop = %.3f, want >= 0.8", sim)
	}
	if robust := ScaleRobustSimilarity(target.Gray, crop.Gray); robust < sim {
		t.Errorf("scale-robust %.3f below size-aware %.3f", robust, sim)
	}
}

func TestScaleRobustSimilarity_Identical(t *testing.T) {
	dir := t.TempDir()
	// a linear ramp correlates with itself at any scale
	img := loadFixture(t, testimages.WritePNG(t, dir, "ramp.png", testimages.Ramp(320, 240)))

	if sim := ScaleRobustSimilarity(img.Gray, img.Gray); sim < 0.99 {
		t.Errorf("identical similarity = %.3f, want ~1", sim)
	}
}

func TestEdges(t *testing.T) {
	dir := t.TempDir()
	shapes := loadFixture(t, testimages.WritePNG(t, dir, "shapes.png", testimages.Shapes(200, 200)))
	ramp := loadFixture(t, testimages.WritePNG(t, dir, "ramp.png", testimages.Ramp(200, 200)))

	if !HasEdges(shapes.Edges()) {
		t.Errorf("expected edges in the shapes image")
	}
	if HasEdges(ramp.Edges()) {
		t.Errorf("expected no edges in a smooth ramp")
	}
	// memoized
	if a, b := shapes.Edges(), shapes.Edges(); a.Ptr() != b.Ptr() {
		t.Errorf("edge map recomputed")
	}
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := loadFixture(t, testimages.WritePNG(t, dir, "a.png", testimages.Shapes(200, 200)))
	b := loadFixture(t, testimages.WritePNG(t, dir, "b.png", testimages.Shapes(200, 200)))

	if a.Fingerprint() == "" {
		t.Fatalf("empty fingerprint")
	}
	d, err := FingerprintDistance(a.Fingerprint(), b.Fingerprint())
	if err != nil {
		t.Fatalf("FingerprintDistance: %v", err)
	}
	if d != 0 {
		t.Errorf("distance between identical images = %d, want 0", d)
	}
	if _, err := FingerprintDistance("", b.Fingerprint()); err == nil {
		t.Errorf("expected error for a missing fingerprint")
	}
}
