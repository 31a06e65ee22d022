package rules

import (
	"fmt"
	"image"
	"strings"
	"testing"

	"imagedetective/imageprocessor"
	"imagedetective/testimages"
	"imagedetective/types"
)

func TestRatio(t *testing.T) {
	k := types.Known[int64]
	unknown := types.Unknown[int64]()

	tests := []struct {
		name string
		a, b types.Optional[int64]
		want float64
	}{
		{"equal", k(42), k(42), 1},
		{"half", k(50), k(100), 0.5},
		{"half reversed", k(100), k(50), 0.5},
		{"unknown left", unknown, k(10), 0},
		{"unknown right", k(10), unknown, 0},
		{"zero", k(0), k(10), 0},
		{"negative", k(-5), k(10), 0},
		{"both unknown", unknown, unknown, 0},
	}
	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: Ratio = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRatio_Laws(t *testing.T) {
	values := []int64{-3, 0, 1, 2, 7, 100, 4096, 1 << 40}
	for _, a := range values {
		for _, b := range values {
			x, y := types.Known(a), types.Known(b)
			r := Ratio(x, y)
			if r != Ratio(y, x) {
				t.Errorf("Ratio(%d,%d) not symmetric", a, b)
			}
			if r < 0 || r > 1 {
				t.Errorf("Ratio(%d,%d) = %v out of range", a, b, r)
			}
			if a > 0 && a == b && r != 1 {
				t.Errorf("Ratio(%d,%d) = %v, want 1", a, b, r)
			}
			if a > 0 && b > 0 && a != b && r == 1 {
				t.Errorf("Ratio(%d,%d) = 1 for unequal values", a, b)
			}
		}
	}
}

func signature(size int64, w, h int, mode types.ColorMode) types.ImageSignature {
	return types.ImageSignature{
		ByteSize:  types.Known(size),
		Width:     types.Known(w),
		Height:    types.Known(h),
		ColorMode: mode,
		Format:    types.Known("PNG"),
	}
}

func mustRule(t *testing.T, kind Kind, weight, fireAt int) Rule {
	t.Helper()
	r, err := New(kind, weight, fireAt)
	if err != nil {
		t.Fatalf("New(%s): %v", kind, err)
	}
	return r
}

func TestMetadataRule(t *testing.T) {
	rule := mustRule(t, KindMetadata, 30, 10)
	color := types.ColorModeColor

	unknownDims := signature(1000, 0, 0, color)
	unknownDims.Width = types.Unknown[int]()
	unknownDims.Height = types.Unknown[int]()

	unknownSize := signature(0, 100, 100, color)
	unknownSize.ByteSize = types.Unknown[int64]()

	tests := []struct {
		name      string
		target    types.ImageSignature
		candidate types.ImageSignature
		want      types.RuleResult
	}{
		{
			name:      "identical",
			target:    signature(1000, 100, 100, color),
			candidate: signature(1000, 100, 100, color),
			want:      types.RuleResult{Score: 30, Fired: true, Evidence: "Size ratio 1.00"},
		},
		{
			name:      "half size",
			target:    signature(1000, 100, 100, color),
			candidate: signature(500, 100, 100, color),
			want:      types.RuleResult{Score: 22, Fired: true, Evidence: "Size ratio 0.50"},
		},
		{
			name:      "color mode mismatch",
			target:    signature(1000, 100, 100, color),
			candidate: signature(500, 100, 100, types.ColorModeGray),
			want:      types.RuleResult{Score: 0, Fired: false, Evidence: "Size ratio 0.50"},
		},
		{
			name:      "unknown color modes",
			target:    signature(1000, 100, 100, types.ColorModeUnknown),
			candidate: signature(1000, 100, 100, types.ColorModeUnknown),
			want:      types.RuleResult{Score: 0, Fired: false, Evidence: "Size ratio 1.00"},
		},
		{
			name:      "unknown dimensions contribute nothing",
			target:    signature(1000, 100, 100, color),
			candidate: unknownDims,
			want:      types.RuleResult{Score: 15, Fired: true, Evidence: "Size ratio 1.00"},
		},
		{
			name:      "unknown size contributes nothing",
			target:    signature(1000, 100, 100, color),
			candidate: unknownSize,
			want:      types.RuleResult{Score: 15, Fired: true, Evidence: "Size ratio 0.00"},
		},
		{
			name:      "weak evidence does not fire",
			target:    signature(3000, 300, 300, color),
			candidate: signature(1000, 100, 100, color),
			want:      types.RuleResult{Score: 8, Fired: false, Evidence: "Size ratio 0.33"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rule.Evaluate(Input{Target: tt.target, Candidate: tt.candidate})
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind    Kind
		weight  int
		fireAt  int
		name    string
		wantErr bool
	}{
		{KindMetadata, 30, 10, "Metadata", false},
		{KindHistogram, 30, 10, "Histogram", false},
		{KindTemplate, 40, 15, "Template", false},
		{KindEdge, 20, 8, "Edge Detection", false},
		{"sharpness", 10, 1, "", true},
		{KindTemplate, 0, 0, "", true},
		{KindTemplate, 40, 41, "", true},
		{KindTemplate, 40, 0, "", true},
	}
	for _, tt := range tests {
		r, err := New(tt.kind, tt.weight, tt.fireAt)
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%s,%d,%d) err = %v, wantErr %v", tt.kind, tt.weight, tt.fireAt, err, tt.wantErr)
			continue
		}
		if err == nil {
			if r.Name() != tt.name || r.Max() != tt.weight {
				t.Errorf("New(%s): name %q max %d", tt.kind, r.Name(), r.Max())
			}
		}
	}
}

func TestZeroForms(t *testing.T) {
	want := map[Kind]string{
		KindMetadata:  "Size ratio 0.00",
		KindHistogram: "Correlation 0.00",
		KindTemplate:  "Match score 0.00",
		KindEdge:      "Edge score 0.00",
	}
	for kind, evidence := range want {
		r := mustRule(t, kind, 20, 5)
		z := r.Zero()
		if z.Score != 0 || z.Fired || z.Evidence != evidence {
			t.Errorf("%s zero form = %+v", kind, z)
		}
	}
}

func TestPixelRules_MissingImages(t *testing.T) {
	dir := t.TempDir()
	img, err := imageprocessor.LoadImage(testimages.WritePNG(t, dir, "t.png", testimages.Shapes(100, 100)))
	if err != nil {
		t.Fatal(err)
	}
	defer img.Close()

	inputs := []Input{
		{},
		{TargetImage: img},
		{CandidateImage: img},
	}
	for _, kind := range []Kind{KindHistogram, KindTemplate, KindEdge} {
		r := mustRule(t, kind, 30, 10)
		for i, in := range inputs {
			if got := r.Evaluate(in); got != r.Zero() {
				t.Errorf("%s input %d: got %+v, want zero form", kind, i, got)
			}
		}
	}
}

func TestPixelRules_Bounds(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		testimages.WritePNG(t, dir, "shapes.png", testimages.Shapes(300, 200)),
		testimages.WritePNG(t, dir, "crop.png", testimages.Crop(testimages.Shapes(300, 200), image.Rect(0, 0, 150, 100))),
		testimages.WriteJPEG(t, dir, "board.jpg", testimages.Checkerboard(120, 160, 12), 80),
		testimages.WritePNG(t, dir, "ramp.png", testimages.Ramp(90, 90)),
	}
	var images []*imageprocessor.Image
	for _, p := range paths {
		img, err := imageprocessor.LoadImage(p)
		if err != nil {
			t.Fatal(err)
		}
		defer img.Close()
		images = append(images, img)
	}

	prefixes := map[Kind]string{KindHistogram: "Correlation ", KindTemplate: "Match score ", KindEdge: "Edge score "}
	for kind, prefix := range prefixes {
		r := mustRule(t, kind, 40, 15)
		for _, target := range images {
			for _, cand := range images {
				got := r.Evaluate(Input{TargetImage: target, CandidateImage: cand})
				if got.Score < 0 || got.Score > r.Max() {
					t.Errorf("%s %s vs %s: score %d out of range", kind, target.Path, cand.Path, got.Score)
				}
				if got.Fired != (got.Score >= 15) {
					t.Errorf("%s: fired %v inconsistent with score %d", kind, got.Fired, got.Score)
				}
				if !strings.HasPrefix(got.Evidence, prefix) {
					t.Errorf("%s: evidence %q", kind, got.Evidence)
				}
			}
		}
	}
}

func TestPixelRules_IdenticalRamp(t *testing.T) {
	dir := t.TempDir()
	img, err := imageprocessor.LoadImage(testimages.WritePNG(t, dir, "ramp.png", testimages.Ramp(400, 400)))
	if err != nil {
		t.Fatal(err)
	}
	defer img.Close()
	in := Input{TargetImage: img, CandidateImage: img}

	color := mustRule(t, KindHistogram, 30, 10).Evaluate(in)
	if color.Score < 29 || !color.Fired {
		t.Errorf("color on identical image = %+v", color)
	}
	tmpl := mustRule(t, KindTemplate, 40, 15).Evaluate(in)
	if tmpl.Score < 39 || !tmpl.Fired {
		t.Errorf("template on identical image = %+v", tmpl)
	}

	// a smooth ramp has no edges to compare
	edge := mustRule(t, KindEdge, 20, 8).Evaluate(in)
	if edge != (types.RuleResult{Evidence: "Edge score 0.00"}) {
		t.Errorf("edge on ramp = %+v, want zero form", edge)
	}
}

func TestEdgeRule_Shapes(t *testing.T) {
	dir := t.TempDir()
	img, err := imageprocessor.LoadImage(testimages.WritePNG(t, dir, "shapes.png", testimages.Shapes(400, 400)))
	if err != nil {
		t.Fatal(err)
	}
	defer img.Close()

	got := mustRule(t, KindEdge, 20, 8).Evaluate(Input{TargetImage: img, CandidateImage: img})
	if got.Score == 0 {
		t.Errorf("edge rule on identical shapes scored zero: %+v", got)
	}
	var sim float64
	if _, err := fmt.Sscanf(got.Evidence, "Edge score %f", &sim); err != nil {
		t.Fatalf("unparsable evidence %q", got.Evidence)
	}
	if want := int(sim * 20); got.Score != want && got.Score != want-1 && got.Score != want+1 {
		t.Errorf("score %d does not follow evidence %.2f", got.Score, sim)
	}
}
