package registry

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"reflect"
	"testing"

	"imagedetective/logging"
	"imagedetective/testimages"
	"imagedetective/types"
)

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	testimages.WritePNG(t, dir, "c.png", testimages.Shapes(120, 90))
	testimages.WriteJPEG(t, dir, "a.jpg", testimages.Ramp(80, 60), 90)
	testimages.WriteJPEG(t, dir, "B.JPEG", testimages.Checkerboard(40, 40, 5), 90)
	testimages.WriteFile(t, dir, "broken.png", []byte("not an image"))
	testimages.WritePNG(t, dir, "skip.gif", image.NewGray(image.Rect(0, 0, 4, 4)))
	testimages.WriteFile(t, dir, "notes.txt", []byte("hello"))

	var seen []string
	reg, err := Build(context.Background(), dir, Options{
		Workers:      3,
		OnRegistered: func(rec types.TargetRecord) { seen = append(seen, rec.ID) },
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer reg.Close()

	want := []string{"B.JPEG", "a.jpg", "broken.png", "c.png"}
	var ids []string
	for _, rec := range reg.Records() {
		ids = append(ids, rec.ID)
	}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("registration order = %v, want %v", ids, want)
	}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("OnRegistered order = %v, want %v", seen, want)
	}
	if reg.Len() != len(want) {
		t.Errorf("Len = %d", reg.Len())
	}

	rec, ok := reg.Get("c.png")
	if !ok {
		t.Fatalf("c.png not registered")
	}
	if rec.Path != filepath.Join(dir, "c.png") {
		t.Errorf("Path = %s", rec.Path)
	}
	if rec.Signature.Width.Value != 120 || rec.Signature.ColorMode != types.ColorModeColor {
		t.Errorf("signature = %+v", rec.Signature)
	}
	if rec.Signature.Fingerprint == "" {
		t.Errorf("fingerprint missing for a decodable target")
	}
	if reg.Image("c.png") == nil {
		t.Errorf("pixels not cached for c.png")
	}

	broken, ok := reg.Get("broken.png")
	if !ok {
		t.Fatalf("undecodable file must still be registered")
	}
	if broken.Signature.Width.Valid || broken.Signature.ColorMode != types.ColorModeUnknown {
		t.Errorf("broken signature should be unknown, got %+v", broken.Signature)
	}
	if reg.Image("broken.png") != nil {
		t.Errorf("broken.png should have no pixels")
	}

	if _, ok := reg.Get("skip.gif"); ok {
		t.Errorf("gif is not on the default allow-list")
	}
	if reg.Image("missing") != nil {
		t.Errorf("Image of unknown id should be nil")
	}
}

func TestBuild_CustomExtensions(t *testing.T) {
	dir := t.TempDir()
	testimages.WritePNG(t, dir, "a.png", testimages.Ramp(10, 10))
	testimages.WritePNG(t, dir, "b.gif", testimages.Ramp(10, 10))

	reg, err := Build(context.Background(), dir, Options{Extensions: []string{"gif"}})
	if err != nil {
		t.Fatal(err)
	}
	defer reg.Close()

	if reg.Len() != 1 {
		t.Fatalf("Len = %d, want 1", reg.Len())
	}
	if _, ok := reg.Get("b.gif"); !ok {
		t.Errorf("b.gif should be registered")
	}
}

func TestBuild_UnreadableDirectory(t *testing.T) {
	_, err := Build(context.Background(), filepath.Join(t.TempDir(), "absent"), Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	var opErr *logging.OperationError
	if !errors.As(err, &opErr) || opErr.Operation != "register targets" {
		t.Errorf("expected a register targets OperationError, got %v", err)
	}
}

func TestBuild_EmptyDirectory(t *testing.T) {
	reg, err := Build(context.Background(), t.TempDir(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer reg.Close()
	if reg.Len() != 0 {
		t.Errorf("Len = %d, want 0", reg.Len())
	}
}

func TestBuild_Cancelled(t *testing.T) {
	dir := t.TempDir()
	testimages.WritePNG(t, dir, "a.png", testimages.Ramp(10, 10))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, dir, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFromRecords(t *testing.T) {
	records := []types.TargetRecord{
		{ID: "z.png"},
		{ID: "a.png"},
	}
	reg, err := FromRecords(records)
	if err != nil {
		t.Fatal(err)
	}
	defer reg.Close()

	var ids []string
	reg.Each(func(rec types.TargetRecord) { ids = append(ids, rec.ID) })
	if !reflect.DeepEqual(ids, []string{"z.png", "a.png"}) {
		t.Errorf("order = %v, insertion order must be kept", ids)
	}

	records[0].ID = "mutated"
	if _, ok := reg.Get("z.png"); !ok {
		t.Errorf("registry must not alias the caller's slice")
	}

	if _, err := FromRecords([]types.TargetRecord{{ID: "x"}, {ID: "x"}}); err == nil {
		t.Errorf("expected duplicate identifier error")
	}
}
