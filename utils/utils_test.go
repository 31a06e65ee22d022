package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestWriteLines(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		blocks []string
		want   string
	}{
		{"empty", nil, ""},
		{"single", []string{"a"}, "a\n"},
		{"multi-line blocks", []string{"Processing: x\nFinal Score: 0/100 -> REJECTED", "Processing: y"}, "Processing: x\nFinal Score: 0/100 -> REJECTED\nProcessing: y\n"},
	}
	for _, tt := range tests {
		path := filepath.Join(dir, "nested", tt.name+".txt")
		if err := WriteLines(path, tt.blocks); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, data, tt.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	if got := SplitList(" a, ,b ,c,"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("SplitList = %v", got)
	}
	if got := SplitList(""); got != nil {
		t.Errorf("SplitList(\"\") = %v, want nil", got)
	}
}

func TestGetDefaultDatabasePath(t *testing.T) {
	if filepath.Base(GetDefaultDatabasePath()) != "detective.db" {
		t.Errorf("unexpected default %s", GetDefaultDatabasePath())
	}
}
