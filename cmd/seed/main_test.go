package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/casas/internal/geo"
)

func loadOutput(t *testing.T, path string) geo.FeatureCollection {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var fc geo.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		t.Fatalf("output is not a collection: %v\n%s", err, data)
	}
	return fc
}

func TestRunEmptyCollection(t *testing.T) {
	out := filepath.Join(t.TempDir(), "casas.json")

	if err := run(Options{Output: out}, nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	fc := loadOutput(t, out)
	if fc.Len() != 0 {
		t.Errorf("len = %d", fc.Len())
	}
	if typ, _ := fc.Member("type"); string(typ) != `"FeatureCollection"` {
		t.Errorf("type = %s", typ)
	}
}

func TestRunRefusesOverwrite(t *testing.T) {
	out := filepath.Join(t.TempDir(), "casas.json")
	if err := os.WriteFile(out, []byte(`{"features":[{"id":1}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run(Options{Output: out}, nil); err == nil {
		t.Fatal("expected error without --force")
	}
	if fc := loadOutput(t, out); fc.Len() != 1 {
		t.Errorf("existing file modified")
	}

	if err := run(Options{Output: out, Force: true}, nil); err != nil {
		t.Fatalf("run with force: %v", err)
	}
	if fc := loadOutput(t, out); fc.Len() != 0 {
		t.Errorf("len = %d after forced seed", fc.Len())
	}
}

func TestRunFromYAMLStdin(t *testing.T) {
	out := filepath.Join(t.TempDir(), "casas.json")
	input := `
- type: Feature
  geometry:
    type: Point
    coordinates: [-3.70, 40.41]
  properties:
    name: Casa Azul
- type: Feature
  geometry:
    type: Point
    coordinates: [-3.71, 40.42]
  properties:
    name: Casa Roja
`

	if err := run(Options{Input: "-", Format: "yaml", Output: out}, strings.NewReader(input)); err != nil {
		t.Fatalf("run: %v", err)
	}

	fc := loadOutput(t, out)
	if fc.Len() != 2 {
		t.Fatalf("len = %d", fc.Len())
	}

	var first struct {
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(fc.Features[0], &first); err != nil {
		t.Fatal(err)
	}
	if first.Properties.Name != "Casa Azul" {
		t.Errorf("name = %q", first.Properties.Name)
	}
}

func TestRunCompactFromJSONFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.json")
	out := filepath.Join(dir, "casas.json")
	if err := os.WriteFile(in, []byte(`{"type": "FeatureCollection", "features": [ {"id": 1} ]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run(Options{Input: in, Output: out, Compact: true}, nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"FeatureCollection","features":[{"id":1}]}` {
		t.Errorf("output = %s", data)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := decode([]byte(`{"type":"FeatureCollection"}`), "json"); err == nil {
		t.Error("expected error for document without features")
	}
	if _, err := decode([]byte("features: [1"), "yaml"); err == nil {
		t.Error("expected YAML error")
	}
}

func TestDetectFormat(t *testing.T) {
	for path, want := range map[string]string{
		"casas.yaml": "yaml",
		"casas.YML":  "yaml",
		"casas.json": "json",
		"-":          "json",
	} {
		if got := detectFormat(path); got != want {
			t.Errorf("detectFormat(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestRunCompactReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "casas.json")
	if err := os.WriteFile(out, []byte(`{"features":[{"id":1}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	before, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}

	if err := run(Options{Output: out, Force: true, Compact: true}, nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	after, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if os.SameFile(before, after) {
		t.Error("compact output was written in place instead of renamed over")
	}
	if after.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", after.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
	if fc := loadOutput(t, out); fc.Len() != 0 {
		t.Errorf("len = %d", fc.Len())
	}
}
