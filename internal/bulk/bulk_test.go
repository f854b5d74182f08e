package bulk

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTree(t *testing.T, root string, paths []string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("a: 1\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestScanFindsTemplatesSorted(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"b.yaml",
		"a.yml",
		"sub/c.yaml",
		"notes.txt",
		"README.md",
	})

	got, err := Scan(root, nil, false)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{"a.yml", "b.yaml", "sub/c.yaml"}
	if !reflect.DeepEqual(rel(t, root, got), want) {
		t.Errorf("Scan = %v, want %v", rel(t, root, got), want)
	}
}

func TestScanSkipsVariationOutputDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"arena.yaml",
		"arena_variations/arena_00001.yaml",
		"arena_variations/template.yaml",
		"deep/maze_variations/maze_00001.yaml",
		"deep/maze.yaml",
	})

	got, err := Scan(root, nil, false)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{"arena.yaml", "deep/maze.yaml"}
	if !reflect.DeepEqual(rel(t, root, got), want) {
		t.Errorf("Scan = %v, want %v", rel(t, root, got), want)
	}
}

func TestScanIgnoreDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"keep/a.yaml",
		"skip/b.yaml",
	})

	got, err := Scan(root, []string{"skip"}, false)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{"keep/a.yaml"}
	if !reflect.DeepEqual(rel(t, root, got), want) {
		t.Errorf("Scan = %v, want %v", rel(t, root, got), want)
	}
}

func TestScanHiddenFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"a.yaml",
		".hidden.yaml",
		".git/config.yaml",
	})

	got, err := Scan(root, nil, false)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if want := []string{"a.yaml"}; !reflect.DeepEqual(rel(t, root, got), want) {
		t.Errorf("Scan = %v, want %v", rel(t, root, got), want)
	}

	got, err = Scan(root, nil, true)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{".git/config.yaml", ".hidden.yaml", "a.yaml"}
	if !reflect.DeepEqual(rel(t, root, got), want) {
		t.Errorf("Scan with hidden = %v, want %v", rel(t, root, got), want)
	}
}
