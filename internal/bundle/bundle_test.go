package bundle

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestParseCompression(t *testing.T) {
	cases := []struct {
		in      string
		want    Compression
		wantErr bool
	}{
		{"", CompressionXZ, false},
		{"xz", CompressionXZ, false},
		{"gzip", CompressionGzip, false},
		{"gz", CompressionGzip, false},
		{"GZIP", CompressionGzip, false},
		{"zstd", "", true},
	}
	for _, tc := range cases {
		got, err := ParseCompression(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseCompression(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseCompression(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDefaultName(t *testing.T) {
	if got := DefaultName("tmp/arena_variations/", CompressionXZ); got != "arena_variations.tar.xz" {
		t.Errorf("DefaultName xz = %q", got)
	}
	if got := DefaultName("out", CompressionGzip); got != "out.tar.gz" {
		t.Errorf("DefaultName gzip = %q", got)
	}
}

func TestCreateListRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionXZ, CompressionGzip} {
		t.Run(string(c), func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "run")
			writeTree(t, dir, map[string]string{
				"template.yaml":     "a: 1\n",
				"arena_00001.yaml":  "a: 1\n",
				"arena_00002.yaml":  "a: 2\n",
				"meta.csv":          "arena_00001.yaml\n",
				"sub/manifest.json": "{}\n",
			})

			bundlePath := filepath.Join(t.TempDir(), DefaultName(dir, c))
			if err := Create(bundlePath, dir, c); err != nil {
				t.Fatalf("Create: %v", err)
			}

			detected, err := Detect(bundlePath)
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if detected != c {
				t.Errorf("Detect = %q, want %q", detected, c)
			}

			names, err := List(bundlePath)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			want := []string{
				"arena_00001.yaml",
				"arena_00002.yaml",
				"meta.csv",
				"sub/manifest.json",
				"template.yaml",
			}
			if !reflect.DeepEqual(names, want) {
				t.Errorf("List = %v, want %v", names, want)
			}
		})
	}
}

func TestCreateIsDeterministic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	writeTree(t, dir, map[string]string{
		"b.yaml": "b\n",
		"a.yaml": "a\n",
		"c.yaml": "c\n",
	})

	first := filepath.Join(t.TempDir(), "first.tar.xz")
	second := filepath.Join(t.TempDir(), "second.tar.xz")
	if err := Create(first, dir, CompressionXZ); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := Create(second, dir, CompressionXZ); err != nil {
		t.Fatalf("Create: %v", err)
	}

	a, _ := List(first)
	b, _ := List(second)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("member order differs: %v vs %v", a, b)
	}
	if len(a) == 0 || a[0] != "a.yaml" {
		t.Errorf("members not sorted: %v", a)
	}
}

func TestDetectRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.tar.xz")
	if err := os.WriteFile(path, []byte("plain text"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Detect(path); err == nil {
		t.Error("Detect succeeded on junk, want error")
	}
}
