// Package output writes expansion results to disk: the variant files, the
// verbatim template copy, the meta.csv label index and the run.json manifest.
// The expansion engine performs no I/O of its own; everything it produces
// flows through a Writer.
package output

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/ArenaForge/core/errors"
	"github.com/FocuswithJustin/ArenaForge/core/expand"
	"github.com/FocuswithJustin/ArenaForge/core/template"
)

// TemplateCopyName is the filename of the verbatim template copy.
const TemplateCopyName = "template.yaml"

// MetaName is the filename of the label index.
const MetaName = "meta.csv"

// ManifestName is the filename of the run manifest.
const ManifestName = "run.json"

// FormatFilename builds a variant filename: the template stem, the
// zero-padded index, then any labels, joined by underscores. Labels are
// sanitized so the result is a portable filename.
func FormatFilename(stem string, index, width int, labels []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s_%0*d", stem, width, index)
	for _, l := range labels {
		sb.WriteByte('_')
		sb.WriteString(sanitizeLabel(l))
	}
	sb.WriteString(".yaml")
	return sb.String()
}

// sanitizeLabel maps a label to filename-friendly characters.
func sanitizeLabel(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '_' || r == '-' || r == '.':
			return r
		default:
			return '-'
		}
	}, s)
}

// VariantRecord describes one written variant for the manifest and catalog.
type VariantRecord struct {
	// Index is the variant's 0-based position in the expansion order.
	Index int `json:"index"`

	// Name is the filename within the output directory.
	Name string `json:"name"`

	// BLAKE3 is the hex digest of the serialized variant bytes.
	BLAKE3 string `json:"blake3"`

	// Labels are the variant's label texts in emission order.
	Labels []string `json:"labels,omitempty"`
}

// RunInfo carries the run settings recorded in the manifest.
type RunInfo struct {
	Tool     string
	Version  string
	Template string
	Seed     int
	Ceiling  int
	Sample   int
	Total    int64
}

// Manifest is the run.json document.
type Manifest struct {
	RunID     string          `json:"run_id"`
	Tool      string          `json:"tool"`
	Version   string          `json:"version"`
	Template  string          `json:"template"`
	Seed      int             `json:"seed"`
	Ceiling   int             `json:"ceiling"`
	Sample    int             `json:"sample,omitempty"`
	Total     int64           `json:"total"`
	Produced  int             `json:"produced"`
	CreatedAt string          `json:"created_at"`
	Variants  []VariantRecord `json:"variants"`
}

// Writer writes one run's output directory.
type Writer struct {
	dir      string
	metaFile *os.File
	meta     *csv.Writer
	records  []VariantRecord
	closed   bool
	created  bool
}

// NewWriter creates the output directory and opens meta.csv for appending
// rows. Close flushes and releases it.
func NewWriter(dir string) (*Writer, error) {
	created := false
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		created = true
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewIO("create", dir, err)
	}
	f, err := os.Create(filepath.Join(dir, MetaName))
	if err != nil {
		return nil, errors.NewIO("create", filepath.Join(dir, MetaName), err)
	}
	return &Writer{dir: dir, metaFile: f, meta: csv.NewWriter(f), created: created}, nil
}

// Dir returns the output directory path.
func (w *Writer) Dir() string { return w.dir }

// CreatedDir reports whether NewWriter created the output directory, as
// opposed to reusing one that already existed.
func (w *Writer) CreatedDir() bool { return w.created }

// Discard closes the writer and removes the output directory when NewWriter
// created it. A failed run must not leave a partial variant directory
// behind; a pre-existing directory is left in place.
func (w *Writer) Discard() error {
	closeErr := w.Close()
	if !w.created {
		return closeErr
	}
	if err := os.RemoveAll(w.dir); err != nil {
		return errors.NewIO("remove", w.dir, err)
	}
	return closeErr
}

// Records returns the records of all variants written so far.
func (w *Writer) Records() []VariantRecord {
	return append([]VariantRecord(nil), w.records...)
}

// WriteTemplateCopy writes the source template verbatim as template.yaml.
func (w *Writer) WriteTemplateCopy(tpl *template.Template) error {
	path := filepath.Join(w.dir, TemplateCopyName)
	if err := os.WriteFile(path, tpl.Source, 0644); err != nil {
		return errors.NewIO("write", path, err)
	}
	return nil
}

// WriteVariant serializes a variant, writes it under a formatted filename
// and appends its meta.csv row. Filenames are 1-based like the index column
// shown to users.
func (w *Writer) WriteVariant(v *expand.Variant, stem string, width int) (VariantRecord, error) {
	data, err := template.Marshal(v.Root)
	if err != nil {
		return VariantRecord{}, errors.Wrapf(err, "serialize variant %d", v.Index)
	}

	labels := v.Labels.Texts()
	name := FormatFilename(stem, v.Index+1, width, labels)
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return VariantRecord{}, errors.NewIO("write", path, err)
	}

	sum := blake3.Sum256(data)
	rec := VariantRecord{
		Index:  v.Index,
		Name:   name,
		BLAKE3: hex.EncodeToString(sum[:]),
		Labels: labels,
	}
	w.records = append(w.records, rec)

	if err := w.meta.Write(append([]string{name}, labels...)); err != nil {
		return VariantRecord{}, errors.NewIO("write", filepath.Join(w.dir, MetaName), err)
	}
	return rec, nil
}

// WriteManifest writes run.json covering everything written so far and
// returns the manifest, including its fresh run ID.
func (w *Writer) WriteManifest(info RunInfo) (*Manifest, error) {
	m := &Manifest{
		RunID:     uuid.New().String(),
		Tool:      info.Tool,
		Version:   info.Version,
		Template:  info.Template,
		Seed:      info.Seed,
		Ceiling:   info.Ceiling,
		Sample:    info.Sample,
		Total:     info.Total,
		Produced:  len(w.records),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Variants:  w.records,
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode manifest")
	}
	path := filepath.Join(w.dir, ManifestName)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return nil, errors.NewIO("write", path, err)
	}
	return m, nil
}

// Close flushes and closes meta.csv. Closing twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.meta.Flush()
	if err := w.meta.Error(); err != nil {
		w.metaFile.Close()
		return errors.NewIO("write", filepath.Join(w.dir, MetaName), err)
	}
	if err := w.metaFile.Close(); err != nil {
		return errors.NewIO("close", filepath.Join(w.dir, MetaName), err)
	}
	return nil
}

// Stem returns the template filename without directory or extension, the
// base name used for variant files and the default output directory.
func Stem(templatePath string) string {
	base := filepath.Base(templatePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DefaultDir returns the default output directory for a template,
// tmp/<stem>_variations next to the working directory.
func DefaultDir(templatePath string) string {
	return filepath.Join("tmp", Stem(templatePath)+"_variations")
}

// IndexWidth returns the zero-pad width for n variants, at least 5 digits.
func IndexWidth(n int64) int {
	width := len(fmt.Sprintf("%d", n))
	if width < 5 {
		width = 5
	}
	return width
}
