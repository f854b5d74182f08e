// Package bundle packs a finished output directory into a single archive
// file, tar.xz by default with gzip as an alternative, and lists archive
// members for verification.
package bundle

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/ArenaForge/core/errors"
)

// Compression selects the archive compression.
type Compression string

// Supported compressions.
const (
	CompressionXZ   Compression = "xz"
	CompressionGzip Compression = "gzip"
)

// ParseCompression maps a user-facing name to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "xz":
		return CompressionXZ, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	default:
		return "", errors.NewParse("compression", "", "unknown compression "+s)
	}
}

// DefaultName returns the conventional bundle filename for a directory.
func DefaultName(dir string, c Compression) string {
	base := filepath.Base(filepath.Clean(dir))
	if c == CompressionGzip {
		return base + ".tar.gz"
	}
	return base + ".tar.xz"
}

// Create archives every regular file under dir into bundlePath. Member names
// are relative to dir and written in sorted order, so the same directory
// always produces the same member sequence.
func Create(bundlePath, dir string, c Compression) error {
	members, err := collect(dir)
	if err != nil {
		return err
	}

	file, err := os.Create(bundlePath)
	if err != nil {
		return errors.NewIO("create", bundlePath, err)
	}
	defer file.Close()

	var cw io.WriteCloser
	switch c {
	case CompressionGzip:
		cw, err = gzip.NewWriterLevel(file, gzip.BestCompression)
		if err != nil {
			return errors.Wrap(err, "create gzip writer")
		}
	default:
		cw, err = xz.NewWriter(file)
		if err != nil {
			return errors.Wrap(err, "create xz writer")
		}
	}

	tw := tar.NewWriter(cw)
	for _, name := range members {
		if err := writeMember(tw, dir, name); err != nil {
			cw.Close()
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return errors.Wrap(err, "close tar writer")
	}
	if err := cw.Close(); err != nil {
		return errors.Wrap(err, "close compression writer")
	}
	return file.Close()
}

// List returns the member names of a bundle in archive order, detecting the
// compression from the file's magic bytes.
func List(bundlePath string) ([]string, error) {
	c, err := Detect(bundlePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(bundlePath)
	if err != nil {
		return nil, errors.NewIO("open", bundlePath, err)
	}
	defer file.Close()

	var cr io.Reader
	switch c {
	case CompressionGzip:
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip stream")
		}
		defer gz.Close()
		cr = gz
	default:
		cr, err = xz.NewReader(file)
		if err != nil {
			return nil, errors.Wrap(err, "open xz stream")
		}
	}

	var names []string
	tr := tar.NewReader(cr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewIO("read", bundlePath, err)
		}
		names = append(names, hdr.Name)
	}
	return names, nil
}

// Detect reads the bundle's magic bytes and reports its compression.
func Detect(bundlePath string) (Compression, error) {
	file, err := os.Open(bundlePath)
	if err != nil {
		return "", errors.NewIO("open", bundlePath, err)
	}
	defer file.Close()

	magic := make([]byte, 6)
	n, err := io.ReadFull(file, magic)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", errors.NewIO("read magic bytes", bundlePath, err)
	}

	if n >= 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		return CompressionGzip, nil
	}
	if n >= 6 && magic[0] == 0xfd && magic[1] == 0x37 && magic[2] == 0x7a &&
		magic[3] == 0x58 && magic[4] == 0x5a && magic[5] == 0x00 {
		return CompressionXZ, nil
	}
	return "", errors.NewParse("bundle", bundlePath, "unknown magic bytes")
}

// collect lists the regular files under dir, sorted by relative path.
func collect(dir string) ([]string, error) {
	var members []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		members = append(members, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.NewIO("walk", dir, err)
	}
	sort.Strings(members)
	return members, nil
}

func writeMember(tw *tar.Writer, dir, name string) error {
	path := filepath.Join(dir, filepath.FromSlash(name))
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewIO("read", path, err)
	}
	hdr := &tar.Header{
		Name: name,
		Mode: 0644,
		Size: int64(len(data)),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return errors.Wrapf(err, "write tar header for %s", name)
	}
	if _, err := tw.Write(data); err != nil {
		return errors.Wrapf(err, "write tar member %s", name)
	}
	return nil
}
