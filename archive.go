package csvetl

import (
	"bytes"
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"golang.org/x/xerrors"
)

// Compression of a downloaded source file.
type Compression int

const (
	// CompressionAuto detects gzip and ZIP files by their magic bytes.
	CompressionAuto Compression = iota
	CompressionNone
	CompressionGzip
	CompressionZip
)

func (c Compression) String() string {
	switch c {
	case CompressionAuto:
		return "auto"
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZip:
		return "zip"
	}
	return "unknown"
}

// ParseCompression parses names used in pipeline definitions.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return CompressionAuto, nil
	case "none":
		return CompressionNone, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	case "zip":
		return CompressionZip, nil
	}
	return CompressionAuto, xerrors.Errorf("unknown compression %q", s)
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zipMagic  = []byte("PK\x03\x04")
)

// openSource opens a local file and returns its decompressed content.
// For ZIP files, member selects the entry; the first CSV entry is used when it is empty.
func openSource(name string, c Compression, member string) (io.ReadCloser, error) {
	if c == CompressionAuto {
		var err error
		if c, err = detectCompression(name); err != nil {
			return nil, err
		}
	}

	switch c {
	case CompressionZip:
		return openZipMember(name, member)
	case CompressionGzip:
		f, err := os.Open(name)
		if err != nil {
			return nil, xerrors.Errorf("failed to open %s: %w", name, err)
		}
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, xerrors.Errorf("failed to read gzip header of %s: %w", name, err)
		}
		return &multiCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	default:
		f, err := os.Open(name)
		if err != nil {
			return nil, xerrors.Errorf("failed to open %s: %w", name, err)
		}
		return f, nil
	}
}

func detectCompression(name string) (Compression, error) {
	f, err := os.Open(name)
	if err != nil {
		return CompressionNone, xerrors.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	head := make([]byte, 4)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return CompressionNone, xerrors.Errorf("failed to read %s: %w", name, err)
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, zipMagic):
		return CompressionZip, nil
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip, nil
	}

	return CompressionNone, nil
}

func openZipMember(name, member string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, xerrors.Errorf("failed to open zip file %s: %w", name, err)
	}

	var found *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if member != "" {
			if f.Name == member {
				found = f
				break
			}
			continue
		}
		if strings.EqualFold(path.Ext(f.Name), ".csv") {
			found = f
			break
		}
		if found == nil {
			found = f
		}
	}

	if found == nil {
		zr.Close()
		if member != "" {
			return nil, xerrors.Errorf("%s not found in %s: %w", member, name, ErrNotFound)
		}
		return nil, xerrors.Errorf("%s has no files: %w", name, ErrNotFound)
	}

	rc, err := found.Open()
	if err != nil {
		zr.Close()
		return nil, xerrors.Errorf("failed to open %s in %s: %w", found.Name, name, err)
	}

	return &multiCloser{Reader: rc, closers: []io.Closer{rc, zr}}, nil
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
