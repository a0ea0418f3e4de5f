package ingest

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
	"go.uber.org/multierr"
)

// MaxLineLength bounds a single assertions row.  ConceptNet's longest rows
// carry large metadata documents but stay well below this.
const MaxLineLength = 16 * 1024 * 1024

const readBufferSize = 64 * 1024

// ErrLineTooLong is returned by Next for a row longer than MaxLineLength.  The
// row is discarded and the next call continues with the following line.
var ErrLineTooLong = errors.New("line too long")

// Compression identifies how an assertions file is encoded.
type Compression int

const (
	Plain Compression = iota
	Gzip
	XZ
	Zstd
)

// DetectCompression picks a decoder from the file name extension.
func DetectCompression(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return Gzip
	case strings.HasSuffix(name, ".xz"):
		return XZ
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		return Zstd
	}
	return Plain
}

// Reader yields the raw lines of an assertions dump.
type Reader struct {
	br            *bufio.Reader
	closers       []func() error
	line          string
	lineNo        int
	maxLineLength int
}

// OpenFile opens an assertions file, decompressing it according to its
// extension.
func OpenFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f, DetectCompression(path))
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "opening %v", path)
	}
	r.closers = append(r.closers, f.Close)
	return r, nil
}

// NewReader wraps r with the decoder for the given compression.
func NewReader(r io.Reader, compression Compression) (*Reader, error) {
	reader := &Reader{maxLineLength: MaxLineLength}

	var src io.Reader
	switch compression {
	case Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		reader.closers = append(reader.closers, gz.Close)
		src = gz

	case XZ:
		xzr, err := xz.NewReader(bufio.NewReader(r))
		if err != nil {
			return nil, errors.Wrap(err, "xz")
		}
		src = xzr

	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "zstd")
		}
		reader.closers = append(reader.closers, func() error {
			zr.Close()
			return nil
		})
		src = zr

	default:
		src = r
	}

	reader.br = bufio.NewReaderSize(src, readBufferSize)
	return reader, nil
}

// Next advances to the next non-empty line.  Returns io.EOF at the end of
// the input and ErrLineTooLong for a row which was skipped.
func (r *Reader) Next() error {
	for {
		line, tooLong, err := r.readLine()
		if err == io.EOF {
			return io.EOF
		} else if err != nil {
			return errors.Wrapf(err, "reading line %v", r.lineNo+1)
		}
		r.lineNo++
		if tooLong {
			r.line = ""
			return errors.Wrapf(ErrLineTooLong, "line %v", r.lineNo)
		}
		if strings.TrimSpace(line) != "" {
			r.line = line
			return nil
		}
	}
}

// readLine reads through the next newline.  Lines longer than
// maxLineLength are consumed but not kept.
func (r *Reader) readLine() (string, bool, error) {
	var (
		buf     []byte
		n       int
		tooLong bool
	)
	for {
		chunk, err := r.br.ReadSlice('\n')
		n += len(chunk)
		if n > r.maxLineLength+1 {
			tooLong = true
			buf = nil
		} else {
			buf = append(buf, chunk...)
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF && n == 0 {
			return "", false, io.EOF
		}
		if err != nil && err != io.EOF {
			return "", false, err
		}
		break
	}
	if tooLong {
		return "", true, nil
	}
	line := strings.TrimSuffix(string(buf), "\n")
	return strings.TrimSuffix(line, "\r"), false, nil
}

func (r *Reader) Line() string {
	return r.line
}

// LineNo is the 1-based number of the current line.
func (r *Reader) LineNo() int {
	return r.lineNo
}

func (r *Reader) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, r.closers[i]())
	}
	r.closers = nil
	return err
}
