package corpus

import (
	"compress/bzip2"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// archiveReader closes the decoder and then the underlying file.
type archiveReader struct {
	io.Reader
	closers []func() error
}

func (a *archiveReader) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openArchive opens path and wraps it in the decoder its extension names.
func openArchive(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".bz2":
		return &archiveReader{Reader: bzip2.NewReader(f), closers: []func() error{f.Close}}, nil
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &archiveReader{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		release := func() error {
			zr.Close()
			return nil
		}
		return &archiveReader{Reader: zr, closers: []func() error{release, f.Close}}, nil
	default:
		return f, nil
	}
}
