package tablebase

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// CompressedExt marks table files stored zstd-compressed.
const CompressedExt = ".zst"

// WriteFile writes recs to path through a temporary file in the same
// directory, renamed into place only once everything was written.
func WriteFile(path string, recs []Record) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteHeader, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	var w io.Writer = tmp
	var enc *zstd.Encoder
	if strings.HasSuffix(path, CompressedExt) {
		enc, err = zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return fmt.Errorf("%w: create zstd encoder: %w", ErrWriteHeader, err)
		}
		w = enc
	}

	if err = Write(w, recs); err != nil {
		if enc != nil {
			_ = enc.Close()
		}
		return err
	}
	if enc != nil {
		if err = enc.Close(); err != nil {
			return fmt.Errorf("%w: flush zstd: %w", ErrWriteRecord, err)
		}
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteRecord, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteRecord, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteRecord, err)
	}
	return nil
}

// ReadFile reads a table written by WriteFile.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadHeader, err)
	}
	defer f.Close()

	if !strings.HasSuffix(path, CompressedExt) {
		return Read(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: create zstd decoder: %w", ErrReadHeader, err)
	}
	defer dec.Close()
	return Read(dec)
}
