package tablebase

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/daystram/tinyhouse/board"
)

const Version uint32 = 1

var Tag = [8]byte{'T', 'N', 'Y', 'T', 'B', 0x00, 0x01, 0x00}

var (
	ErrWriteHeader        = errors.New("write header")
	ErrWriteRecord        = errors.New("write record")
	ErrReadHeader         = errors.New("read header")
	ErrReadRecord         = errors.New("read record")
	ErrUnknownTag         = errors.New("unknown format tag")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrUnsorted           = errors.New("records not sorted by key")
)

// header and row are the packed little-endian on-disk layouts.
type header struct {
	Tag     [8]byte
	Version uint32
	Count   uint64
}

type row struct {
	Key  uint64
	WDL  uint8
	DTM  uint16
	Move uint32
}

const (
	HeaderSize = 8 + 4 + 8
	RowSize    = 8 + 1 + 2 + 4
)

// maxPrealloc caps the slice reserved from an untrusted record count.
const maxPrealloc = 1 << 20

// Write encodes recs, which must be sorted ascending by key.
func Write(w io.Writer, recs []Record) error {
	for i := 1; i < len(recs); i++ {
		if recs[i-1].Key >= recs[i].Key {
			return fmt.Errorf("%w: index %d", ErrUnsorted, i)
		}
	}

	h := header{Tag: Tag, Version: Version, Count: uint64(len(recs))}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteHeader, err)
	}
	bw := bufio.NewWriter(w)
	for i, rec := range recs {
		r := row{
			Key:  rec.Key,
			WDL:  uint8(rec.WDL),
			DTM:  rec.DTM,
			Move: uint32(rec.Best),
		}
		if err := binary.Write(bw, binary.LittleEndian, &r); err != nil {
			return fmt.Errorf("%w: index %d: %w", ErrWriteRecord, i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteRecord, err)
	}
	return nil
}

// Read decodes a table, rejecting unknown tags, versions and unsorted payloads.
func Read(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadHeader, err)
	}
	if h.Tag != Tag {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, h.Tag[:])
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}

	n := h.Count
	if n > maxPrealloc {
		n = maxPrealloc
	}
	recs := make([]Record, 0, n)
	for i := uint64(0); i < h.Count; i++ {
		var rw row
		if err := binary.Read(br, binary.LittleEndian, &rw); err != nil {
			return nil, fmt.Errorf("%w: index %d of %d: %w", ErrReadRecord, i, h.Count, err)
		}
		if rw.WDL > uint8(WDLWin) || rw.Move > 0xFFFF {
			return nil, fmt.Errorf("%w: index %d: bad field", ErrReadRecord, i)
		}
		if i > 0 && recs[i-1].Key >= rw.Key {
			return nil, fmt.Errorf("%w: index %d", ErrUnsorted, i)
		}
		recs = append(recs, Record{
			Key:  rw.Key,
			WDL:  WDL(rw.WDL),
			DTM:  rw.DTM,
			Best: board.Move(rw.Move),
		})
	}
	return recs, nil
}
