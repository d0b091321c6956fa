package trace

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/lunixbochs/mumips/go/models"
)

var TRACE_MAGIC = "MUTR"

type TraceHeader struct {
	// MAGIC ("MUTR")
	Magic string `struc:"[4]byte" json:"-"`
	// file format version
	Version uint32 `json:"version"`

	// Simulated architecture, right-null-padded.
	Arch string `struc:"[32]byte" json:"arch"`

	// Byte Order - 0 for little, 1 for big
	OrderNum  uint8            `json:"-"`
	OrderName string           `struc:"skip" json:"order"`
	Order     binary.ByteOrder `struc:"skip" json:"-"`

	// where execution started
	Entry uint64 `json:"entry"`
}

type TraceWriter struct {
	w  io.WriteCloser
	zw *snappy.Writer
}

func NewWriter(w io.WriteCloser, arch string, order binary.ByteOrder, entry uint64) (*TraceWriter, error) {
	header := &TraceHeader{
		Magic:   TRACE_MAGIC,
		Version: 1,
		Arch:    arch,
		Entry:   entry,
	}
	if order == binary.BigEndian {
		header.OrderNum = 1
	}
	if err := struc.Pack(w, header); err != nil {
		return nil, errors.Wrap(err, "failed to pack header")
	}
	return &TraceWriter{w: w, zw: snappy.NewBufferedWriter(w)}, nil
}

// write a frame at a time
func (t *TraceWriter) Pack(frame models.Op) error {
	buf := make([]byte, frame.Sizeof())
	frame.Pack(buf)
	_, err := t.zw.Write(buf)
	return err
}

func (t *TraceWriter) Close() error {
	err := t.zw.Close()
	if cerr := t.w.Close(); err == nil {
		err = cerr
	}
	return err
}

type TraceReader struct {
	r      io.ReadCloser
	zr     *snappy.Reader
	Header TraceHeader
}

func NewReader(r io.ReadCloser) (*TraceReader, error) {
	t := &TraceReader{r: r}
	if err := struc.Unpack(r, &t.Header); err != nil {
		return nil, errors.Wrap(err, "failed to unpack header")
	}
	if t.Header.Magic != TRACE_MAGIC {
		return nil, errors.New("invalid trace file magic")
	}
	t.Header.Arch = strings.TrimRight(t.Header.Arch, "\x00")
	switch t.Header.OrderNum {
	case 0:
		t.Header.Order, t.Header.OrderName = binary.LittleEndian, "little"
	case 1:
		t.Header.Order, t.Header.OrderName = binary.BigEndian, "big"
	default:
		return nil, errors.Errorf("invalid byte order %d", t.Header.OrderNum)
	}
	t.zr = snappy.NewReader(r)
	return t, nil
}

// Next returns io.EOF after the last op.
func (t *TraceReader) Next() (models.Op, error) {
	op, _, err := Unpack(t.zr, false)
	return op, err
}

func (t *TraceReader) Close() error {
	t.zr.Reset(nil)
	return t.r.Close()
}
