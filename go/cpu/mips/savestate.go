package mips

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"hash/crc32"
	"io/ioutil"

	"github.com/pkg/errors"

	"github.com/lunixbochs/mumips/go/models"
)

// savestate format, big endian:
//
// header
// uint32(format version)
// uint32(crc32 of compressed data)
// uint64(length of compressed data)
// remainder is gzip-compressed
//
// -- uncompressed data start --
// cpu: 32 x uint32(gpr), uint32(hi), uint32(lo), uint32(pc),
//      uint64(instruction count), bool(running), bool(hazard valid), uint32(previous function)
//
// program image
// uint32(load base), uint32(word count), 1..num: uint32(word)
//
// memory
// uint32(number of regions)
// 1..num: uint64(addr), uint64(len), uint32(prot), <raw memory bytes of len>

const saveVersion = 1

type saveHeader struct {
	Version uint32
	Crc     uint32
	Size    uint64
}

type saveCpu struct {
	Regs     [32]uint32
	HI, LO   uint32
	PC       uint32
	Count    uint64
	Running  bool
	HasPrev  bool
	PrevFunc uint32
}

type saveRegion struct {
	Addr uint64
	Size uint64
	Prot uint32
}

// Save snapshots the committed state, the program image and every region.
func (c *Cpu) Save() ([]byte, error) {
	var body bytes.Buffer
	s := models.StrucStream{Stream: &body, Order: binary.BigEndian}
	state := &saveCpu{
		Regs: c.cur.Regs, HI: c.cur.HI, LO: c.cur.LO, PC: c.cur.PC,
		Count: c.count, Running: c.running,
		HasPrev: c.hasPrev, PrevFunc: c.prevFunc,
	}
	if err := s.Pack(state, c.loadBase, uint32(len(c.program))); err != nil {
		return nil, errors.Wrap(err, "failed to pack cpu state")
	}
	for _, w := range c.program {
		if err := s.Pack(w); err != nil {
			return nil, err
		}
	}
	mappings := c.Mappings()
	if err := s.Pack(uint32(len(mappings))); err != nil {
		return nil, err
	}
	for _, m := range mappings {
		if err := s.Pack(&saveRegion{m.Addr, m.Size, uint32(m.Prot)}); err != nil {
			return nil, err
		}
		body.Write(m.Data)
	}

	var tmp bytes.Buffer
	gz := gzip.NewWriter(&tmp)
	if _, err := body.WriteTo(gz); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	data := tmp.Bytes()

	var final bytes.Buffer
	s = models.StrucStream{Stream: &final, Order: binary.BigEndian}
	if err := s.Pack(&saveHeader{saveVersion, crc32.ChecksumIEEE(data), uint64(len(data))}); err != nil {
		return nil, err
	}
	final.Write(data)
	return final.Bytes(), nil
}

// Restore loads a snapshot produced by Save. The region layout must match the
// one this Cpu was created with.
func (c *Cpu) Restore(p []byte) error {
	r := bytes.NewReader(p)
	var hdr saveHeader
	s := models.StrucStream{Stream: readWriter{r}, Order: binary.BigEndian}
	if err := s.Unpack(&hdr); err != nil {
		return errors.Wrap(err, "failed to read savestate header")
	}
	if hdr.Version != saveVersion {
		return errors.Errorf("unsupported savestate version %d", hdr.Version)
	}
	data := p[len(p)-r.Len():]
	if uint64(len(data)) != hdr.Size {
		return errors.Errorf("savestate is truncated: have %d bytes, want %d", len(data), hdr.Size)
	}
	if crc32.ChecksumIEEE(data) != hdr.Crc {
		return errors.New("savestate checksum mismatch")
	}
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "failed to open savestate body")
	}
	raw, err := ioutil.ReadAll(gz)
	if err != nil {
		return errors.Wrap(err, "failed to decompress savestate body")
	}
	body := bytes.NewReader(raw)
	s = models.StrucStream{Stream: readWriter{body}, Order: binary.BigEndian}

	var state saveCpu
	var base, count uint32
	if err := s.Unpack(&state, &base, &count); err != nil {
		return errors.Wrap(err, "failed to unpack cpu state")
	}
	if uint64(count)*4 > uint64(body.Len()) {
		return errors.Errorf("savestate program image too large: %d words", count)
	}
	program := make([]uint32, count)
	for i := range program {
		if err := s.Unpack(&program[i]); err != nil {
			return err
		}
	}

	var nregions uint32
	if err := s.Unpack(&nregions); err != nil {
		return err
	}
	mappings := c.Mappings()
	if int(nregions) != len(mappings) {
		return errors.Errorf("savestate has %d regions, cpu has %d", nregions, len(mappings))
	}
	type chunk struct {
		addr uint64
		data []byte
	}
	chunks := make([]chunk, 0, nregions)
	for i := 0; i < int(nregions); i++ {
		var reg saveRegion
		if err := s.Unpack(&reg); err != nil {
			return err
		}
		m := mappings.Find(reg.Addr)
		if m == nil || m.Addr != reg.Addr || m.Size != reg.Size {
			return errors.Errorf("savestate region %#x-%#x does not match the memory map", reg.Addr, reg.Addr+reg.Size)
		}
		if reg.Size > uint64(body.Len()) {
			return errors.Errorf("savestate region %#x is truncated", reg.Addr)
		}
		buf := make([]byte, reg.Size)
		body.Read(buf)
		chunks = append(chunks, chunk{reg.Addr, buf})
	}

	// nothing is modified until the whole snapshot has been validated
	for _, ch := range chunks {
		if err := c.MemWrite(ch.addr, ch.data); err != nil {
			return err
		}
	}
	c.cur = State{Regs: state.Regs, HI: state.HI, LO: state.LO, PC: state.PC}
	c.next = c.cur
	c.count = state.Count
	c.running = state.Running
	c.hasPrev, c.prevFunc = state.HasPrev, state.PrevFunc
	c.program, c.loadBase = program, base
	return nil
}

// readWriter adapts a reader to the io.ReadWriter StrucStream expects.
type readWriter struct {
	*bytes.Reader
}

func (readWriter) Write(p []byte) (int, error) {
	return 0, errors.New("read-only stream")
}
