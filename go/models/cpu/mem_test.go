package cpu

import (
	"bytes"
	"encoding/binary"
	"testing"
)

var asdf = []byte("asdf")

func TestMem16(t *testing.T) {
	mem := NewMem(16, binary.LittleEndian)
	if err := mem.MemMap(0x10, 0x10, PROT_ALL, ""); err != nil {
		t.Fatal("failed to map memory:", err)
	}
	if err := mem.MemMap(0xf000, 0x2000, PROT_ALL, ""); err == nil {
		t.Fatal("mapped memory outside range")
	}
	if err := mem.MemMap(0x18, 0x10, PROT_ALL, ""); err == nil {
		t.Fatal("mapped overlapping region")
	}
	if err := mem.MemWrite(0x1000, asdf); err == nil {
		t.Error("write succeeded above mapped memory")
	}
}

func TestMem(t *testing.T) {
	mappings := [][]uint64{
		{0x1000, 0x1000, PROT_READ | PROT_WRITE | PROT_EXEC},
		{0x2000, 0x1000, PROT_READ},
		{0x3000, 0x1000, PROT_READ | PROT_WRITE},
		{0x4000, 0x1000, PROT_READ | PROT_EXEC},
		{0x5000, 0x1000, PROT_EXEC},
	}

	mem := NewMem(32, binary.LittleEndian)
	for _, v := range mappings {
		if err := mem.MemMap(v[0], v[1], int(v[2]), ""); err != nil {
			t.Fatalf("failed to map memory (%#x, %#x, %d): %v", v[0], v[1], v[2], err)
		}
	}
	// write outside bounds
	if err := mem.MemWrite(0, asdf); err == nil {
		t.Error("write succeeded below mapped memory")
	}
	if err := mem.MemWrite(0x6000, asdf); err == nil {
		t.Error("write succeeded above mapped memory")
	}
	// straddling two regions is not a valid access
	if err := mem.MemWrite(0x1ffe, asdf); err == nil {
		t.Error("write succeeded across a region boundary")
	}
	// write inside bounds
	for _, v := range mappings {
		if err := mem.MemWrite(v[0], asdf); err != nil {
			t.Error("write failed inside mapped memory")
		}
	}
	for _, v := range mappings {
		if tmp, err := mem.MemRead(v[0], uint64(len(asdf))); err != nil {
			t.Error("read failed inside mapped memory")
		} else if !bytes.Equal(tmp, asdf) {
			t.Error("read returned bad value")
		}
	}
	// now test memory protections
	tmp := make([]byte, 0x1000)
	for _, v := range mappings {
		if _, err := mem.ReadProt(v[0], v[1], int(v[2])); err != nil {
			t.Errorf("valid read failed on (%#x, %#x, %d): %v", v[0], v[1], v[2], err)
		}
		if _, err := mem.ReadProt(v[0], v[1], 8); err == nil {
			t.Errorf("invalid read succeeded on (%#x, %#x, %d)", v[0], v[1], v[2])
		}
		if err := mem.WriteProt(v[0], tmp, int(v[2])); err != nil {
			t.Errorf("valid write failed on (%#x, %#x, %d): %v", v[0], v[1], v[2], err)
		}
		if err := mem.WriteProt(v[0], tmp, 8); err == nil {
			t.Errorf("invalid write succeeded on (%#x, %#x, %d)", v[0], v[1], v[2])
		}
	}
	for _, v := range mappings {
		if _, err := mem.ReadProt(v[0], v[1], PROT_EXEC); (v[2]&PROT_EXEC == 0 && err == nil) || (v[2]&PROT_EXEC == PROT_EXEC && err != nil) {
			t.Error("PROT_EXEC mismatch")
		}
	}
}

func TestMemUint(t *testing.T) {
	rawtest := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	ltable := map[int]uint64{
		1: 0x1,
		2: 0x0201,
		4: 0x04030201,
		8: 0x0807060504030201,
	}
	btable := map[int]uint64{
		1: 0x1,
		2: 0x0102,
		4: 0x01020304,
		8: 0x0102030405060708,
	}

	meml := NewMem(32, binary.LittleEndian)
	memb := NewMem(32, binary.BigEndian)

	if err := meml.MemMap(0x1000, 0x1000, PROT_READ|PROT_WRITE, ""); err != nil {
		t.Fatal("failed to map memory:", err)
	}
	if err := memb.MemMap(0x1000, 0x1000, PROT_READ|PROT_WRITE, ""); err != nil {
		t.Fatal("failed to map memory:", err)
	}
	if err := meml.MemWrite(0x1000, rawtest); err != nil {
		t.Error("failed to write memory:", err)
	}
	if err := memb.MemWrite(0x1000, rawtest); err != nil {
		t.Error("failed to write memory:", err)
	}
	for size, val := range ltable {
		if n, err := meml.ReadUint(0x1000, size, PROT_READ); err != nil {
			t.Error("failed to read uint:", err)
		} else if n != val {
			t.Error("inconsistent uint value:", n, val)
		}
	}
	for size, val := range btable {
		if n, err := memb.ReadUint(0x1000, size, PROT_READ); err != nil {
			t.Error("failed to read uint:", err)
		} else if n != val {
			t.Error("inconsistent uint value:", n, val)
		}
	}
	for size, val := range ltable {
		if err := meml.WriteUint(0x1000, size, PROT_WRITE, val); err != nil {
			t.Error("failed to write uint:", err)
		}
		if n, err := meml.ReadUint(0x1000, size, PROT_READ); err != nil {
			t.Error("failed to read uint:", err)
		} else if n != val {
			t.Error("inconsistent uint value:", n, val)
		}
	}
}

// narrow writes must leave the rest of the containing word alone
func TestMemNarrowWrite(t *testing.T) {
	mem := NewMem(32, binary.LittleEndian)
	if err := mem.MemMap(0x1000, 0x10, PROT_ALL, ""); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteUint(0x1000, 4, 0, 0x11223344); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteUint(0x1001, 1, 0, 0xaa); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteUint(0x1002, 2, 0, 0xbbcc); err != nil {
		t.Fatal(err)
	}
	if n, err := mem.ReadUint(0x1000, 4, 0); err != nil {
		t.Fatal(err)
	} else if n != 0xbbccaa44 {
		t.Fatalf("got %#x, expected 0xbbccaa44", n)
	}
}

func TestMemZero(t *testing.T) {
	mem := NewMem(32, binary.LittleEndian)
	if err := mem.MemMap(0x1000, 0x10, PROT_ALL, "text"); err != nil {
		t.Fatal(err)
	}
	page := mem.Mappings().Find(0x1000)
	data := page.Data
	mem.MemWrite(0x1000, asdf)
	mem.MemZero()
	if tmp, _ := mem.MemRead(0x1000, 4); !bytes.Equal(tmp, []byte{0, 0, 0, 0}) {
		t.Fatal("MemZero left data behind")
	}
	if &data[0] != &mem.Mappings().Find(0x1000).Data[0] {
		t.Fatal("MemZero reallocated a region")
	}
}

func TestSignExtend(t *testing.T) {
	table := []struct {
		in   uint64
		size int
		out  uint64
	}{
		{0x80, 1, 0xffffffffffffff80},
		{0x7f, 1, 0x7f},
		{0x8000, 2, 0xffffffffffff8000},
		{0x7fff, 2, 0x7fff},
		{0x80000000, 4, 0xffffffff80000000},
	}
	for _, v := range table {
		if got := SignExtend(v.in, v.size); got != v.out {
			t.Errorf("SignExtend(%#x, %d) = %#x, expected %#x", v.in, v.size, got, v.out)
		}
	}
}

func TestMemReadOversize(t *testing.T) {
	mem := NewMem(32, binary.LittleEndian)
	if err := mem.MemMap(0x1000, 0x1000, PROT_ALL, ""); err != nil {
		t.Fatal(err)
	}
	for _, size := range []uint64{0x1001, 1 << 40, ^uint64(0) - 3} {
		if _, err := mem.MemRead(0x1000, size); err == nil {
			t.Errorf("read of %#x bytes succeeded", size)
		} else if merr, ok := err.(*MemError); !ok || merr.Enum != MEM_READ_UNMAPPED {
			t.Errorf("read of %#x bytes: %v", size, err)
		}
	}
	if p, err := mem.MemRead(0x1000, 0x1000); err != nil || len(p) != 0x1000 {
		t.Fatalf("full region read: %d bytes, %v", len(p), err)
	}
}
