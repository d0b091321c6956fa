package cpu

import (
	"testing"
)

func TestPageFind(t *testing.T) {
	mem := Pages{
		&Page{Addr: 0x1000, Size: 0x1000},
		&Page{Addr: 0x2000, Size: 0x1000, Desc: "data"},
		&Page{Addr: 0x4000, Size: 0x2000},
		&Page{Addr: 0x6000, Size: 0x2000},
	}
	if mem.Find(0x1000) != mem[0] ||
		mem.Find(0x1001) != mem[0] ||
		mem.Find(0x1fff) != mem[0] ||
		mem.Find(0x7fff) != mem[3] {
		t.Error("Find() failed")
	}
	if mem.Find(0x3000) != nil ||
		mem.Find(0x1) != nil ||
		mem.Find(0x10000) != nil {
		t.Error("Find() negative failed")
	}
	if mem.FindDesc("data") != mem[1] || mem.FindDesc("nope") != nil {
		t.Error("FindDesc() failed")
	}
}

func TestPageString(t *testing.T) {
	p := &Page{Addr: 0x400000, Size: 0x100000, Prot: PROT_READ | PROT_EXEC, Desc: "text"}
	if s := p.String(); s != "0x00400000-0x004fffff r-x [text]" {
		t.Errorf("unexpected page string: %q", s)
	}
}
