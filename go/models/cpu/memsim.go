package cpu

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

type MemError struct {
	Addr uint64
	Size int
	Enum int
}

func (m *MemError) Error() string {
	reason := "memory error"
	switch m.Enum {
	case MEM_WRITE_UNMAPPED:
		reason = "unmapped write"
	case MEM_READ_UNMAPPED:
		reason = "unmapped read"
	case MEM_FETCH_UNMAPPED:
		reason = "unmapped fetch"
	case MEM_WRITE_PROT:
		reason = "protected write"
	case MEM_READ_PROT:
		reason = "protected read"
	case MEM_FETCH_PROT:
		reason = "protected exec"
	}
	return fmt.Sprintf("%s at %#x(%d)", reason, m.Addr, m.Size)
}

// MemSim is a set of disjoint regions. An access must fall entirely inside one region.
type MemSim struct {
	Mem Pages
}

// Checks whether the address range lies inside a single mapped region.
// If prot > 0, also ensures the region has the entire protection mask provided.
func (m *MemSim) RangeValid(addr, size uint64, prot int) (mapGood bool, protGood bool) {
	page := m.Mem.Find(addr)
	if page == nil || size > page.Size-(addr-page.Addr) {
		return false, false
	}
	protGood = prot <= 0 || page.Prot&prot == prot
	return true, protGood
}

// Maps <addr> - <addr>+<size> as a zeroed region protected with prot.
// Overlapping an existing region is an error.
func (m *MemSim) Map(addr, size uint64, prot int, desc string) (*Page, error) {
	if size == 0 {
		return nil, errors.New("zero-sized region")
	}
	if addr+size-1 < addr {
		return nil, errors.Errorf("region %#x+%#x wraps the address space", addr, size)
	}
	for _, mm := range m.Mem {
		if mm.Overlaps(addr, size) {
			return nil, errors.Errorf("region %#x+%#x overlaps %s", addr, size, mm)
		}
	}
	page := &Page{Addr: addr, Size: size, Prot: prot, Data: make([]byte, size), Desc: desc}
	m.Mem = append(m.Mem, page)
	sort.Sort(m.Mem)
	return page, nil
}

// Zero clears every region in place without reallocating.
func (m *MemSim) Zero() {
	for _, mm := range m.Mem {
		mm.Zero()
	}
}

func (m *MemSim) Read(addr uint64, p []byte, prot int) error {
	if gmap, gprot := m.RangeValid(addr, uint64(len(p)), prot); !gmap {
		if prot&PROT_EXEC == PROT_EXEC {
			return &MemError{Addr: addr, Size: len(p), Enum: MEM_FETCH_UNMAPPED}
		}
		return &MemError{Addr: addr, Size: len(p), Enum: MEM_READ_UNMAPPED}
	} else if !gprot {
		if prot&PROT_EXEC == PROT_EXEC {
			return &MemError{Addr: addr, Size: len(p), Enum: MEM_FETCH_PROT}
		}
		return &MemError{Addr: addr, Size: len(p), Enum: MEM_READ_PROT}
	}
	mm := m.Mem.Find(addr)
	copy(p, mm.Data[addr-mm.Addr:])
	return nil
}

func (m *MemSim) Write(addr uint64, p []byte, prot int) error {
	if gmap, gprot := m.RangeValid(addr, uint64(len(p)), prot); !gmap {
		return &MemError{Addr: addr, Size: len(p), Enum: MEM_WRITE_UNMAPPED}
	} else if !gprot {
		return &MemError{Addr: addr, Size: len(p), Enum: MEM_WRITE_PROT}
	}
	mm := m.Mem.Find(addr)
	copy(mm.Data[addr-mm.Addr:], p)
	return nil
}
