package models

import (
	"fmt"
	"sort"

	"github.com/lunixbochs/fvbommel-util/sortorder"
)

type Reg struct {
	Enum int
	Name string
}

type RegVal struct {
	Reg
	Val uint64
}

type regList []Reg

func (r regList) Len() int           { return len(r) }
func (r regList) Swap(i, j int)      { r[i], r[j] = r[j], r[i] }
func (r regList) Less(i, j int) bool { return sortorder.NaturalLess(r[i].Name, r[j].Name) }

type regMap map[int]string

func (r regMap) Items() regList {
	ret := make(regList, 0, len(r))
	for e, n := range r {
		ret = append(ret, Reg{e, n})
	}
	return ret
}

// RegReader is anything that can read registers by enum.
type RegReader interface {
	RegRead(reg int) (uint64, error)
}

type Arch struct {
	Name string
	Bits int
	PC   int
	Regs regMap

	// sorted for RegDump
	regList regList
}

// Lookup resolves a register name or a bare register number.
func (a *Arch) Lookup(name string) (int, bool) {
	for enum, n := range a.Regs {
		if n == name {
			return enum, true
		}
	}
	var num int
	if _, err := fmt.Sscanf(name, "%d", &num); err == nil && fmt.Sprint(num) == name {
		if _, ok := a.Regs[num]; ok {
			return num, true
		}
	}
	return 0, false
}

// RegDump reads every register, in natural name order (r2 before r10).
func (a *Arch) RegDump(u RegReader) ([]RegVal, error) {
	if a.regList == nil {
		rl := a.Regs.Items()
		sort.Sort(rl)
		a.regList = rl
	}
	ret := make([]RegVal, len(a.regList))
	for i, r := range a.regList {
		val, err := u.RegRead(r.Enum)
		if err != nil {
			return nil, err
		}
		ret[i] = RegVal{r, val}
	}
	return ret, nil
}

func (a *Arch) String() string {
	return fmt.Sprintf("<Arch %s>", a.Name)
}
