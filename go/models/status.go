package models

import (
	"fmt"
	"strings"

	"github.com/mgutz/ansi"
)

// StatusDiff remembers the last register dump so the next one can highlight changes.
type StatusDiff struct {
	Arch    *Arch
	U       RegReader
	oldRegs map[int]uint64
}

var chSame = ansi.ColorCode("default:default")
var chNew = ansi.ColorCode("default+bu:default")

func colorPad(s, color string, pad int) string {
	length := len(s)
	s = color + s + ansi.Reset
	if length < pad {
		s = strings.Repeat(" ", pad-length) + s
	}
	return s
}

type ChangeMask struct {
	Old, New string
	Changed  bool
}

type Change struct {
	Old, New uint64
	Enum     int
	Name     string
}

func (c *Change) Changed() bool {
	return c.Old != c.New
}

// Mask splits the hex rendering of New into runs that match or differ from Old.
func (c *Change) Mask(bsz int) []ChangeMask {
	hexFmt := fmt.Sprintf("%%0%dx", bsz)
	s1, s2 := fmt.Sprintf(hexFmt, c.New), fmt.Sprintf(hexFmt, c.Old)
	pos := 0
	matching := true
	masks := make([]ChangeMask, 0, len(s1))
	for i := range s1 {
		if (s1[i] == s2[i]) != matching {
			if i > pos {
				masks = append(masks, ChangeMask{
					New:     s1[pos:i],
					Old:     s2[pos:i],
					Changed: !matching,
				})
				pos = i
			}
			matching = !matching
		}
	}
	if pos < len(s1) {
		masks = append(masks, ChangeMask{
			New:     s1[pos:],
			Old:     s2[pos:],
			Changed: !matching,
		})
	}
	return masks
}

func (c *Change) String(bsz int, color bool) string {
	var out []string
	hexFmt := fmt.Sprintf("%%0%dx", bsz)
	lineStart := fmt.Sprintf(" %4s 0x", c.Name)
	if c.Changed() {
		if color {
			out = append(out, fmt.Sprintf(" %s 0x", colorPad(c.Name, chNew, 4)))
			for _, mask := range c.Mask(bsz) {
				col := chSame
				if mask.Changed {
					col = chNew
				}
				out = append(out, col+mask.New)
			}
			out = append(out, ansi.Reset)
		} else {
			out = append(out, fmt.Sprintf("+"+lineStart+hexFmt, c.New))
		}
	} else {
		out = append(out, fmt.Sprintf(" "+lineStart+hexFmt, c.New))
	}
	return strings.Join(out, "")
}

type Changes struct {
	Bsz     int
	Changes []*Change
}

// String renders changes column-major, four to a row.
func (cs *Changes) String(color bool) string {
	var out []string
	printRow := func(changes []*Change) {
		for i, c := range changes {
			if i > 0 {
				out = append(out, " ")
			}
			out = append(out, c.String(cs.Bsz, color))
		}
		if len(changes) > 0 {
			out = append(out, "\n")
		}
	}
	changes := cs.Changes
	cols := 4
	rows := (len(changes) + cols - 1) / cols
	for i := 0; i < rows; i++ {
		var row []*Change
		for j := 0; j < cols; j++ {
			if idx := j*rows + i; idx < len(changes) {
				row = append(row, changes[idx])
			}
		}
		printRow(row)
	}
	return strings.Join(out, "")
}

func (cs *Changes) Changed() []*Change {
	ret := make([]*Change, 0, cs.Count())
	for _, c := range cs.Changes {
		if c.Changed() {
			ret = append(ret, c)
		}
	}
	return ret
}

func (cs *Changes) Count() int {
	ret := 0
	for _, c := range cs.Changes {
		if c.Changed() {
			ret += 1
		}
	}
	return ret
}

func (cs *Changes) Find(enum int) *Change {
	for _, c := range cs.Changes {
		if c.Enum == enum {
			return c
		}
	}
	return nil
}

// Changes dumps all registers, compared against the previous call.
// The first call compares against zero.
func (s *StatusDiff) Changes(onlyChanged bool) (*Changes, error) {
	regs, err := s.Arch.RegDump(s.U)
	if err != nil {
		return nil, err
	}
	cs := make([]*Change, 0, len(regs))
	for _, reg := range regs {
		var oldReg uint64
		if s.oldRegs != nil {
			oldReg = s.oldRegs[reg.Enum]
		}
		change := &Change{Old: oldReg, New: reg.Val, Enum: reg.Enum, Name: reg.Name}
		if !onlyChanged || change.Changed() {
			cs = append(cs, change)
		}
	}
	s.oldRegs = make(map[int]uint64, len(regs))
	for _, r := range regs {
		s.oldRegs[r.Enum] = r.Val
	}
	return &Changes{Bsz: s.Arch.Bits / 4, Changes: cs}, nil
}

// Reset forgets the previous dump.
func (s *StatusDiff) Reset() {
	s.oldRegs = nil
}
