package ui

import (
	"fmt"
	"strings"

	"github.com/lunixbochs/mumips/go/cpu/mips"
	"github.com/lunixbochs/mumips/go/models"
	"github.com/lunixbochs/mumips/go/models/trace"
)

func pad(s string, to int) string {
	if len(s) >= to {
		return ""
	}
	return strings.Repeat(" ", to-len(s))
}

// StreamUI prints a trace one instruction per line, with its register and memory effects.
type StreamUI struct {
	replay *trace.Replay
	config *models.Config
	regfmt string
	inscol int
}

func NewStreamUI(c *models.Config, r *trace.Replay) *StreamUI {
	longest := 0
	for _, name := range r.Arch.Regs {
		if len(name) > longest {
			longest = len(name)
		}
	}
	return &StreamUI{
		replay: r,
		config: c.Init(),
		regfmt: fmt.Sprintf("%%%ds = 0x%%0%dx", longest, r.Arch.Bits/4),
		inscol: 40,
	}
}

func (s *StreamUI) Printf(f string, args ...interface{}) { fmt.Fprintf(s.config.Output, f, args...) }
func (s *StreamUI) Println(args ...interface{})          { fmt.Fprintln(s.config.Output, args...) }

// Feed applies op to the replay and prints it.
func (s *StreamUI) Feed(op models.Op) error {
	if err := s.replay.Feed(op); err != nil {
		return err
	}
	switch o := op.(type) {
	case *trace.OpKeyframe:
		if s.config.Verbose {
			s.keyPrint(o)
		}
	case *trace.OpFrame:
		s.framePrint(o)
	}
	return nil
}

func (s *StreamUI) keyPrint(o *trace.OpKeyframe) {
	s.Printf("[keyframe @ %#08x]\n", s.replay.PC)
	s.Println("[memory map]")
	for _, mm := range s.replay.Mem.Mappings() {
		s.Printf("  %s\n", mm)
	}
}

func (s *StreamUI) framePrint(frame *trace.OpFrame) {
	var ins string
	var regs, mem, notes []string
	for _, op := range frame.Ops {
		switch o := op.(type) {
		case *trace.OpStep:
			dec, err := mips.Decode(o.Word, uint64(o.Addr))
			if err != nil {
				ins = fmt.Sprintf("%#08x: .word %#08x", o.Addr, o.Word)
			} else {
				ins = fmt.Sprintf("%#08x: %s", o.Addr, dec)
			}
		case *trace.OpReg:
			name, ok := s.replay.Arch.Regs[int(o.Num)]
			if !ok {
				name = fmt.Sprint(o.Num)
			}
			regs = append(regs, fmt.Sprintf(s.regfmt, name, o.Val))
		case *trace.OpMemRead:
			mem = append(mem, fmt.Sprintf("R %#x/%d", o.Addr, o.Size))
		case *trace.OpMemWrite:
			mem = append(mem, fmt.Sprintf("W %#x %x", o.Addr, o.Data))
		case *trace.OpDiag:
			notes = append(notes, "warning: "+o.Msg)
		case *trace.OpExit:
			notes = append(notes, "[halt]")
		}
	}
	if ins == "" {
		return
	}
	line := ins
	effects := append(regs, mem...)
	if len(effects) > 0 {
		line += pad(ins, s.inscol) + " | " + effects[0]
	}
	s.Println(line)
	inspad := strings.Repeat(" ", s.inscol)
	for i := 1; i < len(effects); i++ {
		s.Printf("%s + %s\n", inspad, effects[i])
	}
	for _, n := range notes {
		s.Printf("%s ! %s\n", inspad, n)
	}
}

// OnExit prints the final register file.
func (s *StreamUI) OnExit() {
	s.Printf("[%d instructions, pc %#08x]\n", s.replay.Inscount, s.replay.PC)
	regs, err := s.replay.Arch.RegDump(s.replay)
	if err != nil {
		s.Println(err)
		return
	}
	for _, r := range regs {
		s.Printf(s.regfmt+"\n", r.Name, r.Val)
	}
}
