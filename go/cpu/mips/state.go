package mips

// State is one snapshot of the visible machine state.
type State struct {
	Regs [32]uint32
	HI   uint32
	LO   uint32
	PC   uint32
}

func (s *State) reset(pc uint32) {
	*s = State{PC: pc}
}
