package trace

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/lunixbochs/mumips/go/models"
	"github.com/lunixbochs/mumips/go/models/cpu"
)

// Replay rebuilds machine state by applying trace ops in order.
type Replay struct {
	Arch     *models.Arch
	Mem      *cpu.Mem
	Regs     map[int]uint64
	PC       uint64
	Inscount uint64
	Halted   bool
	Diags    []*OpDiag

	order     binary.ByteOrder
	callbacks []func(models.Op)
}

func NewReplay(arch *models.Arch, order binary.ByteOrder) *Replay {
	return &Replay{
		Arch:  arch,
		Mem:   cpu.NewMem(uint(arch.Bits), order),
		Regs:  make(map[int]uint64),
		order: order,
	}
}

// Listen registers a callback for every op fed to the replay, nested ops included.
func (r *Replay) Listen(cb func(models.Op)) {
	r.callbacks = append(r.callbacks, cb)
}

// RegRead lets a Replay stand in for a live cpu when dumping registers.
func (r *Replay) RegRead(enum int) (uint64, error) {
	if enum == r.Arch.PC {
		return r.PC, nil
	}
	return r.Regs[enum], nil
}

func (r *Replay) Feed(op models.Op) error {
	for _, cb := range r.callbacks {
		cb(op)
	}
	switch o := op.(type) {
	case *OpKeyframe:
		// a keyframe replaces the whole machine state
		r.Mem = cpu.NewMem(uint(r.Arch.Bits), r.order)
		r.Regs = make(map[int]uint64)
		r.Inscount = 0
		r.Halted = false
		for _, sub := range o.Ops {
			if err := r.Feed(sub); err != nil {
				return err
			}
		}
	case *OpFrame:
		for _, sub := range o.Ops {
			if err := r.Feed(sub); err != nil {
				return err
			}
		}
	case *OpStep:
		r.PC = uint64(o.Addr) + 4
		r.Inscount++
	case *OpJmp:
		r.PC = o.Addr
	case *OpReg:
		if int(o.Num) == r.Arch.PC {
			r.PC = o.Val
		} else {
			r.Regs[int(o.Num)] = o.Val
		}
	case *OpMemMap:
		if err := r.Mem.MemMap(o.Addr, o.Size, int(o.Prot), o.Desc); err != nil {
			return errors.Wrap(err, "replay map failed")
		}
	case *OpMemWrite:
		if err := r.Mem.MemWrite(o.Addr, o.Data); err != nil {
			return errors.Wrap(err, "replay write failed")
		}
	case *OpDiag:
		r.Diags = append(r.Diags, o)
	case *OpRunState:
		r.Inscount = o.Count
		r.Halted = !o.Running
	case *OpExit:
		r.Halted = true
	}
	return nil
}
