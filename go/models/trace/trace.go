package trace

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/lunixbochs/mumips/go/models"
	"github.com/lunixbochs/mumips/go/models/cpu"
)

// Tracee is the simulator surface a Trace attaches to.
type Tracee interface {
	cpu.Cpu
	HookAdd(htype int, cb interface{}, start, end uint64) (cpu.Hook, error)
	HookDel(hh cpu.Hook) error
	Mappings() cpu.Pages
	ByteOrder() binary.ByteOrder
	Count() uint64
	Running() bool
}

// Trace records one frame per executed instruction: the OpStep, then its memory
// accesses, branches and diagnostics, then the registers it changed.
type Trace struct {
	u     Tracee
	arch  *models.Arch
	regs  map[int]uint64
	hooks []cpu.Hook
	frame *OpFrame
	tf    *TraceWriter

	// OpCallback sees every op as it is recorded.
	OpCallback []func(models.Op)

	attached bool
}

// NewTrace records to w if it is non-nil. Ops still reach OpCallback either way.
func NewTrace(u Tracee, arch *models.Arch, w io.WriteCloser) (*Trace, error) {
	t := &Trace{u: u, arch: arch}
	if w != nil {
		pc, err := u.RegRead(arch.PC)
		if err != nil {
			return nil, err
		}
		if t.tf, err = NewWriter(w, arch.Name, u.ByteOrder(), pc); err != nil {
			return nil, errors.Wrap(err, "failed to create trace writer")
		}
	}
	return t, nil
}

func (t *Trace) hook(enum int, f interface{}) error {
	hh, err := t.u.HookAdd(enum, f, 1, 0)
	if err != nil {
		return errors.Wrap(err, "u.HookAdd failed")
	}
	t.hooks = append(t.hooks, hh)
	return nil
}

func (t *Trace) dumpRegs() ([]models.RegVal, error) {
	return t.arch.RegDump(t.u)
}

// keyframe snapshots registers, memory and the run state, and resets the
// register baseline frames are diffed against.
func (t *Trace) keyframe() error {
	kf := &OpKeyframe{}
	regs, err := t.dumpRegs()
	if err != nil {
		return err
	}
	t.regs = make(map[int]uint64, len(regs))
	for _, r := range regs {
		t.regs[r.Enum] = r.Val
		kf.Ops = append(kf.Ops, &OpReg{Num: uint16(r.Enum), Val: r.Val})
	}
	for _, m := range t.u.Mappings() {
		kf.Ops = append(kf.Ops, &OpMemMap{Addr: m.Addr, Size: m.Size, Prot: uint8(m.Prot), Desc: m.Desc})
		if addr, data := trimZero(m.Addr, m.Data); len(data) > 0 {
			kf.Ops = append(kf.Ops, &OpMemWrite{Addr: addr, Data: append([]byte(nil), data...)})
		}
	}
	kf.Ops = append(kf.Ops, &OpRunState{Count: t.u.Count(), Running: t.u.Running()})
	return t.emit(kf)
}

// Attach emits a keyframe with the current machine state and starts recording.
func (t *Trace) Attach() error {
	if t.attached {
		return nil
	}
	if err := t.keyframe(); err != nil {
		return err
	}
	err := t.hook(cpu.HOOK_CODE, func(_ cpu.Cpu, addr uint64, size uint32) {
		t.OnStep(addr)
	})
	if err == nil {
		err = t.hook(cpu.HOOK_BLOCK, func(_ cpu.Cpu, addr uint64, size uint32) {
			t.append(&OpJmp{Addr: addr, Size: size})
		})
	}
	if err == nil {
		err = t.hook(cpu.HOOK_MEM_READ|cpu.HOOK_MEM_WRITE, func(_ cpu.Cpu, access int, addr uint64, size int, val int64) {
			if access == cpu.MEM_WRITE {
				var tmp [8]byte
				data, _ := cpu.PackUint(t.u.ByteOrder(), size, tmp[:], uint64(val))
				t.append(&OpMemWrite{Addr: addr, Data: append([]byte(nil), data...)})
			} else {
				t.append(&OpMemRead{Addr: addr, Size: uint32(size)})
			}
		})
	}
	if err == nil {
		err = t.hook(cpu.HOOK_INTR, func(_ cpu.Cpu, intno uint32) {
			t.append(&OpExit{})
		})
	}
	if err == nil {
		err = t.hook(cpu.HOOK_DIAG, func(_ cpu.Cpu, derr error) {
			var addr uint64
			if t.frame != nil {
				addr = uint64(t.frame.Ops[0].(*OpStep).Addr)
			}
			t.append(&OpDiag{Addr: addr, Msg: derr.Error()})
		})
	}
	if err != nil {
		t.unhook()
		return err
	}
	t.attached = true
	return nil
}

func (t *Trace) unhook() {
	for _, hh := range t.hooks {
		t.u.HookDel(hh)
	}
	t.hooks = nil
}

// Detach flushes the last frame, stops recording and closes the trace file.
func (t *Trace) Detach() error {
	if !t.attached {
		return nil
	}
	t.attached = false
	t.unhook()
	err := t.flush()
	if t.tf != nil {
		if cerr := t.tf.Close(); err == nil {
			err = cerr
		}
		t.tf = nil
	}
	return err
}

// Flush emits the pending frame. Call it before changing machine state outside
// of a step, while the registers still hold that frame's results.
func (t *Trace) Flush() error {
	if !t.attached {
		return nil
	}
	return t.flush()
}

// Rekey records a fresh keyframe after state was replaced outside of a step,
// such as by a reset or a savestate restore.
func (t *Trace) Rekey() error {
	if !t.attached {
		return nil
	}
	if err := t.flush(); err != nil {
		return err
	}
	return t.keyframe()
}

func (t *Trace) emit(op models.Op) error {
	for _, cb := range t.OpCallback {
		cb(op)
	}
	if t.tf != nil {
		return t.tf.Pack(op)
	}
	return nil
}

func (t *Trace) append(op models.Op) {
	if t.frame != nil {
		t.frame.Ops = append(t.frame.Ops, op)
	}
}

// OnStep runs before each instruction, so it closes the previous frame first.
func (t *Trace) OnStep(addr uint64) {
	t.flush()
	var word uint32
	if p, err := t.u.MemRead(addr, 4); err == nil {
		word = t.u.ByteOrder().Uint32(p)
	}
	t.frame = &OpFrame{Ops: []models.Op{&OpStep{Addr: uint32(addr), Word: word}}}
}

func (t *Trace) flush() error {
	if t.frame == nil {
		return nil
	}
	regs, err := t.dumpRegs()
	if err != nil {
		return err
	}
	for _, r := range regs {
		if r.Enum != t.arch.PC && t.regs[r.Enum] != r.Val {
			t.frame.Ops = append(t.frame.Ops, &OpReg{Num: uint16(r.Enum), Val: r.Val})
			t.regs[r.Enum] = r.Val
		}
	}
	frame := t.frame
	t.frame = nil
	return t.emit(frame)
}

func trimZero(addr uint64, data []byte) (uint64, []byte) {
	start, end := 0, len(data)
	for start < end && data[start] == 0 {
		start++
	}
	for end > start && data[end-1] == 0 {
		end--
	}
	return addr + uint64(start), data[start:end]
}
