package cpu

import (
	"github.com/pkg/errors"
)

type Hook interface{}

type CodeCb func(Cpu, uint64, uint32)
type IntrCb func(Cpu, uint32)
type MemCb func(Cpu, int, uint64, int, int64)
type MemFaultCb func(Cpu, int, uint64, int, int64) bool
type DiagCb func(Cpu, error)

type hookInfo struct {
	htype int
	start uint64
	end   uint64
}

func (h *hookInfo) Type() int {
	return h.htype
}

// start > end hooks every address
func (h *hookInfo) Contains(addr uint64) bool {
	return h.start > h.end || addr >= h.start && addr <= h.end
}

type hinfo interface {
	Type() int
}

type codeHook struct {
	hookInfo
	cb CodeCb
}

type intrHook struct {
	hookInfo
	cb IntrCb
}

type memHook struct {
	hookInfo
	cb MemCb
}

type memFaultHook struct {
	hookInfo
	cb MemFaultCb
}

type diagHook struct {
	hookInfo
	cb DiagCb
}

type Hooks struct {
	cpu Cpu

	code     []*codeHook
	block    []*codeHook
	intr     []*intrHook
	mem      []*memHook
	memFault []*memFaultHook
	diag     []*diagHook
}

// creates &Hooks{}, optionally attaching to a *Mem instance
func NewHooks(cpu Cpu, mem *Mem) *Hooks {
	h := &Hooks{cpu: cpu}
	if mem != nil {
		// mem will dispatch memory hooks automatically
		mem.hooks = h
	}
	return h
}

func badCb(htype int, cb interface{}) error {
	return errors.Errorf("hook type %d: unexpected callback %T", htype, cb)
}

func (h *Hooks) HookAdd(htype int, cb interface{}, start uint64, end uint64) (Hook, error) {
	info := hookInfo{htype, start, end}
	var hook interface{}
	switch htype {
	case HOOK_BLOCK, HOOK_CODE:
		fn, ok := cb.(func(Cpu, uint64, uint32))
		if !ok {
			return nil, badCb(htype, cb)
		}
		hh := &codeHook{info, fn}
		if htype == HOOK_BLOCK {
			h.block = append(h.block, hh)
		} else {
			h.code = append(h.code, hh)
		}
		hook = hh

	case HOOK_INTR:
		fn, ok := cb.(func(Cpu, uint32))
		if !ok {
			return nil, badCb(htype, cb)
		}
		hh := &intrHook{info, fn}
		h.intr, hook = append(h.intr, hh), hh

	case HOOK_MEM_READ, HOOK_MEM_WRITE, HOOK_MEM_FETCH,
		HOOK_MEM_READ | HOOK_MEM_WRITE, HOOK_MEM_READ | HOOK_MEM_WRITE | HOOK_MEM_FETCH:
		fn, ok := cb.(func(Cpu, int, uint64, int, int64))
		if !ok {
			return nil, badCb(htype, cb)
		}
		hh := &memHook{info, fn}
		h.mem, hook = append(h.mem, hh), hh

	case HOOK_MEM_ERR:
		fn, ok := cb.(func(Cpu, int, uint64, int, int64) bool)
		if !ok {
			return nil, badCb(htype, cb)
		}
		hh := &memFaultHook{info, fn}
		h.memFault, hook = append(h.memFault, hh), hh

	case HOOK_DIAG:
		fn, ok := cb.(func(Cpu, error))
		if !ok {
			return nil, badCb(htype, cb)
		}
		hh := &diagHook{info, fn}
		h.diag, hook = append(h.diag, hh), hh

	default:
		return nil, errors.Errorf("unknown hook type: %d", htype)
	}
	return hook, nil
}

func (h *Hooks) HookDel(hh Hook) error {
	info, ok := hh.(hinfo)
	if !ok {
		return errors.Errorf("not a hook: %T", hh)
	}
	switch info.Type() {
	case HOOK_BLOCK:
		var tmp []*codeHook
		for _, v := range h.block {
			if v != hh {
				tmp = append(tmp, v)
			}
		}
		h.block = tmp
	case HOOK_CODE:
		var tmp []*codeHook
		for _, v := range h.code {
			if v != hh {
				tmp = append(tmp, v)
			}
		}
		h.code = tmp
	case HOOK_INTR:
		var tmp []*intrHook
		for _, v := range h.intr {
			if v != hh {
				tmp = append(tmp, v)
			}
		}
		h.intr = tmp
	case HOOK_MEM_ERR:
		var tmp []*memFaultHook
		for _, v := range h.memFault {
			if v != hh {
				tmp = append(tmp, v)
			}
		}
		h.memFault = tmp
	case HOOK_DIAG:
		var tmp []*diagHook
		for _, v := range h.diag {
			if v != hh {
				tmp = append(tmp, v)
			}
		}
		h.diag = tmp
	default:
		var tmp []*memHook
		for _, v := range h.mem {
			if v != hh {
				tmp = append(tmp, v)
			}
		}
		h.mem = tmp
	}
	return nil
}

func (h *Hooks) OnBlock(addr uint64, size uint32) {
	for _, v := range h.block {
		if v.Contains(addr) {
			v.cb(h.cpu, addr, size)
		}
	}
}

func (h *Hooks) OnCode(addr uint64, size uint32) {
	for _, v := range h.code {
		if v.Contains(addr) {
			v.cb(h.cpu, addr, size)
		}
	}
}

func (h *Hooks) OnIntr(intno uint32) {
	for _, v := range h.intr {
		v.cb(h.cpu, intno)
	}
}

func memAccessHooked(htype, access int) bool {
	switch access {
	case MEM_READ:
		return htype&HOOK_MEM_READ != 0
	case MEM_WRITE:
		return htype&HOOK_MEM_WRITE != 0
	case MEM_FETCH:
		return htype&HOOK_MEM_FETCH != 0
	}
	return false
}

func (h *Hooks) OnMem(access int, addr uint64, size int, val int64) {
	for _, v := range h.mem {
		if memAccessHooked(v.htype, access) && v.Contains(addr) {
			v.cb(h.cpu, access, addr, size, val)
		}
	}
}

// returns true if any fault hook claims the fault
func (h *Hooks) OnFault(access int, addr uint64, size int, val int64) bool {
	for _, v := range h.memFault {
		if v.Contains(addr) {
			if v.cb(h.cpu, access, addr, size, val) {
				return true
			}
		}
	}
	return false
}

func (h *Hooks) OnDiag(addr uint64, err error) {
	for _, v := range h.diag {
		if v.Contains(addr) {
			v.cb(h.cpu, err)
		}
	}
}
