package mips

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrStopped is returned by the cycle driver when the run flag is already clear.
var ErrStopped = errors.New("simulation stopped")

// DecodeError reports an opcode, function code or REGIMM selector outside the supported set.
type DecodeError struct {
	Addr   uint64
	Word   uint32
	Opcode uint32
	Sub    uint32
}

func (e *DecodeError) Error() string {
	switch e.Opcode {
	case OP_SPECIAL:
		return fmt.Sprintf("unknown function %#02x in %#08x at %#x", e.Sub, e.Word, e.Addr)
	case OP_REGIMM:
		return fmt.Sprintf("unknown regimm selector %#02x in %#08x at %#x", e.Sub, e.Word, e.Addr)
	}
	return fmt.Sprintf("unknown opcode %#02x in %#08x at %#x", e.Opcode, e.Word, e.Addr)
}

// UndefinedError reports an architecturally undefined multiply/divide result.
// HI and LO are left untouched.
type UndefinedError struct {
	Addr   uint64
	Op     Op
	Reason string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("%s at %#x: result is undefined (%s)", e.Op, e.Addr, e.Reason)
}
