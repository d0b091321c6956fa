package trace

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/lunixbochs/mumips/go/models"
)

var order = binary.LittleEndian

const (
	OP_NOP       = 0
	OP_FRAME     = 1
	OP_KEYFRAME  = 2
	OP_JMP       = 3
	OP_STEP      = 4
	OP_REG       = 5
	OP_MEM_READ  = 7
	OP_MEM_WRITE = 8
	OP_MEM_MAP   = 9
	OP_DIAG      = 12
	OP_EXIT      = 13
	OP_RUN_STATE = 14
)

// used by frame and keyframe
func packOps(p []byte, ops []models.Op) {
	for _, op := range ops {
		op.Pack(p)
		p = p[op.Sizeof():]
	}
}

func sizeofOps(ops []models.Op) int {
	size := 0
	for _, op := range ops {
		size += op.Sizeof()
	}
	return size
}

func unpackOps(r io.Reader, count int) (ops []models.Op, total int, err error) {
	ops = make([]models.Op, 0, count)
	for i := 0; i < count; i++ {
		op, n, err := Unpack(r, true)
		total += n
		if err != nil {
			return ops, total, errors.Wrap(err, "unpacking op list")
		}
		ops = append(ops, op)
	}
	return ops, total, nil
}

// Unpack reads one op. Frames may not nest.
func Unpack(r io.Reader, nested bool) (models.Op, int, error) {
	var tmp [1]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return nil, 0, err
	}
	var op models.Op
	switch tmp[0] {
	case OP_NOP:
		op = &OpNop{}
	case OP_JMP:
		op = &OpJmp{}
	case OP_STEP:
		op = &OpStep{}
	case OP_REG:
		op = &OpReg{}
	case OP_MEM_READ:
		op = &OpMemRead{}
	case OP_MEM_WRITE:
		op = &OpMemWrite{}
	case OP_MEM_MAP:
		op = &OpMemMap{}
	case OP_DIAG:
		op = &OpDiag{}
	case OP_FRAME:
		op = &OpFrame{}
	case OP_KEYFRAME:
		op = &OpKeyframe{}
	case OP_EXIT:
		op = &OpExit{}
	case OP_RUN_STATE:
		op = &OpRunState{}
	default:
		return nil, 1, errors.Errorf("Unknown op: %d", tmp[0])
	}
	if nested && (tmp[0] == OP_FRAME || tmp[0] == OP_KEYFRAME) {
		return nil, 1, errors.Errorf("fatal: nested frame")
	}
	n, err := op.Unpack(r)
	return op, n + 1, err
}

type OpNop struct{}

func (o *OpNop) Sizeof() int   { return 1 }
func (o *OpNop) Pack(p []byte) { p[0] = OP_NOP }

func (o *OpNop) Unpack(r io.Reader) (int, error) { return 0, nil }

// OpExit marks the instruction that cleared the run flag.
type OpExit struct{ OpNop }

func (o *OpExit) Pack(p []byte) { p[0] = OP_EXIT }

// OpRunState carries the instruction counter and run flag in a keyframe.
type OpRunState struct {
	Count   uint64
	Running bool
}

func (o *OpRunState) Sizeof() int { return 1 + 8 + 1 }
func (o *OpRunState) Pack(p []byte) {
	p[0] = OP_RUN_STATE
	order.PutUint64(p[1:], o.Count)
	p[9] = 0
	if o.Running {
		p[9] = 1
	}
}

func (o *OpRunState) Unpack(r io.Reader) (int, error) {
	var tmp [8 + 1]byte
	n, err := io.ReadFull(r, tmp[:])
	if err == nil {
		o.Count = order.Uint64(tmp[:])
		o.Running = tmp[8] != 0
	}
	return n, err
}

// OpJmp is a taken branch or jump to Addr.
type OpJmp struct {
	Addr uint64
	Size uint32
}

func (o *OpJmp) Sizeof() int { return 1 + 8 + 4 }
func (o *OpJmp) Pack(p []byte) {
	p[0] = OP_JMP
	order.PutUint64(p[1:], o.Addr)
	order.PutUint32(p[9:], o.Size)
}

func (o *OpJmp) Unpack(r io.Reader) (int, error) {
	var tmp [8 + 4]byte
	n, err := io.ReadFull(r, tmp[:])
	if err == nil {
		o.Addr = order.Uint64(tmp[:])
		o.Size = order.Uint32(tmp[8:])
	}
	return n, err
}

// OpStep opens every executed instruction.
type OpStep struct {
	Addr uint32
	Word uint32
}

func (o *OpStep) Sizeof() int { return 1 + 4 + 4 }
func (o *OpStep) Pack(p []byte) {
	p[0] = OP_STEP
	order.PutUint32(p[1:], o.Addr)
	order.PutUint32(p[5:], o.Word)
}

func (o *OpStep) Unpack(r io.Reader) (int, error) {
	var tmp [4 + 4]byte
	n, err := io.ReadFull(r, tmp[:])
	if err == nil {
		o.Addr = order.Uint32(tmp[:])
		o.Word = order.Uint32(tmp[4:])
	}
	return n, err
}

type OpReg struct {
	Num uint16
	Val uint64
}

func (o *OpReg) Sizeof() int { return 1 + 2 + 8 }
func (o *OpReg) Pack(p []byte) {
	p[0] = OP_REG
	order.PutUint16(p[1:], o.Num)
	order.PutUint64(p[3:], o.Val)
}

func (o *OpReg) Unpack(r io.Reader) (int, error) {
	var tmp [2 + 8]byte
	n, err := io.ReadFull(r, tmp[:])
	if err == nil {
		o.Num = order.Uint16(tmp[:])
		o.Val = order.Uint64(tmp[2:])
	}
	return n, err
}

type OpMemRead struct {
	Addr uint64
	Size uint32
}

func (o *OpMemRead) Sizeof() int { return 1 + 8 + 4 }
func (o *OpMemRead) Pack(p []byte) {
	p[0] = OP_MEM_READ
	order.PutUint64(p[1:], o.Addr)
	order.PutUint32(p[9:], o.Size)
}

func (o *OpMemRead) Unpack(r io.Reader) (int, error) {
	var tmp [8 + 4]byte
	total, err := io.ReadFull(r, tmp[:])
	if err == nil {
		o.Addr = order.Uint64(tmp[:])
		o.Size = order.Uint32(tmp[8:])
	}
	return total, err
}

type OpMemWrite struct {
	Addr uint64
	Data []byte
}

func (o *OpMemWrite) Sizeof() int { return 1 + 8 + 4 + len(o.Data) }
func (o *OpMemWrite) Pack(p []byte) {
	p[0] = OP_MEM_WRITE
	order.PutUint64(p[1:], o.Addr)
	order.PutUint32(p[9:], uint32(len(o.Data)))
	copy(p[13:], o.Data)
}

func (o *OpMemWrite) Unpack(r io.Reader) (int, error) {
	var tmp [8 + 4]byte
	total, err := io.ReadFull(r, tmp[:])
	if err != nil {
		return total, err
	}
	o.Addr = order.Uint64(tmp[:])
	o.Data = make([]byte, order.Uint32(tmp[8:]))
	n, err := io.ReadFull(r, o.Data)
	return total + n, err
}

type OpMemMap struct {
	Addr uint64
	Size uint64
	Prot uint8
	Desc string
}

func (o *OpMemMap) Sizeof() int {
	return 1 + 8 + 8 + 1 + 2 + len(o.Desc)
}
func (o *OpMemMap) Pack(p []byte) {
	// op, addr, size, prot(1), dlen, desc
	p[0] = OP_MEM_MAP
	order.PutUint64(p[1:], o.Addr)
	order.PutUint64(p[9:], o.Size)
	p[17] = o.Prot
	order.PutUint16(p[18:], uint16(len(o.Desc)))
	copy(p[20:], o.Desc)
}

func (o *OpMemMap) Unpack(r io.Reader) (int, error) {
	var tmp [8 + 8 + 1 + 2]byte
	total, err := io.ReadFull(r, tmp[:])
	if err != nil {
		return total, err
	}
	o.Addr = order.Uint64(tmp[:])
	o.Size = order.Uint64(tmp[8:])
	o.Prot = tmp[16]
	desc := make([]byte, order.Uint16(tmp[17:]))
	n, err := io.ReadFull(r, desc)
	o.Desc = string(desc)
	return total + n, err
}

// OpDiag carries a non-fatal condition reported by the instruction at Addr.
type OpDiag struct {
	Addr uint64
	Msg  string
}

func (o *OpDiag) Sizeof() int { return 1 + 8 + 2 + len(o.Msg) }
func (o *OpDiag) Pack(p []byte) {
	p[0] = OP_DIAG
	order.PutUint64(p[1:], o.Addr)
	order.PutUint16(p[9:], uint16(len(o.Msg)))
	copy(p[11:], o.Msg)
}

func (o *OpDiag) Unpack(r io.Reader) (int, error) {
	var tmp [8 + 2]byte
	total, err := io.ReadFull(r, tmp[:])
	if err != nil {
		return total, err
	}
	o.Addr = order.Uint64(tmp[:])
	msg := make([]byte, order.Uint16(tmp[8:]))
	n, err := io.ReadFull(r, msg)
	o.Msg = string(msg)
	return total + n, err
}

// OpKeyframe carries the full machine state a trace starts from.
type OpKeyframe struct {
	Ops []models.Op
}

func (o *OpKeyframe) Sizeof() int { return 1 + 4 + sizeofOps(o.Ops) }
func (o *OpKeyframe) Pack(p []byte) {
	p[0] = OP_KEYFRAME
	order.PutUint32(p[1:], uint32(len(o.Ops)))
	packOps(p[1+4:], o.Ops)
}

func (o *OpKeyframe) Unpack(r io.Reader) (int, error) {
	return (*OpFrame)(o).Unpack(r)
}

// OpFrame groups the effects of one instruction, starting with its OpStep.
type OpFrame struct {
	Ops []models.Op
}

func (o *OpFrame) Sizeof() int { return 1 + 4 + sizeofOps(o.Ops) }
func (o *OpFrame) Pack(p []byte) {
	p[0] = OP_FRAME
	order.PutUint32(p[1:], uint32(len(o.Ops)))
	packOps(p[1+4:], o.Ops)
}

func (o *OpFrame) Unpack(r io.Reader) (int, error) {
	var tmp [4]byte
	total, err := io.ReadFull(r, tmp[:])
	if err != nil {
		return total, errors.Wrap(err, "frame unpack")
	}
	ops, n, err := unpackOps(r, int(order.Uint32(tmp[:])))
	o.Ops = ops
	return total + n, err
}
