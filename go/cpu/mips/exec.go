package mips

import (
	"github.com/lunixbochs/mumips/go/models/cpu"
)

// hiloHazard reports whether the last register-form instruction moved HI or LO into a register.
func (c *Cpu) hiloHazard() bool {
	return c.hasPrev && (c.prevFunc == FUNC_MFHI || c.prevFunc == FUNC_MFLO)
}

// exec applies ins to c.next, reading operands from c.cur, and returns the PC delta.
func (c *Cpu) exec(ins *Ins) (uint32, error) {
	cur, next := &c.cur, &c.next
	rs, rt := cur.Regs[ins.Rs], cur.Regs[ins.Rt]
	pc := cur.PC
	delta := uint32(4)
	branch := func(taken bool) {
		if taken {
			delta = ins.SImm() << 2
		}
	}

	switch ins.Op {
	case SLL:
		next.Regs[ins.Rd] = rt << ins.Shamt
	case SRL:
		next.Regs[ins.Rd] = rt >> ins.Shamt
	case SRA:
		next.Regs[ins.Rd] = uint32(int32(rt) >> ins.Shamt)
	case JR:
		delta = rs - pc
	case JALR:
		next.Regs[ins.Rd] = pc + 8
		delta = rs - pc
	case SYSCALL:
		c.running = false
		c.OnIntr(0)
	case MFHI:
		next.Regs[ins.Rd] = cur.HI
	case MTHI:
		next.HI = rs
	case MFLO:
		next.Regs[ins.Rd] = cur.LO
	case MTLO:
		next.LO = rs
	case MULT, MULTU:
		if c.hiloHazard() {
			return delta, &UndefinedError{Addr: uint64(pc), Op: ins.Op, Reason: "HI/LO read by the previous instruction"}
		}
		var prod uint64
		if ins.Op == MULT {
			prod = uint64(int64(int32(rs)) * int64(int32(rt)))
		} else {
			prod = uint64(rs) * uint64(rt)
		}
		next.HI, next.LO = uint32(prod>>32), uint32(prod)
	case DIV, DIVU:
		if c.hiloHazard() {
			return delta, &UndefinedError{Addr: uint64(pc), Op: ins.Op, Reason: "HI/LO read by the previous instruction"}
		}
		if rt == 0 {
			return delta, &UndefinedError{Addr: uint64(pc), Op: ins.Op, Reason: "division by zero"}
		}
		if ins.Op == DIV {
			a, b := int32(rs), int32(rt)
			// the one signed overflow case wraps like the hardware result
			if a == -1<<31 && b == -1 {
				next.LO, next.HI = uint32(a), 0
			} else {
				next.LO, next.HI = uint32(a/b), uint32(a%b)
			}
		} else {
			next.LO, next.HI = rs/rt, rs%rt
		}
	case ADD, ADDU:
		next.Regs[ins.Rd] = rs + rt
	case SUB, SUBU:
		next.Regs[ins.Rd] = rs - rt
	case AND:
		next.Regs[ins.Rd] = rs & rt
	case OR:
		next.Regs[ins.Rd] = rs | rt
	case XOR:
		next.Regs[ins.Rd] = rs ^ rt
	case NOR:
		next.Regs[ins.Rd] = ^(rs | rt)
	case SLT:
		next.Regs[ins.Rd] = bool2u(int32(rs) < int32(rt))

	case BLTZ:
		branch(int32(rs) < 0)
	case BGEZ:
		branch(int32(rs) >= 0)
	case BEQ:
		branch(rs == rt)
	case BNE:
		branch(rs != rt)
	case BLEZ:
		branch(int32(rs) <= 0)
	case BGTZ:
		branch(int32(rs) > 0)
	case ADDI, ADDIU:
		next.Regs[ins.Rt] = rs + ins.SImm()
	case SLTI:
		next.Regs[ins.Rt] = bool2u(int32(rs) < int32(ins.SImm()))
	case ANDI:
		next.Regs[ins.Rt] = rs & ins.Imm
	case ORI:
		next.Regs[ins.Rt] = rs | ins.Imm
	case XORI:
		next.Regs[ins.Rt] = rs ^ ins.Imm
	case LUI:
		next.Regs[ins.Rt] = ins.Imm << 16
	case LB, LH, LW:
		size := memSize(ins.Op)
		val, err := c.ReadUint(uint64(rs+ins.SImm()), size, cpu.PROT_READ)
		if err != nil {
			return delta, err
		}
		if size < 4 {
			val = cpu.SignExtend(val, size)
		}
		next.Regs[ins.Rt] = uint32(val)
	case SB, SH, SW:
		if err := c.WriteUint(uint64(rs+ins.SImm()), memSize(ins.Op), cpu.PROT_WRITE, uint64(rt)); err != nil {
			return delta, err
		}
	default:
		return delta, &DecodeError{Addr: uint64(pc), Word: ins.Word, Opcode: ins.Opcode, Sub: ins.Func}
	}
	return delta, nil
}

func memSize(op Op) int {
	switch op {
	case LB, SB:
		return 1
	case LH, SH:
		return 2
	}
	return 4
}

func bool2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
