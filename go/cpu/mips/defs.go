package mips

import (
	"fmt"

	"github.com/lunixbochs/mumips/go/models"
)

// register enums; 0-31 are the general registers
const (
	HI = 32 + iota
	LO
	PC
)

// primary opcodes, bits 31:26
const (
	OP_SPECIAL = 0x00
	OP_REGIMM  = 0x01
	OP_BEQ     = 0x04
	OP_BNE     = 0x05
	OP_BLEZ    = 0x06
	OP_BGTZ    = 0x07
	OP_ADDI    = 0x08
	OP_ADDIU   = 0x09
	OP_SLTI    = 0x0a
	OP_ANDI    = 0x0c
	OP_ORI     = 0x0d
	OP_XORI    = 0x0e
	OP_LUI     = 0x0f
	OP_LB      = 0x20
	OP_LH      = 0x21
	OP_LW      = 0x23
	OP_SB      = 0x28
	OP_SH      = 0x29
	OP_SW      = 0x2b
)

// OP_SPECIAL function codes, bits 5:0
const (
	FUNC_SLL     = 0x00
	FUNC_SRL     = 0x02
	FUNC_SRA     = 0x03
	FUNC_JR      = 0x08
	FUNC_JALR    = 0x09
	FUNC_SYSCALL = 0x0c
	FUNC_MFHI    = 0x10
	FUNC_MTHI    = 0x11
	FUNC_MFLO    = 0x12
	FUNC_MTLO    = 0x13
	FUNC_MULT    = 0x18
	FUNC_MULTU   = 0x19
	FUNC_DIV     = 0x1a
	FUNC_DIVU    = 0x1b
	FUNC_ADD     = 0x20
	FUNC_ADDU    = 0x21
	FUNC_SUB     = 0x22
	FUNC_SUBU    = 0x23
	FUNC_AND     = 0x24
	FUNC_OR      = 0x25
	FUNC_XOR     = 0x26
	FUNC_NOR     = 0x27
	FUNC_SLT     = 0x2a
)

// OP_REGIMM selectors, carried in the rt field
const (
	RI_BLTZ = 0x00
	RI_BGEZ = 0x01
)

// Op names one decoded operation, independent of how it is encoded.
type Op int

const (
	INVALID Op = iota

	SLL
	SRL
	SRA
	JR
	JALR
	SYSCALL
	MFHI
	MTHI
	MFLO
	MTLO
	MULT
	MULTU
	DIV
	DIVU
	ADD
	ADDU
	SUB
	SUBU
	AND
	OR
	XOR
	NOR
	SLT

	BLTZ
	BGEZ
	BEQ
	BNE
	BLEZ
	BGTZ
	ADDI
	ADDIU
	SLTI
	ANDI
	ORI
	XORI
	LUI
	LB
	LH
	LW
	SB
	SH
	SW
)

// operand layouts, shared by the disassembler and the assembler
const (
	A_NONE      = iota
	A_RD_RS_RT  // add rd, rs, rt
	A_RD_RT_SA  // sll rd, rt, sa
	A_RS_RT     // mult rs, rt
	A_RS        // jr rs
	A_RD_RS     // jalr rd, rs
	A_RD        // mfhi rd
	A_RT_RS_IMM // addi rt, rs, imm
	A_RT_IMM    // lui rt, imm
	A_RT_MEM    // lw rt, off(rs)
	A_RS_RT_OFF // beq rs, rt, off
	A_RS_OFF    // blez rs, off
)

type op struct {
	name string
	arg  int
	// encoding: primary opcode, then the function code or REGIMM selector
	opcode uint32
	sub    uint32
	// immediate is zero-extended rather than sign-extended
	unsigned bool
}

var opData = map[Op]op{
	SLL:     {"sll", A_RD_RT_SA, OP_SPECIAL, FUNC_SLL, false},
	SRL:     {"srl", A_RD_RT_SA, OP_SPECIAL, FUNC_SRL, false},
	SRA:     {"sra", A_RD_RT_SA, OP_SPECIAL, FUNC_SRA, false},
	JR:      {"jr", A_RS, OP_SPECIAL, FUNC_JR, false},
	JALR:    {"jalr", A_RD_RS, OP_SPECIAL, FUNC_JALR, false},
	SYSCALL: {"syscall", A_NONE, OP_SPECIAL, FUNC_SYSCALL, false},
	MFHI:    {"mfhi", A_RD, OP_SPECIAL, FUNC_MFHI, false},
	MTHI:    {"mthi", A_RS, OP_SPECIAL, FUNC_MTHI, false},
	MFLO:    {"mflo", A_RD, OP_SPECIAL, FUNC_MFLO, false},
	MTLO:    {"mtlo", A_RS, OP_SPECIAL, FUNC_MTLO, false},
	MULT:    {"mult", A_RS_RT, OP_SPECIAL, FUNC_MULT, false},
	MULTU:   {"multu", A_RS_RT, OP_SPECIAL, FUNC_MULTU, false},
	DIV:     {"div", A_RS_RT, OP_SPECIAL, FUNC_DIV, false},
	DIVU:    {"divu", A_RS_RT, OP_SPECIAL, FUNC_DIVU, false},
	ADD:     {"add", A_RD_RS_RT, OP_SPECIAL, FUNC_ADD, false},
	ADDU:    {"addu", A_RD_RS_RT, OP_SPECIAL, FUNC_ADDU, false},
	SUB:     {"sub", A_RD_RS_RT, OP_SPECIAL, FUNC_SUB, false},
	SUBU:    {"subu", A_RD_RS_RT, OP_SPECIAL, FUNC_SUBU, false},
	AND:     {"and", A_RD_RS_RT, OP_SPECIAL, FUNC_AND, false},
	OR:      {"or", A_RD_RS_RT, OP_SPECIAL, FUNC_OR, false},
	XOR:     {"xor", A_RD_RS_RT, OP_SPECIAL, FUNC_XOR, false},
	NOR:     {"nor", A_RD_RS_RT, OP_SPECIAL, FUNC_NOR, false},
	SLT:     {"slt", A_RD_RS_RT, OP_SPECIAL, FUNC_SLT, false},

	BLTZ:  {"bltz", A_RS_OFF, OP_REGIMM, RI_BLTZ, false},
	BGEZ:  {"bgez", A_RS_OFF, OP_REGIMM, RI_BGEZ, false},
	BEQ:   {"beq", A_RS_RT_OFF, OP_BEQ, 0, false},
	BNE:   {"bne", A_RS_RT_OFF, OP_BNE, 0, false},
	BLEZ:  {"blez", A_RS_OFF, OP_BLEZ, 0, false},
	BGTZ:  {"bgtz", A_RS_OFF, OP_BGTZ, 0, false},
	ADDI:  {"addi", A_RT_RS_IMM, OP_ADDI, 0, false},
	ADDIU: {"addiu", A_RT_RS_IMM, OP_ADDIU, 0, false},
	SLTI:  {"slti", A_RT_RS_IMM, OP_SLTI, 0, false},
	ANDI:  {"andi", A_RT_RS_IMM, OP_ANDI, 0, true},
	ORI:   {"ori", A_RT_RS_IMM, OP_ORI, 0, true},
	XORI:  {"xori", A_RT_RS_IMM, OP_XORI, 0, true},
	LUI:   {"lui", A_RT_IMM, OP_LUI, 0, true},
	LB:    {"lb", A_RT_MEM, OP_LB, 0, false},
	LH:    {"lh", A_RT_MEM, OP_LH, 0, false},
	LW:    {"lw", A_RT_MEM, OP_LW, 0, false},
	SB:    {"sb", A_RT_MEM, OP_SB, 0, false},
	SH:    {"sh", A_RT_MEM, OP_SH, 0, false},
	SW:    {"sw", A_RT_MEM, OP_SW, 0, false},
}

// reverse lookups, filled from opData
var (
	funcOps   = make(map[uint32]Op)
	regimmOps = make(map[uint32]Op)
	primOps   = make(map[uint32]Op)
	nameOps   = make(map[string]Op)
)

func init() {
	for o, d := range opData {
		switch d.opcode {
		case OP_SPECIAL:
			funcOps[d.sub] = o
		case OP_REGIMM:
			regimmOps[d.sub] = o
		default:
			primOps[d.opcode] = o
		}
		nameOps[d.name] = o
	}
	regs := make(map[int]string, 35)
	for i := 0; i < 32; i++ {
		regs[i] = fmt.Sprintf("r%d", i)
	}
	regs[HI] = "hi"
	regs[LO] = "lo"
	regs[PC] = "pc"
	Arch.Regs = regs
}

func (o Op) String() string {
	if d, ok := opData[o]; ok {
		return d.name
	}
	return "invalid"
}

// conventional names, used by the disassembler and accepted by the assembler
var regNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

var Arch = &models.Arch{
	Name: "mips",
	Bits: 32,
	PC:   PC,
}
