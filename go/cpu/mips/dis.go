package mips

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/lunixbochs/mumips/go/models"
)

// Ins is one decoded instruction word. Every field is extracted up front so the
// executor and the disassembler read the same values.
type Ins struct {
	addr uint64
	Word uint32
	Op   Op

	Opcode uint32
	Rs     uint32
	Rt     uint32
	Rd     uint32
	Shamt  uint32
	Func   uint32
	Imm    uint32
}

// SignExtend widens a 16-bit immediate to 32 bits.
func SignExtend(imm uint32) uint32 {
	data := imm & 0xffff
	if data&0x8000 != 0 {
		data |= 0xffff0000
	}
	return data
}

// Decode splits word into its fields. An unsupported encoding still returns the
// extracted fields, with Op set to INVALID, alongside a *DecodeError.
func Decode(word uint32, addr uint64) (*Ins, error) {
	i := &Ins{
		addr:   addr,
		Word:   word,
		Opcode: word >> 26,
		Rs:     (word >> 21) & 0x1f,
		Rt:     (word >> 16) & 0x1f,
		Imm:    word & 0xffff,
	}
	var ok bool
	var sub uint32
	switch i.Opcode {
	case OP_SPECIAL:
		i.Rd = (word >> 11) & 0x1f
		i.Shamt = (word >> 6) & 0x1f
		i.Func = word & 0x3f
		sub = i.Func
		i.Op, ok = funcOps[i.Func]
	case OP_REGIMM:
		sub = i.Rt
		i.Op, ok = regimmOps[i.Rt]
	default:
		i.Op, ok = primOps[i.Opcode]
	}
	if !ok {
		i.Op = INVALID
		return i, &DecodeError{Addr: addr, Word: word, Opcode: i.Opcode, Sub: sub}
	}
	return i, nil
}

// SImm is the sign-extended immediate.
func (i *Ins) SImm() uint32 {
	return SignExtend(i.Imm)
}

// Target is the taken-branch destination. There is no delay slot, so the
// offset counts from the branch itself.
func (i *Ins) Target() uint32 {
	return uint32(i.addr) + i.SImm()<<2
}

func (i *Ins) String() string {
	if op := i.OpStr(); op != "" {
		return i.Mnemonic() + " " + op
	}
	return i.Mnemonic()
}

func (i *Ins) Addr() uint64 {
	return i.addr
}

func (i *Ins) Bytes() []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], i.Word)
	return b[:]
}

func (i *Ins) Mnemonic() string {
	if i.Op == INVALID {
		return ".word"
	}
	return i.Op.String()
}

func reg(n uint32) string {
	return "$" + regNames[n&0x1f]
}

func (i *Ins) OpStr() string {
	if i.Op == INVALID {
		return fmt.Sprintf("%#08x", i.Word)
	}
	d := opData[i.Op]
	var args []string
	switch d.arg {
	case A_RD_RS_RT:
		args = []string{reg(i.Rd), reg(i.Rs), reg(i.Rt)}
	case A_RD_RT_SA:
		args = []string{reg(i.Rd), reg(i.Rt), fmt.Sprint(i.Shamt)}
	case A_RS_RT:
		args = []string{reg(i.Rs), reg(i.Rt)}
	case A_RS:
		args = []string{reg(i.Rs)}
	case A_RD_RS:
		args = []string{reg(i.Rd), reg(i.Rs)}
	case A_RD:
		args = []string{reg(i.Rd)}
	case A_RT_RS_IMM:
		if d.unsigned {
			args = []string{reg(i.Rt), reg(i.Rs), fmt.Sprintf("%#x", i.Imm)}
		} else {
			args = []string{reg(i.Rt), reg(i.Rs), fmt.Sprint(int32(i.SImm()))}
		}
	case A_RT_IMM:
		args = []string{reg(i.Rt), fmt.Sprintf("%#x", i.Imm)}
	case A_RT_MEM:
		args = []string{reg(i.Rt), fmt.Sprintf("%d(%s)", int32(i.SImm()), reg(i.Rs))}
	case A_RS_RT_OFF:
		args = []string{reg(i.Rs), reg(i.Rt), fmt.Sprintf("%#x", i.Target())}
	case A_RS_OFF:
		args = []string{reg(i.Rs), fmt.Sprintf("%#x", i.Target())}
	}
	return strings.Join(args, ", ")
}

type Dis struct{}

// Dis decodes every whole word in mem. Unsupported words are rendered as .word
// rather than stopping the listing.
func (d *Dis) Dis(mem []byte, addr uint64) ([]models.Ins, error) {
	var ret []models.Ins
	for off := 0; off+4 <= len(mem); off += 4 {
		word := binary.LittleEndian.Uint32(mem[off:])
		ins, _ := Decode(word, addr+uint64(off))
		ret = append(ret, ins)
	}
	return ret, nil
}
