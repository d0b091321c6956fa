package mips

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

type asmProgram struct {
	Stmts []*asmStmt `( @@ | EOL )*`
}

type asmStmt struct {
	Label *string `  @Ident ":"`
	Ins   *asmIns `| @@`
}

type asmIns struct {
	Pos      lexer.Position
	Mnemonic string    `@Ident`
	Args     []*asmArg `( @@ ( "," @@ )* )?`
}

type asmArg struct {
	Mem   *asmMem `  @@`
	Reg   *string `| @Reg`
	Num   *string `| @Number`
	Ident *string `| @Ident`
}

// off(base), with the offset optional
type asmMem struct {
	Off  *string `@Number? "("`
	Base string  `@(Reg | Ident) ")"`
}

var asmLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "EOL", Pattern: `[\n;]`},
	{Name: "Number", Pattern: `-?(0[xX][0-9a-fA-F]+|[0-9]+)`},
	{Name: "Reg", Pattern: `\$[a-zA-Z0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_.][a-zA-Z0-9_.]*`},
	{Name: "Punct", Pattern: `[,():]`},
})

var asmParser = participle.MustBuild[asmProgram](
	participle.Lexer(asmLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

type asmError struct {
	pos lexer.Position
	msg string
}

func (e *asmError) Error() string {
	return e.pos.String() + ": " + e.msg
}

// Assemble translates source into instruction words placed from addr.
// Branch operands are labels or absolute addresses. The pseudo-op .word emits
// its operand verbatim.
func Assemble(src string, addr uint32) ([]uint32, error) {
	prog, err := asmParser.ParseString("", src)
	if err != nil {
		return nil, errors.Wrap(err, "parse failed")
	}
	labels := make(map[string]uint32)
	pc := addr
	for _, s := range prog.Stmts {
		if s.Label != nil {
			if _, ok := labels[*s.Label]; ok {
				return nil, errors.Errorf("duplicate label %q", *s.Label)
			}
			labels[*s.Label] = pc
		} else {
			pc += 4
		}
	}
	var out []uint32
	pc = addr
	for _, s := range prog.Stmts {
		if s.Ins == nil {
			continue
		}
		word, err := s.Ins.encode(pc, labels)
		if err != nil {
			return nil, err
		}
		out = append(out, word)
		pc += 4
	}
	return out, nil
}

// ParseReg accepts $n, $name, rN and $rN register forms.
func ParseReg(s string) (uint32, bool) {
	s = strings.ToLower(strings.TrimPrefix(s, "$"))
	if n, err := strconv.ParseUint(s, 10, 8); err == nil && n < 32 {
		return uint32(n), true
	}
	if strings.HasPrefix(s, "r") {
		if n, err := strconv.ParseUint(s[1:], 10, 8); err == nil && n < 32 {
			return uint32(n), true
		}
	}
	for i, name := range regNames {
		if name == s {
			return uint32(i), true
		}
	}
	if s == "s8" {
		return 30, true
	}
	return 0, false
}

func parseNum(s string) (int64, error) {
	return strconv.ParseInt(s, 0, 64)
}

func (a *asmIns) errorf(format string, v ...interface{}) error {
	return &asmError{pos: a.Pos, msg: strings.TrimSpace(a.Mnemonic + ": " + fmt.Sprintf(format, v...))}
}

func (a *asmIns) reg(n int) (uint32, error) {
	arg := a.Args[n]
	var name string
	switch {
	case arg.Reg != nil:
		name = *arg.Reg
	case arg.Ident != nil:
		name = *arg.Ident
	default:
		return 0, a.errorf("operand %d: expected register", n+1)
	}
	r, ok := ParseReg(name)
	if !ok {
		return 0, a.errorf("operand %d: unknown register %q", n+1, name)
	}
	return r, nil
}

func (a *asmIns) imm(n int, min, max int64) (uint32, error) {
	arg := a.Args[n]
	if arg.Num == nil {
		return 0, a.errorf("operand %d: expected immediate", n+1)
	}
	v, err := parseNum(*arg.Num)
	if err != nil || v < min || v > max {
		return 0, a.errorf("operand %d: immediate %s out of range", n+1, *arg.Num)
	}
	return uint32(v), nil
}

func (a *asmIns) mem(n int) (base, off uint32, err error) {
	m := a.Args[n].Mem
	if m == nil {
		return 0, 0, a.errorf("operand %d: expected off(base)", n+1)
	}
	base, ok := ParseReg(m.Base)
	if !ok {
		return 0, 0, a.errorf("operand %d: unknown register %q", n+1, m.Base)
	}
	if m.Off != nil {
		v, err := parseNum(*m.Off)
		if err != nil || v < -0x8000 || v > 0x7fff {
			return 0, 0, a.errorf("operand %d: offset %s out of range", n+1, *m.Off)
		}
		off = uint32(v) & 0xffff
	}
	return base, off, nil
}

// branch operand: a label or an absolute target address
func (a *asmIns) target(n int, pc uint32, labels map[string]uint32) (uint32, error) {
	arg := a.Args[n]
	var dst uint32
	switch {
	case arg.Ident != nil:
		addr, ok := labels[*arg.Ident]
		if !ok {
			return 0, a.errorf("undefined label %q", *arg.Ident)
		}
		dst = addr
	case arg.Num != nil:
		v, err := parseNum(*arg.Num)
		if err != nil {
			return 0, a.errorf("operand %d: bad address %s", n+1, *arg.Num)
		}
		dst = uint32(v)
	default:
		return 0, a.errorf("operand %d: expected label or address", n+1)
	}
	off := int64(int32(dst - pc))
	if off&3 != 0 || off < -0x8000<<2 || off > 0x7fff<<2 {
		return 0, a.errorf("branch target %#x unreachable from %#x", dst, pc)
	}
	return uint32(off>>2) & 0xffff, nil
}

func (a *asmIns) encode(pc uint32, labels map[string]uint32) (uint32, error) {
	name := strings.ToLower(a.Mnemonic)
	if name == ".word" {
		if len(a.Args) != 1 {
			return 0, a.errorf("expected 1 operand")
		}
		return a.imm(0, -0x80000000, 0xffffffff)
	}
	o, ok := nameOps[name]
	if !ok {
		return 0, a.errorf("unknown instruction")
	}
	d := opData[o]
	want := map[int]int{
		A_NONE: 0, A_RD_RS_RT: 3, A_RD_RT_SA: 3, A_RS_RT: 2, A_RS: 1, A_RD_RS: 2,
		A_RD: 1, A_RT_RS_IMM: 3, A_RT_IMM: 2, A_RT_MEM: 2, A_RS_RT_OFF: 3, A_RS_OFF: 2,
	}[d.arg]
	// jalr rs links through $ra
	if !(o == JALR && len(a.Args) == 1) && len(a.Args) != want {
		return 0, a.errorf("expected %d operands, got %d", want, len(a.Args))
	}

	var rs, rt, rd, sa, imm uint32
	var err error
	must := func(v uint32, e error) uint32 {
		if err == nil {
			err = e
		}
		return v
	}
	switch d.arg {
	case A_RD_RS_RT:
		rd, rs, rt = must(a.reg(0)), must(a.reg(1)), must(a.reg(2))
	case A_RD_RT_SA:
		rd, rt, sa = must(a.reg(0)), must(a.reg(1)), must(a.imm(2, 0, 31))
	case A_RS_RT:
		rs, rt = must(a.reg(0)), must(a.reg(1))
	case A_RS:
		rs = must(a.reg(0))
	case A_RD_RS:
		if len(a.Args) == 1 {
			rd, rs = 31, must(a.reg(0))
		} else {
			rd, rs = must(a.reg(0)), must(a.reg(1))
		}
	case A_RD:
		rd = must(a.reg(0))
	case A_RT_RS_IMM:
		rt, rs = must(a.reg(0)), must(a.reg(1))
		if d.unsigned {
			imm = must(a.imm(2, 0, 0xffff))
		} else {
			imm = must(a.imm(2, -0x8000, 0x7fff)) & 0xffff
		}
	case A_RT_IMM:
		rt, imm = must(a.reg(0)), must(a.imm(1, 0, 0xffff))
	case A_RT_MEM:
		rt = must(a.reg(0))
		var e error
		rs, imm, e = a.mem(1)
		must(0, e)
	case A_RS_RT_OFF:
		rs, rt, imm = must(a.reg(0)), must(a.reg(1)), must(a.target(2, pc, labels))
	case A_RS_OFF:
		rs, imm = must(a.reg(0)), must(a.target(1, pc, labels))
	}
	if err != nil {
		return 0, err
	}
	switch d.opcode {
	case OP_SPECIAL:
		return rs<<21 | rt<<16 | rd<<11 | sa<<6 | d.sub, nil
	case OP_REGIMM:
		return OP_REGIMM<<26 | rs<<21 | d.sub<<16 | imm, nil
	}
	return d.opcode<<26 | rs<<21 | rt<<16 | imm, nil
}
