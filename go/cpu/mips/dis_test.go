package mips

import (
	"encoding/binary"
	"testing"
)

func TestSignExtend(t *testing.T) {
	tests := [][2]uint32{
		{0x8000, 0xffff8000},
		{0x7fff, 0x00007fff},
		{0xffff, 0xffffffff},
		{0, 0},
		{0x12348000, 0xffff8000},
	}
	for _, test := range tests {
		if v := SignExtend(test[0]); v != test[1] {
			t.Errorf("SignExtend(%#x) = %#x, want %#x", test[0], v, test[1])
		}
	}
}

func TestDecodeFields(t *testing.T) {
	ins, err := Decode(0x00221820, textBase)
	if err != nil {
		t.Fatal(err)
	}
	if ins.Op != ADD || ins.Rs != 1 || ins.Rt != 2 || ins.Rd != 3 || ins.Shamt != 0 || ins.Func != 0x20 {
		t.Fatalf("bad decode: %+v", ins)
	}
	ins, err = Decode(0x8d09fffc, textBase)
	if err != nil {
		t.Fatal(err)
	}
	if ins.Op != LW || ins.Rs != 8 || ins.Rt != 9 || ins.Imm != 0xfffc || ins.SImm() != 0xfffffffc {
		t.Fatalf("bad decode: %+v", ins)
	}
	ins, err = Decode(0x000210c3, textBase)
	if err != nil || ins.Op != SRA || ins.Rt != 2 || ins.Rd != 2 || ins.Shamt != 3 {
		t.Fatalf("bad decode: %+v %v", ins, err)
	}
}

func TestDisasm(t *testing.T) {
	tests := []struct {
		word uint32
		text string
	}{
		{0x20010005, "addi $at, $zero, 5"},
		{0x00221820, "add $v1, $at, $v0"},
		{0x10220004, "beq $at, $v0, 0x400010"},
		{0x1000ffff, "beq $zero, $zero, 0x3ffffc"},
		{0x0441fffe, "bgez $v0, 0x3ffff8"},
		{0x3c011000, "lui $at, 0x1000"},
		{0x34218000, "ori $at, $at, 0x8000"},
		{0x8fbf0004, "lw $ra, 4($sp)"},
		{0xa3a8ffff, "sb $t0, -1($sp)"},
		{0x00041080, "sll $v0, $a0, 2"},
		{0x0000000c, "syscall"},
		{0x03e00008, "jr $ra"},
		{0x0060f809, "jalr $ra, $v1"},
		{0x00002012, "mflo $a0"},
		{0x0085001a, "div $a0, $a1"},
		{0xfc000000, ".word 0xfc000000"},
	}
	for _, test := range tests {
		ins, _ := Decode(test.word, textBase)
		if s := ins.String(); s != test.text {
			t.Errorf("%#08x: %q, want %q", test.word, s, test.text)
		}
	}
}

func TestDis(t *testing.T) {
	mem := make([]byte, 14)
	binary.LittleEndian.PutUint32(mem, 0x20010005)
	binary.LittleEndian.PutUint32(mem[4:], 0xfc000000)
	binary.LittleEndian.PutUint32(mem[8:], 0x0000000c)
	d := &Dis{}
	out, err := d.Dis(mem, textBase)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("decoded %d instructions, want 3", len(out))
	}
	if out[1].Mnemonic() != ".word" || out[2].Addr() != textBase+8 || out[2].Mnemonic() != "syscall" {
		t.Fatalf("bad listing: %v", out)
	}
	if b := out[0].Bytes(); binary.LittleEndian.Uint32(b) != 0x20010005 {
		t.Fatalf("bytes %x", b)
	}
}

func BenchmarkDecode(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Decode(0x00221820, textBase)
	}
}
