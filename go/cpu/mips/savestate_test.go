package mips

import (
	"testing"
)

func TestSaveRestore(t *testing.T) {
	c := asmCpu(t, "addi $1, $0, 5; lui $2, 0x1000; sw $1, 8($2); mflo $3; addi $4, $0, 1")
	c.RegWrite(LO, 0x77)
	c.Run(4)
	data, err := c.Save()
	if err != nil {
		t.Fatal(err)
	}

	c2 := newCpu(t)
	if err := c2.Restore(data); err != nil {
		t.Fatal(err)
	}
	if c2.State() != c.State() {
		t.Fatalf("state mismatch:\n%+v\n%+v", c2.State(), c.State())
	}
	if c2.Count() != 4 || !c2.Running() {
		t.Fatalf("count %d running %v", c2.Count(), c2.Running())
	}
	if v, _ := c2.Read32(0x10000008); v != 5 {
		t.Fatalf("memory not restored: %#x", v)
	}
	// the hazard tracker survives too
	c2.Write32(c2.PC(), 0x00220018) // mult $1, $2
	if _, ok := c2.Step().(*UndefinedError); !ok {
		t.Fatal("hazard state was not restored")
	}
	// and so does the program image
	c2.Reset()
	if v, _ := c2.Read32(textBase); v != 0x20010005 {
		t.Fatalf("program image not restored: %#x", v)
	}
}

func TestRestoreErrors(t *testing.T) {
	c := asmCpu(t, "syscall")
	data, err := c.Save()
	if err != nil {
		t.Fatal(err)
	}
	bad := append([]byte(nil), data...)
	bad[len(bad)-1] ^= 0xff
	tests := map[string][]byte{
		"empty":     nil,
		"truncated": data[:len(data)-1],
		"checksum":  bad,
		"version":   append([]byte{0, 0, 0, 9}, data[4:]...),
	}
	for name, p := range tests {
		if err := c.Restore(p); err == nil {
			t.Errorf("%s: restore should fail", name)
		}
	}
	if c.PC() != textBase || c.Count() != 0 {
		t.Fatal("failed restore modified the cpu")
	}
}
