package cmd

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mumips "github.com/lunixbochs/mumips/go"
	"github.com/lunixbochs/mumips/go/loader"
	"github.com/lunixbochs/mumips/go/models"
)

const addSrc = `
	addi $1, $0, 5
	addi $2, $0, 3
	add  $3, $1, $2
	syscall
`

func newContext(t *testing.T, src string) (*Context, *bytes.Buffer) {
	l, err := loader.NewAsmLoader(strings.NewReader(src), "test.s", 0x00400000)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	s, err := mumips.NewSimLoader(l, &models.Config{Output: &out})
	if err != nil {
		t.Fatal(err)
	}
	out.Reset()
	return &Context{Writer: &out, S: s}, &out
}

func run(t *testing.T, c *Context, lines ...string) {
	for _, line := range lines {
		if err := Run(c, line); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
	}
}

func TestFind(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"sim", "sim"},
		{"SIM", "sim"},
		{"?", "help"},
		{"rd", "rdump"},
		{"md", "mdump"},
		{"q", "quit"},
		{"res", ""},
		{"bogus", ""},
	}
	for _, test := range tests {
		c, err := Find(test.name)
		if test.want == "" {
			if err == nil {
				t.Errorf("Find(%q) = %s, expected error", test.name, c.Name)
			}
			continue
		}
		if err != nil {
			t.Errorf("Find(%q): %v", test.name, err)
		} else if c.Name != test.want {
			t.Errorf("Find(%q) = %s, expected %s", test.name, c.Name, test.want)
		}
	}
}

func TestSorted(t *testing.T) {
	cmds := Sorted()
	seen := make(map[string]bool)
	for i, c := range cmds {
		if seen[c.Name] {
			t.Fatalf("duplicate command %s", c.Name)
		}
		seen[c.Name] = true
		if i > 0 && cmds[i-1].Name > c.Name {
			t.Fatalf("%s sorted before %s", cmds[i-1].Name, c.Name)
		}
	}
	for _, name := range []string{"sim", "run", "step", "rdump", "reset", "input", "high", "low", "mdump", "print", "save", "restore", "help", "quit"} {
		if !seen[name] {
			t.Errorf("missing command %s", name)
		}
	}
}

func TestSimCommand(t *testing.T) {
	c, out := newContext(t, addSrc)
	run(t, c, "sim")
	if regs := c.S.Regs(); regs[3] != 8 {
		t.Fatalf("r3 = %d", regs[3])
	}
	if !strings.Contains(out.String(), "Simulation Finished") {
		t.Fatalf("bad output: %q", out.String())
	}
	out.Reset()
	run(t, c, "sim")
	if !strings.Contains(out.String(), "halted") {
		t.Fatalf("expected halted message, got %q", out.String())
	}
}

func TestRunStep(t *testing.T) {
	c, out := newContext(t, addSrc)
	run(t, c, "run 2")
	if c.S.Count() != 2 {
		t.Fatalf("count = %d", c.S.Count())
	}
	out.Reset()
	run(t, c, "step")
	if c.S.Count() != 3 {
		t.Fatalf("count = %d", c.S.Count())
	}
	if !strings.Contains(out.String(), "add $v1, $at, $v0") {
		t.Fatalf("step output: %q", out.String())
	}
	run(t, c, "reset")
	if c.S.Count() != 0 || c.S.PC() != 0x00400000 {
		t.Fatalf("reset left count=%d pc=%#x", c.S.Count(), c.S.PC())
	}
}

func TestRegCommands(t *testing.T) {
	c, out := newContext(t, addSrc)
	run(t, c, "input $t0 0x1234", "input 9 -1", "high 7", "low 0x10")
	regs := c.S.Regs()
	if regs[8] != 0x1234 || regs[9] != 0xffffffff {
		t.Fatalf("bad regs: %#x %#x", regs[8], regs[9])
	}
	if hi, lo := c.S.HiLo(); hi != 7 || lo != 0x10 {
		t.Fatalf("hi=%#x lo=%#x", hi, lo)
	}
	out.Reset()
	run(t, c, "rdump")
	if !strings.Contains(out.String(), "00001234") || !strings.Contains(out.String(), "# Instructions Executed\t: 0") {
		t.Fatalf("rdump output: %q", out.String())
	}
	out.Reset()
	run(t, c, "input $nope 1")
	if !strings.Contains(out.String(), "bad register") {
		t.Fatalf("expected register error, got %q", out.String())
	}
	out.Reset()
	run(t, c, "input 1")
	if !strings.Contains(out.String(), "usage: input") {
		t.Fatalf("expected usage, got %q", out.String())
	}
}

func TestMdump(t *testing.T) {
	c, out := newContext(t, addSrc)
	run(t, c, "mdump 0x400000 0x400008")
	got := out.String()
	for _, word := range []string{"0x20010005", "0x20020003", "0x00221820"} {
		if !strings.Contains(got, word) {
			t.Errorf("mdump missing %s: %q", word, got)
		}
	}
	out.Reset()
	run(t, c, "mdump 0 4")
	if !strings.Contains(out.String(), "error:") {
		t.Fatalf("expected unmapped error, got %q", out.String())
	}
	out.Reset()
	run(t, c, "mdump 0 ffffffff")
	if !strings.Contains(out.String(), "error:") {
		t.Fatalf("expected unmapped error, got %q", out.String())
	}
	// words before the end of the region are printed before the error
	out.Reset()
	run(t, c, "mdump 4ffffc 500004")
	got = out.String()
	if !strings.Contains(got, "0x004ffffc") || !strings.Contains(got, "error:") {
		t.Fatalf("bad dump across region end: %q", got)
	}
}

func TestDisCount(t *testing.T) {
	c, out := newContext(t, addSrc)
	for _, line := range []string{"dis 400000 -1", "dis 400000 0", "dis 400000 100000000"} {
		out.Reset()
		run(t, c, line)
		if !strings.Contains(out.String(), "error:") {
			t.Errorf("%q: expected error, got %q", line, out.String())
		}
	}
	out.Reset()
	run(t, c, "dis 400000 2")
	if !strings.Contains(out.String(), "addi $v0, $zero, 3") {
		t.Fatalf("dis output: %q", out.String())
	}
}

func TestPrintSaveRestore(t *testing.T) {
	c, out := newContext(t, addSrc)
	run(t, c, "print")
	if !strings.Contains(out.String(), "syscall") {
		t.Fatalf("print output: %q", out.String())
	}

	dir, err := ioutil.TempDir("", "mumips-cmd")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "state")
	run(t, c, "run 2", "save "+path, "sim")
	if c.S.Running() {
		t.Fatal("still running after sim")
	}
	run(t, c, "restore "+path)
	if c.S.Count() != 2 || !c.S.Running() {
		t.Fatalf("restore: count=%d running=%v", c.S.Count(), c.S.Running())
	}
}

func TestQuit(t *testing.T) {
	c, _ := newContext(t, addSrc)
	if err := Run(c, "quit"); err != ErrQuit {
		t.Fatalf("quit returned %v", err)
	}
	if err := Run(c, "  "); err != nil {
		t.Fatal(err)
	}
}
