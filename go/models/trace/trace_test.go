package trace

import (
	"bytes"
	"io"
	"io/ioutil"
	"testing"

	"github.com/lunixbochs/mumips/go/cpu/mips"
	"github.com/lunixbochs/mumips/go/models"
)

type nopCloser struct{ io.ReadWriter }

func (nopCloser) Close() error { return nil }

const prog = `
	addi $1, $0, 5
	lui $2, 0x1000
	sw $1, 4($2)
	lw $3, 4($2)
	div $1, $0
	beq $0, $0, end
	addi $4, $0, 1
end:
	syscall
`

func TestTraceReplay(t *testing.T) {
	c, err := mips.New(&models.Config{Output: ioutil.Discard})
	if err != nil {
		t.Fatal(err)
	}
	words, err := mips.Assemble(prog, 0x400000)
	if err != nil {
		t.Fatal(err)
	}
	c.Load(words, 0x400000)

	var buf bytes.Buffer
	tr, err := NewTrace(c, mips.Arch, nopCloser{&buf})
	if err != nil {
		t.Fatal(err)
	}
	var frames int
	tr.OpCallback = append(tr.OpCallback, func(op models.Op) {
		if _, ok := op.(*OpFrame); ok {
			frames++
		}
	})
	if err := tr.Attach(); err != nil {
		t.Fatal(err)
	}
	c.RunAll()
	if err := tr.Detach(); err != nil {
		t.Fatal(err)
	}
	if frames != 7 {
		t.Fatalf("recorded %d frames, want 7", frames)
	}

	r, err := NewReader(nopCloser{&buf})
	if err != nil {
		t.Fatal(err)
	}
	if r.Header.Arch != "mips" || r.Header.Entry != 0x400000 || r.Header.OrderName != "little" {
		t.Fatalf("bad header: %+v", r.Header)
	}
	replay := NewReplay(mips.Arch, r.Header.Order)
	var writes int
	replay.Listen(func(op models.Op) {
		if _, ok := op.(*OpMemWrite); ok {
			writes++
		}
	})
	for {
		op, err := r.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
		if err := replay.Feed(op); err != nil {
			t.Fatal(err)
		}
	}
	r.Close()

	if replay.Inscount != c.Count() {
		t.Errorf("replayed %d instructions, ran %d", replay.Inscount, c.Count())
	}
	if !replay.Halted {
		t.Error("exit not recorded")
	}
	if replay.PC != uint64(c.PC()) {
		t.Errorf("replay pc %#x, cpu pc %#x", replay.PC, c.PC())
	}
	for i, v := range c.Regs() {
		if replay.Regs[i] != uint64(v) {
			t.Errorf("r%d: replay %#x, cpu %#x", i, replay.Regs[i], v)
		}
	}
	if v, err := replay.Mem.ReadUint(0x10000004, 4, 0); err != nil || v != 5 {
		t.Errorf("replayed memory %#x, %v", v, err)
	}
	// the program image comes from the keyframe, the store from its frame
	if writes < 2 {
		t.Errorf("saw %d memory writes", writes)
	}
	if len(replay.Diags) != 1 || replay.Diags[0].Addr != 0x400010 {
		t.Errorf("diagnostics: %v", replay.Diags)
	}
}

func TestTraceRekey(t *testing.T) {
	c, err := mips.New(&models.Config{Output: ioutil.Discard})
	if err != nil {
		t.Fatal(err)
	}
	words, err := mips.Assemble(prog, 0x400000)
	if err != nil {
		t.Fatal(err)
	}
	c.Load(words, 0x400000)

	var buf bytes.Buffer
	tr, err := NewTrace(c, mips.Arch, nopCloser{&buf})
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Attach(); err != nil {
		t.Fatal(err)
	}
	c.RunAll()
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := c.Reset(); err != nil {
		t.Fatal(err)
	}
	if err := tr.Rekey(); err != nil {
		t.Fatal(err)
	}
	c.Step()
	if err := tr.Detach(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(nopCloser{&buf})
	if err != nil {
		t.Fatal(err)
	}
	replay := NewReplay(mips.Arch, r.Header.Order)
	for {
		op, err := r.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
		if err := replay.Feed(op); err != nil {
			t.Fatal(err)
		}
	}
	if replay.Inscount != c.Count() || replay.Halted != !c.Running() {
		t.Fatalf("replay count %d halted %v, cpu count %d running %v", replay.Inscount, replay.Halted, c.Count(), c.Running())
	}
	if replay.PC != uint64(c.PC()) {
		t.Errorf("replay pc %#x, cpu pc %#x", replay.PC, c.PC())
	}
	live, _ := c.Read32(0x10000004)
	if v, err := replay.Mem.ReadUint(0x10000004, 4, 0); err != nil || v != uint64(live) {
		t.Errorf("replayed memory %#x (%v), cpu %#x", v, err, live)
	}
	for i, v := range c.Regs() {
		if replay.Regs[i] != uint64(v) {
			t.Errorf("r%d: replay %#x, cpu %#x", i, replay.Regs[i], v)
		}
	}
}

func TestTraceBadMagic(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, 64))
	if _, err := NewReader(nopCloser{buf}); err == nil {
		t.Fatal("bad magic should fail")
	}
}
