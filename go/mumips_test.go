package mumips

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lunixbochs/mumips/go/cpu/mips"
	"github.com/lunixbochs/mumips/go/models"
	"github.com/lunixbochs/mumips/go/models/trace"
)

func writeProg(t *testing.T, dir, name, src string) string {
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSim(t *testing.T) {
	dir, err := ioutil.TempDir("", "mumips")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := writeProg(t, dir, "add.x", "20010005\n20020003\n00221820\n0000000c\n")

	var out bytes.Buffer
	tracePath := filepath.Join(dir, "add.trace")
	s, err := NewSim(path, &models.Config{Output: &out, TraceFile: tracePath})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "4 words written into memory") {
		t.Fatalf("missing load summary: %q", out.String())
	}
	if err := s.RunAll(); err != nil {
		t.Fatal(err)
	}
	if regs := s.Regs(); regs[3] != 8 {
		t.Fatalf("r3 = %d", regs[3])
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	r, err := trace.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	var frames int
	for {
		op, err := r.Next()
		if err != nil {
			break
		}
		if _, ok := op.(*trace.OpFrame); ok {
			frames++
		}
	}
	if frames != 4 {
		t.Fatalf("trace has %d frames", frames)
	}
}

func TestSimListing(t *testing.T) {
	dir, err := ioutil.TempDir("", "mumips")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := writeProg(t, dir, "prog.s", "addi $1, $0, 5\nsyscall\n")
	s, err := NewSim(path, &models.Config{Output: ioutil.Discard})
	if err != nil {
		t.Fatal(err)
	}
	listing := s.Listing()
	if len(listing) != 2 || listing[0] != "0x00400000 (4194304) :\t0x20010005" {
		t.Fatalf("bad listing: %q", listing)
	}
	dis, err := s.Dis(0x400000, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := "0x00400000: 05000120 addi $at, $zero, 5\n0x00400004: 0c000000 syscall"
	if dis != want {
		t.Fatalf("disassembly:\n%s\nwant:\n%s", dis, want)
	}
}

func TestSimSaveRestore(t *testing.T) {
	dir, err := ioutil.TempDir("", "mumips")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := writeProg(t, dir, "prog.s", "addi $1, $0, 5\naddi $1, $1, 1\nsyscall\n")
	s, err := NewSim(path, &models.Config{Output: ioutil.Discard})
	if err != nil {
		t.Fatal(err)
	}
	s.Step()
	state := filepath.Join(dir, "state")
	if err := s.SaveFile(state); err != nil {
		t.Fatal(err)
	}
	s.RunAll()
	if err := s.RestoreFile(state); err != nil {
		t.Fatal(err)
	}
	if s.Regs()[1] != 5 || s.PC() != 0x400004 || !s.Running() {
		t.Fatalf("restore: r1 %d pc %#x", s.Regs()[1], s.PC())
	}
	if err := s.RestoreFile(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("restore of a missing file should fail")
	}
}

func TestSimTraceAcrossReset(t *testing.T) {
	dir, err := ioutil.TempDir("", "mumips")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := writeProg(t, dir, "prog.s", "addi $1, $0, 5\nlui $2, 0x1000\nsw $1, 4($2)\nsyscall\n")
	tracePath := filepath.Join(dir, "prog.trace")
	s, err := NewSim(path, &models.Config{Output: ioutil.Discard, TraceFile: tracePath})
	if err != nil {
		t.Fatal(err)
	}
	state := filepath.Join(dir, "state")
	s.Step()
	if err := s.SaveFile(state); err != nil {
		t.Fatal(err)
	}
	s.RunAll()
	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	s.Step()
	if err := s.RestoreFile(state); err != nil {
		t.Fatal(err)
	}
	s.Step()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	r, err := trace.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	replay := trace.NewReplay(mips.Arch, r.Header.Order)
	var keyframes int
	for {
		op, err := r.Next()
		if err != nil {
			break
		}
		if _, ok := op.(*trace.OpKeyframe); ok {
			keyframes++
		}
		if err := replay.Feed(op); err != nil {
			t.Fatal(err)
		}
	}
	if keyframes != 3 {
		t.Errorf("trace has %d keyframes, want 3", keyframes)
	}
	if replay.Inscount != 2 || s.Count() != 2 || replay.Halted || !s.Running() {
		t.Fatalf("replay count %d halted %v, sim count %d running %v", replay.Inscount, replay.Halted, s.Count(), s.Running())
	}
	live, _ := s.Read32(0x10000004)
	if v, err := replay.Mem.ReadUint(0x10000004, 4, 0); err != nil || v != uint64(live) || live != 0 {
		t.Errorf("replayed memory %#x (%v), sim %#x", v, err, live)
	}
	for i, v := range s.Regs() {
		if replay.Regs[i] != uint64(v) {
			t.Errorf("r%d: replay %#x, sim %#x", i, replay.Regs[i], v)
		}
	}
}
