package trace

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/lunixbochs/mumips/go/models"
)

var allUnframed = []models.Op{
	&OpNop{},
	&OpMemMap{0x400000, 0x100000, 7, "text"},
	&OpMemWrite{0x400000, []byte{0x05, 0x00, 0x01, 0x20}}, // addi $1, $0, 5
	&OpStep{0x400000, 0x20010005},
	&OpJmp{0x400010, 0},
	&OpReg{1, 5},
	&OpMemRead{0x10000000, 4},
	&OpDiag{0x400004, "division by zero"},
	&OpExit{},
	&OpRunState{3, true},
}

var testFrame = &OpFrame{Ops: allUnframed}

func TestOpFrame(t *testing.T) {
	buf := make([]byte, testFrame.Sizeof())
	testFrame.Pack(buf)
	op, n, err := Unpack(bytes.NewReader(buf), false)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(buf) {
		t.Fatalf("unpacked %d bytes of %d", n, len(buf))
	}
	frame, ok := op.(*OpFrame)
	if !ok || len(frame.Ops) != len(allUnframed) {
		t.Fatalf("bad frame: %#v", op)
	}

	buf2 := make([]byte, op.Sizeof())
	op.Pack(buf2)
	if !bytes.Equal(buf, buf2) {
		t.Error("encoded forms differ")
	}
}

func TestNestedFrame(t *testing.T) {
	nested := &OpFrame{Ops: []models.Op{&OpKeyframe{}}}
	buf := make([]byte, nested.Sizeof())
	nested.Pack(buf)
	if _, _, err := Unpack(bytes.NewReader(buf), false); err == nil {
		t.Fatal("nested frame should fail to unpack")
	}
	if _, _, err := Unpack(bytes.NewReader([]byte{0xee}), false); err == nil {
		t.Fatal("unknown op should fail to unpack")
	}
}

func TestOpJson(t *testing.T) {
	out, err := json.Marshal(testFrame)
	if err != nil {
		t.Fatal(err)
	}
	var dict map[string]interface{}
	if err := json.Unmarshal(out, &dict); err != nil {
		t.Fatalf("invalid json %s: %v", out, err)
	}
	if ops, ok := dict["ops"].([]interface{}); !ok || len(ops) != len(allUnframed) {
		t.Fatalf("bad json frame: %s", out)
	}
}

func BenchmarkPack(b *testing.B) {
	for i := 0; i < b.N; i++ {
		tmp := make([]byte, testFrame.Sizeof())
		testFrame.Pack(tmp)
	}
}

func BenchmarkUnpack(b *testing.B) {
	tmp := make([]byte, testFrame.Sizeof())
	testFrame.Pack(tmp)
	r := bytes.NewReader(tmp)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Seek(0, 0)
		if _, _, err := Unpack(r, false); err != nil {
			b.Fatal(err)
		}
	}
}
