package trace

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

func bprintf(f string, args ...interface{}) []byte {
	return []byte(fmt.Sprintf(f, args...))
}

func (o *OpNop) MarshalJSON() ([]byte, error) {
	return bprintf(`{"op":%d}`, OP_NOP), nil
}

func (o *OpExit) MarshalJSON() ([]byte, error) {
	return bprintf(`{"op":%d}`, OP_EXIT), nil
}

func (o *OpRunState) MarshalJSON() ([]byte, error) {
	return bprintf(`{"op":%d,"count":%d,"running":%t}`, OP_RUN_STATE, o.Count, o.Running), nil
}

func (o *OpJmp) MarshalJSON() ([]byte, error) {
	return bprintf(`{"op":%d,"addr":%d,"size":%d}`, OP_JMP, o.Addr, o.Size), nil
}

func (o *OpStep) MarshalJSON() ([]byte, error) {
	return bprintf(`{"op":%d,"addr":%d,"word":%d}`, OP_STEP, o.Addr, o.Word), nil
}

func (o *OpReg) MarshalJSON() ([]byte, error) {
	return bprintf(`{"op":%d,"num":%d,"val":%d}`, OP_REG, o.Num, o.Val), nil
}

func (o *OpMemRead) MarshalJSON() ([]byte, error) {
	return bprintf(`{"op":%d,"addr":%d,"size":%d}`, OP_MEM_READ, o.Addr, o.Size), nil
}

func (o *OpMemWrite) MarshalJSON() ([]byte, error) {
	data := base64.StdEncoding.EncodeToString(o.Data)
	return bprintf(`{"op":%d,"addr":%d,"data":"%s"}`, OP_MEM_WRITE, o.Addr, data), nil
}

func (o *OpMemMap) MarshalJSON() ([]byte, error) {
	desc, err := json.Marshal(o.Desc)
	if err != nil {
		return nil, err
	}
	return bprintf(`{"op":%d,"addr":%d,"size":%d,"prot":%d,"desc":%s}`, OP_MEM_MAP, o.Addr, o.Size, o.Prot, desc), nil
}

func (o *OpDiag) MarshalJSON() ([]byte, error) {
	msg, err := json.Marshal(o.Msg)
	if err != nil {
		return nil, err
	}
	return bprintf(`{"op":%d,"addr":%d,"msg":%s}`, OP_DIAG, o.Addr, msg), nil
}

func (o *OpKeyframe) MarshalJSON() ([]byte, error) {
	ops, err := json.Marshal(o.Ops)
	if err != nil {
		return nil, err
	}
	return bprintf(`{"op":%d,"ops":%s}`, OP_KEYFRAME, ops), nil
}

func (o *OpFrame) MarshalJSON() ([]byte, error) {
	ops, err := json.Marshal(o.Ops)
	if err != nil {
		return nil, err
	}
	return bprintf(`{"op":%d,"ops":%s}`, OP_FRAME, ops), nil
}
