package models

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Disas renders mem as one "0xaddr: bytes mnemonic opstr" line per instruction.
func Disas(dis Disassembler, mem []byte, addr uint64) (string, error) {
	if len(mem) == 0 {
		return "", nil
	}
	code, err := dis.Dis(mem, addr)
	if err != nil {
		return "", err
	}
	out := make([]string, 0, len(code))
	for _, ins := range code {
		line := fmt.Sprintf("0x%08x: %s %s", ins.Addr(), hex.EncodeToString(ins.Bytes()), ins.Mnemonic())
		if op := ins.OpStr(); op != "" {
			line += " " + op
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n"), nil
}

// WordDump renders words as "0xaddr (dec) :\t0xvalue" lines, one word per line.
func WordDump(base uint64, words []uint32) []string {
	out := make([]string, len(words))
	for i, w := range words {
		addr := base + uint64(i)*4
		out[i] = fmt.Sprintf("0x%08x (%d) :\t0x%08x", addr, addr, w)
	}
	return out
}
