package cmd

import (
	"strconv"
	"strings"

	"github.com/lunixbochs/argjoy"
	"github.com/pkg/errors"

	"github.com/lunixbochs/mumips/go/cpu/mips"
)

// Addr is a memory address, read as hex with or without a 0x prefix.
type Addr uint32

// Reg is a general register number, by number or by name.
type Reg int

// Val is a 32-bit value in decimal, 0x hex or 0 octal, optionally negative.
type Val uint32

func parseVal(s string) (uint32, error) {
	if strings.HasPrefix(s, "-") {
		n, err := strconv.ParseInt(s, 0, 33)
		if err != nil || n < -1<<31 {
			return 0, errors.Errorf("bad value %q", s)
		}
		return uint32(n), nil
	}
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, errors.Errorf("bad value %q", s)
	}
	return uint32(n), nil
}

func argCodec(arg interface{}, vals []interface{}) error {
	s, ok := vals[0].(string)
	if !ok {
		return argjoy.NoMatch
	}
	switch v := arg.(type) {
	case *Addr:
		n, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 32)
		if err != nil {
			return errors.Errorf("bad address %q", s)
		}
		*v = Addr(n)
	case *Reg:
		r, ok := mips.ParseReg(s)
		if !ok {
			return errors.Errorf("bad register %q", s)
		}
		*v = Reg(r)
	case *Val:
		n, err := parseVal(s)
		if err != nil {
			return err
		}
		*v = Val(n)
	case *int:
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.Errorf("bad count %q", s)
		}
		*v = n
	case *string:
		*v = s
	default:
		return argjoy.NoMatch
	}
	return nil
}
