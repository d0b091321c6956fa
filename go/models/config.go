package models

import (
	"fmt"
	"io"
	"os"

	"github.com/lunixbochs/mumips/go/models/cpu"
)

// Region describes one fixed memory region of the simulated machine.
type Region struct {
	Name string
	Addr uint64
	Size uint64
	Prot int
}

// MU-MIPS memory map. Every region is readable, writable and executable.
var DefaultRegions = []Region{
	{"text", 0x00400000, 0x100000, cpu.PROT_ALL},
	{"data", 0x10000000, 0x100000, cpu.PROT_ALL},
	{"stack", 0x7ff00000, 0x100000, cpu.PROT_ALL},
	{"ktext", 0x80000000, 0x100000, cpu.PROT_ALL},
	{"kdata", 0x90000000, 0x100000, cpu.PROT_ALL},
}

type Config struct {
	Color   bool
	Verbose bool
	// force general register 0 to read as zero after every step
	HardwireZero bool
	// address the program image is loaded at; 0 means the text region base
	LoadBase uint64
	// path of a binary execution trace to record, if any
	TraceFile string

	Regions []Region
	Output  io.Writer
}

// Init fills unset fields with their defaults.
func (c *Config) Init() *Config {
	if c.Output == nil {
		c.Output = os.Stderr
	}
	if len(c.Regions) == 0 {
		c.Regions = DefaultRegions
	}
	return c
}

func (c *Config) Region(name string) (Region, bool) {
	for _, r := range c.Regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

func (c *Config) Printf(format string, a ...interface{}) {
	if c.Output != nil {
		fmt.Fprintf(c.Output, format, a...)
	}
}
