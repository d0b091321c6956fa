package mips

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/lunixbochs/mumips/go/models"
	"github.com/lunixbochs/mumips/go/models/cpu"
)

// Cpu is the simulator context: memory, the CURRENT/NEXT state pair, the run
// flag and the loaded program image. A step reads only cur and writes only next;
// next is committed into cur when the step ends.
type Cpu struct {
	*cpu.Hooks
	*cpu.Mem

	config *models.Config

	cur  State
	next State

	running bool
	count   uint64

	// function code of the last register-form instruction
	prevFunc uint32
	hasPrev  bool

	textBase uint32
	loadBase uint32
	program  []uint32
}

func New(config *models.Config) (*Cpu, error) {
	if config == nil {
		config = &models.Config{}
	}
	config.Init()
	text, ok := config.Region("text")
	if !ok {
		return nil, errors.New("memory map has no text region")
	}
	c := &Cpu{
		Mem:      cpu.NewMem(32, binary.LittleEndian),
		config:   config,
		textBase: uint32(text.Addr),
		loadBase: uint32(text.Addr),
	}
	c.Hooks = cpu.NewHooks(c, c.Mem)
	for _, r := range config.Regions {
		if err := c.MemMap(r.Addr, r.Size, r.Prot, r.Name); err != nil {
			return nil, errors.Wrapf(err, "failed to map %s region", r.Name)
		}
	}
	if config.LoadBase != 0 {
		c.loadBase = uint32(config.LoadBase)
	}
	c.cur.reset(c.textBase)
	c.next = c.cur
	c.running = true
	return c, nil
}

func (c *Cpu) Config() *models.Config {
	return c.config
}

func (c *Cpu) Printf(format string, a ...interface{}) {
	c.config.Printf(format, a...)
}

// Load writes words contiguously from base and remembers them for Reset.
// It returns the number of words written.
func (c *Cpu) Load(words []uint32, base uint32) (int, error) {
	c.program = append([]uint32(nil), words...)
	c.loadBase = base
	return c.writeProgram()
}

func (c *Cpu) writeProgram() (int, error) {
	for i, w := range c.program {
		addr := uint64(c.loadBase) + uint64(i)*4
		if err := c.WriteUint(addr, 4, 0, uint64(w)); err != nil {
			return i, errors.Wrapf(err, "failed to load word %d", i)
		}
	}
	return len(c.program), nil
}

// Program returns the loaded image and the address it was loaded at.
func (c *Cpu) Program() ([]uint32, uint32) {
	return c.program, c.loadBase
}

func (c *Cpu) TextBase() uint32 {
	return c.textBase
}

// Reset zeroes registers and memory in place, reloads the program image and
// rearms the run flag.
func (c *Cpu) Reset() error {
	c.MemZero()
	c.cur.reset(c.textBase)
	c.next = c.cur
	c.count = 0
	c.hasPrev = false
	c.prevFunc = 0
	c.running = true
	_, err := c.writeProgram()
	return err
}

func (c *Cpu) Running() bool {
	return c.running
}

// Stop clears the run flag.
func (c *Cpu) Stop() error {
	c.running = false
	return nil
}

func (c *Cpu) Count() uint64 {
	return c.count
}

func (c *Cpu) State() State {
	return c.cur
}

func (c *Cpu) Regs() [32]uint32 {
	return c.cur.Regs
}

func (c *Cpu) PC() uint32 {
	return c.cur.PC
}

func (c *Cpu) HiLo() (uint32, uint32) {
	return c.cur.HI, c.cur.LO
}

// RegRead reads the committed state.
func (c *Cpu) RegRead(enum int) (uint64, error) {
	switch {
	case enum >= 0 && enum < 32:
		return uint64(c.cur.Regs[enum]), nil
	case enum == HI:
		return uint64(c.cur.HI), nil
	case enum == LO:
		return uint64(c.cur.LO), nil
	case enum == PC:
		return uint64(c.cur.PC), nil
	}
	return 0, errors.Errorf("invalid register: %d", enum)
}

// RegWrite sets a register in both snapshots, so it survives the next commit.
func (c *Cpu) RegWrite(enum int, val uint64) error {
	v := uint32(val)
	switch {
	case enum >= 0 && enum < 32:
		c.cur.Regs[enum] = v
		c.next.Regs[enum] = v
	case enum == HI:
		c.cur.HI, c.next.HI = v, v
	case enum == LO:
		c.cur.LO, c.next.LO = v, v
	case enum == PC:
		c.cur.PC, c.next.PC = v, v
	default:
		return errors.Errorf("invalid register: %d", enum)
	}
	return nil
}

func (c *Cpu) RegDump() ([]models.RegVal, error) {
	return Arch.RegDump(c)
}

func (c *Cpu) Read32(addr uint32) (uint32, error) {
	val, err := c.ReadUint(uint64(addr), 4, 0)
	return uint32(val), err
}

func (c *Cpu) Write32(addr, val uint32) error {
	return c.WriteUint(uint64(addr), 4, 0, uint64(val))
}

// report hands a non-fatal step condition to the diagnostic hooks and the output.
func (c *Cpu) report(addr uint32, err error) {
	c.OnDiag(uint64(addr), err)
	c.Printf("warning: %v\n", err)
}

// Step runs one fetch-decode-execute-commit cycle. A non-nil error other than
// ErrStopped describes a condition that was already reported; the step still
// committed unless the fetch itself failed, which clears the run flag.
func (c *Cpu) Step() error {
	if !c.running {
		return ErrStopped
	}
	pc := c.cur.PC
	c.OnCode(uint64(pc), 4)
	word, err := c.ReadUint(uint64(pc), 4, cpu.PROT_EXEC)
	if err != nil {
		c.running = false
		c.report(pc, err)
		return err
	}
	ins, err := Decode(uint32(word), uint64(pc))
	if c.config.Verbose {
		c.Printf("%#08x: %s\n", pc, ins)
	}
	delta := uint32(4)
	if err == nil {
		delta, err = c.exec(ins)
	}
	if ins.Opcode == OP_SPECIAL {
		c.prevFunc, c.hasPrev = ins.Func, true
	}
	if err != nil {
		c.report(pc, err)
	}
	c.next.PC = pc + delta
	if delta != 4 {
		c.OnBlock(uint64(c.next.PC), 0)
	}
	if c.config.HardwireZero {
		c.next.Regs[0] = 0
	}
	c.cur = c.next
	c.count++
	return err
}

// Run steps up to n times, stopping early once the run flag clears.
func (c *Cpu) Run(n int) error {
	if !c.running {
		return ErrStopped
	}
	for i := 0; i < n && c.running; i++ {
		c.Step()
	}
	return nil
}

// RunAll steps until the run flag clears.
func (c *Cpu) RunAll() error {
	if !c.running {
		return ErrStopped
	}
	for c.running {
		c.Step()
	}
	return nil
}
