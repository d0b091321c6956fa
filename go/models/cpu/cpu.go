package cpu

// Cpu is the minimum surface hooks and tooling need from a simulated processor.
// Register enums are cpu-specific.
type Cpu interface {
	// memory IO
	MemRead(addr, size uint64) ([]byte, error)
	MemWrite(addr uint64, p []byte) error

	// register IO
	RegRead(reg int) (uint64, error)
	RegWrite(reg int, val uint64) error

	// execution
	Step() error
	Stop() error
}
