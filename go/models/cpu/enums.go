package cpu

// hook enums keep unicorn's values so they read the same in traces
const (
	// hook syscall-style traps
	HOOK_INTR = 1

	// hook each executed instruction, before it runs
	HOOK_CODE = 4

	// hook each taken branch or jump, called with the target address
	HOOK_BLOCK = 8

	// hook (before) each memory read/write
	HOOK_MEM_READ  = 1024
	HOOK_MEM_WRITE = 2048
	HOOK_MEM_FETCH = 4096

	// hook all memory errors
	HOOK_MEM_ERR = 1008

	// hook non-fatal step diagnostics (decode errors, undefined results)
	HOOK_DIAG = 1 << 16
)

// these errors are used for HOOK_MEM_ERR
const (
	MEM_READ_UNMAPPED  = 19
	MEM_WRITE_UNMAPPED = 20
	MEM_FETCH_UNMAPPED = 21
	MEM_WRITE_PROT     = 12
	MEM_READ_PROT      = 13
	MEM_FETCH_PROT     = 14
)

// these constants are used for memory protections
const (
	PROT_NONE  = 0
	PROT_READ  = 1
	PROT_WRITE = 2
	PROT_EXEC  = 4
	PROT_ALL   = 7
)

// these constants are used in a hook to specify the type of memory access
const (
	MEM_WRITE = 16
	MEM_READ  = 17
	MEM_FETCH = 18
)
