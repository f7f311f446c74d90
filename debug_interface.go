// debug_interface.go - DebuggableCPU interface and supporting types for Machine Monitor

/*
███████╗██╗██╗  ██╗███████╗ ██████╗  ██████╗ ██████╗
██╔════╝██║╚██╗██╔╝██╔════╝██╔════╝ ██╔═══██╗╚════██╗
███████╗██║ ╚███╔╝ ███████╗██║  ███╗██║   ██║ █████╔╝
╚════██║██║ ██╔██╗ ╚════██║██║   ██║██║   ██║██╔═══╝
███████║██║██╔╝ ██╗███████║╚██████╔╝╚██████╔╝███████╗
╚══════╝╚═╝╚═╝  ╚═╝╚══════╝ ╚═════╝  ╚═════╝ ╚══════╝

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/six5go2
Buy me a coffee: https://ko-fi.com/intuition/tip

License: GPLv3 or later
*/

package main

// RegisterInfo describes a single CPU register for display in the monitor.
type RegisterInfo struct {
	Name     string // "PC", "A", "SP"
	BitWidth int    // 8 or 16
	Value    uint64
	Group    string // "general", "index", "status", "flags"
}

// DisassembledLine represents one disassembled instruction.
type DisassembledLine struct {
	Address  uint64
	HexBytes string
	Mnemonic string
	Size     int
	IsPC     bool // true if this is the current PC
}

// BreakpointEvent is published when the CPU hits a breakpoint during execution.
type BreakpointEvent struct {
	Address uint64
}

// DebuggableCPU is the seam between the machine monitor and a CPU core.
// Addresses travel as uint64 so the monitor never assumes a particular
// core width; AddressWidth tells it how to format them.
type DebuggableCPU interface {
	CPUName() string
	AddressWidth() int

	GetRegisters() []RegisterInfo
	GetRegister(name string) (uint64, bool)
	SetRegister(name string, value uint64) bool
	GetPC() uint64
	SetPC(addr uint64)

	IsRunning() bool
	Freeze() error // Stop execution, preserve state; reports what ended the run
	Resume()       // Restart execution goroutine

	Step() error // Execute one instruction

	Disassemble(addr uint64, count int) []DisassembledLine

	SetBreakpoint(addr uint64) bool
	ClearBreakpoint(addr uint64) bool
	ClearAllBreakpoints()
	ListBreakpoints() []uint64
	HasBreakpoint(addr uint64) bool

	ReadMemory(addr uint64, size int) []byte
	WriteMemory(addr uint64, data []byte)

	SetBreakpointChannel(ch chan<- BreakpointEvent)
}
