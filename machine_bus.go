// machine_bus.go - 64K memory bus for the six5go2 machine

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

/*
machine_bus.go - Memory Bus for the six5go2 machine

This module implements the flat 64K memory that backs the 6502 core. It
provides byte-level read/write over the full 16-bit address space, a reset
operation to clear the memory state, and bulk-load helpers for program
images.

Core Features:

    65,536 bytes of memory allocated as a contiguous block.
    Byte-level read/write with implicit 16-bit address wraparound.
    Full memory reset capability to clear the entire memory state.
    Bulk loading of raw program images with wrapping semantics.

Technical Details:

    The MachineBus struct fulfils the Bus6502 interface. Every address in
    the 16-bit space is always valid: address arithmetic wraps modulo 65,536
    by construction of the uint16 domain, and stored values wrap modulo 256
    by construction of the byte domain. There are no error conditions.

    Unlike the Intuition Engine's 32-bit system bus there is no I/O region
    mapping table and no mutex: memory-mapped peripherals are out of scope
    for this machine, and the access contract makes callers responsible for
    serialisation (one goroutine owns the machine at a time).
*/

package main

const MEMORY_SIZE = 0x10000 // Full 16-bit address space

type Bus6502 interface {
	/*
	   Bus6502 defines the memory access protocol for the 6502.

	   Required Methods:
	   - Read: Fetches byte from specified address
	   - Write: Stores byte at specified address

	   Implementation Notes:
	   - Every 16-bit address must be valid
	   - Multi-byte values are composed by the CPU, little-endian
	*/

	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

type MachineBus struct {
	/*
	   MachineBus implements the Bus6502 interface and serves as the
	   primary memory for the six5go2 machine.

	   It maintains a contiguous 64K block covering the whole address
	   space, so reads and writes never fall outside the store.
	*/

	memory []byte
}

func NewMachineBus() *MachineBus {
	/*
	   NewMachineBus initialises and returns a new MachineBus instance
	   with all 65,536 bytes zeroed.
	*/

	return &MachineBus{
		memory: make([]byte, MEMORY_SIZE),
	}
}

// Read returns the byte stored at addr. Total over the address space.
func (bus *MachineBus) Read(addr uint16) byte {
	return bus.memory[addr]
}

// Write stores value at addr. Total over the address space.
func (bus *MachineBus) Write(addr uint16, value byte) {
	bus.memory[addr] = value
}

func (bus *MachineBus) Reset() {
	/*
	   Reset clears the entire memory of the bus, returning every byte
	   to zero. Register and vector contents held in memory are lost.
	*/

	for i := range bus.memory {
		bus.memory[i] = 0
	}
}

// GetMemory exposes the backing store for loaders and diagnostics.
// Callers must not grow or retain the slice beyond the bus lifetime.
func (bus *MachineBus) GetMemory() []byte {
	return bus.memory
}

func (bus *MachineBus) LoadBytes(start uint16, data []byte) {
	/*
	   LoadBytes copies a raw image into memory beginning at start.
	   Addresses wrap modulo 65,536, matching the CPU's view of the
	   address space, so an image touching 0xFFFF continues at 0x0000.
	*/

	addr := start
	for _, value := range data {
		bus.memory[addr] = value
		addr++
	}
}
