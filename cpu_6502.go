// cpu_6502.go - 6502 CPU core for the six5go2 machine

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
cpu_6502.go - 6502 CPU Core

This module implements a MOS Technology 6502 interpreter covering the full
documented opcode map. The implementation focuses on exact bit-level
behaviour (carry/overflow semantics, signed branch displacement
arithmetic, 16-bit and zero-page address wraparound, the indirect-JMP
page-boundary defect) while staying a plain synchronous state machine:
one instruction per Step(), no background work, no timing emulation.

Core Features:
- Complete documented 6502 instruction set
- Decimal (BCD) mode for ADC/SBC
- IRQ/NMI interrupt lines with hardware stacking semantics
- Single shared N/Z flag recomputation backed by a precomputed table
- Typed error for unimplemented (undocumented) opcodes

Deliberately absent, by scope:
- Cycle counting and per-instruction timing
- Undocumented/illegal opcodes (fetching one is the error path)
- Memory-mapped peripherals and bus arbitration
- Internal locking: callers serialise access to a core instance

State Model:
All processor state lives in the CPU struct: registers, flags, the memory
reference and the interrupt lines. Multiple independent cores can coexist
in one process; between Step() calls the only observable state is "ready
to fetch the next opcode".
*/

package main

import "fmt"

const (
	// CPU Configuration Constants

	STACK_BASE   = 0x0100 // Stack memory location
	RESET_VECTOR = 0xFFFC // Reset vector location
	IRQ_VECTOR   = 0xFFFE // IRQ/BRK vector location
	NMI_VECTOR   = 0xFFFA // NMI vector location
)

const (
	// Status Register Flags

	CARRY_FLAG     = 0x01 // Carry flag
	ZERO_FLAG      = 0x02 // Zero flag
	INTERRUPT_FLAG = 0x04 // Interrupt disable flag
	DECIMAL_FLAG   = 0x08 // Decimal mode flag
	BREAK_FLAG     = 0x10 // Break command flag (transient)
	UNUSED_FLAG    = 0x20 // Unused flag, reads as 1
	OVERFLOW_FLAG  = 0x40 // Overflow flag
	NEGATIVE_FLAG  = 0x80 // Negative flag
)

// nzTable holds the ZERO/NEGATIVE flag bits for every possible result
// byte, so the shared flag update is a mask and a lookup.
var nzTable [256]byte

func init() {
	for i := 0; i < 256; i++ {
		if i == 0 {
			nzTable[i] |= ZERO_FLAG
		}
		if i&0x80 != 0 {
			nzTable[i] |= NEGATIVE_FLAG
		}
	}
}

// ErrUnimplementedOpcode reports a fetched opcode outside the documented
// 6502 map. The value is the offending opcode byte; by the time Step()
// returns it the PC has already advanced past the opcode (fetch happens
// before dispatch) and no other state has been touched.
type ErrUnimplementedOpcode byte

func (e ErrUnimplementedOpcode) Error() string {
	return fmt.Sprintf("unimplemented opcode 0x%02X", byte(e))
}

// Is reports whether err is any ErrUnimplementedOpcode, so callers can
// match the kind without knowing the opcode byte.
func (e ErrUnimplementedOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrUnimplementedOpcode)
	return
}

type CPU struct {
	/*
	   CPU is the complete register/flag file of one 6502 core plus its
	   memory reference.

	   Registers:
	   - PC        uint16  // Program counter
	   - SP        byte    // Stack pointer into page 1, descending
	   - A, X, Y   byte    // Accumulator and index registers
	   - SR        byte    // Status register; UNUSED_FLAG always reads 1

	   Interrupt lines:
	   - irqLine     level-sensitive, sampled before each fetch, gated
	                 on the I flag
	   - nmiLine     raw line state for edge detection
	   - nmiPending  latched on a falling edge, serviced before IRQ

	   The struct carries no locks and no atomics: a core instance is
	   owned by exactly one goroutine at a time (see the runner for the
	   handover protocol).
	*/

	PC uint16 // Program Counter
	SP byte   // Stack Pointer
	A  byte   // Accumulator
	X  byte   // X Index Register
	Y  byte   // Y Index Register
	SR byte   // Status Register

	memory Bus6502 // Memory interface

	irqLine    bool // IRQ line level
	nmiLine    bool // NMI line level
	nmiPending bool // NMI edge latched

	InstructionCount uint64 // Retired instructions since Reset
}

func NewCPU(bus Bus6502) *CPU {
	/*
	   NewCPU creates a core bound to the given bus.

	   Initial state matches the pre-reset contract: zeroed registers,
	   PC = 0, SR = 0x24 (UNUSED_FLAG and INTERRUPT_FLAG set). Callers
	   populate the reset vector in memory and then call Reset().
	*/

	return &CPU{
		memory: bus,
		SR:     UNUSED_FLAG | INTERRUPT_FLAG,
	}
}

// Read passes through to the bus. Exposed for drivers and harnesses.
func (cpu *CPU) Read(addr uint16) byte {
	return cpu.memory.Read(addr)
}

// Write passes through to the bus. Exposed for drivers and harnesses.
func (cpu *CPU) Write(addr uint16, value byte) {
	cpu.memory.Write(addr, value)
}

// read16 reads a little-endian word. The two bytes are fetched through
// the bus individually, so addr = 0xFFFF wraps to 0x0000 for the high
// byte like the address space itself.
func (cpu *CPU) read16(addr uint16) uint16 {
	lo := uint16(cpu.Read(addr))
	hi := uint16(cpu.Read(addr + 1))
	return (hi << 8) | lo
}

func (cpu *CPU) Reset() {
	/*
	   Reset initialises the CPU to its power-up state.

	   Reset Process:
	   1. Clears A, X and Y
	   2. Sets the stack pointer to 0xFD
	   3. Sets the status register to 0x24 (unused + interrupt disable)
	   4. Loads PC from the reset vector at 0xFFFC/0xFFFD
	   5. Clears the instruction counter and latched interrupt state

	   Idempotent and callable at any point in the core's lifetime.
	*/

	cpu.A = 0
	cpu.X = 0
	cpu.Y = 0
	cpu.SP = 0xFD
	cpu.SR = UNUSED_FLAG | INTERRUPT_FLAG
	cpu.PC = cpu.read16(RESET_VECTOR)
	cpu.InstructionCount = 0
	cpu.irqLine = false
	cpu.nmiLine = false
	cpu.nmiPending = false
}

func (cpu *CPU) Step() error {
	/*
	   Step executes exactly one instruction cycle: service a pending
	   interrupt, fetch the opcode at PC (post-increment), resolve the
	   addressing mode, execute, update flags.

	   A latched NMI edge is serviced first; otherwise a held IRQ line
	   is serviced when the I flag is clear. Both push PC and SR and
	   load PC from the respective vector before the fetch proceeds.

	   The only failure is ErrUnimplementedOpcode for a byte outside
	   the documented map; the instruction is not partially applied.
	*/

	if cpu.nmiPending {
		cpu.nmiPending = false
		cpu.handleInterrupt(NMI_VECTOR, true)
	} else if cpu.irqLine && cpu.SR&INTERRUPT_FLAG == 0 {
		cpu.handleInterrupt(IRQ_VECTOR, false)
	}

	opcode := cpu.Read(cpu.PC)
	cpu.PC++

	if err := cpu.execute(opcode); err != nil {
		return err
	}
	cpu.InstructionCount++
	return nil
}

func (cpu *CPU) handleInterrupt(vector uint16, isNMI bool) {
	/*
	   handleInterrupt performs the hardware interrupt entry sequence:
	   push the return PC, push the status register, set the interrupt
	   disable flag, load PC from the vector. IRQ entry is suppressed
	   while the I flag is set; NMI cannot be masked.
	*/

	if !isNMI && cpu.SR&INTERRUPT_FLAG != 0 {
		return
	}

	cpu.push16(cpu.PC)
	cpu.Push(cpu.SR)
	cpu.SetFlag(INTERRUPT_FLAG, true)
	cpu.PC = cpu.read16(vector)
}

// SetIRQLine drives the level-sensitive IRQ line. The interrupt is taken
// at the next Step() with the I flag clear, and keeps firing while the
// line is held.
func (cpu *CPU) SetIRQLine(state bool) {
	cpu.irqLine = state
}

// SetNMILine drives the NMI line. A falling edge (true -> false) latches
// one non-maskable interrupt.
func (cpu *CPU) SetNMILine(state bool) {
	if cpu.nmiLine && !state {
		cpu.nmiPending = true
	}
	cpu.nmiLine = state
}

// Push stores a byte at the current stack slot in page 1 and decrements
// SP. SP wraps modulo 256, never leaving the stack page.
func (cpu *CPU) Push(value byte) {
	cpu.Write(STACK_BASE|uint16(cpu.SP), value)
	cpu.SP--
}

// Pull increments SP and returns the byte at the new stack slot.
func (cpu *CPU) Pull() byte {
	cpu.SP++
	return cpu.Read(STACK_BASE | uint16(cpu.SP))
}

// push16 pushes high byte first so the word reads back little-endian.
func (cpu *CPU) push16(value uint16) {
	cpu.Push(byte(value >> 8))
	cpu.Push(byte(value & 0xFF))
}

func (cpu *CPU) pull16() uint16 {
	lo := uint16(cpu.Pull())
	hi := uint16(cpu.Pull())
	return (hi << 8) | lo
}

// SetFlag sets or clears one status bit.
func (cpu *CPU) SetFlag(flag byte, value bool) {
	if value {
		cpu.SR |= flag
	} else {
		cpu.SR &^= flag
	}
}

// GetFlag reports one status bit.
func (cpu *CPU) GetFlag(flag byte) bool {
	return (cpu.SR & flag) != 0
}

// updateNZ recomputes ZERO and NEGATIVE from a result byte. Every
// instruction family funnels through here.
func (cpu *CPU) updateNZ(value byte) {
	cpu.SR = (cpu.SR &^ (ZERO_FLAG | NEGATIVE_FLAG)) | nzTable[value]
}

// --- Addressing mode resolvers ---
//
// Each helper consumes its operand bytes from the instruction stream,
// advances PC accordingly, and returns the effective address. Immediate
// operands are read inline at the dispatch site.

func (cpu *CPU) getAbsolute() uint16 {
	addr := cpu.read16(cpu.PC)
	cpu.PC += 2
	return addr
}

func (cpu *CPU) getAbsoluteX() uint16 {
	base := cpu.read16(cpu.PC)
	cpu.PC += 2
	return base + uint16(cpu.X)
}

func (cpu *CPU) getAbsoluteY() uint16 {
	base := cpu.read16(cpu.PC)
	cpu.PC += 2
	return base + uint16(cpu.Y)
}

func (cpu *CPU) getZeroPage() uint16 {
	addr := uint16(cpu.Read(cpu.PC))
	cpu.PC++
	return addr
}

// getZeroPageX wraps inside the zero page: $FF,X with X=1 is $00, not $100.
func (cpu *CPU) getZeroPageX() uint16 {
	addr := (uint16(cpu.Read(cpu.PC)) + uint16(cpu.X)) & 0xFF
	cpu.PC++
	return addr
}

func (cpu *CPU) getZeroPageY() uint16 {
	addr := (uint16(cpu.Read(cpu.PC)) + uint16(cpu.Y)) & 0xFF
	cpu.PC++
	return addr
}

// getIndirectX resolves ($zp,X): the pointer itself lives in the zero
// page and both pointer bytes wrap within it.
func (cpu *CPU) getIndirectX() uint16 {
	base := cpu.Read(cpu.PC)
	cpu.PC++
	ptr := (uint16(base) + uint16(cpu.X)) & 0xFF
	return uint16(cpu.Read(ptr)) | uint16(cpu.Read((ptr+1)&0xFF))<<8
}

// getIndirectY resolves ($zp),Y: zero-page pointer (wrapping within the
// page), then a full 16-bit add of Y.
func (cpu *CPU) getIndirectY() uint16 {
	ptr := uint16(cpu.Read(cpu.PC))
	cpu.PC++
	base := uint16(cpu.Read(ptr)) | uint16(cpu.Read((ptr+1)&0xFF))<<8
	return base + uint16(cpu.Y)
}

// --- Instruction bodies shared across addressing modes ---

func (cpu *CPU) rmw(addr uint16, operation func(byte) byte) {
	/*
	   rmw performs a read-modify-write memory operation the way the
	   hardware does: the original value is written back before the
	   modified value lands. The spurious write is observable on a bus
	   with side effects and is kept for fidelity.
	*/

	value := cpu.Read(addr)
	cpu.Write(addr, value) // Spurious write of original value
	cpu.Write(addr, operation(value))
}

func (cpu *CPU) adc(value byte) {
	/*
	   adc adds value and the carry into the accumulator.

	   Binary mode: A + M + C with carry out of bit 7 and the classic
	   two's-complement overflow test: overflow iff the operands agree
	   in sign and the result disagrees.

	   Decimal mode (D flag set): packed BCD addition per nibble with
	   carry between nibbles; overflow retains the binary-style test on
	   the result byte.
	*/

	if cpu.SR&DECIMAL_FLAG != 0 {
		a := uint16(cpu.A)
		b := uint16(value)
		carry := btou16(cpu.SR&CARRY_FLAG != 0)

		loSum := (a & 0x0F) + (b & 0x0F) + carry
		carry = 0
		if loSum > 9 {
			loSum -= 10
			carry = 1
		}

		hiSum := ((a >> 4) & 0x0F) + ((b >> 4) & 0x0F) + carry
		carry = 0
		if hiSum > 9 {
			hiSum -= 10
			carry = 1
		}

		result := byte((hiSum << 4) | loSum)

		cpu.SetFlag(CARRY_FLAG, carry == 1)
		cpu.updateNZ(result)

		oldA := cpu.A
		cpu.A = result
		cpu.SetFlag(OVERFLOW_FLAG, (oldA^value)&0x80 == 0 && (oldA^result)&0x80 != 0)
		return
	}

	temp := uint16(cpu.A) + uint16(value)
	if cpu.SR&CARRY_FLAG != 0 {
		temp++
	}
	result := byte(temp)

	cpu.SetFlag(CARRY_FLAG, temp > 0xFF)
	cpu.updateNZ(result)
	cpu.SetFlag(OVERFLOW_FLAG, (cpu.A^value)&0x80 == 0 && (cpu.A^result)&0x80 != 0)
	cpu.A = result
}

func (cpu *CPU) sbc(value byte) {
	/*
	   sbc subtracts value and the borrow (inverted carry) from the
	   accumulator. The binary path is ADC of the one's complement of
	   the operand; the carry flag ends up set when no borrow occurred.
	   Decimal mode performs packed BCD subtraction per nibble.
	*/

	if cpu.SR&DECIMAL_FLAG != 0 {
		a := uint16(cpu.A)
		b := uint16(value)
		borrow := btou16(cpu.SR&CARRY_FLAG == 0)

		loDiff := (a & 0x0F) - (b & 0x0F) - borrow
		borrow = 0
		if loDiff&0x10 != 0 {
			loDiff = (loDiff - 6) & 0x0F
			borrow = 1
		}

		hiDiff := ((a >> 4) & 0x0F) - ((b >> 4) & 0x0F) - borrow
		borrow = 0
		if hiDiff&0x10 != 0 {
			hiDiff = (hiDiff - 6) & 0x0F
			borrow = 1
		}

		result := byte((hiDiff << 4) | loDiff)

		cpu.SetFlag(CARRY_FLAG, borrow == 0)
		cpu.updateNZ(result)

		oldA := cpu.A
		cpu.A = result
		cpu.SetFlag(OVERFLOW_FLAG, (oldA^value)&0x80 != 0 && (oldA^result)&0x80 != 0)
		return
	}

	temp := uint16(cpu.A) - uint16(value)
	if cpu.SR&CARRY_FLAG == 0 {
		temp--
	}
	result := byte(temp)

	cpu.SetFlag(CARRY_FLAG, temp < 0x100)
	cpu.updateNZ(result)
	cpu.SetFlag(OVERFLOW_FLAG, (cpu.A^value)&0x80 != 0 && (cpu.A^result)&0x80 != 0)
	cpu.A = result
}

func (cpu *CPU) inc(addr uint16) {
	cpu.rmw(addr, func(value byte) byte {
		result := value + 1
		cpu.updateNZ(result)
		return result
	})
}

func (cpu *CPU) dec(addr uint16) {
	cpu.rmw(addr, func(value byte) byte {
		result := value - 1
		cpu.updateNZ(result)
		return result
	})
}

// asl shifts left; old bit 7 becomes the carry. accumulator selects the
// A-register form, in which addr is ignored.
func (cpu *CPU) asl(addr uint16, accumulator bool) {
	if accumulator {
		cpu.SetFlag(CARRY_FLAG, cpu.A&0x80 != 0)
		cpu.A <<= 1
		cpu.updateNZ(cpu.A)
		return
	}
	cpu.rmw(addr, func(value byte) byte {
		cpu.SetFlag(CARRY_FLAG, value&0x80 != 0)
		result := value << 1
		cpu.updateNZ(result)
		return result
	})
}

// lsr shifts right; old bit 0 becomes the carry, bit 7 is always 0.
func (cpu *CPU) lsr(addr uint16, accumulator bool) {
	if accumulator {
		cpu.SetFlag(CARRY_FLAG, cpu.A&0x01 != 0)
		cpu.A >>= 1
		cpu.updateNZ(cpu.A)
		return
	}
	cpu.rmw(addr, func(value byte) byte {
		cpu.SetFlag(CARRY_FLAG, value&0x01 != 0)
		result := value >> 1
		cpu.updateNZ(result)
		return result
	})
}

// rol rotates left through the carry: old carry enters bit 0, old bit 7
// leaves into the carry.
func (cpu *CPU) rol(addr uint16, accumulator bool) {
	if accumulator {
		carry := btou8(cpu.SR&CARRY_FLAG != 0)
		cpu.SetFlag(CARRY_FLAG, cpu.A&0x80 != 0)
		cpu.A = (cpu.A << 1) | carry
		cpu.updateNZ(cpu.A)
		return
	}
	oldCarry := btou8(cpu.SR&CARRY_FLAG != 0)
	cpu.rmw(addr, func(value byte) byte {
		cpu.SetFlag(CARRY_FLAG, value&0x80 != 0)
		result := (value << 1) | oldCarry
		cpu.updateNZ(result)
		return result
	})
}

// ror rotates right through the carry: old carry enters bit 7, old bit 0
// leaves into the carry.
func (cpu *CPU) ror(addr uint16, accumulator bool) {
	if accumulator {
		carry := btou8(cpu.SR&CARRY_FLAG != 0)
		cpu.SetFlag(CARRY_FLAG, cpu.A&0x01 != 0)
		cpu.A = (cpu.A >> 1) | (carry << 7)
		cpu.updateNZ(cpu.A)
		return
	}
	oldCarry := btou8(cpu.SR&CARRY_FLAG != 0)
	cpu.rmw(addr, func(value byte) byte {
		cpu.SetFlag(CARRY_FLAG, value&0x01 != 0)
		result := (value >> 1) | (oldCarry << 7)
		cpu.updateNZ(result)
		return result
	})
}

// compare sets carry iff reg >= value (no-borrow convention) and N/Z
// from the unstored difference.
func (cpu *CPU) compare(reg, value byte) {
	temp := uint16(reg) - uint16(value)
	cpu.SetFlag(CARRY_FLAG, reg >= value)
	cpu.updateNZ(byte(temp))
}

// bit tests memory against A: Z from A&M, N and V copied straight from
// bits 7 and 6 of the operand. A is never modified.
func (cpu *CPU) bit(value byte) {
	cpu.SetFlag(ZERO_FLAG, cpu.A&value == 0)
	cpu.SetFlag(OVERFLOW_FLAG, value&0x40 != 0)
	cpu.SetFlag(NEGATIVE_FLAG, value&0x80 != 0)
}

// branch consumes the displacement byte unconditionally, then applies it
// as a signed offset to the already-advanced PC when the condition holds.
func (cpu *CPU) branch(condition bool) {
	offset := int8(cpu.Read(cpu.PC))
	cpu.PC++
	if condition {
		cpu.PC = uint16(int32(cpu.PC) + int32(offset))
	}
}

func (cpu *CPU) execute(opcode byte) error {
	/*
	   execute dispatches one fetched opcode through an exhaustive match
	   over the documented 6502 map. Every case resolves its addressing
	   mode, performs the operation and updates flags; the default case
	   is the single error path of the core.
	*/

	switch opcode {

	// Load/Store Operations
	case 0xA9: // LDA Immediate
		cpu.A = cpu.Read(cpu.PC)
		cpu.PC++
		cpu.updateNZ(cpu.A)

	case 0xA5: // LDA Zero Page
		cpu.A = cpu.Read(cpu.getZeroPage())
		cpu.updateNZ(cpu.A)

	case 0xB5: // LDA Zero Page,X
		cpu.A = cpu.Read(cpu.getZeroPageX())
		cpu.updateNZ(cpu.A)

	case 0xAD: // LDA Absolute
		cpu.A = cpu.Read(cpu.getAbsolute())
		cpu.updateNZ(cpu.A)

	case 0xBD: // LDA Absolute,X
		cpu.A = cpu.Read(cpu.getAbsoluteX())
		cpu.updateNZ(cpu.A)

	case 0xB9: // LDA Absolute,Y
		cpu.A = cpu.Read(cpu.getAbsoluteY())
		cpu.updateNZ(cpu.A)

	case 0xA1: // LDA (Indirect,X)
		cpu.A = cpu.Read(cpu.getIndirectX())
		cpu.updateNZ(cpu.A)

	case 0xB1: // LDA (Indirect),Y
		cpu.A = cpu.Read(cpu.getIndirectY())
		cpu.updateNZ(cpu.A)

	case 0xA2: // LDX Immediate
		cpu.X = cpu.Read(cpu.PC)
		cpu.PC++
		cpu.updateNZ(cpu.X)

	case 0xA6: // LDX Zero Page
		cpu.X = cpu.Read(cpu.getZeroPage())
		cpu.updateNZ(cpu.X)

	case 0xB6: // LDX Zero Page,Y
		cpu.X = cpu.Read(cpu.getZeroPageY())
		cpu.updateNZ(cpu.X)

	case 0xAE: // LDX Absolute
		cpu.X = cpu.Read(cpu.getAbsolute())
		cpu.updateNZ(cpu.X)

	case 0xBE: // LDX Absolute,Y
		cpu.X = cpu.Read(cpu.getAbsoluteY())
		cpu.updateNZ(cpu.X)

	case 0xA0: // LDY Immediate
		cpu.Y = cpu.Read(cpu.PC)
		cpu.PC++
		cpu.updateNZ(cpu.Y)

	case 0xA4: // LDY Zero Page
		cpu.Y = cpu.Read(cpu.getZeroPage())
		cpu.updateNZ(cpu.Y)

	case 0xB4: // LDY Zero Page,X
		cpu.Y = cpu.Read(cpu.getZeroPageX())
		cpu.updateNZ(cpu.Y)

	case 0xAC: // LDY Absolute
		cpu.Y = cpu.Read(cpu.getAbsolute())
		cpu.updateNZ(cpu.Y)

	case 0xBC: // LDY Absolute,X
		cpu.Y = cpu.Read(cpu.getAbsoluteX())
		cpu.updateNZ(cpu.Y)

	case 0x85: // STA Zero Page
		cpu.Write(cpu.getZeroPage(), cpu.A)

	case 0x95: // STA Zero Page,X
		cpu.Write(cpu.getZeroPageX(), cpu.A)

	case 0x8D: // STA Absolute
		cpu.Write(cpu.getAbsolute(), cpu.A)

	case 0x9D: // STA Absolute,X
		cpu.Write(cpu.getAbsoluteX(), cpu.A)

	case 0x99: // STA Absolute,Y
		cpu.Write(cpu.getAbsoluteY(), cpu.A)

	case 0x81: // STA (Indirect,X)
		cpu.Write(cpu.getIndirectX(), cpu.A)

	case 0x91: // STA (Indirect),Y
		cpu.Write(cpu.getIndirectY(), cpu.A)

	case 0x86: // STX Zero Page
		cpu.Write(cpu.getZeroPage(), cpu.X)

	case 0x96: // STX Zero Page,Y
		cpu.Write(cpu.getZeroPageY(), cpu.X)

	case 0x8E: // STX Absolute
		cpu.Write(cpu.getAbsolute(), cpu.X)

	case 0x84: // STY Zero Page
		cpu.Write(cpu.getZeroPage(), cpu.Y)

	case 0x94: // STY Zero Page,X
		cpu.Write(cpu.getZeroPageX(), cpu.Y)

	case 0x8C: // STY Absolute
		cpu.Write(cpu.getAbsolute(), cpu.Y)

	// Register Transfers
	case 0xAA: // TAX
		cpu.X = cpu.A
		cpu.updateNZ(cpu.X)

	case 0x8A: // TXA
		cpu.A = cpu.X
		cpu.updateNZ(cpu.A)

	case 0xA8: // TAY
		cpu.Y = cpu.A
		cpu.updateNZ(cpu.Y)

	case 0x98: // TYA
		cpu.A = cpu.Y
		cpu.updateNZ(cpu.A)

	case 0xBA: // TSX
		cpu.X = cpu.SP
		cpu.updateNZ(cpu.X)

	case 0x9A: // TXS
		cpu.SP = cpu.X

	// Stack Operations
	case 0x48: // PHA
		cpu.Push(cpu.A)

	case 0x68: // PLA
		cpu.A = cpu.Pull()
		cpu.updateNZ(cpu.A)

	case 0x08: // PHP
		cpu.Push(cpu.SR | BREAK_FLAG | UNUSED_FLAG)

	case 0x28: // PLP
		cpu.SR = (cpu.Pull() &^ BREAK_FLAG) | UNUSED_FLAG

	// Arithmetic Operations
	case 0x69: // ADC Immediate
		cpu.adc(cpu.Read(cpu.PC))
		cpu.PC++

	case 0x65: // ADC Zero Page
		cpu.adc(cpu.Read(cpu.getZeroPage()))

	case 0x75: // ADC Zero Page,X
		cpu.adc(cpu.Read(cpu.getZeroPageX()))

	case 0x6D: // ADC Absolute
		cpu.adc(cpu.Read(cpu.getAbsolute()))

	case 0x7D: // ADC Absolute,X
		cpu.adc(cpu.Read(cpu.getAbsoluteX()))

	case 0x79: // ADC Absolute,Y
		cpu.adc(cpu.Read(cpu.getAbsoluteY()))

	case 0x61: // ADC (Indirect,X)
		cpu.adc(cpu.Read(cpu.getIndirectX()))

	case 0x71: // ADC (Indirect),Y
		cpu.adc(cpu.Read(cpu.getIndirectY()))

	case 0xE9: // SBC Immediate
		cpu.sbc(cpu.Read(cpu.PC))
		cpu.PC++

	case 0xE5: // SBC Zero Page
		cpu.sbc(cpu.Read(cpu.getZeroPage()))

	case 0xF5: // SBC Zero Page,X
		cpu.sbc(cpu.Read(cpu.getZeroPageX()))

	case 0xED: // SBC Absolute
		cpu.sbc(cpu.Read(cpu.getAbsolute()))

	case 0xFD: // SBC Absolute,X
		cpu.sbc(cpu.Read(cpu.getAbsoluteX()))

	case 0xF9: // SBC Absolute,Y
		cpu.sbc(cpu.Read(cpu.getAbsoluteY()))

	case 0xE1: // SBC (Indirect,X)
		cpu.sbc(cpu.Read(cpu.getIndirectX()))

	case 0xF1: // SBC (Indirect),Y
		cpu.sbc(cpu.Read(cpu.getIndirectY()))

	// Increments & Decrements
	case 0xE6: // INC Zero Page
		cpu.inc(cpu.getZeroPage())

	case 0xF6: // INC Zero Page,X
		cpu.inc(cpu.getZeroPageX())

	case 0xEE: // INC Absolute
		cpu.inc(cpu.getAbsolute())

	case 0xFE: // INC Absolute,X
		cpu.inc(cpu.getAbsoluteX())

	case 0xE8: // INX
		cpu.X++
		cpu.updateNZ(cpu.X)

	case 0xC8: // INY
		cpu.Y++
		cpu.updateNZ(cpu.Y)

	case 0xC6: // DEC Zero Page
		cpu.dec(cpu.getZeroPage())

	case 0xD6: // DEC Zero Page,X
		cpu.dec(cpu.getZeroPageX())

	case 0xCE: // DEC Absolute
		cpu.dec(cpu.getAbsolute())

	case 0xDE: // DEC Absolute,X
		cpu.dec(cpu.getAbsoluteX())

	case 0xCA: // DEX
		cpu.X--
		cpu.updateNZ(cpu.X)

	case 0x88: // DEY
		cpu.Y--
		cpu.updateNZ(cpu.Y)

	// Logical Operations
	case 0x29: // AND Immediate
		cpu.A &= cpu.Read(cpu.PC)
		cpu.PC++
		cpu.updateNZ(cpu.A)

	case 0x25: // AND Zero Page
		cpu.A &= cpu.Read(cpu.getZeroPage())
		cpu.updateNZ(cpu.A)

	case 0x35: // AND Zero Page,X
		cpu.A &= cpu.Read(cpu.getZeroPageX())
		cpu.updateNZ(cpu.A)

	case 0x2D: // AND Absolute
		cpu.A &= cpu.Read(cpu.getAbsolute())
		cpu.updateNZ(cpu.A)

	case 0x3D: // AND Absolute,X
		cpu.A &= cpu.Read(cpu.getAbsoluteX())
		cpu.updateNZ(cpu.A)

	case 0x39: // AND Absolute,Y
		cpu.A &= cpu.Read(cpu.getAbsoluteY())
		cpu.updateNZ(cpu.A)

	case 0x21: // AND (Indirect,X)
		cpu.A &= cpu.Read(cpu.getIndirectX())
		cpu.updateNZ(cpu.A)

	case 0x31: // AND (Indirect),Y
		cpu.A &= cpu.Read(cpu.getIndirectY())
		cpu.updateNZ(cpu.A)

	case 0x09: // ORA Immediate
		cpu.A |= cpu.Read(cpu.PC)
		cpu.PC++
		cpu.updateNZ(cpu.A)

	case 0x05: // ORA Zero Page
		cpu.A |= cpu.Read(cpu.getZeroPage())
		cpu.updateNZ(cpu.A)

	case 0x15: // ORA Zero Page,X
		cpu.A |= cpu.Read(cpu.getZeroPageX())
		cpu.updateNZ(cpu.A)

	case 0x0D: // ORA Absolute
		cpu.A |= cpu.Read(cpu.getAbsolute())
		cpu.updateNZ(cpu.A)

	case 0x1D: // ORA Absolute,X
		cpu.A |= cpu.Read(cpu.getAbsoluteX())
		cpu.updateNZ(cpu.A)

	case 0x19: // ORA Absolute,Y
		cpu.A |= cpu.Read(cpu.getAbsoluteY())
		cpu.updateNZ(cpu.A)

	case 0x01: // ORA (Indirect,X)
		cpu.A |= cpu.Read(cpu.getIndirectX())
		cpu.updateNZ(cpu.A)

	case 0x11: // ORA (Indirect),Y
		cpu.A |= cpu.Read(cpu.getIndirectY())
		cpu.updateNZ(cpu.A)

	case 0x49: // EOR Immediate
		cpu.A ^= cpu.Read(cpu.PC)
		cpu.PC++
		cpu.updateNZ(cpu.A)

	case 0x45: // EOR Zero Page
		cpu.A ^= cpu.Read(cpu.getZeroPage())
		cpu.updateNZ(cpu.A)

	case 0x55: // EOR Zero Page,X
		cpu.A ^= cpu.Read(cpu.getZeroPageX())
		cpu.updateNZ(cpu.A)

	case 0x4D: // EOR Absolute
		cpu.A ^= cpu.Read(cpu.getAbsolute())
		cpu.updateNZ(cpu.A)

	case 0x5D: // EOR Absolute,X
		cpu.A ^= cpu.Read(cpu.getAbsoluteX())
		cpu.updateNZ(cpu.A)

	case 0x59: // EOR Absolute,Y
		cpu.A ^= cpu.Read(cpu.getAbsoluteY())
		cpu.updateNZ(cpu.A)

	case 0x41: // EOR (Indirect,X)
		cpu.A ^= cpu.Read(cpu.getIndirectX())
		cpu.updateNZ(cpu.A)

	case 0x51: // EOR (Indirect),Y
		cpu.A ^= cpu.Read(cpu.getIndirectY())
		cpu.updateNZ(cpu.A)

	// Bit Operations
	case 0x24: // BIT Zero Page
		cpu.bit(cpu.Read(cpu.getZeroPage()))

	case 0x2C: // BIT Absolute
		cpu.bit(cpu.Read(cpu.getAbsolute()))

	// Shift/Rotate Operations
	case 0x0A: // ASL Accumulator
		cpu.asl(0, true)

	case 0x06: // ASL Zero Page
		cpu.asl(cpu.getZeroPage(), false)

	case 0x16: // ASL Zero Page,X
		cpu.asl(cpu.getZeroPageX(), false)

	case 0x0E: // ASL Absolute
		cpu.asl(cpu.getAbsolute(), false)

	case 0x1E: // ASL Absolute,X
		cpu.asl(cpu.getAbsoluteX(), false)

	case 0x4A: // LSR Accumulator
		cpu.lsr(0, true)

	case 0x46: // LSR Zero Page
		cpu.lsr(cpu.getZeroPage(), false)

	case 0x56: // LSR Zero Page,X
		cpu.lsr(cpu.getZeroPageX(), false)

	case 0x4E: // LSR Absolute
		cpu.lsr(cpu.getAbsolute(), false)

	case 0x5E: // LSR Absolute,X
		cpu.lsr(cpu.getAbsoluteX(), false)

	case 0x2A: // ROL Accumulator
		cpu.rol(0, true)

	case 0x26: // ROL Zero Page
		cpu.rol(cpu.getZeroPage(), false)

	case 0x36: // ROL Zero Page,X
		cpu.rol(cpu.getZeroPageX(), false)

	case 0x2E: // ROL Absolute
		cpu.rol(cpu.getAbsolute(), false)

	case 0x3E: // ROL Absolute,X
		cpu.rol(cpu.getAbsoluteX(), false)

	case 0x6A: // ROR Accumulator
		cpu.ror(0, true)

	case 0x66: // ROR Zero Page
		cpu.ror(cpu.getZeroPage(), false)

	case 0x76: // ROR Zero Page,X
		cpu.ror(cpu.getZeroPageX(), false)

	case 0x6E: // ROR Absolute
		cpu.ror(cpu.getAbsolute(), false)

	case 0x7E: // ROR Absolute,X
		cpu.ror(cpu.getAbsoluteX(), false)

	// Compare Operations
	case 0xC9: // CMP Immediate
		cpu.compare(cpu.A, cpu.Read(cpu.PC))
		cpu.PC++

	case 0xC5: // CMP Zero Page
		cpu.compare(cpu.A, cpu.Read(cpu.getZeroPage()))

	case 0xD5: // CMP Zero Page,X
		cpu.compare(cpu.A, cpu.Read(cpu.getZeroPageX()))

	case 0xCD: // CMP Absolute
		cpu.compare(cpu.A, cpu.Read(cpu.getAbsolute()))

	case 0xDD: // CMP Absolute,X
		cpu.compare(cpu.A, cpu.Read(cpu.getAbsoluteX()))

	case 0xD9: // CMP Absolute,Y
		cpu.compare(cpu.A, cpu.Read(cpu.getAbsoluteY()))

	case 0xC1: // CMP (Indirect,X)
		cpu.compare(cpu.A, cpu.Read(cpu.getIndirectX()))

	case 0xD1: // CMP (Indirect),Y
		cpu.compare(cpu.A, cpu.Read(cpu.getIndirectY()))

	case 0xE0: // CPX Immediate
		cpu.compare(cpu.X, cpu.Read(cpu.PC))
		cpu.PC++

	case 0xE4: // CPX Zero Page
		cpu.compare(cpu.X, cpu.Read(cpu.getZeroPage()))

	case 0xEC: // CPX Absolute
		cpu.compare(cpu.X, cpu.Read(cpu.getAbsolute()))

	case 0xC0: // CPY Immediate
		cpu.compare(cpu.Y, cpu.Read(cpu.PC))
		cpu.PC++

	case 0xC4: // CPY Zero Page
		cpu.compare(cpu.Y, cpu.Read(cpu.getZeroPage()))

	case 0xCC: // CPY Absolute
		cpu.compare(cpu.Y, cpu.Read(cpu.getAbsolute()))

	// Branch Operations
	case 0x90: // BCC
		cpu.branch(cpu.SR&CARRY_FLAG == 0)

	case 0xB0: // BCS
		cpu.branch(cpu.SR&CARRY_FLAG != 0)

	case 0xF0: // BEQ
		cpu.branch(cpu.SR&ZERO_FLAG != 0)

	case 0xD0: // BNE
		cpu.branch(cpu.SR&ZERO_FLAG == 0)

	case 0x30: // BMI
		cpu.branch(cpu.SR&NEGATIVE_FLAG != 0)

	case 0x10: // BPL
		cpu.branch(cpu.SR&NEGATIVE_FLAG == 0)

	case 0x70: // BVS
		cpu.branch(cpu.SR&OVERFLOW_FLAG != 0)

	case 0x50: // BVC
		cpu.branch(cpu.SR&OVERFLOW_FLAG == 0)

	// Jump/Call Operations
	case 0x4C: // JMP Absolute
		cpu.PC = cpu.getAbsolute()

	case 0x6C: // JMP Indirect
		addr := cpu.read16(cpu.PC)
		// 6502 bug: incrementing the pointer wraps within its page, so
		// ($xxFF) fetches the target high byte from $xx00.
		lo := cpu.Read(addr)
		hi := cpu.Read((addr & 0xFF00) | ((addr + 1) & 0x00FF))
		cpu.PC = uint16(lo) | uint16(hi)<<8

	case 0x20: // JSR
		addr := cpu.getAbsolute()
		cpu.push16(cpu.PC - 1)
		cpu.PC = addr

	case 0x60: // RTS
		cpu.PC = cpu.pull16() + 1

	// Flag Operations
	case 0x18: // CLC
		cpu.SR &^= CARRY_FLAG

	case 0x38: // SEC
		cpu.SR |= CARRY_FLAG

	case 0x58: // CLI
		cpu.SR &^= INTERRUPT_FLAG

	case 0x78: // SEI
		cpu.SR |= INTERRUPT_FLAG

	case 0xB8: // CLV
		cpu.SR &^= OVERFLOW_FLAG

	case 0xD8: // CLD
		cpu.SR &^= DECIMAL_FLAG

	case 0xF8: // SED
		cpu.SR |= DECIMAL_FLAG

	// Special Operations
	case 0x00: // BRK
		cpu.PC++
		cpu.push16(cpu.PC)
		cpu.Push(cpu.SR | BREAK_FLAG | UNUSED_FLAG)
		cpu.SetFlag(INTERRUPT_FLAG, true)
		cpu.SR &^= BREAK_FLAG
		cpu.PC = cpu.read16(IRQ_VECTOR)

	case 0x40: // RTI
		cpu.SR = (cpu.Pull() &^ BREAK_FLAG) | UNUSED_FLAG
		cpu.PC = cpu.pull16()

	case 0xEA: // NOP

	default:
		return ErrUnimplementedOpcode(opcode)
	}

	return nil
}

func btou8(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func btou16(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
