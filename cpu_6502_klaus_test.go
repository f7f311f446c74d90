package main

import (
	"os"
	"strconv"
	"testing"
)

const (
	klausFunctionalBin      = "testdata/6502/klaus/6502_functional_test.bin"
	klausDecimalBin         = "testdata/6502/klaus/6502_decimal_test.bin"
	klausInterruptBin       = "testdata/6502/klaus/6502_interrupt_test.bin"
	klausFunctionalSuccess  = 0x3469
	klausFunctionalEntry    = 0x0400
	klausDecimalEntry       = 0x0200
	klausDecimalErrorAddr   = 0x000B
	klausInterruptEntry     = 0x0400
	klausInterruptIOLoc     = 0xBFFC
	klausInterruptIRQBit    = 0
	klausInterruptNMIBit    = 1
	klausInterruptIOFilter  = 0x7F
	klausInterruptLoadBase  = 0x000A
	klausInterruptNMITrap   = 0x0739
	klausInterruptResTrap   = 0x0778
	klausInterruptIRQTrap   = 0x077D
	klausInterruptEnvTarget = "KLAUS_INTERRUPT_SUCCESS_PC"
	klausFunctionalEnv      = "KLAUS_FUNCTIONAL"
	klausFunctionalMaxSteps = 200_000_000
	klausDecimalMaxSteps    = 100_000_000
	klausInterruptMaxSteps  = 50_000_000
)

// runUntilTrap steps until the program parks in a jump-to-self, which is
// how the Klaus binaries flag both success and failure. Returns the trap
// address.
func (r *cpu6502TestRig) runUntilTrap(t *testing.T, maxSteps int) uint16 {
	t.Helper()

	for i := 0; i < maxSteps; i++ {
		before := r.cpu.PC
		if err := r.cpu.Step(); err != nil {
			t.Fatalf("fault at PC=0x%04X: %v", before, err)
		}
		if r.cpu.PC == before {
			return before
		}
	}
	t.Fatalf("no trap within %d steps (PC=0x%04X)", maxSteps, r.cpu.PC)
	return 0
}

func Test6502KlausFunctional(t *testing.T) {
	if os.Getenv(klausFunctionalEnv) == "" {
		t.Skipf("set %s=1 to run the Klaus functional test", klausFunctionalEnv)
	}

	rig := newCPU6502TestRig()
	data := requireTestFile(t, klausFunctionalBin)
	if len(data) != 0x10000 {
		t.Fatalf("functional test size=%d, want 65536", len(data))
	}

	rig.bus.LoadBytes(0x0000, data)
	rig.cpu.Reset()
	rig.cpu.PC = klausFunctionalEntry

	if trap := rig.runUntilTrap(t, klausFunctionalMaxSteps); trap != klausFunctionalSuccess {
		t.Fatalf("trapped at 0x%04X, want success trap 0x%04X", trap, klausFunctionalSuccess)
	}
}

func Test6502KlausDecimal(t *testing.T) {
	rig := newCPU6502TestRig()
	data := requireTestFile(t, klausDecimalBin)

	rig.bus.LoadBytes(klausDecimalEntry, data)
	rig.setVectors(klausDecimalEntry)
	rig.cpu.Reset()

	rig.runUntilTrap(t, klausDecimalMaxSteps)

	if got := rig.bus.Read(klausDecimalErrorAddr); got != 0 {
		t.Fatalf("decimal test ERROR byte=0x%02X, want 0x00", got)
	}
}

func Test6502KlausInterrupt(t *testing.T) {
	successPC := readInterruptSuccessPC(t)
	rig := newCPU6502TestRig()
	data := requireTestFile(t, klausInterruptBin)

	rig.bus.LoadBytes(klausInterruptLoadBase, data)

	rig.bus.Write(NMI_VECTOR, byte(klausInterruptNMITrap&0x00FF))
	rig.bus.Write(NMI_VECTOR+1, byte(klausInterruptNMITrap>>8))
	rig.bus.Write(RESET_VECTOR, byte(klausInterruptResTrap&0x00FF))
	rig.bus.Write(RESET_VECTOR+1, byte(klausInterruptResTrap>>8))
	rig.bus.Write(IRQ_VECTOR, byte(klausInterruptIRQTrap&0x00FF))
	rig.bus.Write(IRQ_VECTOR+1, byte(klausInterruptIRQTrap>>8))

	rig.cpu.Reset()
	rig.cpu.PC = klausInterruptEntry

	// The binary drives the interrupt lines through a feedback register:
	// bit 0 is the IRQ level, bit 1 pulses an NMI, bit 7 reads back as
	// zero. With a flat RAM bus that register is pumped between steps.
	var prevPort byte
	for i := 0; i < klausInterruptMaxSteps; i++ {
		if rig.cpu.PC == successPC {
			return
		}
		before := rig.cpu.PC
		if err := rig.cpu.Step(); err != nil {
			t.Fatalf("fault at PC=0x%04X: %v", before, err)
		}

		raw := rig.bus.Read(klausInterruptIOLoc)
		port := raw & klausInterruptIOFilter
		if port != raw {
			rig.bus.Write(klausInterruptIOLoc, port)
		}
		rig.cpu.SetIRQLine(port&(1<<klausInterruptIRQBit) != 0)
		if port&(1<<klausInterruptNMIBit) != 0 && prevPort&(1<<klausInterruptNMIBit) == 0 {
			rig.cpu.SetNMILine(true)
			rig.cpu.SetNMILine(false)
		}
		prevPort = port

		if rig.cpu.PC == before {
			t.Fatalf("trapped at 0x%04X before reaching 0x%04X", before, successPC)
		}
	}
	t.Fatalf("no result within %d steps (PC=0x%04X)", klausInterruptMaxSteps, rig.cpu.PC)
}

func readInterruptSuccessPC(t *testing.T) uint16 {
	t.Helper()

	value := os.Getenv(klausInterruptEnvTarget)
	if value == "" {
		t.Skipf("set %s to run the interrupt test (hex or decimal)", klausInterruptEnvTarget)
	}
	parsed, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		t.Fatalf("invalid %s value %q", klausInterruptEnvTarget, value)
	}
	return uint16(parsed)
}
