package main

import "testing"

func Test6502ADCBinary(t *testing.T) {
	tests := []struct {
		a       byte
		m       byte
		carryIn bool
		wantA   byte
		wantC   bool
		wantV   bool
		wantZ   bool
		wantN   bool
	}{
		{0x03, 0x05, false, 0x08, false, false, false, false},
		{0x50, 0x50, false, 0xA0, false, true, false, true},
		{0xFF, 0x01, false, 0x00, true, false, true, false},
		{0x80, 0x80, false, 0x00, true, true, true, false},
		{0x7F, 0x00, true, 0x80, false, true, false, true},
		{0xFF, 0xFF, true, 0xFF, true, false, false, true},
	}

	for _, tt := range tests {
		rig := newCPU6502TestRig()
		rig.resetAndLoad(0x0200, []byte{
			0x69, tt.m, // ADC #imm
		})
		rig.cpu.A = tt.a
		rig.cpu.SetFlag(CARRY_FLAG, tt.carryIn)

		rig.step(t, 1)

		if rig.cpu.A != tt.wantA {
			t.Errorf("ADC 0x%02X+0x%02X c=%v: A=0x%02X, want 0x%02X", tt.a, tt.m, tt.carryIn, rig.cpu.A, tt.wantA)
		}
		if rig.cpu.GetFlag(CARRY_FLAG) != tt.wantC {
			t.Errorf("ADC 0x%02X+0x%02X c=%v: CARRY=%v, want %v", tt.a, tt.m, tt.carryIn, rig.cpu.GetFlag(CARRY_FLAG), tt.wantC)
		}
		if rig.cpu.GetFlag(OVERFLOW_FLAG) != tt.wantV {
			t.Errorf("ADC 0x%02X+0x%02X c=%v: OVERFLOW=%v, want %v", tt.a, tt.m, tt.carryIn, rig.cpu.GetFlag(OVERFLOW_FLAG), tt.wantV)
		}
		if rig.cpu.GetFlag(ZERO_FLAG) != tt.wantZ {
			t.Errorf("ADC 0x%02X+0x%02X c=%v: ZERO=%v, want %v", tt.a, tt.m, tt.carryIn, rig.cpu.GetFlag(ZERO_FLAG), tt.wantZ)
		}
		if rig.cpu.GetFlag(NEGATIVE_FLAG) != tt.wantN {
			t.Errorf("ADC 0x%02X+0x%02X c=%v: NEGATIVE=%v, want %v", tt.a, tt.m, tt.carryIn, rig.cpu.GetFlag(NEGATIVE_FLAG), tt.wantN)
		}
	}
}

func Test6502SBCBinary(t *testing.T) {
	tests := []struct {
		a       byte
		m       byte
		carryIn bool // set = no borrow
		wantA   byte
		wantC   bool
		wantV   bool
		wantN   bool
	}{
		{0x08, 0x05, true, 0x03, true, false, false},
		{0x50, 0xF0, true, 0x60, false, false, false},
		{0xD0, 0x70, true, 0x60, true, true, false},
		{0x00, 0x01, true, 0xFF, false, false, true},
		{0x00, 0x00, false, 0xFF, false, false, true},
		{0x80, 0x01, true, 0x7F, true, true, false},
	}

	for _, tt := range tests {
		rig := newCPU6502TestRig()
		rig.resetAndLoad(0x0200, []byte{
			0xE9, tt.m, // SBC #imm
		})
		rig.cpu.A = tt.a
		rig.cpu.SetFlag(CARRY_FLAG, tt.carryIn)

		rig.step(t, 1)

		if rig.cpu.A != tt.wantA {
			t.Errorf("SBC 0x%02X-0x%02X c=%v: A=0x%02X, want 0x%02X", tt.a, tt.m, tt.carryIn, rig.cpu.A, tt.wantA)
		}
		if rig.cpu.GetFlag(CARRY_FLAG) != tt.wantC {
			t.Errorf("SBC 0x%02X-0x%02X c=%v: CARRY=%v, want %v", tt.a, tt.m, tt.carryIn, rig.cpu.GetFlag(CARRY_FLAG), tt.wantC)
		}
		if rig.cpu.GetFlag(OVERFLOW_FLAG) != tt.wantV {
			t.Errorf("SBC 0x%02X-0x%02X c=%v: OVERFLOW=%v, want %v", tt.a, tt.m, tt.carryIn, rig.cpu.GetFlag(OVERFLOW_FLAG), tt.wantV)
		}
		if rig.cpu.GetFlag(NEGATIVE_FLAG) != tt.wantN {
			t.Errorf("SBC 0x%02X-0x%02X c=%v: NEGATIVE=%v, want %v", tt.a, tt.m, tt.carryIn, rig.cpu.GetFlag(NEGATIVE_FLAG), tt.wantN)
		}
	}
}

// Adding then subtracting the same operand with clean carry state must
// restore the accumulator.
func Test6502ADCSBCInverse(t *testing.T) {
	values := []byte{0x00, 0x01, 0x42, 0x7F, 0x80, 0xFF}

	for _, a := range values {
		for _, m := range values {
			rig := newCPU6502TestRig()
			rig.resetAndLoad(0x0200, []byte{
				0x18, // CLC
				0x69, m, // ADC #m
				0x38, // SEC
				0xE9, m, // SBC #m
			})
			rig.cpu.A = a

			rig.step(t, 4)

			if rig.cpu.A != a {
				t.Errorf("A=0x%02X after ADC/SBC of 0x%02X, want 0x%02X", rig.cpu.A, m, a)
			}
		}
	}
}

func Test6502ADCDecimal(t *testing.T) {
	tests := []struct {
		a       byte
		m       byte
		carryIn bool
		wantA   byte
		wantC   bool
	}{
		{0x09, 0x01, false, 0x10, false},
		{0x12, 0x34, false, 0x46, false},
		{0x58, 0x46, true, 0x05, true},
		{0x99, 0x01, false, 0x00, true},
	}

	for _, tt := range tests {
		rig := newCPU6502TestRig()
		rig.resetAndLoad(0x0200, []byte{
			0x69, tt.m, // ADC #imm
		})
		rig.cpu.A = tt.a
		rig.cpu.SetFlag(DECIMAL_FLAG, true)
		rig.cpu.SetFlag(CARRY_FLAG, tt.carryIn)

		rig.step(t, 1)

		if rig.cpu.A != tt.wantA {
			t.Errorf("BCD ADC 0x%02X+0x%02X c=%v: A=0x%02X, want 0x%02X", tt.a, tt.m, tt.carryIn, rig.cpu.A, tt.wantA)
		}
		if rig.cpu.GetFlag(CARRY_FLAG) != tt.wantC {
			t.Errorf("BCD ADC 0x%02X+0x%02X c=%v: CARRY=%v, want %v", tt.a, tt.m, tt.carryIn, rig.cpu.GetFlag(CARRY_FLAG), tt.wantC)
		}
	}
}

func Test6502SBCDecimal(t *testing.T) {
	tests := []struct {
		a       byte
		m       byte
		carryIn bool // set = no borrow
		wantA   byte
		wantC   bool
	}{
		{0x46, 0x12, true, 0x34, true},
		{0x40, 0x13, false, 0x26, true},
		{0x00, 0x01, true, 0x99, false},
	}

	for _, tt := range tests {
		rig := newCPU6502TestRig()
		rig.resetAndLoad(0x0200, []byte{
			0xE9, tt.m, // SBC #imm
		})
		rig.cpu.A = tt.a
		rig.cpu.SetFlag(DECIMAL_FLAG, true)
		rig.cpu.SetFlag(CARRY_FLAG, tt.carryIn)

		rig.step(t, 1)

		if rig.cpu.A != tt.wantA {
			t.Errorf("BCD SBC 0x%02X-0x%02X c=%v: A=0x%02X, want 0x%02X", tt.a, tt.m, tt.carryIn, rig.cpu.A, tt.wantA)
		}
		if rig.cpu.GetFlag(CARRY_FLAG) != tt.wantC {
			t.Errorf("BCD SBC 0x%02X-0x%02X c=%v: CARRY=%v, want %v", tt.a, tt.m, tt.carryIn, rig.cpu.GetFlag(CARRY_FLAG), tt.wantC)
		}
	}
}

func Test6502IncDecMemory(t *testing.T) {
	rig := newCPU6502TestRig()
	rig.resetAndLoad(0x0200, []byte{
		0xE6, 0x10, // INC $10
		0xC6, 0x10, // DEC $10
		0xC6, 0x10, // DEC $10
	})
	rig.bus.Write(0x0010, 0xFF)

	rig.step(t, 1)
	if got := rig.bus.Read(0x0010); got != 0x00 {
		t.Fatalf("INC 0xFF: memory=0x%02X, want 0x00", got)
	}
	if !rig.cpu.GetFlag(ZERO_FLAG) {
		t.Fatalf("INC to 0x00 should set ZERO")
	}

	rig.step(t, 1)
	if got := rig.bus.Read(0x0010); got != 0xFF {
		t.Fatalf("DEC 0x00: memory=0x%02X, want 0xFF", got)
	}
	if !rig.cpu.GetFlag(NEGATIVE_FLAG) {
		t.Fatalf("DEC to 0xFF should set NEGATIVE")
	}

	rig.step(t, 1)
	if got := rig.bus.Read(0x0010); got != 0xFE {
		t.Fatalf("DEC 0xFF: memory=0x%02X, want 0xFE", got)
	}
}

func Test6502IncDecRegisters(t *testing.T) {
	rig := newCPU6502TestRig()
	rig.resetAndLoad(0x0200, []byte{
		0xE8, // INX
		0xC8, // INY
		0xCA, // DEX
		0x88, // DEY
	})
	rig.cpu.X = 0xFF
	rig.cpu.Y = 0x7F

	rig.step(t, 1)
	if rig.cpu.X != 0x00 || !rig.cpu.GetFlag(ZERO_FLAG) {
		t.Fatalf("INX: X=0x%02X ZERO=%v, want 0x00 true", rig.cpu.X, rig.cpu.GetFlag(ZERO_FLAG))
	}

	rig.step(t, 1)
	if rig.cpu.Y != 0x80 || !rig.cpu.GetFlag(NEGATIVE_FLAG) {
		t.Fatalf("INY: Y=0x%02X NEGATIVE=%v, want 0x80 true", rig.cpu.Y, rig.cpu.GetFlag(NEGATIVE_FLAG))
	}

	rig.step(t, 1)
	if rig.cpu.X != 0xFF {
		t.Fatalf("DEX: X=0x%02X, want 0xFF", rig.cpu.X)
	}

	rig.step(t, 1)
	if rig.cpu.Y != 0x7F {
		t.Fatalf("DEY: Y=0x%02X, want 0x7F", rig.cpu.Y)
	}
}

func Test6502LogicalOps(t *testing.T) {
	rig := newCPU6502TestRig()
	rig.resetAndLoad(0x0200, []byte{
		0xA9, 0xF0, // LDA #$F0
		0x29, 0x0F, // AND #$0F
		0x09, 0x80, // ORA #$80
		0x49, 0x80, // EOR #$80
	})

	rig.step(t, 2)
	if rig.cpu.A != 0x00 || !rig.cpu.GetFlag(ZERO_FLAG) {
		t.Fatalf("AND: A=0x%02X ZERO=%v, want 0x00 true", rig.cpu.A, rig.cpu.GetFlag(ZERO_FLAG))
	}

	rig.step(t, 1)
	if rig.cpu.A != 0x80 || !rig.cpu.GetFlag(NEGATIVE_FLAG) {
		t.Fatalf("ORA: A=0x%02X NEGATIVE=%v, want 0x80 true", rig.cpu.A, rig.cpu.GetFlag(NEGATIVE_FLAG))
	}

	rig.step(t, 1)
	if rig.cpu.A != 0x00 || !rig.cpu.GetFlag(ZERO_FLAG) {
		t.Fatalf("EOR: A=0x%02X ZERO=%v, want 0x00 true", rig.cpu.A, rig.cpu.GetFlag(ZERO_FLAG))
	}
}

func Test6502ShiftAccumulator(t *testing.T) {
	rig := newCPU6502TestRig()
	rig.resetAndLoad(0x0200, []byte{
		0x0A, // ASL A
		0x4A, // LSR A
	})
	rig.cpu.A = 0x81

	rig.step(t, 1)
	if rig.cpu.A != 0x02 {
		t.Fatalf("ASL A: A=0x%02X, want 0x02", rig.cpu.A)
	}
	if !rig.cpu.GetFlag(CARRY_FLAG) {
		t.Fatalf("ASL A should shift bit 7 into CARRY")
	}

	rig.step(t, 1)
	if rig.cpu.A != 0x01 {
		t.Fatalf("LSR A: A=0x%02X, want 0x01", rig.cpu.A)
	}
	if rig.cpu.GetFlag(CARRY_FLAG) {
		t.Fatalf("LSR A of 0x02 should clear CARRY")
	}
}

func Test6502RotateThroughCarry(t *testing.T) {
	rig := newCPU6502TestRig()
	rig.resetAndLoad(0x0200, []byte{
		0x2A, // ROL A
		0x6A, // ROR A
	})
	rig.cpu.A = 0x80
	rig.cpu.SetFlag(CARRY_FLAG, true)

	rig.step(t, 1)
	// ROL shifts the old carry into bit 0 and bit 7 out to carry.
	if rig.cpu.A != 0x01 {
		t.Fatalf("ROL A: A=0x%02X, want 0x01", rig.cpu.A)
	}
	if !rig.cpu.GetFlag(CARRY_FLAG) {
		t.Fatalf("ROL A of 0x80 should set CARRY")
	}

	rig.step(t, 1)
	// ROR shifts the carry into bit 7 and bit 0 out to carry.
	if rig.cpu.A != 0x80 {
		t.Fatalf("ROR A: A=0x%02X, want 0x80", rig.cpu.A)
	}
	if !rig.cpu.GetFlag(CARRY_FLAG) {
		t.Fatalf("ROR A of 0x01 should set CARRY")
	}
}

func Test6502ShiftMemory(t *testing.T) {
	rig := newCPU6502TestRig()
	rig.resetAndLoad(0x0200, []byte{
		0x06, 0x10, // ASL $10
		0x46, 0x10, // LSR $10
	})
	rig.bus.Write(0x0010, 0x40)

	rig.step(t, 1)
	if got := rig.bus.Read(0x0010); got != 0x80 {
		t.Fatalf("ASL $10: memory=0x%02X, want 0x80", got)
	}
	if !rig.cpu.GetFlag(NEGATIVE_FLAG) {
		t.Fatalf("ASL to 0x80 should set NEGATIVE")
	}

	rig.step(t, 1)
	if got := rig.bus.Read(0x0010); got != 0x40 {
		t.Fatalf("LSR $10: memory=0x%02X, want 0x40", got)
	}
}

func Test6502CompareSetsCarryWhenNoBorrow(t *testing.T) {
	tests := []struct {
		reg   byte
		m     byte
		wantC bool
		wantZ bool
		wantN bool
	}{
		{0x40, 0x30, true, false, false},
		{0x40, 0x40, true, true, false},
		{0x40, 0x50, false, false, true},
		{0x00, 0xFF, false, false, false},
		{0xFF, 0x00, true, false, true},
	}

	for _, tt := range tests {
		rig := newCPU6502TestRig()
		rig.resetAndLoad(0x0200, []byte{
			0xC9, tt.m, // CMP #imm
		})
		rig.cpu.A = tt.reg

		rig.step(t, 1)

		if rig.cpu.GetFlag(CARRY_FLAG) != tt.wantC {
			t.Errorf("CMP 0x%02X vs 0x%02X: CARRY=%v, want %v", tt.reg, tt.m, rig.cpu.GetFlag(CARRY_FLAG), tt.wantC)
		}
		if rig.cpu.GetFlag(ZERO_FLAG) != tt.wantZ {
			t.Errorf("CMP 0x%02X vs 0x%02X: ZERO=%v, want %v", tt.reg, tt.m, rig.cpu.GetFlag(ZERO_FLAG), tt.wantZ)
		}
		if rig.cpu.GetFlag(NEGATIVE_FLAG) != tt.wantN {
			t.Errorf("CMP 0x%02X vs 0x%02X: NEGATIVE=%v, want %v", tt.reg, tt.m, rig.cpu.GetFlag(NEGATIVE_FLAG), tt.wantN)
		}
		if rig.cpu.A != tt.reg {
			t.Errorf("CMP must not modify A: A=0x%02X, want 0x%02X", rig.cpu.A, tt.reg)
		}
	}
}

func Test6502CompareIndexRegisters(t *testing.T) {
	rig := newCPU6502TestRig()
	rig.resetAndLoad(0x0200, []byte{
		0xE0, 0x10, // CPX #$10
		0xC0, 0x30, // CPY #$30
	})
	rig.cpu.X = 0x10
	rig.cpu.Y = 0x20

	rig.step(t, 1)
	if !rig.cpu.GetFlag(ZERO_FLAG) || !rig.cpu.GetFlag(CARRY_FLAG) {
		t.Fatalf("CPX equal: ZERO=%v CARRY=%v, want true true", rig.cpu.GetFlag(ZERO_FLAG), rig.cpu.GetFlag(CARRY_FLAG))
	}

	rig.step(t, 1)
	if rig.cpu.GetFlag(CARRY_FLAG) {
		t.Fatalf("CPY 0x20 vs 0x30 should clear CARRY")
	}
	if !rig.cpu.GetFlag(NEGATIVE_FLAG) {
		t.Fatalf("CPY 0x20 vs 0x30 should set NEGATIVE")
	}
}

func Test6502BITCopiesHighBits(t *testing.T) {
	rig := newCPU6502TestRig()
	rig.resetAndLoad(0x0200, []byte{
		0x24, 0x10, // BIT $10
		0x2C, 0x20, 0x00, // BIT $0020
	})
	rig.cpu.A = 0xFF
	rig.bus.Write(0x0010, 0xC0)
	rig.bus.Write(0x0020, 0x3F)

	rig.step(t, 1)
	if !rig.cpu.GetFlag(NEGATIVE_FLAG) || !rig.cpu.GetFlag(OVERFLOW_FLAG) {
		t.Fatalf("BIT 0xC0: NEGATIVE=%v OVERFLOW=%v, want true true",
			rig.cpu.GetFlag(NEGATIVE_FLAG), rig.cpu.GetFlag(OVERFLOW_FLAG))
	}
	if rig.cpu.GetFlag(ZERO_FLAG) {
		t.Fatalf("BIT with A&M != 0 should clear ZERO")
	}

	rig.cpu.A = 0x40
	rig.step(t, 1)
	if rig.cpu.GetFlag(NEGATIVE_FLAG) || rig.cpu.GetFlag(OVERFLOW_FLAG) {
		t.Fatalf("BIT 0x3F: NEGATIVE=%v OVERFLOW=%v, want false false",
			rig.cpu.GetFlag(NEGATIVE_FLAG), rig.cpu.GetFlag(OVERFLOW_FLAG))
	}
	if !rig.cpu.GetFlag(ZERO_FLAG) {
		t.Fatalf("BIT with A&M == 0 should set ZERO")
	}
}
