// Package emu models the architectural state of the simulated processor:
// register file, condition flags, ALU and the memory ports.
package emu

import "github.com/sarchlab/armpipe/insts"

// RegFile represents the ARM64 register file.
// It contains 31 general-purpose registers (X0-X30) and the stack pointer
// (SP), which is addressed as register 31.
type RegFile struct {
	// X holds general-purpose registers X0-X30.
	X [31]uint64

	// SP is the stack pointer.
	SP uint64
}

// ReadReg reads a register value. Register 31 returns SP. Registers >= 32
// (the insts.RegNone sentinel) return 0.
func (r *RegFile) ReadReg(reg uint8) uint64 {
	switch {
	case reg < insts.RegSP:
		return r.X[reg]
	case reg == insts.RegSP:
		return r.SP
	default:
		return 0
	}
}

// WriteReg writes a value to a register. Register 31 writes SP. Writes to
// registers >= 32 are discarded.
func (r *RegFile) WriteReg(reg uint8, value uint64) {
	switch {
	case reg < insts.RegSP:
		r.X[reg] = value
	case reg == insts.RegSP:
		r.SP = value
	}
}

// Reset clears every register.
func (r *RegFile) Reset() {
	*r = RegFile{}
}
