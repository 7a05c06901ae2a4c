package emu

import (
	"fmt"

	"github.com/sarchlab/armpipe/insts"
)

// DefaultReturnFromMain is the link value that marks a return out of the
// program's entry function.
const DefaultReturnFromMain uint64 = 0xFFFFFFFFFFFFFFF0

// DefaultStackTop is the initial stack pointer. It lies inside the default
// data region.
const DefaultStackTop uint64 = 0x7FFFF000

// Machine is the architectural state shared by the pipeline stages: the
// register file, the flags and the memory. Writeback is the only writer of
// Regs and execute the only writer of Flags.
type Machine struct {
	Regs   RegFile
	Flags  PSTATE
	Memory *Memory

	// ReturnFromMain is the link value whose RET halts the machine.
	ReturnFromMain uint64

	// StackTop is the stack pointer installed by Reset.
	StackTop uint64
}

// NewMachine creates a machine with empty memory laid out as given.
func NewMachine(layout Layout) *Machine {
	m := &Machine{
		Memory:         NewMemory(layout),
		ReturnFromMain: DefaultReturnFromMain,
		StackTop:       DefaultStackTop,
	}
	m.Reset()

	return m
}

// Reset clears registers and flags, then installs the return-from-main
// sentinel in the link register and the stack top in SP. Memory is kept.
func (m *Machine) Reset() {
	m.Regs.Reset()
	m.Flags = PSTATE{}
	m.Regs.WriteReg(insts.RegLink, m.ReturnFromMain)
	m.Regs.WriteReg(insts.RegSP, m.StackTop)
}

// LoadSegment copies data to addr and zero-fills up to memSize bytes.
func (m *Machine) LoadSegment(addr uint64, data []byte, memSize uint64) error {
	if err := m.Memory.Write(addr, data); err != nil {
		return fmt.Errorf("load segment at 0x%x: %w", addr, err)
	}

	if memSize > uint64(len(data)) {
		zeros := make([]byte, memSize-uint64(len(data)))
		if err := m.Memory.Write(addr+uint64(len(data)), zeros); err != nil {
			return fmt.Errorf("zero-fill segment at 0x%x: %w", addr, err)
		}
	}

	return nil
}

// LoadWords writes instruction words contiguously starting at addr.
func (m *Machine) LoadWords(addr uint64, words ...uint32) error {
	for i, w := range words {
		if err := m.Memory.Write32(addr+uint64(i)*4, w); err != nil {
			return err
		}
	}

	return nil
}
