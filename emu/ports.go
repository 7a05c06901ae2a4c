package emu

import "fmt"

// InstructionPort reads instruction words.
type InstructionPort interface {
	// Read returns the 32-bit word at addr. It fails if addr lies outside
	// the instruction region or is not a multiple of 4.
	Read(addr uint64) (uint32, error)
}

// MemoryPort reads and writes 64-bit data.
type MemoryPort interface {
	// Read returns the 64-bit value at addr.
	Read(addr uint64) (uint64, error)

	// Write stores a 64-bit value at addr.
	Write(addr, value uint64) error
}

type instructionPort struct {
	memory *Memory
}

func (p *instructionPort) Read(addr uint64) (uint32, error) {
	if addr&0x3 != 0 {
		return 0, fmt.Errorf("instruction fetch at 0x%x: %w", addr, ErrMisaligned)
	}

	if !p.memory.layout.Instruction.Contains(addr, 4) {
		return 0, fmt.Errorf("instruction fetch at 0x%x: %w", addr, ErrOutOfRange)
	}

	return p.memory.Read32(addr)
}

type dataPort struct {
	memory *Memory
}

func (p *dataPort) check(addr uint64) error {
	if addr&0x7 != 0 {
		return fmt.Errorf("data access at 0x%x: %w", addr, ErrMisaligned)
	}

	if !p.memory.layout.Data.Contains(addr, 8) {
		return fmt.Errorf("data access at 0x%x: %w", addr, ErrOutOfRange)
	}

	return nil
}

func (p *dataPort) Read(addr uint64) (uint64, error) {
	if value, ok := p.memory.special[addr]; ok {
		return value, nil
	}

	if err := p.check(addr); err != nil {
		return 0, err
	}

	return p.memory.Read64(addr)
}

func (p *dataPort) Write(addr, value uint64) error {
	if _, ok := p.memory.special[addr]; ok {
		p.memory.special[addr] = value
		return nil
	}

	if err := p.check(addr); err != nil {
		return err
	}

	return p.memory.Write64(addr, value)
}
