package emu

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"
)

// Errors reported by the memory ports.
var (
	ErrOutOfRange = errors.New("address out of range")
	ErrMisaligned = errors.New("misaligned address")
)

// Region is a contiguous range of addresses [Base, Base+Size).
type Region struct {
	Base uint64
	Size uint64
}

// End returns the first address past the region.
func (r Region) End() uint64 {
	return r.Base + r.Size
}

// Contains returns true if n bytes starting at addr lie in the region.
func (r Region) Contains(addr, n uint64) bool {
	return addr >= r.Base && addr+n >= addr && addr+n <= r.End()
}

// Layout describes the address map seen by the pipeline.
type Layout struct {
	// Instruction is the region instruction fetches may read.
	Instruction Region

	// Data is the region loads and stores may access.
	Data Region

	// Special lists memory-mapped control registers. They are exempt from
	// range and alignment checks and are not backed by the storage.
	Special []uint64
}

// DefaultLayout returns the address map used when no configuration is given.
func DefaultLayout() Layout {
	return Layout{
		Instruction: Region{Base: 0x400000, Size: 0x100000},
		Data:        Region{Base: 0x400000, Size: 0x80000000 - 0x400000},
	}
}

// Memory is the physical backing store of the simulated machine. Contents
// are kept little-endian in an akita storage sized to cover both regions.
type Memory struct {
	storage *mem.Storage
	layout  Layout
	special map[uint64]uint64
}

// NewMemory creates a zero-filled memory for the given layout.
func NewMemory(layout Layout) *Memory {
	capacity := layout.Instruction.End()
	if end := layout.Data.End(); end > capacity {
		capacity = end
	}

	m := &Memory{
		storage: mem.NewStorage(capacity),
		layout:  layout,
		special: make(map[uint64]uint64, len(layout.Special)),
	}
	for _, addr := range layout.Special {
		m.special[addr] = 0
	}

	return m
}

// Layout returns the address map of the memory.
func (m *Memory) Layout() Layout {
	return m.layout
}

// IsSpecial returns true if addr is a memory-mapped control register.
func (m *Memory) IsSpecial(addr uint64) bool {
	_, ok := m.special[addr]
	return ok
}

func (m *Memory) inStorage(addr, n uint64) bool {
	return addr+n >= addr && addr+n <= m.storage.Capacity
}

// Read returns n raw bytes starting at addr without any region check.
func (m *Memory) Read(addr, n uint64) ([]byte, error) {
	if !m.inStorage(addr, n) {
		return nil, fmt.Errorf("read %d bytes at 0x%x: %w", n, addr, ErrOutOfRange)
	}

	data, err := m.storage.Read(addr, n)
	if err != nil {
		return nil, fmt.Errorf("read %d bytes at 0x%x: %w", n, addr, err)
	}
	return data, nil
}

// Write stores raw bytes starting at addr without any region check.
func (m *Memory) Write(addr uint64, data []byte) error {
	if !m.inStorage(addr, uint64(len(data))) {
		return fmt.Errorf("write %d bytes at 0x%x: %w", len(data), addr, ErrOutOfRange)
	}

	if err := m.storage.Write(addr, data); err != nil {
		return fmt.Errorf("write %d bytes at 0x%x: %w", len(data), addr, err)
	}
	return nil
}

// Read32 reads a little-endian 32-bit word.
func (m *Memory) Read32(addr uint64) (uint32, error) {
	data, err := m.Read(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data), nil
}

// Write32 writes a little-endian 32-bit word.
func (m *Memory) Write32(addr uint64, value uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, value)
	return m.Write(addr, buf)
}

// Read64 reads a little-endian 64-bit value.
func (m *Memory) Read64(addr uint64) (uint64, error) {
	data, err := m.Read(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(data), nil
}

// Write64 writes a little-endian 64-bit value.
func (m *Memory) Write64(addr uint64, value uint64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, value)
	return m.Write(addr, buf)
}

// InstructionPort returns the port the fetch stage reads through.
func (m *Memory) InstructionPort() InstructionPort {
	return &instructionPort{memory: m}
}

// DataPort returns the port the memory stage loads and stores through.
func (m *Memory) DataPort() MemoryPort {
	return &dataPort{memory: m}
}
