// Package loader reads AArch64 programs into the simulated machine's
// memory. ELF64 executables and raw little-endian word images are
// supported.
package loader

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/armpipe/emu"
)

// ErrUnsupported is returned for files that are not AArch64 programs.
var ErrUnsupported = errors.New("unsupported program file")

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment is a block of memory image placed at a fixed address.
type Segment struct {
	// VirtAddr is the address where this segment is placed.
	VirtAddr uint64
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint64
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program is a loaded image ready to be placed into a machine.
type Program struct {
	// EntryPoint is the address where execution begins.
	EntryPoint uint64
	// Segments contains the memory image.
	Segments []Segment
}

// LoadInto copies every segment into the machine's memory.
func (p *Program) LoadInto(m *emu.Machine) error {
	for _, seg := range p.Segments {
		if err := m.LoadSegment(seg.VirtAddr, seg.Data, seg.MemSize); err != nil {
			return err
		}
	}

	return nil
}

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// LoadFile loads an ELF executable, or a raw word image placed at base when
// the file does not start with the ELF magic.
func LoadFile(path string, base uint64) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}

	magic := make([]byte, len(elfMagic))
	n, _ := io.ReadFull(f, magic)
	_ = f.Close()

	if n == len(elfMagic) && bytes.Equal(magic, elfMagic) {
		return Load(path)
	}

	return LoadRaw(path, base)
}

// LoadRaw reads a file of little-endian instruction words and places it at
// base. The entry point is base.
func LoadRaw(path string, base uint64) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw image: %w", err)
	}

	if len(data)%4 != 0 {
		return nil, fmt.Errorf("raw image of %d bytes is not a whole number of words: %w",
			len(data), ErrUnsupported)
	}

	return &Program{
		EntryPoint: base,
		Segments: []Segment{{
			VirtAddr: base,
			Data:     data,
			MemSize:  uint64(len(data)),
			Flags:    SegmentFlagRead | SegmentFlagExecute,
		}},
	}, nil
}

// Load parses an AArch64 ELF64 executable.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS64 {
		return nil, fmt.Errorf("not a 64-bit ELF file: %w", ErrUnsupported)
	}

	if f.Machine != elf.EM_AARCH64 {
		return nil, fmt.Errorf("not an ARM64 ELF file (machine type: %v): %w",
			f.Machine, ErrUnsupported)
	}

	prog := &Program{EntryPoint: f.Entry}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		seg, err := readSegment(phdr)
		if err != nil {
			return nil, err
		}

		prog.Segments = append(prog.Segments, seg)
	}

	return prog, nil
}

func readSegment(phdr *elf.Prog) (Segment, error) {
	data := make([]byte, phdr.Filesz)
	if phdr.Filesz > 0 {
		n, err := phdr.ReadAt(data, 0)
		if err != nil && err != io.EOF {
			return Segment{}, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
		}
		if uint64(n) != phdr.Filesz {
			return Segment{}, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
				phdr.Vaddr, n, phdr.Filesz)
		}
	}

	var flags SegmentFlags
	if phdr.Flags&elf.PF_X != 0 {
		flags |= SegmentFlagExecute
	}
	if phdr.Flags&elf.PF_W != 0 {
		flags |= SegmentFlagWrite
	}
	if phdr.Flags&elf.PF_R != 0 {
		flags |= SegmentFlagRead
	}

	return Segment{
		VirtAddr: phdr.Vaddr,
		Data:     data,
		MemSize:  phdr.Memsz,
		Flags:    flags,
	}, nil
}
