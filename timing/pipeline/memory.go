package pipeline

import (
	"log/slog"

	"github.com/sarchlab/armpipe/emu"
)

// MemoryUnit issues at most one load or store per cycle.
type MemoryUnit struct {
	port emu.MemoryPort
}

// NewMemoryUnit creates a memory unit accessing port.
func NewMemoryUnit(port emu.MemoryPort) *MemoryUnit {
	return &MemoryUnit{port: port}
}

// Access performs the data access of the instruction in exmem and returns
// the writeback input. A failed access marks the instruction
// StatusMisalignedAccess and disables its register write.
func (u *MemoryUnit) Access(exmem *EXMEMRegister) MEMWBRegister {
	out := bubbleMEMWB()
	out.Status = exmem.Status
	out.PC = exmem.PC
	out.Op = exmem.Op

	if exmem.Status != StatusOK {
		return out
	}

	out.ValEx = exmem.ValEx
	out.Dst = exmem.Dst
	out.Writeback = exmem.Writeback

	var err error
	switch {
	case exmem.Memory.Read:
		out.ValMem, err = u.port.Read(exmem.ValEx)
	case exmem.Memory.Write:
		err = u.port.Write(exmem.ValEx, exmem.ValB)
	}

	if err != nil {
		slog.Debug("data access failed", "pc", exmem.PC, "err", err)
		out.Status = StatusMisalignedAccess
		out.ValMem = 0
		out.Writeback.WriteEnable = false
	}

	return out
}
