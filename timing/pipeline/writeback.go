package pipeline

import "github.com/sarchlab/armpipe/emu"

// WritebackUnit commits results to the register file. It is the only writer
// of architectural registers.
type WritebackUnit struct {
	regFile *emu.RegFile
}

// NewWritebackUnit creates a writeback unit committing to regFile.
func NewWritebackUnit(regFile *emu.RegFile) *WritebackUnit {
	return &WritebackUnit{regFile: regFile}
}

// Writeback commits the instruction in memwb. It returns true if a register
// was written.
func (u *WritebackUnit) Writeback(memwb *MEMWBRegister) bool {
	if memwb.Status != StatusOK || !memwb.Writeback.WriteEnable {
		return false
	}

	u.regFile.WriteReg(memwb.DestReg(), memwb.Value())

	return true
}
