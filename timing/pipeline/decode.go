package pipeline

import (
	"github.com/sarchlab/armpipe/emu"
	"github.com/sarchlab/armpipe/insts"
)

// ForwardingSources are the producer registers decode may bypass from,
// most recent first. Each is the output written by that stage this cycle,
// except Writeback, which is the register writeback consumed this cycle.
type ForwardingSources struct {
	Execute   *EXMEMRegister
	Memory    *MEMWBRegister
	Writeback *MEMWBRegister
}

// Forward returns the newest in-flight value of reg, or value when no live
// producer writes reg. Each producer supplies the value its own writeback
// would commit.
//
// A load still in execute has no memory result yet, so Forward returns 0
// for it. The result is never consumed: the hazard controller reports
// HazardLoadUse for that pair in the same cycle and the stalled consumer
// decodes again once the load's value is in the memory output.
func (f ForwardingSources) Forward(reg uint8, value uint64) uint64 {
	if reg == insts.RegNone {
		return value
	}

	if x := f.Execute; x != nil && producesReg(x.Status, x.Writeback, x.Dst, reg) {
		if x.Writeback.Value == ValueMemory {
			return 0
		}
		return x.ValEx
	}

	for _, w := range []*MEMWBRegister{f.Memory, f.Writeback} {
		if w != nil && producesReg(w.Status, w.Writeback, w.Dst, reg) {
			return w.Value()
		}
	}

	return value
}

func producesReg(status Status, wb WritebackSignals, dst, reg uint8) bool {
	return status == StatusOK && wb.WriteEnable && dst == reg
}

// Value returns the value writeback commits.
func (r *MEMWBRegister) Value() uint64 {
	if r.Writeback.Value == ValueMemory {
		return r.ValMem
	}
	return r.ValEx
}

// DestReg returns the register writeback commits to.
func (r *MEMWBRegister) DestReg() uint8 {
	if r.Writeback.Dest == DestLink {
		return insts.RegLink
	}
	return r.Dst
}

// DecodeUnit extracts operands, reads the register file and generates the
// control signals of later stages.
type DecodeUnit struct {
	regFile *emu.RegFile
	decoder *insts.Decoder
}

// NewDecodeUnit creates a decode unit reading regFile.
func NewDecodeUnit(regFile *emu.RegFile) *DecodeUnit {
	return &DecodeUnit{
		regFile: regFile,
		decoder: insts.NewDecoder(),
	}
}

// Decode produces the execute input for the instruction in ifid.
// Instructions that are not OK pass through with their status and no
// register effects.
func (u *DecodeUnit) Decode(ifid *IFIDRegister, fwd ForwardingSources) IDEXRegister {
	out := bubbleIDEX()
	out.Status = ifid.Status
	out.PC = ifid.PC
	out.Op = ifid.Op
	out.SeqSuccPC = ifid.SeqSuccPC

	if ifid.Status != StatusOK {
		return out
	}

	inst := u.decoder.DecodeAs(ifid.InstructionWord, ifid.Op)

	out.Cond = inst.Cond
	out.Imm = inst.Imm
	out.HW = inst.HW
	out.Dst = inst.Dst
	out.Src1 = inst.Src1
	out.Src2 = inst.Src2
	out.Signals = SignalsFor(ifid.Op)

	out.ValA = fwd.Forward(inst.Src1, u.regFile.ReadReg(inst.Src1))
	out.ValB = fwd.Forward(inst.Src2, u.regFile.ReadReg(inst.Src2))

	switch ifid.Op {
	case insts.OpMOVK:
		out.ValA &^= uint64(0xFFFF) << inst.HW
	case insts.OpADRP:
		out.ValA = ifid.PC &^ 0xFFF
	case insts.OpBL:
		out.ValA = ifid.SeqSuccPC
	}

	return out
}
