package pipeline

import (
	"github.com/sarchlab/armpipe/emu"
	"github.com/sarchlab/armpipe/insts"
)

// ExecuteUnit drives the ALU and evaluates branch conditions. It is the only
// writer of the condition flags.
type ExecuteUnit struct {
	alu *emu.ALU
}

// NewExecuteUnit creates an execute unit updating flags.
func NewExecuteUnit(flags *emu.PSTATE) *ExecuteUnit {
	return &ExecuteUnit{alu: emu.NewALU(flags)}
}

// Execute computes the memory-stage input for the instruction in idex.
func (u *ExecuteUnit) Execute(idex *IDEXRegister) EXMEMRegister {
	out := bubbleEXMEM()
	out.Status = idex.Status
	out.PC = idex.PC
	out.Op = idex.Op
	out.SeqSuccPC = idex.SeqSuccPC

	if idex.Status != StatusOK {
		return out
	}

	sig := idex.Signals.Execute
	b := idex.Imm
	if sig.OperandB == OperandRegister {
		b = idex.ValB
	}

	out.ValEx, out.CondHolds = u.alu.Execute(
		sig.ALUOp, idex.ValA, b, idex.HW, sig.SetFlags, idex.Cond)
	out.ValB = idex.ValB
	out.Dst = idex.Dst
	out.Memory = idex.Signals.Memory
	out.Writeback = idex.Signals.Writeback

	if idex.Op == insts.OpRET && idex.ValA%4 != 0 {
		out.Status = StatusInvalidInstruction
		out.Memory = MemorySignals{}
		out.Writeback.WriteEnable = false
	}

	return out
}
