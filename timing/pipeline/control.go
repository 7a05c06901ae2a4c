package pipeline

import (
	"github.com/sarchlab/armpipe/emu"
	"github.com/sarchlab/armpipe/insts"
)

// OperandSource selects the second ALU operand.
type OperandSource uint8

// Operand sources.
const (
	OperandImmediate OperandSource = iota
	OperandRegister
)

// ValueSource selects the value committed by writeback.
type ValueSource uint8

// Value sources.
const (
	ValueALU ValueSource = iota
	ValueMemory
)

// DestSource selects the register committed by writeback.
type DestSource uint8

// Destination sources.
const (
	DestDecoded DestSource = iota
	DestLink
)

// ExecuteSignals controls the execute stage.
type ExecuteSignals struct {
	ALUOp    emu.ALUOp
	OperandB OperandSource
	SetFlags bool
}

// MemorySignals controls the memory stage.
type MemorySignals struct {
	Read  bool
	Write bool
}

// WritebackSignals controls the writeback stage.
type WritebackSignals struct {
	Value       ValueSource
	Dest        DestSource
	WriteEnable bool
}

// Signals bundles the control signals generated in decode for every later
// stage.
type Signals struct {
	Execute   ExecuteSignals
	Memory    MemorySignals
	Writeback WritebackSignals
}

var signalTable [insts.NumOps]Signals

func init() {
	for op := insts.Op(0); op < insts.NumOps; op++ {
		signalTable[op] = buildSignals(op)
	}
}

func buildSignals(op insts.Op) Signals {
	s := Signals{
		Execute: ExecuteSignals{
			ALUOp:    emu.ALUOpFor(op),
			OperandB: OperandImmediate,
			SetFlags: emu.SetsFlags(op),
		},
		Writeback: WritebackSignals{
			Value:       ValueALU,
			Dest:        DestDecoded,
			WriteEnable: true,
		},
	}

	switch op {
	case insts.OpCMP, insts.OpTST, insts.OpSUBS, insts.OpORR, insts.OpEOR,
		insts.OpADDS, insts.OpANDS, insts.OpMVN:
		s.Execute.OperandB = OperandRegister
	}

	switch op {
	case insts.OpLDUR:
		s.Memory.Read = true
		s.Writeback.Value = ValueMemory
	case insts.OpSTUR:
		s.Memory.Write = true
	case insts.OpBL:
		s.Writeback.Dest = DestLink
	}

	switch op {
	case insts.OpB, insts.OpBCond, insts.OpSTUR, insts.OpNOP, insts.OpRET,
		insts.OpCMP, insts.OpTST, insts.OpHLT, insts.OpUnknown, insts.OpUBFM:
		s.Writeback.WriteEnable = false
	}

	return s
}

// SignalsFor returns the control signals of an opcode.
func SignalsFor(op insts.Op) Signals {
	if op >= insts.NumOps {
		return signalTable[insts.OpUnknown]
	}
	return signalTable[op]
}
