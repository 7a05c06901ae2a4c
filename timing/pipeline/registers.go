// Package pipeline provides the 5-stage pipeline implementation for timing simulation.
package pipeline

import "github.com/sarchlab/armpipe/insts"

// FetchRegister holds the predicted PC consumed by the next fetch.
type FetchRegister struct {
	// PredPC is the address fetch uses unless a redirect applies.
	PredPC uint64

	// Status of the last fetch.
	Status Status
}

// IFIDRegister holds state between Fetch and Decode stages.
type IFIDRegister struct {
	Status Status

	// PC is the program counter of the fetched instruction.
	PC uint64

	// InstructionWord is the raw 32-bit instruction word.
	InstructionWord uint32

	// Op is the opcode after alias normalization.
	Op insts.Op

	// SeqSuccPC is PC+4, the fall-through address.
	SeqSuccPC uint64
}

// IDEXRegister holds state between Decode and Execute stages.
type IDEXRegister struct {
	Status Status
	PC     uint64
	Op     insts.Op
	Cond   insts.Cond

	// Operand values after forwarding and special-operand synthesis.
	ValA uint64
	ValB uint64

	Imm uint64
	HW  uint8

	// Register numbers for forwarding and hazard detection.
	Dst  uint8
	Src1 uint8
	Src2 uint8

	SeqSuccPC uint64

	Signals Signals
}

// EXMEMRegister holds state between Execute and Memory stages.
type EXMEMRegister struct {
	Status Status
	PC     uint64
	Op     insts.Op

	// CondHolds is the evaluated branch condition.
	CondHolds bool

	// ValEx is the ALU result (address for load/store).
	ValEx uint64

	// ValB is the value to store for store instructions.
	ValB uint64

	Dst       uint8
	SeqSuccPC uint64

	Memory    MemorySignals
	Writeback WritebackSignals
}

// MEMWBRegister holds state between Memory and Writeback stages.
type MEMWBRegister struct {
	Status Status
	PC     uint64
	Op     insts.Op

	ValEx  uint64
	ValMem uint64

	Dst uint8

	Writeback WritebackSignals
}

func bubbleIFID() IFIDRegister {
	return IFIDRegister{
		Status:          StatusBubble,
		Op:              insts.OpNOP,
		InstructionWord: insts.WordNOP,
	}
}

func bubbleIDEX() IDEXRegister {
	return IDEXRegister{
		Status: StatusBubble,
		Op:     insts.OpNOP,
		Cond:   insts.CondAL,
		Dst:    insts.RegNone,
		Src1:   insts.RegNone,
		Src2:   insts.RegNone,
	}
}

func bubbleEXMEM() EXMEMRegister {
	return EXMEMRegister{
		Status: StatusBubble,
		Op:     insts.OpNOP,
		Dst:    insts.RegNone,
	}
}

func bubbleMEMWB() MEMWBRegister {
	return MEMWBRegister{
		Status: StatusBubble,
		Op:     insts.OpNOP,
		Dst:    insts.RegNone,
	}
}
