package emu

import "github.com/sarchlab/armpipe/insts"

// ALUOp selects the operation performed by the ALU.
type ALUOp uint8

// ALU operations.
const (
	ALUAdd   ALUOp = iota // a + b
	ALUSub                // a - b
	ALUOr                 // a | b
	ALUEor                // a ^ b
	ALUAnd                // a & b
	ALUNegOr              // a | ^b
	ALUMov                // a | b, b already shifted into its halfword
	ALULsl                // a << b
	ALULsr                // a >> b, logical
	ALUAsr                // a >> b, arithmetic
	ALUPassA              // a
	ALUPassB              // b

	// NumALUOps is the number of ALU operations.
	NumALUOps
)

var aluOpNames = [NumALUOps]string{
	"ADD", "SUB", "OR", "EOR", "AND", "NEGOR",
	"MOV", "LSL", "LSR", "ASR", "PASSA", "PASSB",
}

func (op ALUOp) String() string {
	if op >= NumALUOps {
		return "INVALID"
	}
	return aluOpNames[op]
}

// ALU implements the arithmetic and logic unit. It owns no state besides a
// reference to the condition flags it updates.
type ALU struct {
	flags *PSTATE
}

// NewALU creates a new ALU connected to the given flags register.
func NewALU(flags *PSTATE) *ALU {
	return &ALU{flags: flags}
}

// Operate computes the result of op on a and b, where b is first shifted
// left by shift bits.
func Operate(op ALUOp, a, b uint64, shift uint8) uint64 {
	b <<= shift

	switch op {
	case ALUAdd:
		return a + b
	case ALUSub:
		return a - b
	case ALUOr, ALUMov:
		return a | b
	case ALUEor:
		return a ^ b
	case ALUAnd:
		return a & b
	case ALUNegOr:
		return a | ^b
	case ALULsl:
		return a << (b & 0x3F)
	case ALULsr:
		return a >> (b & 0x3F)
	case ALUAsr:
		return uint64(int64(a) >> (b & 0x3F))
	case ALUPassA:
		return a
	case ALUPassB:
		return b
	default:
		return 0
	}
}

// ComputeFlags returns the NZCV flags produced by an operation. N and Z
// follow the result; C and V are only produced by ALUAdd and ALUSub and are
// clear for every other operation.
func ComputeFlags(op ALUOp, a, b, result uint64) PSTATE {
	flags := PSTATE{
		N: result>>63 == 1,
		Z: result == 0,
	}

	switch op {
	case ALUAdd:
		flags.C = result < a
		flags.V = (^(a^b)&(a^result))>>63 == 1
	case ALUSub:
		flags.C = result < a
		flags.V = ((a^b)&(a^result))>>63 == 1
	}

	return flags
}

// Execute runs one ALU operation. The returned condition result is
// evaluated against the flags as they stood before this call; the flags are
// then replaced when setFlags is true.
func (u *ALU) Execute(
	op ALUOp,
	a, b uint64,
	shift uint8,
	setFlags bool,
	cond insts.Cond,
) (result uint64, condHolds bool) {
	condHolds = u.flags.CheckCondition(cond)
	result = Operate(op, a, b, shift)

	if setFlags {
		*u.flags = ComputeFlags(op, a, b<<shift, result)
	}

	return result, condHolds
}

// Flags returns the current flags.
func (u *ALU) Flags() PSTATE {
	return *u.flags
}

// ALUOpFor returns the ALU operation an opcode performs. Loads and stores
// use the ALU to form their address and ADRP adds the page offset to the
// page base.
func ALUOpFor(op insts.Op) ALUOp {
	switch op {
	case insts.OpCMP, insts.OpSUBImm, insts.OpSUBS:
		return ALUSub
	case insts.OpMVN:
		return ALUNegOr
	case insts.OpEOR:
		return ALUEor
	case insts.OpADDImm, insts.OpLDUR, insts.OpSTUR, insts.OpADRP, insts.OpADDS:
		return ALUAdd
	case insts.OpTST, insts.OpANDS:
		return ALUAnd
	case insts.OpLSR:
		return ALULsr
	case insts.OpASR:
		return ALUAsr
	case insts.OpLSL:
		return ALULsl
	case insts.OpMOVZ, insts.OpMOVK:
		return ALUMov
	case insts.OpORR:
		return ALUOr
	default:
		return ALUPassA
	}
}

// SetsFlags returns true for the opcodes that update NZCV.
func SetsFlags(op insts.Op) bool {
	switch op {
	case insts.OpANDS, insts.OpSUBS, insts.OpCMP, insts.OpADDS, insts.OpTST:
		return true
	}
	return false
}
