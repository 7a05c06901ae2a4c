package insts

// Op represents an ARM64 opcode.
type Op uint8

// ARM64 opcodes understood by the pipeline.
const (
	OpUnknown Op = iota
	OpB
	OpBCond
	OpBL
	OpRET
	OpNOP
	OpHLT
	OpLDUR
	OpSTUR
	OpADDImm
	OpSUBImm
	OpADRP
	OpMOVZ
	OpMOVK
	OpUBFM // Generic bitfield move; always rewritten to OpLSL or OpLSR at fetch.
	OpLSL
	OpLSR
	OpASR
	OpADDS
	OpSUBS
	OpCMP
	OpANDS
	OpTST
	OpORR
	OpEOR
	OpMVN

	// NumOps is the number of opcodes, including OpUnknown.
	NumOps
)

var opNames = [NumOps]string{
	OpUnknown: "UNKNOWN",
	OpB:       "B",
	OpBCond:   "B.cond",
	OpBL:      "BL",
	OpRET:     "RET",
	OpNOP:     "NOP",
	OpHLT:     "HLT",
	OpLDUR:    "LDUR",
	OpSTUR:    "STUR",
	OpADDImm:  "ADD",
	OpSUBImm:  "SUB",
	OpADRP:    "ADRP",
	OpMOVZ:    "MOVZ",
	OpMOVK:    "MOVK",
	OpUBFM:    "UBFM",
	OpLSL:     "LSL",
	OpLSR:     "LSR",
	OpASR:     "ASR",
	OpADDS:    "ADDS",
	OpSUBS:    "SUBS",
	OpCMP:     "CMP",
	OpANDS:    "ANDS",
	OpTST:     "TST",
	OpORR:     "ORR",
	OpEOR:     "EOR",
	OpMVN:     "MVN",
}

// String returns the assembler mnemonic of the opcode.
func (op Op) String() string {
	if op >= NumOps {
		return "UNKNOWN"
	}
	return opNames[op]
}

// Valid returns true if the opcode names an executable instruction.
func (op Op) Valid() bool {
	return op != OpUnknown && op < NumOps
}

// Cond represents an ARM64 condition code.
type Cond uint8

// ARM64 condition codes.
const (
	CondEQ Cond = 0b0000 // Equal (Z == 1)
	CondNE Cond = 0b0001 // Not Equal (Z == 0)
	CondCS Cond = 0b0010 // Carry Set / Unsigned higher or same (C == 1)
	CondCC Cond = 0b0011 // Carry Clear / Unsigned lower (C == 0)
	CondMI Cond = 0b0100 // Minus / Negative (N == 1)
	CondPL Cond = 0b0101 // Plus / Positive or zero (N == 0)
	CondVS Cond = 0b0110 // Overflow (V == 1)
	CondVC Cond = 0b0111 // No overflow (V == 0)
	CondHI Cond = 0b1000 // Unsigned higher (C == 1 && Z == 0)
	CondLS Cond = 0b1001 // Unsigned lower or same (C == 0 || Z == 1)
	CondGE Cond = 0b1010 // Signed greater than or equal (N == V)
	CondLT Cond = 0b1011 // Signed less than (N != V)
	CondGT Cond = 0b1100 // Signed greater than (Z == 0 && N == V)
	CondLE Cond = 0b1101 // Signed less than or equal (Z == 1 || N != V)
	CondAL Cond = 0b1110 // Always (unconditional)
	CondNV Cond = 0b1111 // Always (unconditional, reserved)
)

var condNames = [16]string{
	"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
	"HI", "LS", "GE", "LT", "GT", "LE", "AL", "NV",
}

func (c Cond) String() string {
	return condNames[c&0xF]
}

// Register indices with a fixed meaning.
const (
	// RegLink is the link register written by BL.
	RegLink uint8 = 30
	// RegSP is the index that aliases the stack pointer.
	RegSP uint8 = 31
	// RegNone is the "no register" sentinel: it reads as zero and writes to
	// it are discarded.
	RegNone uint8 = 32
)

// Fixed instruction words.
const (
	// WordHLT is the encoding of HLT #0, used for synthesized halts.
	WordHLT uint32 = 0xD4400000
	// WordNOP is the encoding of NOP.
	WordNOP uint32 = 0xD503201F
)
