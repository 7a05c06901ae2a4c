package insts

// OpcodeField extracts the 11-bit opcode field (bits [31:21]) used to index
// the opcode table.
func OpcodeField(word uint32) uint16 {
	return uint16((word >> 21) & 0x7FF)
}

// opcodeTable maps the opcode field of an instruction word to an opcode.
// Entries not listed are OpUnknown.
var opcodeTable [2048]Op

type encoding struct {
	op    Op
	first uint16 // first opcode field value
	count uint16 // number of consecutive field values
}

// Opcode field ranges. Fields that spill immediate or register bits into
// [31:21] cover every value those bits can take.
var encodings = []encoding{
	{OpB, 0x0A0, 32},     // 000101 imm26
	{OpBL, 0x4A0, 32},    // 100101 imm26
	{OpBCond, 0x2A0, 8},  // 01010100 imm19 0 cond
	{OpRET, 0x6B2, 1},    // 1101011 0 0 10 11111 ...
	{OpNOP, 0x6A8, 1},    // hint space
	{OpHLT, 0x6A2, 1},    // 11010100 010 imm16 000 00
	{OpLDUR, 0x7C2, 1},   // 11 111 0 00 01 0 imm9 00 Rn Rt
	{OpSTUR, 0x7C0, 1},   // 11 111 0 00 00 0 imm9 00 Rn Rt
	{OpADDImm, 0x488, 2}, // 1 0 0 100010 0 imm12 Rn Rd
	{OpSUBImm, 0x688, 2}, // 1 1 0 100010 0 imm12 Rn Rd
	{OpADRP, 0x480, 8},   // 1 immlo=00 10000 immhi
	{OpADRP, 0x580, 8},   // immlo=01
	{OpADRP, 0x680, 8},   // immlo=10
	{OpADRP, 0x780, 8},   // immlo=11
	{OpMOVZ, 0x694, 4},   // 1 10 100101 hw imm16 Rd
	{OpMOVK, 0x794, 4},   // 1 11 100101 hw imm16 Rd
	{OpUBFM, 0x69A, 2},   // 1 10 100110 1 immr imms Rn Rd
	{OpASR, 0x49A, 2},    // 1 00 100110 1 immr 111111 Rn Rd
	{OpADDS, 0x558, 1},   // 1 0 1 01011 00 0 Rm imm6 Rn Rd
	{OpSUBS, 0x758, 1},   // 1 1 1 01011 00 0 Rm imm6 Rn Rd
	{OpANDS, 0x750, 1},   // 1 11 01010 00 0 Rm imm6 Rn Rd
	{OpORR, 0x550, 1},    // 1 01 01010 00 0 Rm imm6 Rn Rd
	{OpEOR, 0x650, 1},    // 1 10 01010 00 0 Rm imm6 Rn Rd
	{OpMVN, 0x551, 1},    // 1 01 01010 00 1 Rm imm6 11111 Rd
}

func init() {
	for _, e := range encodings {
		for i := uint16(0); i < e.count; i++ {
			opcodeTable[e.first+i] = e.op
		}
	}
}

// LookupOpcode returns the raw opcode-table entry for an instruction word,
// before alias normalization.
func LookupOpcode(word uint32) Op {
	return opcodeTable[OpcodeField(word)]
}

// NormalizeAlias rewrites the aliased forms the pipeline executes under
// their own names: UBFM becomes LSL or LSR, and SUBS/ANDS writing the zero
// register become CMP/TST.
func NormalizeAlias(word uint32, op Op) Op {
	switch op {
	case OpUBFM:
		if (word>>10)&0x3F == 63 {
			return OpLSR
		}
		return OpLSL
	case OpSUBS:
		if word&0x1F == 31 {
			return OpCMP
		}
	case OpANDS:
		if word&0x1F == 31 {
			return OpTST
		}
	}
	return op
}

// RegField names where a register index comes from.
type RegField uint8

// Register field kinds.
const (
	FieldNone RegField = iota // No register; yields RegNone.
	FieldRd                   // bits [4:0], 31 is the zero register
	FieldRdSP                 // bits [4:0], 31 is SP
	FieldRn                   // bits [9:5], 31 is the zero register
	FieldRnSP                 // bits [9:5], 31 is SP
	FieldRm                   // bits [20:16], 31 is the zero register
	FieldLink                 // always X30
)

// RegLayout describes the destination and source register fields of an
// instruction format.
type RegLayout struct {
	Dst  RegField
	Src1 RegField
	Src2 RegField
}

var regLayouts = [NumOps]RegLayout{
	OpUnknown: {},
	OpB:       {},
	OpBCond:   {},
	OpBL:      {Dst: FieldLink},
	OpRET:     {Src1: FieldRn},
	OpNOP:     {},
	OpHLT:     {},
	OpLDUR:    {Dst: FieldRd, Src1: FieldRnSP},
	OpSTUR:    {Src1: FieldRnSP, Src2: FieldRd},
	OpADDImm:  {Dst: FieldRdSP, Src1: FieldRnSP},
	OpSUBImm:  {Dst: FieldRdSP, Src1: FieldRnSP},
	OpADRP:    {Dst: FieldRd},
	OpMOVZ:    {Dst: FieldRd},
	OpMOVK:    {Dst: FieldRd, Src1: FieldRd},
	OpUBFM:    {Dst: FieldRd, Src1: FieldRn},
	OpLSL:     {Dst: FieldRd, Src1: FieldRn},
	OpLSR:     {Dst: FieldRd, Src1: FieldRn},
	OpASR:     {Dst: FieldRd, Src1: FieldRn},
	OpADDS:    {Dst: FieldRd, Src1: FieldRn, Src2: FieldRm},
	OpSUBS:    {Dst: FieldRd, Src1: FieldRn, Src2: FieldRm},
	OpCMP:     {Src1: FieldRn, Src2: FieldRm},
	OpANDS:    {Dst: FieldRd, Src1: FieldRn, Src2: FieldRm},
	OpTST:     {Src1: FieldRn, Src2: FieldRm},
	OpORR:     {Dst: FieldRd, Src1: FieldRn, Src2: FieldRm},
	OpEOR:     {Dst: FieldRd, Src1: FieldRn, Src2: FieldRm},
	OpMVN:     {Dst: FieldRd, Src2: FieldRm},
}

// Layout returns the register field layout of an opcode.
func Layout(op Op) RegLayout {
	if op >= NumOps {
		return RegLayout{}
	}
	return regLayouts[op]
}

// Index resolves a register field of an instruction word to an index in the
// register file, or RegNone.
func (f RegField) Index(word uint32) uint8 {
	var reg uint8
	switch f {
	case FieldRd, FieldRdSP:
		reg = uint8(word & 0x1F)
	case FieldRn, FieldRnSP:
		reg = uint8((word >> 5) & 0x1F)
	case FieldRm:
		reg = uint8((word >> 16) & 0x1F)
	case FieldLink:
		return RegLink
	default:
		return RegNone
	}

	if reg == 31 && f != FieldRdSP && f != FieldRnSP {
		return RegNone
	}
	return reg
}

// ImmShape names how the immediate is laid out in an instruction word.
type ImmShape uint8

// Immediate shapes.
const (
	ImmNone        ImmShape = iota
	ImmMoveWide             // imm16 at [20:5]
	ImmLoadStore            // signed imm9 at [20:12]
	ImmShiftLeft            // 64 - immr, immr at [21:16]
	ImmShiftRight           // immr at [21:16]
	ImmBranch26             // signed imm26 at [25:0], in words
	ImmBranch19             // signed imm19 at [23:5], in words
	ImmArith12              // imm12 at [21:10]
	ImmPage                 // signed immhi:immlo at [23:5]:[30:29], in pages
)

var immShapes = [NumOps]ImmShape{
	OpUnknown: ImmNone,
	OpB:       ImmBranch26,
	OpBCond:   ImmBranch19,
	OpBL:      ImmBranch26,
	OpRET:     ImmNone,
	OpNOP:     ImmNone,
	OpHLT:     ImmNone,
	OpLDUR:    ImmLoadStore,
	OpSTUR:    ImmLoadStore,
	OpADDImm:  ImmArith12,
	OpSUBImm:  ImmArith12,
	OpADRP:    ImmPage,
	OpMOVZ:    ImmMoveWide,
	OpMOVK:    ImmMoveWide,
	OpUBFM:    ImmNone,
	OpLSL:     ImmShiftLeft,
	OpLSR:     ImmShiftRight,
	OpASR:     ImmShiftRight,
	OpADDS:    ImmNone,
	OpSUBS:    ImmNone,
	OpCMP:     ImmNone,
	OpANDS:    ImmNone,
	OpTST:     ImmNone,
	OpORR:     ImmNone,
	OpEOR:     ImmNone,
	OpMVN:     ImmNone,
}

// Shape returns the immediate shape of an opcode.
func Shape(op Op) ImmShape {
	if op >= NumOps {
		return ImmNone
	}
	return immShapes[op]
}

// Extract returns the immediate value of an instruction word. Signed
// immediates are sign-extended to 64 bits; branch and page immediates are
// scaled to bytes.
func (s ImmShape) Extract(word uint32) uint64 {
	switch s {
	case ImmMoveWide:
		return uint64((word >> 5) & 0xFFFF)
	case ImmLoadStore:
		return uint64(signExtend(uint64((word>>12)&0x1FF), 9))
	case ImmShiftLeft:
		return 64 - uint64((word>>16)&0x3F)
	case ImmShiftRight:
		return uint64((word >> 16) & 0x3F)
	case ImmBranch26:
		return uint64(signExtend(uint64(word&0x3FFFFFF), 26) << 2)
	case ImmBranch19:
		return uint64(signExtend(uint64((word>>5)&0x7FFFF), 19) << 2)
	case ImmArith12:
		return uint64((word >> 10) & 0xFFF)
	case ImmPage:
		immlo := uint64((word >> 29) & 0x3)
		immhi := uint64((word >> 5) & 0x7FFFF)
		return uint64(signExtend(immhi<<2|immlo, 21) << 12)
	default:
		return 0
	}
}

// signExtend sign-extends the low bits of v.
func signExtend(v uint64, bits uint) int64 {
	shift := 64 - bits
	return int64(v<<shift) >> shift
}

// Instruction represents a decoded ARM64 instruction.
type Instruction struct {
	Op   Op     // Operation code
	Word uint32 // Raw instruction word

	// Register indices after layout resolution. Unused slots hold RegNone.
	Dst  uint8
	Src1 uint8
	Src2 uint8

	// Imm is the immediate value, sign-extended where the format is signed.
	Imm uint64

	// HW is the halfword shift in bits for MOVZ/MOVK (0, 16, 32 or 48).
	HW uint8

	// Cond is the condition of a B.cond; CondAL for every other opcode.
	Cond Cond

	// BranchOffset is the signed byte offset of B, BL and B.cond.
	BranchOffset int64
}

// Decoder decodes ARM64 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new ARM64 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Opcode returns the normalized opcode of an instruction word.
func (d *Decoder) Opcode(word uint32) Op {
	return NormalizeAlias(word, LookupOpcode(word))
}

// Decode decodes a 32-bit ARM64 instruction word.
func (d *Decoder) Decode(word uint32) *Instruction {
	return d.DecodeAs(word, d.Opcode(word))
}

// DecodeAs decodes the fields of an instruction word whose opcode has
// already been determined.
func (d *Decoder) DecodeAs(word uint32, op Op) *Instruction {
	layout := Layout(op)
	shape := Shape(op)

	inst := &Instruction{
		Op:   op,
		Word: word,
		Dst:  layout.Dst.Index(word),
		Src1: layout.Src1.Index(word),
		Src2: layout.Src2.Index(word),
		Imm:  shape.Extract(word),
		Cond: CondAL,
	}

	switch op {
	case OpMOVZ, OpMOVK:
		inst.HW = uint8((word>>21)&0x3) << 4
	case OpBCond:
		inst.Cond = Cond(word & 0xF)
	}

	if shape == ImmBranch26 || shape == ImmBranch19 {
		inst.BranchOffset = int64(inst.Imm)
	}

	return inst
}

// IsBranch returns true for the PC-relative branches predicted at fetch.
func IsBranch(op Op) bool {
	return op == OpB || op == OpBL || op == OpBCond
}
