package emu

import "github.com/sarchlab/armpipe/insts"

// PSTATE represents the processor state flags.
type PSTATE struct {
	// N is the negative flag.
	N bool
	// Z is the zero flag.
	Z bool
	// C is the carry flag.
	C bool
	// V is the overflow flag.
	V bool
}

// String formats the flags as NZCV with clear flags shown as '-'.
func (p PSTATE) String() string {
	b := []byte("----")
	if p.N {
		b[0] = 'N'
	}
	if p.Z {
		b[1] = 'Z'
	}
	if p.C {
		b[2] = 'C'
	}
	if p.V {
		b[3] = 'V'
	}
	return string(b)
}

// CheckCondition evaluates an ARM64 condition code against the flags.
func (p PSTATE) CheckCondition(cond insts.Cond) bool {
	switch cond {
	case insts.CondEQ:
		return p.Z
	case insts.CondNE:
		return !p.Z
	case insts.CondCS:
		return p.C
	case insts.CondCC:
		return !p.C
	case insts.CondMI:
		return p.N
	case insts.CondPL:
		return !p.N
	case insts.CondVS:
		return p.V
	case insts.CondVC:
		return !p.V
	case insts.CondHI:
		// Unsigned higher: C == 1 && Z == 0
		return p.C && !p.Z
	case insts.CondLS:
		// Unsigned lower or same: C == 0 || Z == 1
		return !p.C || p.Z
	case insts.CondGE:
		return p.N == p.V
	case insts.CondLT:
		return p.N != p.V
	case insts.CondGT:
		// Signed greater than: Z == 0 && N == V
		return !p.Z && (p.N == p.V)
	case insts.CondLE:
		// Signed less than or equal: Z == 1 || N != V
		return p.Z || (p.N != p.V)
	case insts.CondAL, insts.CondNV:
		return true
	default:
		return false
	}
}

// BranchTarget returns the address reached by a PC-relative branch.
func BranchTarget(pc uint64, offset int64) uint64 {
	return uint64(int64(pc) + offset)
}
