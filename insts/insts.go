// Package insts provides ARM64 instruction definitions and decoding.
//
// Only the subset executed by the pipeline is modeled:
//   - Branches: B, BL, B.cond, RET
//   - Memory: LDUR, STUR (64-bit, unscaled signed offset)
//   - Immediate arithmetic: ADD, SUB (12-bit immediate), ADRP
//   - Move wide: MOVZ, MOVK
//   - Shifts: LSL, LSR (UBFM aliases), ASR
//   - Register-register: ADDS, SUBS, CMP, ANDS, TST, ORR, EOR, MVN
//   - System: NOP, HLT
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x91002820) // ADD X0, X1, #10
//	fmt.Printf("Op: %v, Dst: %d, Src1: %d, Imm: %d\n", inst.Op, inst.Dst, inst.Src1, inst.Imm)
package insts
