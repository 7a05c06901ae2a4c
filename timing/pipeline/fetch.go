package pipeline

import (
	"log/slog"

	"github.com/sarchlab/armpipe/emu"
	"github.com/sarchlab/armpipe/insts"
)

// Redirect names the rule that chose the fetch address.
type Redirect uint8

// Fetch address selections, in priority order.
const (
	RedirectNone Redirect = iota
	RedirectHalt
	RedirectReturn
	RedirectMispredict
)

var redirectNames = [...]string{"predicted", "halt", "return", "mispredict"}

func (r Redirect) String() string {
	if int(r) >= len(redirectNames) {
		return "???"
	}
	return redirectNames[r]
}

// FetchUnit selects the fetch address, reads the instruction word and
// predicts the next PC. Branches are predicted taken.
type FetchUnit struct {
	port           emu.InstructionPort
	decoder        *insts.Decoder
	returnFromMain uint64
}

// NewFetchUnit creates a fetch unit reading through port. A RET whose target
// equals returnFromMain halts the program.
func NewFetchUnit(port emu.InstructionPort, returnFromMain uint64) *FetchUnit {
	return &FetchUnit{
		port:           port,
		decoder:        insts.NewDecoder(),
		returnFromMain: returnFromMain,
	}
}

// SelectPC picks the address to fetch. decoded is the output register of
// decode (a RET there carries its resolved target) and executed is the
// output register of execute (a B.cond there carries its condition result).
func (u *FetchUnit) SelectPC(
	predPC uint64,
	decoded *IDEXRegister,
	executed *EXMEMRegister,
) (uint64, Redirect) {
	if decoded.Status == StatusOK && decoded.Op == insts.OpRET {
		if decoded.ValA == u.returnFromMain {
			return 0, RedirectHalt
		}
		return decoded.ValA, RedirectReturn
	}

	if executed.Status == StatusOK && executed.Op == insts.OpBCond &&
		!executed.CondHolds {
		return executed.SeqSuccPC, RedirectMispredict
	}

	return predPC, RedirectNone
}

// Fetch reads the instruction at pc and returns the decode input and the
// next fetch register.
func (u *FetchUnit) Fetch(pc uint64) (IFIDRegister, FetchRegister) {
	out := IFIDRegister{
		Status:    StatusOK,
		PC:        pc,
		SeqSuccPC: pc + 4,
	}

	if pc == 0 {
		out.InstructionWord = insts.WordHLT
		out.Op = insts.OpHLT
		out.Status = StatusHalted
		return out, FetchRegister{PredPC: 0, Status: StatusHalted}
	}

	word, err := u.port.Read(pc)
	if err != nil {
		slog.Debug("instruction fetch failed", "pc", pc, "err", err)
		out.Op = insts.OpUnknown
		out.Status = StatusInvalidInstruction
		return out, FetchRegister{PredPC: out.SeqSuccPC, Status: out.Status}
	}

	out.InstructionWord = word
	out.Op = u.decoder.Opcode(word)

	switch {
	case out.Op == insts.OpUnknown:
		out.Status = StatusInvalidInstruction
	case out.Op == insts.OpHLT:
		out.Status = StatusHalted
		return out, FetchRegister{PredPC: 0, Status: StatusHalted}
	}

	next := FetchRegister{PredPC: out.SeqSuccPC, Status: out.Status}
	if out.Status == StatusOK && insts.IsBranch(out.Op) {
		inst := u.decoder.DecodeAs(word, out.Op)
		next.PredPC = emu.BranchTarget(pc, inst.BranchOffset)
	}

	return out, next
}
