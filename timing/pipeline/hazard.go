package pipeline

import "github.com/sarchlab/armpipe/insts"

// Hazard is the condition the hazard controller resolved in a cycle.
type Hazard uint8

// Hazards, in the order they are checked.
const (
	HazardNone Hazard = iota
	// HazardMispredict is a B.cond in execute whose condition failed.
	HazardMispredict
	// HazardLoadUse is a load in execute feeding the instruction in decode.
	HazardLoadUse
	// HazardReturn is a RET in decode.
	HazardReturn
)

var hazardNames = [...]string{"none", "mispredict", "load-use", "return"}

func (h Hazard) String() string {
	if int(h) >= len(hazardNames) {
		return "???"
	}
	return hazardNames[h]
}

// Stage identifies a pipeline register by the stage that consumes it.
type Stage uint8

// Stages.
const (
	StageFetch Stage = iota
	StageDecode
	StageExecute
	StageMemory
	StageWriteback

	// NumStages is the number of pipeline stages.
	NumStages
)

var stageNames = [NumStages]string{"F", "D", "X", "M", "W"}

func (s Stage) String() string {
	if s >= NumStages {
		return "?"
	}
	return stageNames[s]
}

// Request is the bubble and stall request for one pipeline register.
type Request struct {
	Bubble bool
	Stall  bool
}

// Requests holds one request per pipeline register.
type Requests [NumStages]Request

// HazardSnapshot is what the hazard controller sees of the current cycle.
type HazardSnapshot struct {
	// DecodeOp and DecodeStatus describe the instruction in decode.
	DecodeOp     insts.Op
	DecodeStatus Status

	// DecodeSrc1 and DecodeSrc2 are its source registers.
	DecodeSrc1 uint8
	DecodeSrc2 uint8

	// ExecuteOp, ExecuteStatus and ExecuteDst describe the instruction in
	// execute.
	ExecuteOp     insts.Op
	ExecuteStatus Status
	ExecuteDst    uint8

	// BranchNotTaken is set when execute resolved a B.cond as not taken.
	BranchNotTaken bool
}

// HazardController decides which pipeline registers advance, stall or
// bubble each cycle. Exactly one hazard is acted on per cycle: a
// misprediction first, then a load-use dependency, then a RET.
type HazardController struct{}

// NewHazardController creates a hazard controller.
func NewHazardController() *HazardController {
	return &HazardController{}
}

// Detect returns the hazard to act on.
func (h *HazardController) Detect(s HazardSnapshot) Hazard {
	switch {
	case s.BranchNotTaken:
		return HazardMispredict
	case h.loadUse(s):
		return HazardLoadUse
	case s.DecodeStatus == StatusOK && s.DecodeOp == insts.OpRET:
		return HazardReturn
	default:
		return HazardNone
	}
}

func (h *HazardController) loadUse(s HazardSnapshot) bool {
	if s.ExecuteStatus != StatusOK || s.ExecuteOp != insts.OpLDUR ||
		s.ExecuteDst == insts.RegNone {
		return false
	}

	return s.ExecuteDst == s.DecodeSrc1 || s.ExecuteDst == s.DecodeSrc2
}

// Requests returns the per-register requests that resolve a hazard.
func (h *HazardController) Requests(hazard Hazard) Requests {
	var r Requests

	switch hazard {
	case HazardMispredict:
		r[StageDecode].Bubble = true
		r[StageExecute].Bubble = true
	case HazardLoadUse:
		r[StageFetch].Stall = true
		r[StageDecode].Stall = true
		r[StageExecute].Bubble = true
	case HazardReturn:
		r[StageDecode].Bubble = true
	}

	return r
}

// Resolve detects the hazard of a cycle and returns it with its requests.
func (h *HazardController) Resolve(s HazardSnapshot) (Hazard, Requests) {
	hazard := h.Detect(s)
	return hazard, h.Requests(hazard)
}
