package pipeline

// Status is the condition of the instruction held in a pipeline register.
type Status uint8

// Pipeline statuses.
const (
	// StatusOK is a normally executing instruction.
	StatusOK Status = iota
	// StatusBubble is an injected no-op.
	StatusBubble
	// StatusInvalidInstruction marks an unknown opcode, a bad fetch address
	// or a misaligned return target.
	StatusInvalidInstruction
	// StatusMisalignedAccess marks a data access outside the data region or
	// not a multiple of 8.
	StatusMisalignedAccess
	// StatusHalted marks the halt instruction that ends the simulation.
	StatusHalted
)

var statusNames = [...]string{"AOK", "BUB", "INS", "ADR", "HLT"}

func (s Status) String() string {
	if int(s) >= len(statusNames) {
		return "???"
	}
	return statusNames[s]
}

// Live returns true for statuses that allow the pipeline to keep running.
func (s Status) Live() bool {
	return s == StatusOK || s == StatusBubble
}

// Faulted returns true if the instruction failed.
func (s Status) Faulted() bool {
	return s == StatusInvalidInstruction || s == StatusMisalignedAccess
}
