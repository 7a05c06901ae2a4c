package pipeline

// Directive tells a pipeline register what to do at the clock edge.
type Directive uint8

// Directives.
const (
	// DirectiveLoad advances the input to the output.
	DirectiveLoad Directive = iota
	// DirectiveBubble replaces the output with a no-op.
	DirectiveBubble
	// DirectiveStall keeps the output unchanged.
	DirectiveStall
	// DirectiveError is entered when bubble and stall are requested
	// together. It is never left.
	DirectiveError
)

var directiveNames = [...]string{"LOAD", "BUBBLE", "STALL", "ERROR"}

func (d Directive) String() string {
	if int(d) >= len(directiveNames) {
		return "???"
	}
	return directiveNames[d]
}

// Latch is a pipeline register. Stages read Out and write In during a cycle;
// Clock moves In to Out according to the directive.
type Latch[T any] struct {
	In  T
	Out T

	directive Directive
	bubble    T
}

// NewLatch creates a latch whose output starts as the bubble value.
func NewLatch[T any](bubble T) *Latch[T] {
	return &Latch[T]{
		In:     bubble,
		Out:    bubble,
		bubble: bubble,
	}
}

// Directive returns the directive applied at the next clock edge.
func (l *Latch[T]) Directive() Directive {
	return l.directive
}

// Control sets the directive for the next clock edge from the bubble and
// stall requests. A latch in the error state stays there.
func (l *Latch[T]) Control(bubble, stall bool) {
	if l.directive == DirectiveError {
		return
	}

	switch {
	case bubble && stall:
		l.directive = DirectiveError
	case bubble:
		l.directive = DirectiveBubble
	case stall:
		l.directive = DirectiveStall
	default:
		l.directive = DirectiveLoad
	}
}

// Clock applies the directive.
func (l *Latch[T]) Clock() {
	switch l.directive {
	case DirectiveLoad:
		l.Out = l.In
	case DirectiveBubble:
		l.Out = l.bubble
	}
}

// Reset empties the latch and clears the error state.
func (l *Latch[T]) Reset() {
	l.In = l.bubble
	l.Out = l.bubble
	l.directive = DirectiveLoad
}
