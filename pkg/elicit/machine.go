package elicit

import (
	"errors"
	"fmt"

	"github.com/aretw0/elicitation/pkg/domain"
)

// ErrIllegalTransition is returned by Machine for a transition the protocol does not allow.
var ErrIllegalTransition = errors.New("illegal transition")

// State is the position of one leaf elicitation in the round protocol.
type State int

const (
	NotStarted State = iota
	AwaitingResponse
	Validating
	Satisfied
	Retrying
	Terminal
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case AwaitingResponse:
		return "awaiting_response"
	case Validating:
		return "validating"
	case Satisfied:
		return "satisfied"
	case Retrying:
		return "retrying"
	case Terminal:
		return "terminal"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var transitions = map[State][]State{
	NotStarted:       {AwaitingResponse},
	AwaitingResponse: {Validating},
	Validating:       {Satisfied, Retrying},
	Retrying:         {AwaitingResponse},
}

// terminalFrom lists the states each outcome may be reached from.
// Cancellation is legal from every non-terminal state and is not listed.
var terminalFrom = map[domain.Outcome][]State{
	domain.OutcomeSuccess:   {Satisfied},
	domain.OutcomeExhausted: {Retrying},
	domain.OutcomeFailed:    {NotStarted, AwaitingResponse, Validating, Retrying},
}

// Machine tracks the protocol state of a single leaf and counts the
// responses validated against the attempt budget. It is not safe for
// concurrent use; every leaf owns its own machine.
type Machine struct {
	state    State
	outcome  domain.Outcome
	attempts int
	max      int
}

// NewMachine returns a machine in NotStarted that allows maxAttempts
// validated responses. Values below one are treated as one.
func NewMachine(maxAttempts int) *Machine {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Machine{state: NotStarted, max: maxAttempts}
}

func (m *Machine) State() State { return m.state }

// Outcome is empty until the machine is Terminal.
func (m *Machine) Outcome() domain.Outcome { return m.outcome }

// Attempts is the number of responses that reached Validating.
func (m *Machine) Attempts() int { return m.attempts }

// Exhausted reports whether the attempt budget is spent.
func (m *Machine) Exhausted() bool { return m.attempts >= m.max }

// Transition moves to a non-terminal state.
func (m *Machine) Transition(to State) error {
	if to == Terminal {
		return fmt.Errorf("%w: use Terminate to reach %s", ErrIllegalTransition, to)
	}
	for _, legal := range transitions[m.state] {
		if legal == to {
			if to == Validating {
				m.attempts++
			}
			m.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.state, to)
}

// Terminate moves to Terminal with the given outcome.
func (m *Machine) Terminate(o domain.Outcome) error {
	if m.state == Terminal {
		return fmt.Errorf("%w: already terminal (%s)", ErrIllegalTransition, m.outcome)
	}
	legal := o == domain.OutcomeCancelled
	for _, from := range terminalFrom[o] {
		if from == m.state {
			legal = true
		}
	}
	if o == domain.OutcomeExhausted && !m.Exhausted() {
		legal = false
	}
	if !legal {
		return fmt.Errorf("%w: %s -> terminal(%s)", ErrIllegalTransition, m.state, o)
	}
	m.state = Terminal
	m.outcome = o
	return nil
}
