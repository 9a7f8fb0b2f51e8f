package trainer

import "io"

// Mode selects how workers interpret the shared claim counter. The counter's
// semantics are mode-dependent and must never be read under the wrong mode;
// the mode only changes while every worker is parked at the rendezvous.
type Mode int

const (
	// ModeTrain claims a budgeted number of uniformly random training
	// indices by decrementing the counter.
	ModeTrain Mode = iota
	// ModeEvaluate claims each evaluation-suffix index exactly once by
	// incrementing the counter.
	ModeEvaluate
)

func (m Mode) String() string {
	switch m {
	case ModeTrain:
		return "train"
	case ModeEvaluate:
		return "evaluate"
	default:
		return "unknown"
	}
}

// CommandKind is a single-character operator command.
type CommandKind byte

const (
	// CommandPrint dumps the current weight tensor; the command loop
	// continues afterwards and nothing is mutated.
	CommandPrint CommandKind = 'P'
	// CommandEvaluate switches to evaluation mode with a zeroed counter.
	CommandEvaluate CommandKind = 'E'
	// CommandTrain switches to training mode with a repetition request.
	CommandTrain CommandKind = 'R'
)

// Command is one operator instruction.
type Command struct {
	Kind CommandKind
	// Reps is the requested repetition count, CommandTrain only.
	Reps int64
}

// CommandSource yields the next operator command at each checkpoint. io.EOF
// ends the run cleanly. Sources are only ever called from the single elected
// controller, so implementations need no internal locking.
type CommandSource interface {
	Next() (Command, error)
}

// Script replays a fixed command sequence and then reports io.EOF. It backs
// scripted and programmatic runs.
type Script struct {
	commands []Command
	next     int
}

// NewScript returns a Script that yields the given commands in order.
func NewScript(commands ...Command) *Script {
	return &Script{commands: commands}
}

func (s *Script) Next() (Command, error) {
	if s.next >= len(s.commands) {
		return Command{}, io.EOF
	}
	cmd := s.commands[s.next]
	s.next++
	return cmd, nil
}
