package sim

// CommandType enumerates the closed set of engine commands. Dispatch is a
// single switch in the loop, so adding a command is a compile-visible
// change.
type CommandType uint16

const (
	CommandUnknown CommandType = iota
	CommandStop
	CommandPause
	CommandStep
	CommandResume
	CommandSetSpeed
	CommandUpdateParams
)

// String returns the command's wire name.
func (t CommandType) String() string {
	switch t {
	case CommandStop:
		return "STOP"
	case CommandPause:
		return "PAUSE"
	case CommandStep:
		return "STEP"
	case CommandResume:
		return "RESUME"
	case CommandSetSpeed:
		return "UPDATE_SPEED"
	case CommandUpdateParams:
		return "UPDATE_PARAMS"
	default:
		return "UNKNOWN"
	}
}

// Command is an external control instruction. Commands mutate only the
// engine state and the strategy's parameter set, never the event queue, so
// they cannot drop or duplicate events.
type Command struct {
	Type   CommandType
	Speed  float64        // CommandSetSpeed
	Params map[string]any // CommandUpdateParams
}
