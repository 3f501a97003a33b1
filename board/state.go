package board

type State uint8

const (
	// StateUnknown is when game state is unknown.
	StateUnknown State = iota

	// StateRunning is when game is on progress.
	StateRunning

	// StateCheck is when the King of the side to move is in check.
	StateCheck

	// StateCheckmate is when the side to move is in check and has no legal moves. The side to move loses.
	StateCheckmate

	// StateStalemate is when the side to move is not in check and has no legal moves. The side to move wins.
	StateStalemate

	// StateRepetition is when the current position has occurred three times with the same side to move.
	StateRepetition
)

func (s State) IsRunning() bool {
	switch s {
	case StateRunning, StateCheck:
		return true
	default:
		return false
	}
}

func (s State) IsTerminal() bool {
	switch s {
	case StateCheckmate, StateStalemate:
		return true
	default:
		return false
	}
}

// Winner returns the winning side given the side to move, or SideUnknown when
// the game is not decided.
func (s State) Winner(turn Side) Side {
	switch s {
	case StateCheckmate:
		return turn.Opposite()
	case StateStalemate:
		return turn
	default:
		return SideUnknown
	}
}

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "StateUnknown"
	case StateRunning:
		return "StateRunning"
	case StateCheck:
		return "StateCheck"
	case StateCheckmate:
		return "StateCheckmate"
	case StateStalemate:
		return "StateStalemate"
	case StateRepetition:
		return "StateRepetition"
	default:
		return ""
	}
}
