package entity

// Outcome is derived from a board and must be recomputed after every placement.
type Outcome uint8

const (
	InProgress Outcome = iota
	PlayerWin
	OpponentWin
	Draw
)

var WinCombos = [8][3]int{
	// rows
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	// columns
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	// diagonals
	{0, 4, 8},
	{2, 4, 6},
}

func (that Outcome) String() string {
	switch that {
	case PlayerWin:
		return "player_win"
	case OpponentWin:
		return "opponent_win"
	case Draw:
		return "draw"
	default:
		return "in_progress"
	}
}

func (that Outcome) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that Outcome) IsTerminal() bool {
	return that != InProgress
}

// Winner returns the mark that completed a line, or EmptyCell for a draw or an unfinished game.
func (that Outcome) Winner() Cell {
	switch that {
	case PlayerWin:
		return PlayerMark
	case OpponentWin:
		return OpponentMark
	default:
		return EmptyCell
	}
}

func winFor(mark Cell) Outcome {
	if mark == PlayerMark {
		return PlayerWin
	}

	return OpponentWin
}

// DetermineOutcome inspects the eight lines, then fullness.
func DetermineOutcome(board Board) Outcome {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return winFor(a)
		}
	}

	// the game continues until all the squares are full
	if !board.IsFull() {
		return InProgress
	}

	return Draw
}
