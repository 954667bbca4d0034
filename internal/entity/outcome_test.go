package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineOutcome(t *testing.T) {
	t.Run("Returns PlayerWin on the main diagonal", func(t *testing.T) {
		// Given: X on 0, 2, 4, 8 and O on 1, 3, 5
		board := Board{
			PlayerMark, OpponentMark, PlayerMark,
			OpponentMark, PlayerMark, OpponentMark,
			EmptyCell, EmptyCell, PlayerMark,
		}

		// When: determining the outcome
		outcome := DetermineOutcome(board)

		// Then: X wins via {0,4,8}
		assert.Equal(t, PlayerWin, outcome)
		assert.Equal(t, PlayerMark, outcome.Winner())
	})

	t.Run("Returns OpponentWin on a column", func(t *testing.T) {
		board := Board{
			PlayerMark, OpponentMark, PlayerMark,
			EmptyCell, OpponentMark, PlayerMark,
			EmptyCell, OpponentMark, EmptyCell,
		}

		outcome := DetermineOutcome(board)

		assert.Equal(t, OpponentWin, outcome)
		assert.Equal(t, OpponentMark, outcome.Winner())
	})

	t.Run("Returns Draw for a full board without a line", func(t *testing.T) {
		board := Board{
			PlayerMark, OpponentMark, PlayerMark,
			PlayerMark, OpponentMark, OpponentMark,
			OpponentMark, PlayerMark, PlayerMark,
		}

		outcome := DetermineOutcome(board)

		assert.Equal(t, Draw, outcome)
		assert.Equal(t, EmptyCell, outcome.Winner())
	})

	t.Run("Prefers a win over a draw on a full board", func(t *testing.T) {
		board := Board{
			PlayerMark, OpponentMark, PlayerMark,
			OpponentMark, PlayerMark, OpponentMark,
			OpponentMark, PlayerMark, PlayerMark,
		}

		assert.Equal(t, PlayerWin, DetermineOutcome(board))
	})

	t.Run("Returns InProgress otherwise", func(t *testing.T) {
		board := Board{
			PlayerMark, OpponentMark, EmptyCell,
			EmptyCell, PlayerMark, EmptyCell,
			EmptyCell, EmptyCell, OpponentMark,
		}

		assert.Equal(t, InProgress, DetermineOutcome(board))
		assert.False(t, DetermineOutcome(board).IsTerminal())
	})

	t.Run("Detects every line for both marks", func(t *testing.T) {
		for _, combo := range WinCombos {
			for _, mark := range []Cell{PlayerMark, OpponentMark} {
				var board Board
				for _, i := range combo {
					board[i] = mark
				}

				assert.Equal(t, mark, DetermineOutcome(board).Winner(), "combo %v", combo)
			}
		}
	})
}

// winningMarks collects every distinct mark that owns a complete line.
func winningMarks(board Board) map[Cell]struct{} {
	marks := make(map[Cell]struct{})
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			marks[a] = struct{}{}
		}
	}

	return marks
}

func TestDetermineOutcome_ReachableBoardsHaveOneWinner(t *testing.T) {
	// Given: every board reachable by alternating play that stops at a decided outcome
	visited := 0

	var walk func(board Board, toMove Cell)
	walk = func(board Board, toMove Cell) {
		visited++

		// Then: no reachable board has two distinct winning marks
		if len(winningMarks(board)) > 1 || !board.IsBalanced() {
			require.FailNow(t, "unexpected reachable board", "board %v", board)
		}

		if DetermineOutcome(board).IsTerminal() {
			return
		}

		for _, index := range board.LegalMoves() {
			next := board.Clone()
			next[index] = toMove
			walk(next, toMove.Opposite())
		}
	}

	walk(Board{}, PlayerMark)

	// 549946 nodes in the full game tree, including the root
	assert.Equal(t, 549946, visited)
}
