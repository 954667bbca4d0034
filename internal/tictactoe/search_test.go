package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
)

const (
	x = entity.PlayerMark
	o = entity.OpponentMark
	e = entity.EmptyCell
)

func TestSearch(t *testing.T) {
	t.Run("Returns no move for an empty side to move", func(t *testing.T) {
		result := Search(entity.Board{0: x}, e)

		assert.Equal(t, NoMove, result.Index)
		assert.Zero(t, result.Score)
	})

	t.Run("Answers a corner opening with the center", func(t *testing.T) {
		// Given: X took the top-left corner
		board := entity.Board{0: x}

		// When: searching for the opponent's reply
		result := Search(board, o)

		// Then: the center is the only reply that keeps the draw
		assert.Equal(t, 4, result.Index)
		assert.Equal(t, 0, result.Score)
	})

	t.Run("Takes an immediate win", func(t *testing.T) {
		// Given: O can complete the middle row
		board := entity.Board{
			x, x, e,
			o, o, e,
			x, e, e,
		}

		// When: searching for O
		result := Search(board, o)

		// Then: O wins on cell 5 in one ply
		assert.Equal(t, 5, result.Index)
		assert.Equal(t, winScore-1, result.Score)
	})

	t.Run("Blocks an immediate loss", func(t *testing.T) {
		// Given: X threatens the top row
		board := entity.Board{
			x, x, e,
			e, o, e,
			e, e, e,
		}

		result := Search(board, o)

		assert.Equal(t, 2, result.Index)
	})

	t.Run("Breaks ties by the lowest index", func(t *testing.T) {
		// Given: O wins on either 2 (row) or 6 (column)
		board := entity.Board{
			o, o, e,
			o, x, x,
			e, x, x,
		}

		result := Search(board, o)

		assert.Equal(t, 2, result.Index)
		assert.Equal(t, winScore-1, result.Score)
	})

	t.Run("Minimizes for the player", func(t *testing.T) {
		// Given: X can complete the left column
		board := entity.Board{
			x, o, o,
			x, e, e,
			e, e, e,
		}

		result := Search(board, x)

		assert.Equal(t, 6, result.Index)
		assert.Equal(t, 1-winScore, result.Score)
	})

	t.Run("Reports the terminal score of a decided board", func(t *testing.T) {
		board := entity.Board{
			x, x, x,
			o, o, e,
			e, e, e,
		}

		result := Search(board, o)

		assert.Equal(t, NoMove, result.Index)
		assert.Equal(t, -winScore, result.Score)
	})

	t.Run("Does not mutate the board", func(t *testing.T) {
		board := entity.Board{0: x, 4: o, 8: x}
		before := board

		Search(board, o)

		assert.Equal(t, before, board)
	})
}

func TestSearch_LastEmptyCell(t *testing.T) {
	// Given: every reachable board with one empty cell and no winner
	checked := 0

	var walk func(board entity.Board, toMove entity.Cell)
	walk = func(board entity.Board, toMove entity.Cell) {
		if entity.DetermineOutcome(board).IsTerminal() {
			return
		}

		moves := board.LegalMoves()
		if len(moves) == 1 {
			checked++

			// When: searching the final move
			result := Search(board, toMove)

			// Then: it is the last cell with a terminal score of a draw or an X win
			require.Equal(t, moves[0], result.Index)
			if result.Score != 0 && result.Score != 1-winScore {
				require.FailNow(t, "unexpected score", "board %v score %d", board, result.Score)
			}

			return
		}

		for _, index := range moves {
			next := board
			next[index] = toMove
			walk(next, toMove.Opposite())
		}
	}

	walk(entity.Board{}, x)

	assert.Positive(t, checked)
}
