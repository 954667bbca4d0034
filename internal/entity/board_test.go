package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_Place(t *testing.T) {
	t.Run("Places a mark on an empty cell", func(t *testing.T) {
		// Given: an empty board
		var board Board

		// When: placing X on the center
		err := board.Place(4, PlayerMark)

		// Then: the cell holds X and nothing else changed
		require.NoError(t, err)
		assert.True(t, board.IsOccupied(4))
		assert.Equal(t, 1, board.Count(PlayerMark))
		assert.Equal(t, 8, board.Count(EmptyCell))
	})

	t.Run("Rejects an occupied cell", func(t *testing.T) {
		// Given: a board with X on cell 0
		board := Board{PlayerMark}

		// When: placing O on the same cell
		err := board.Place(0, OpponentMark)

		// Then: ErrInvalidMove is returned and the cell still holds X
		require.ErrorIs(t, err, ErrInvalidMove)
		assert.Equal(t, PlayerMark, board[0])
	})

	t.Run("Rejects indexes outside the board", func(t *testing.T) {
		var board Board

		require.ErrorIs(t, board.Place(-1, PlayerMark), ErrInvalidMove)
		require.ErrorIs(t, board.Place(9, PlayerMark), ErrInvalidMove)
		assert.Equal(t, Board{}, board)
	})

	t.Run("Rejects an empty mark", func(t *testing.T) {
		var board Board

		require.ErrorIs(t, board.Place(3, EmptyCell), ErrInvalidMove)
	})
}

func TestBoard_IsOccupied(t *testing.T) {
	board := Board{
		PlayerMark, EmptyCell, EmptyCell,
		EmptyCell, OpponentMark, EmptyCell,
		EmptyCell, EmptyCell, EmptyCell,
	}

	assert.True(t, board.IsOccupied(0))
	assert.False(t, board.IsOccupied(1))
	assert.True(t, board.IsOccupied(4))
	assert.True(t, board.IsOccupied(42), "indexes outside the board are never free")
}

func TestBoard_LegalMoves(t *testing.T) {
	t.Run("Lists empty cells in ascending order", func(t *testing.T) {
		// Given: a board with three marks
		board := Board{
			PlayerMark, EmptyCell, EmptyCell,
			EmptyCell, OpponentMark, EmptyCell,
			EmptyCell, EmptyCell, PlayerMark,
		}

		// When: listing the legal moves
		moves := board.LegalMoves()

		// Then: only the empty cells are returned
		assert.Equal(t, []int{1, 2, 3, 5, 6, 7}, moves)
	})

	t.Run("Is recomputed after a placement", func(t *testing.T) {
		var board Board
		require.Len(t, board.LegalMoves(), BoardSize)

		require.NoError(t, board.Place(2, PlayerMark))

		assert.NotContains(t, board.LegalMoves(), 2)
		assert.Len(t, board.LegalMoves(), BoardSize-1)
	})

	t.Run("Is empty for a full board", func(t *testing.T) {
		board := Board{
			PlayerMark, OpponentMark, PlayerMark,
			PlayerMark, OpponentMark, OpponentMark,
			OpponentMark, PlayerMark, PlayerMark,
		}

		assert.Empty(t, board.LegalMoves())
		assert.True(t, board.IsFull())
	})
}

func TestBoard_Clone(t *testing.T) {
	// Given: a board and its clone
	board := Board{PlayerMark}
	clone := board.Clone()

	// When: the clone is modified
	require.NoError(t, clone.Place(4, OpponentMark))

	// Then: the original board is untouched
	assert.Equal(t, EmptyCell, board[4])
	assert.Equal(t, OpponentMark, clone[4])
}

func TestBoard_IsBalanced(t *testing.T) {
	assert.True(t, (&Board{}).IsBalanced())
	assert.True(t, (&Board{PlayerMark}).IsBalanced())
	assert.True(t, (&Board{PlayerMark, OpponentMark}).IsBalanced())
	assert.False(t, (&Board{OpponentMark}).IsBalanced())
	assert.False(t, (&Board{PlayerMark, PlayerMark}).IsBalanced())
}

func TestBoard_JSON(t *testing.T) {
	board := Board{PlayerMark, OpponentMark}

	data, err := json.Marshal(board)
	require.NoError(t, err)
	assert.JSONEq(t, `["X","O","","","","","","",""]`, string(data))

	var decoded Board
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, board, decoded)
}
