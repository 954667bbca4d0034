package entity

import (
	"errors"
	"fmt"
)

const BoardSize = 9

var ErrInvalidMove = errors.New("invalid move")

// Cell is the occupancy of one board square.
type Cell uint8

const (
	EmptyCell Cell = iota
	PlayerMark
	OpponentMark
)

func (that Cell) String() string {
	switch that {
	case PlayerMark:
		return "X"
	case OpponentMark:
		return "O"
	default:
		return ""
	}
}

func (that Cell) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Cell) UnmarshalText(text []byte) error {
	switch string(text) {
	case "X":
		*that = PlayerMark
	case "O":
		*that = OpponentMark
	case "":
		*that = EmptyCell
	default:
		return fmt.Errorf("%w: unknown mark %q", ErrInvalidMove, text)
	}

	return nil
}

// Opposite returns the mark that moves after this one.
func (that Cell) Opposite() Cell {
	switch that {
	case PlayerMark:
		return OpponentMark
	case OpponentMark:
		return PlayerMark
	default:
		return EmptyCell
	}
}

// Board is a 3x3 grid stored row-major: row = index / 3, column = index % 3.
// It is a value type, so assigning or passing a Board copies every cell.
type Board [BoardSize]Cell

func InRange(index int) bool {
	return index >= 0 && index < BoardSize
}

// IsOccupied reports whether the cell at index holds a mark.
// Indexes outside the board are reported as occupied.
func (that *Board) IsOccupied(index int) bool {
	if !InRange(index) {
		return true
	}

	return that[index] != EmptyCell
}

// Place puts mark on an empty cell.
func (that *Board) Place(index int, mark Cell) error {
	if !InRange(index) {
		return fmt.Errorf("%w: cell %d is out of range", ErrInvalidMove, index)
	}

	if mark == EmptyCell {
		return fmt.Errorf("%w: cannot place an empty mark", ErrInvalidMove)
	}

	if that[index] != EmptyCell {
		return fmt.Errorf("%w: cell %d is already occupied", ErrInvalidMove, index)
	}

	that[index] = mark

	return nil
}

// LegalMoves lists the empty cells in ascending order.
func (that *Board) LegalMoves() []int {
	moves := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == EmptyCell {
			moves = append(moves, i)
		}
	}

	return moves
}

func (that *Board) Clone() Board {
	return *that
}

func (that *Board) Count(mark Cell) int {
	count := 0
	for _, cell := range that {
		if cell == mark {
			count++
		}
	}

	return count
}

func (that *Board) IsFull() bool {
	return that.Count(EmptyCell) == 0
}

// IsBalanced checks the alternation invariant: X always moves first,
// so X has the same number of marks as O or exactly one more.
func (that *Board) IsBalanced() bool {
	diff := that.Count(PlayerMark) - that.Count(OpponentMark)
	return diff == 0 || diff == 1
}
