package tictactoe

import "github.com/rocketscienceinc/tictactoe-bot/internal/entity"

// winScore is the value of an immediate win; every extra ply costs one point,
// so faster wins and slower losses are preferred.
const winScore = 10

// NoMove is the index reported for a board that is already decided.
const NoMove = -1

type Result struct {
	Index int
	Score int
}

// Search runs an exhaustive minimax from the given position. The opponent (O)
// maximizes and the player (X) minimizes. Among equal scores the lowest index wins.
// The board is taken by value and each ply works on its own copy.
// A toMove that is not a mark yields NoMove.
func Search(board entity.Board, toMove entity.Cell) Result {
	if toMove != entity.PlayerMark && toMove != entity.OpponentMark {
		return Result{Index: NoMove}
	}

	return search(board, toMove, 0)
}

func search(board entity.Board, toMove entity.Cell, depth int) Result {
	switch entity.DetermineOutcome(board) {
	case entity.OpponentWin:
		return Result{Index: NoMove, Score: winScore - depth}
	case entity.PlayerWin:
		return Result{Index: NoMove, Score: depth - winScore}
	case entity.Draw:
		return Result{Index: NoMove, Score: 0}
	case entity.InProgress:
	}

	best := Result{Index: NoMove}
	for _, index := range board.LegalMoves() {
		next := board
		next[index] = toMove

		score := search(next, toMove.Opposite(), depth+1).Score
		if best.Index == NoMove || prefers(toMove, score, best.Score) {
			best = Result{Index: index, Score: score}
		}
	}

	return best
}

func prefers(toMove entity.Cell, score, best int) bool {
	if toMove == entity.OpponentMark {
		return score > best
	}

	return score < best
}
