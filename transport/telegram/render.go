package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rocketscienceinc/tictactoe-bot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
)

const (
	callbackPrefix = "ttt"
	// callbackNoop marks cells that cannot be played any more.
	callbackNoop = callbackPrefix + ":noop"
	emptyLabel     = "·"

	textYourMove      = "Your move."
	textDraw          = "It's a draw!"
	textTimedOut      = "Game ended (timed out)."
	textBadDifficulty = "Invalid difficulty given (1-10)."
	textNotYourGame   = "This is not your game."
	textCellTaken     = "That cell is already taken."
	textInvalidCell   = "Invalid cell."
	textGameOver      = "This game is over."
	textAlreadyPlays  = "You already have a game in progress."
	textFailure       = "Something went wrong, try again."
)

var errBadCallback = errors.New("malformed callback data")

func renderText(snapshot entity.Snapshot) string {
	header := fmt.Sprintf("Tic Tac Toe — You are %s. Difficulty: %d", entity.PlayerMark, snapshot.Difficulty)

	return header + "\n\n" + statusLine(snapshot)
}

func statusLine(snapshot entity.Snapshot) string {
	switch {
	case snapshot.Status == entity.StatusExpired:
		return textTimedOut
	case snapshot.Outcome == entity.Draw:
		return textDraw
	case snapshot.Outcome.IsTerminal():
		return fmt.Sprintf("Game over — %s wins!", snapshot.Winner)
	default:
		return textYourMove
	}
}

// renderKeyboard lays the board out as buttons. Occupied cells and every cell of an ended game are inert.
func renderKeyboard(snapshot entity.Snapshot) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 3)
	ended := snapshot.Status.IsTerminal()

	for row := range 3 {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, 3)
		for col := range 3 {
			index := row*3 + col

			label := snapshot.Board[index].String()
			data := callbackData(snapshot.ID, index)

			if label == "" {
				label = emptyLabel
			} else {
				data = callbackNoop
			}

			if ended {
				data = callbackNoop
			}

			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(label, data))
		}

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func callbackData(sessionID string, index int) string {
	return callbackPrefix + ":" + sessionID + ":" + strconv.Itoa(index)
}

func parseCallbackData(data string) (string, int, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != callbackPrefix || parts[1] == "" {
		return "", 0, fmt.Errorf("%w: %q", errBadCallback, data)
	}

	index, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", errBadCallback, data)
	}

	return parts[1], index, nil
}

// userText turns a game error into the reply shown in the chat.
func userText(err error) string {
	switch {
	case errors.Is(err, apperror.ErrInvalidDifficulty):
		return textBadDifficulty
	case errors.Is(err, apperror.ErrNotYourGame):
		return textNotYourGame
	case errors.Is(err, apperror.ErrCellOccupied):
		return textCellTaken
	case errors.Is(err, apperror.ErrIndexOutOfRange), errors.Is(err, errBadCallback):
		return textInvalidCell
	case errors.Is(err, apperror.ErrGameAlreadyOver), errors.Is(err, apperror.ErrSessionNotFound):
		return textGameOver
	case errors.Is(err, apperror.ErrGameExpired):
		return textTimedOut
	case errors.Is(err, apperror.ErrGameAlreadyExists):
		return textAlreadyPlays
	default:
		return textFailure
	}
}
