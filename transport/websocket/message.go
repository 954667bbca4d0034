package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
)

const (
	actionNewGame  = "game:new"
	actionTurn     = "game:turn"
	actionState    = "game:state"
	actionUpdate   = "game:update"
	actionFinished = "game:finished"
	actionExpired  = "game:expired"
	actionError    = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	Player     *entity.Player `json:"player,omitempty"`
	SessionID  string         `json:"session_id,omitempty"`
	Difficulty *int           `json:"difficulty,omitempty"`
	Cell       *int           `json:"cell,omitempty"`
}

type ResponsePayload struct {
	Game  *entity.Snapshot `json:"game,omitempty"`
	Move  *entity.Move     `json:"move,omitempty"`
	Error string           `json:"error,omitempty"`
}

func encodeMessage(action string, payload ResponsePayload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	message, err := json.Marshal(Message{Action: action, Payload: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return message, nil
}
