package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-bot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-bot/internal/usecase"
)

var (
	errPlayerRequired = errors.New("player is required")
	errCellRequired   = errors.New("cell is required")
)

func (that *Server) handleNewGame(ctx context.Context, client *peer, msg *Message) error {
	log := that.logger.With("method", "handleNewGame")

	req, err := that.decodeRequest(client, msg)
	if err != nil {
		return err
	}

	difficulty := that.defaultDifficulty
	if req.Difficulty != nil {
		difficulty = *req.Difficulty
	}

	session, err := that.games.StartSession(ctx, req.Player.ID, difficulty)
	if err != nil {
		that.sendFailure(client, msg.Action, err)
		return nil
	}

	that.subscribe(client, session.ID())

	snapshot := session.Snapshot()
	that.send(client, msg.Action, ResponsePayload{Game: &snapshot})

	log.Info("game started", "session_id", session.ID(), "player_id", req.Player.ID)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, client *peer, msg *Message) error {
	req, err := that.decodeRequest(client, msg)
	if err != nil {
		return err
	}

	if req.Cell == nil {
		that.sendFailure(client, msg.Action, errCellRequired)
		return nil
	}

	session, err := that.findSession(ctx, req)
	if err != nil {
		that.sendFailure(client, msg.Action, err)
		return nil
	}

	that.subscribe(client, session.ID())

	snapshot, err := that.games.SubmitMove(ctx, session, req.Player.ID, *req.Cell)
	if err != nil {
		that.sendFailure(client, msg.Action, err)
		return nil
	}

	that.send(client, msg.Action, ResponsePayload{Game: &snapshot})

	return nil
}

func (that *Server) handleGameState(ctx context.Context, client *peer, msg *Message) error {
	req, err := that.decodeRequest(client, msg)
	if err != nil {
		return err
	}

	session, err := that.findSession(ctx, req)
	if err != nil {
		that.sendFailure(client, msg.Action, err)
		return nil
	}

	that.subscribe(client, session.ID())

	snapshot := session.Snapshot()
	that.send(client, msg.Action, ResponsePayload{Game: &snapshot})

	return nil
}

// decodeRequest answers malformed requests itself and returns their error for logging.
func (that *Server) decodeRequest(client *peer, msg *Message) (*RequestPayload, error) {
	var req RequestPayload

	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		that.sendError(client, msg.Action, "invalid payload")
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if req.Player == nil || req.Player.ID == "" {
		that.sendFailure(client, msg.Action, errPlayerRequired)
		return nil, errPlayerRequired
	}

	return &req, nil
}

func (that *Server) findSession(ctx context.Context, req *RequestPayload) (*usecase.Session, error) {
	if req.SessionID != "" {
		return that.games.Session(req.SessionID)
	}

	return that.games.ActiveSession(ctx, req.Player.ID)
}

func (that *Server) sendFailure(client *peer, action string, err error) {
	message := err.Error()

	if errors.Is(err, apperror.ErrInternal) || !isUserError(err) {
		that.logger.Error("request failed", "action", action, "error", err)
		message = apperror.ErrInternal.Error()
	}

	that.sendError(client, action, message)
}

func isUserError(err error) bool {
	for _, target := range []error{
		apperror.ErrInvalidDifficulty,
		apperror.ErrNotYourGame,
		apperror.ErrGameAlreadyOver,
		apperror.ErrGameExpired,
		apperror.ErrIndexOutOfRange,
		apperror.ErrCellOccupied,
		apperror.ErrSessionNotFound,
		apperror.ErrGameAlreadyExists,
		errPlayerRequired,
		errCellRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
