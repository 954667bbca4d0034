package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-bot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
	"github.com/rocketscienceinc/tictactoe-bot/internal/usecase"
)

var (
	errParticipantRequired = errors.New("participant_id is required")
	errCellRequired        = errors.New("cell is required")
	errBadBody             = errors.New("invalid request body")
)

type SessionHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Move(w http.ResponseWriter, r *http.Request)
}

type gameService interface {
	StartSession(ctx context.Context, participantID string, difficulty int) (*usecase.Session, error)
	SubmitMove(ctx context.Context, session *usecase.Session, requesterID string, cell int) (entity.Snapshot, error)
	Session(id string) (*usecase.Session, error)
}

type sessionHandler struct {
	logger            *slog.Logger
	games             gameService
	defaultDifficulty int
}

func NewSessionHandler(logger *slog.Logger, games gameService, defaultDifficulty int) SessionHandler {
	return &sessionHandler{
		logger:            logger.With("component", "rest"),
		games:             games,
		defaultDifficulty: defaultDifficulty,
	}
}

type createSessionRequest struct {
	ParticipantID string `json:"participant_id"`
	Difficulty    *int   `json:"difficulty"`
}

type moveRequest struct {
	ParticipantID string `json:"participant_id"`
	Cell          *int   `json:"cell"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *sessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, errBadBody)
		return
	}

	if req.ParticipantID == "" {
		that.writeError(w, errParticipantRequired)
		return
	}

	difficulty := that.defaultDifficulty
	if req.Difficulty != nil {
		difficulty = *req.Difficulty
	}

	session, err := that.games.StartSession(r.Context(), req.ParticipantID, difficulty)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, session.Snapshot())
}

func (that *sessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := that.games.Session(chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, session.Snapshot())
}

func (that *sessionHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, errBadBody)
		return
	}

	if req.Cell == nil {
		that.writeError(w, errCellRequired)
		return
	}

	session, err := that.games.Session(chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	snapshot, err := that.games.SubmitMove(r.Context(), session, req.ParticipantID, *req.Cell)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *sessionHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *sessionHandler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
		message = http.StatusText(status)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrInvalidDifficulty),
		errors.Is(err, apperror.ErrIndexOutOfRange),
		errors.Is(err, errBadBody),
		errors.Is(err, errParticipantRequired),
		errors.Is(err, errCellRequired):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotYourGame):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrGameAlreadyOver),
		errors.Is(err, apperror.ErrGameExpired),
		errors.Is(err, apperror.ErrGameAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
