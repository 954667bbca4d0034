package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
	"github.com/rocketscienceinc/tictactoe-bot/internal/usecase"
)

type gameService interface {
	StartSession(ctx context.Context, participantID string, difficulty int) (*usecase.Session, error)
	SubmitMove(ctx context.Context, session *usecase.Session, requesterID string, cell int) (entity.Snapshot, error)
	Session(id string) (*usecase.Session, error)
	ActiveSession(ctx context.Context, participantID string) (*usecase.Session, error)
}

type handler func(ctx context.Context, client *peer, message *Message) error

type Server struct {
	logger            *slog.Logger
	games             gameService
	defaultDifficulty int
	upgrader          websocket.Upgrader

	handlers map[string]handler

	mu          sync.RWMutex
	subscribers map[string]map[*peer]struct{}
}

func New(logger *slog.Logger, games gameService, defaultDifficulty int) *Server {
	server := &Server{
		logger:            logger.With("component", "websocket"),
		games:             games,
		defaultDifficulty: defaultDifficulty,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},

		handlers:    make(map[string]handler),
		subscribers: make(map[string]map[*peer]struct{}),
	}

	server.handlers[actionNewGame] = server.handleNewGame
	server.handlers[actionTurn] = server.handleGameTurn
	server.handlers[actionState] = server.handleGameState

	return server
}

// ServeHTTP upgrades the connection and serves it until the client leaves.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	client := newPeer(conn)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)

		if err := client.writePump(); err != nil {
			log.Debug("writer stopped", "error", err)
		}
	}()

	log.Info("WebSocket connection established")

	if err = that.handleMessages(r.Context(), client); err != nil && !isClosed(err) {
		log.Error("error handling messages", "error", err)
	}

	that.unsubscribeAll(client)
	client.close()
	<-writerDone
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, client *peer) error {
	log := that.logger.With("method", "handleMessages")

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, body, err := client.conn.ReadMessage()
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(body, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			that.sendError(client, actionError, "invalid message")
			continue
		}

		handle, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendError(client, message.Action, "unknown action")
			continue
		}

		if err = handle(ctx, client, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// Notify pushes session events to the subscribed connections. It never blocks.
func (that *Server) Notify(event usecase.Event) {
	action := actionUpdate
	payload := ResponsePayload{Game: &event.Snapshot}

	switch event.Kind {
	case usecase.EventMove:
		move := event.Move
		payload.Move = &move
	case usecase.EventFinished:
		action = actionFinished
	case usecase.EventExpired:
		action = actionExpired
	}

	message, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to encode event", "error", err)
		return
	}

	sessionID := event.Snapshot.ID

	that.mu.Lock()
	defer that.mu.Unlock()

	for client := range that.subscribers[sessionID] {
		if !client.enqueue(message) {
			that.logger.Warn("dropped event for slow connection", "session_id", sessionID, "action", action)
		}

		if event.Kind != usecase.EventMove {
			delete(client.sessions, sessionID)
		}
	}

	if event.Kind != usecase.EventMove {
		delete(that.subscribers, sessionID)
	}
}

func (that *Server) subscribe(client *peer, sessionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	clients, ok := that.subscribers[sessionID]
	if !ok {
		clients = make(map[*peer]struct{})
		that.subscribers[sessionID] = clients
	}

	clients[client] = struct{}{}
	client.sessions[sessionID] = struct{}{}
}

func (that *Server) unsubscribeAll(client *peer) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for sessionID := range client.sessions {
		delete(that.subscribers[sessionID], client)
		if len(that.subscribers[sessionID]) == 0 {
			delete(that.subscribers, sessionID)
		}
	}

	clear(client.sessions)
}

func (that *Server) send(client *peer, action string, payload ResponsePayload) {
	message, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to encode response", "error", err)
		return
	}

	if !client.enqueue(message) {
		that.logger.Warn("dropped response for slow connection", "action", action)
	}
}

func (that *Server) sendError(client *peer, action, message string) {
	that.send(client, action, ResponsePayload{Error: message})
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, websocket.ErrCloseSent)
}
