package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
	"github.com/rocketscienceinc/tictactoe-bot/internal/usecase"
)

const (
	commandStart = "tictactoe"
	eventBuffer  = 256
)

// botAPI is the part of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type gameService interface {
	StartSession(ctx context.Context, participantID string, difficulty int) (*usecase.Session, error)
	SubmitMove(ctx context.Context, session *usecase.Session, requesterID string, cell int) (entity.Snapshot, error)
	Session(id string) (*usecase.Session, error)
	Expire(ctx context.Context, session *usecase.Session) entity.Snapshot
}

type messageRef struct {
	chatID    int64
	messageID int
}

// Bot plays games in Telegram chats. Updates and session events are handled on the Run goroutine.
type Bot struct {
	logger            *slog.Logger
	api               botAPI
	games             gameService
	defaultDifficulty int
	updateTimeout     int

	events   chan usecase.Event
	messages map[string]messageRef
}

func New(logger *slog.Logger, api botAPI, games gameService, defaultDifficulty, updateTimeout int) *Bot {
	return &Bot{
		logger:            logger.With("component", "telegram"),
		api:               api,
		games:             games,
		defaultDifficulty: defaultDifficulty,
		updateTimeout:     updateTimeout,
		events:            make(chan usecase.Event, eventBuffer),
		messages:          make(map[string]messageRef),
	}
}

// Run receives updates until ctx is cancelled.
func (that *Bot) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	config := tgbotapi.NewUpdate(0)
	config.Timeout = that.updateTimeout

	updates := that.api.GetUpdatesChan(config)
	defer that.api.StopReceivingUpdates()

	log.Info("Telegram bot started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			that.handleUpdate(ctx, update)
		case event := <-that.events:
			that.handleEvent(event)
		}
	}
}

// Notify hands expiry events over to the Run goroutine. It never blocks.
func (that *Bot) Notify(event usecase.Event) {
	if event.Kind != usecase.EventExpired {
		return
	}

	select {
	case that.events <- event:
	default:
		that.logger.Warn("dropped expiry event", "session_id", event.Snapshot.ID)
	}
}

func (that *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		that.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand() && update.Message.Command() == commandStart:
		that.handleStart(ctx, update.Message)
	}
}

func (that *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	log := that.logger.With("method", "handleStart", "chat_id", msg.Chat.ID)

	if msg.From == nil {
		return
	}

	difficulty := that.defaultDifficulty
	if args := strings.TrimSpace(msg.CommandArguments()); args != "" {
		value, err := strconv.Atoi(args)
		if err != nil {
			that.reply(msg.Chat.ID, textBadDifficulty)
			return
		}

		difficulty = value
	}

	session, err := that.games.StartSession(ctx, participantID(msg.From), difficulty)
	if err != nil {
		if text := userText(err); text != textFailure {
			that.reply(msg.Chat.ID, text)
			return
		}

		log.Error("failed to start session", "error", err)
		that.reply(msg.Chat.ID, textFailure)

		return
	}

	snapshot := session.Snapshot()

	board := tgbotapi.NewMessage(msg.Chat.ID, renderText(snapshot))
	board.ReplyMarkup = renderKeyboard(snapshot)

	sent, err := that.api.Send(board)
	if err != nil {
		// the participant has no keyboard for this session
		that.games.Expire(ctx, session)
		log.Error("failed to send board", "session_id", session.ID(), "error", err)

		return
	}

	that.messages[session.ID()] = messageRef{chatID: msg.Chat.ID, messageID: sent.MessageID}

	log.Info("session started", "session_id", session.ID())
}

func (that *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	log := that.logger.With("method", "handleCallback")

	if query.Data == callbackNoop {
		that.answer(query.ID, "")
		return
	}

	sessionID, index, err := parseCallbackData(query.Data)
	if err != nil {
		that.answer(query.ID, textInvalidCell)
		return
	}

	session, err := that.games.Session(sessionID)
	if err != nil {
		that.answer(query.ID, userText(err))
		return
	}

	snapshot, err := that.games.SubmitMove(ctx, session, participantID(query.From), index)
	if err != nil {
		text := userText(err)
		if text == textFailure {
			log.Error("failed to submit move", "session_id", sessionID, "error", err)
		}

		that.answer(query.ID, text)

		return
	}

	that.answer(query.ID, "")

	ref, ok := that.messages[sessionID]
	if !ok && query.Message != nil {
		ref = messageRef{chatID: query.Message.Chat.ID, messageID: query.Message.MessageID}
		ok = true
	}

	if snapshot.Status.IsTerminal() {
		delete(that.messages, sessionID)
	}

	if ok {
		that.edit(ref, snapshot)
	}
}

func (that *Bot) handleEvent(event usecase.Event) {
	ref, ok := that.messages[event.Snapshot.ID]
	if !ok {
		return
	}

	delete(that.messages, event.Snapshot.ID)
	that.edit(ref, event.Snapshot)
}

func (that *Bot) edit(ref messageRef, snapshot entity.Snapshot) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(ref.chatID, ref.messageID, renderText(snapshot), renderKeyboard(snapshot))

	if _, err := that.api.Request(edit); err != nil {
		that.logger.Error("failed to edit board", "session_id", snapshot.ID, "error", err)
	}
}

func (that *Bot) reply(chatID int64, text string) {
	if _, err := that.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		that.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (that *Bot) answer(queryID, text string) {
	callback := tgbotapi.NewCallback(queryID, text)
	if text != "" {
		callback = tgbotapi.NewCallbackWithAlert(queryID, text)
	}

	if _, err := that.api.Request(callback); err != nil {
		that.logger.Error("failed to answer callback", "error", err)
	}
}

func participantID(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}

	return strconv.FormatInt(user.ID, 10)
}
