package usecase

import "github.com/rocketscienceinc/tictactoe-bot/internal/entity"

type EventKind uint8

const (
	// EventMove follows every accepted move, the participant's first and then the reply.
	EventMove EventKind = iota
	EventFinished
	EventExpired
)

func (that EventKind) String() string {
	switch that {
	case EventFinished:
		return "finished"
	case EventExpired:
		return "expired"
	default:
		return "move"
	}
}

// Event is published on every session change. Move is set for EventMove only.
type Event struct {
	Kind     EventKind
	Move     entity.Move
	Snapshot entity.Snapshot
}

// Notifier receives session events in order. Notify runs while the session is locked,
// so it must not block or call back into the GameManager.
type Notifier interface {
	Notify(event Event)
}

type NotifierFunc func(event Event)

func (that NotifierFunc) Notify(event Event) {
	that(event)
}
