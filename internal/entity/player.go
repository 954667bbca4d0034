package entity

// Player links a chat participant to the session they are currently playing.
type Player struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id,omitempty"`
}
