package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing   Action = "ping"
	ActionSubmit Action = "submit"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventTick      Event = "tick"
	EventSubmitted Event = "submitted"
	EventPong      Event = "pong"
)

// TickResponse carries one countdown beat. Remaining is whole seconds,
// clamped at zero.
type TickResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int64 `json:"remaining_seconds"`
	AnsweredCount    int   `json:"answered_count"`
	TotalQuestions   int   `json:"total_questions"`
}

// SubmittedResponse announces that the exam was finalized, either by
// the client's submit action or by the countdown running out.
type SubmittedResponse struct {
	Event        Event   `json:"event"`
	Forced       bool    `json:"forced"`
	Score        float64 `json:"score"`
	MaxScore     float64 `json:"max_score"`
	ScorePercent int     `json:"score_percent"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
