package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/studiku/quizbank-backend/internal/scoring"
	"github.com/studiku/quizbank-backend/internal/service"
	"github.com/studiku/quizbank-backend/internal/session"
	ws "github.com/studiku/quizbank-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the exam countdown over WebSocket. The timer
// cadence lives here: the session core only answers "how much time is
// left", this handler ticks at 1 Hz and forces submission at zero.
type WSHandler struct {
	sessions *service.SessionService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// CountdownStream godoc
// WS /ws/v1/exam/countdown
// Streams a tick every second and a terminal submitted event, forced
// or client-requested. Learning sessions have no countdown.
func (h *WSHandler) CountdownStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()

	if _, err := h.sessions.Resume(ctx, session.KindExam); err != nil {
		ws.WriteError(conn, "no active exam session")
		return
	}

	h.log.Info().Msg("countdown stream connected")

	// done releases the read pump when the stream ends first; closing
	// the connection alone cannot unblock a goroutine parked on the
	// channel send.
	done := make(chan struct{})
	defer close(done)

	actions := make(chan ws.Action)
	go func() {
		defer close(actions)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.Warn().Err(err).Msg("unexpected close")
				} else {
					h.log.Debug().Msg("connection closed")
				}
				return
			}
			select {
			case actions <- msg.Action:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if done := h.tick(ctx, conn); done {
				return
			}
		case action, ok := <-actions:
			if !ok {
				return
			}
			switch action {
			case ws.ActionPing:
				ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			case ws.ActionSubmit:
				result, err := h.sessions.Submit(ctx, session.KindExam)
				if err != nil {
					h.log.Error().Err(err).Msg("submit over countdown stream failed")
					ws.WriteError(conn, "submit failed")
					continue
				}
				h.writeSubmitted(conn, result, false)
				return
			default:
				ws.WriteError(conn, "unknown action: "+string(action))
			}
		}
	}
}

// tick emits one countdown beat, forcing submission when the budget
// has run out. Returns true when the stream is finished.
func (h *WSHandler) tick(ctx context.Context, conn *websocket.Conn) bool {
	result, err := h.sessions.SubmitIfExpired(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("forced submission failed")
		return false
	}
	if result != nil {
		h.writeSubmitted(conn, result, true)
		return true
	}

	remaining, answered, total, submitted, ok := h.sessions.Countdown()
	if !ok {
		ws.WriteError(conn, "exam session ended")
		return true
	}
	if submitted {
		// Submitted elsewhere (HTTP); announce and finish.
		result, err := h.sessions.Result(session.KindExam)
		if err != nil {
			ws.WriteError(conn, "exam session ended")
			return true
		}
		h.writeSubmitted(conn, result, false)
		return true
	}

	ws.WriteTyped(conn, ws.TickResponse{
		Event:            ws.EventTick,
		RemainingSeconds: int64(remaining.Seconds()),
		AnsweredCount:    answered,
		TotalQuestions:   total,
	})
	return false
}

func (h *WSHandler) writeSubmitted(conn *websocket.Conn, result *scoring.Result, forced bool) {
	ws.WriteTyped(conn, ws.SubmittedResponse{
		Event:        ws.EventSubmitted,
		Forced:       forced,
		Score:        result.Score,
		MaxScore:     result.MaxScore,
		ScorePercent: result.ScorePercent,
	})
}
