package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"advent-quiz-service/internal/app"
	"advent-quiz-service/internal/domain"
	"advent-quiz-service/internal/validation"
	"github.com/gorilla/websocket"
)

// Inbound message types.
const (
	msgAnswer   = "answer"
	msgCheck    = "check"
	msgAnswered = "answered"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// answerPayload is shared by "answer" (graded and recorded) and "check" (graded only).
type answerPayload struct {
	Day    int    `json:"day"`
	Answer string `json:"answer"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type verdictPayload struct {
	Day int `json:"day"`
	validation.Verdict
}

func errorMessage(msg string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: msg}}
}

// ServeWS upgrades the request and serves one player until the socket closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")
	if quizID == "" || userID == "" || displayName == "" {
		http.Error(w, "missing quizId, userId, or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	joined, err := h.service.Join(ctx, quizID, userID, displayName)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}
	updates, cancel, err := h.service.Subscribe(ctx, quizID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}
	defer cancel()
	defer h.service.Leave(ctx, quizID, userID)

	p := &player{
		conn:    conn,
		service: h.service,
		quizID:  quizID,
		userID:  userID,
		out:     make(chan outboundMessage, 16),
		done:    make(chan struct{}),
	}
	p.run(ctx, joined, updates)
}

// player is one participant's socket. gorilla allows a single concurrent writer,
// so everything outbound goes through out and is written by writeLoop.
type player struct {
	conn    *websocket.Conn
	service *app.QuizService
	quizID  string
	userID  string
	out     chan outboundMessage
	done    chan struct{}
}

func (p *player) run(ctx context.Context, joined domain.Leaderboard, updates <-chan domain.Leaderboard) {
	written := make(chan struct{})
	go func() {
		defer close(written)
		p.writeLoop()
	}()

	// joined must precede any broadcast leaderboard
	p.out <- outboundMessage{Type: "joined", Payload: joined}

	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		p.forwardLeaderboards(updates)
	}()

	p.readLoop(ctx)

	close(p.done)
	<-forwarded
	close(p.out)
	<-written
}

func (p *player) writeLoop() {
	for msg := range p.out {
		if err := p.conn.WriteJSON(msg); err != nil {
			log.Printf("ws write to %s/%s: %v", p.quizID, p.userID, err)
			// drain so the reader and forwarder never block on a dead socket
			for range p.out {
			}
			return
		}
	}
}

func (p *player) forwardLeaderboards(updates <-chan domain.Leaderboard) {
	for {
		select {
		case lb, ok := <-updates:
			if !ok {
				return
			}
			select {
			case p.out <- outboundMessage{Type: "leaderboard", Payload: lb}:
			case <-p.done:
				return
			}
		case <-p.done:
			return
		}
	}
}

func (p *player) readLoop(ctx context.Context) {
	for {
		var in inboundMessage
		if err := p.conn.ReadJSON(&in); err != nil {
			return
		}
		for _, reply := range p.handle(ctx, in) {
			p.out <- reply
		}
	}
}

// handle turns one inbound message into its replies, in send order.
func (p *player) handle(ctx context.Context, in inboundMessage) []outboundMessage {
	switch in.Type {
	case msgAnswer:
		submission, ok := decodeAnswer(in.Payload)
		if !ok {
			return []outboundMessage{errorMessage("invalid answer payload")}
		}
		lb, result, err := p.service.SubmitAnswer(ctx, p.quizID, p.userID, submission)
		if err != nil {
			return []outboundMessage{errorMessage(err.Error())}
		}
		return []outboundMessage{
			{Type: "answerResult", Payload: result},
			{Type: "leaderboard", Payload: lb},
		}
	case msgCheck:
		submission, ok := decodeAnswer(in.Payload)
		if !ok {
			return []outboundMessage{errorMessage("invalid answer payload")}
		}
		verdict, err := p.service.Check(ctx, submission.DayNumber, submission.Answer)
		if err != nil {
			return []outboundMessage{errorMessage(err.Error())}
		}
		return []outboundMessage{{Type: "verdict", Payload: verdictPayload{Day: submission.DayNumber, Verdict: verdict}}}
	case msgAnswered:
		days, err := p.service.Answered(ctx, p.quizID, p.userID)
		if err != nil {
			return []outboundMessage{errorMessage(err.Error())}
		}
		if days == nil {
			days = []domain.AnsweredDay{}
		}
		return []outboundMessage{{Type: "answered", Payload: days}}
	default:
		return []outboundMessage{errorMessage("unsupported message type")}
	}
}

func decodeAnswer(raw json.RawMessage) (domain.AnswerSubmission, bool) {
	var payload answerPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Day == 0 {
		return domain.AnswerSubmission{}, false
	}
	return domain.AnswerSubmission{DayNumber: payload.Day, Answer: payload.Answer}, true
}
