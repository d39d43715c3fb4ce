package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"advent-quiz-service/internal/app"
	"advent-quiz-service/internal/domain"
)

const maxCheckBody = 4 << 10

// RESTHandler exposes questions, one-off answer checks and answered days as JSON.
type RESTHandler struct {
	service *app.QuizService
}

func NewRESTHandler(service *app.QuizService) *RESTHandler {
	return &RESTHandler{service: service}
}

type checkRequest struct {
	Answer string `json:"answer"`
}

// NewRouter mounts the websocket, REST and health endpoints.
func NewRouter(service *app.QuizService) http.Handler {
	rest := NewRESTHandler(service)
	ws := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", ws.ServeWS)
	mux.HandleFunc("GET /api/questions/{day}", rest.Question)
	mux.HandleFunc("POST /api/questions/{day}/check", rest.Check)
	mux.HandleFunc("GET /api/quizzes/{quizID}/players/{playerID}/answered", rest.Answered)
	return mux
}

func (h *RESTHandler) Question(w http.ResponseWriter, r *http.Request) {
	day, ok := pathDay(w, r)
	if !ok {
		return
	}
	view, err := h.service.Question(r.Context(), day)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *RESTHandler) Check(w http.ResponseWriter, r *http.Request) {
	day, ok := pathDay(w, r)
	if !ok {
		return
	}
	var req checkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCheckBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid body"})
		return
	}
	verdict, err := h.service.Check(r.Context(), day, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

func (h *RESTHandler) Answered(w http.ResponseWriter, r *http.Request) {
	quizID := strings.TrimSpace(r.PathValue("quizID"))
	playerID := strings.TrimSpace(r.PathValue("playerID"))
	if quizID == "" || playerID == "" {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "missing quiz or player"})
		return
	}
	days, err := h.service.Answered(r.Context(), quizID, playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func pathDay(w http.ResponseWriter, r *http.Request) (int, bool) {
	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "day must be a number"})
		return 0, false
	}
	return day, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case app.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorPayload{Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyAnswered):
		writeJSON(w, http.StatusConflict, errorPayload{Message: err.Error()})
	default:
		log.Printf("api error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
