package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"advent-quiz-service/internal/domain"
)

func TestQuestionEndpointHidesAnswer(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/questions/13")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["dayNumber"] != float64(13) || body["text"] == "" {
		t.Fatalf("unexpected body %v", body)
	}
	if _, leaked := body["correctAnswer"]; leaked {
		t.Fatalf("question view leaked the answer: %v", body)
	}
}

func TestQuestionEndpointStatuses(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService()))
	defer server.Close()

	cases := map[string]int{
		"/api/questions/abc": http.StatusBadRequest,
		"/api/questions/0":   http.StatusNotFound,
		"/api/questions/20":  http.StatusNotFound,
		"/healthz":           http.StatusOK,
	}
	for path, want := range cases {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Fatalf("%s: expected %d, got %d", path, want, resp.StatusCode)
		}
	}
}

func TestCheckEndpoint(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService()))
	defer server.Close()

	cases := []struct {
		day     string
		answer  string
		correct bool
		method  string
	}{
		{"9", "115", true, "rule_based"},
		{"13", "Luz", false, "rule_based"},
		{"3", "gran", true, "ai"},
		{"3", "spruce", true, "exact"},
	}
	for _, tc := range cases {
		resp, err := http.Post(server.URL+"/api/questions/"+tc.day+"/check", "application/json",
			strings.NewReader(`{"answer":"`+tc.answer+`"}`))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		var verdict struct {
			IsCorrect bool   `json:"is_correct"`
			Method    string `json:"method"`
		}
		err = json.NewDecoder(resp.Body).Decode(&verdict)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if verdict.IsCorrect != tc.correct || verdict.Method != tc.method {
			t.Fatalf("day %s %q: unexpected verdict %+v", tc.day, tc.answer, verdict)
		}
	}

	resp, err := http.Post(server.URL+"/api/questions/9/check", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", resp.StatusCode)
	}
}

func TestAnsweredEndpoint(t *testing.T) {
	service := newTestService()
	server := httptest.NewServer(NewRouter(service))
	defer server.Close()

	ctx := t.Context()
	_, _ = service.Join(ctx, "advent", "u1", "Alice")
	if _, _, err := service.SubmitAnswer(ctx, "advent", "u1", domain.AnswerSubmission{DayNumber: 13, Answer: "Lux"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, _, err := service.SubmitAnswer(ctx, "advent", "u1", domain.AnswerSubmission{DayNumber: 9, Answer: "90"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	resp, err := http.Get(server.URL + "/api/quizzes/advent/players/u1/answered")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var days []domain.AnsweredDay
	if err := json.NewDecoder(resp.Body).Decode(&days); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []domain.AnsweredDay{{Day: 9, Correct: false, Points: 0}, {Day: 13, Correct: true, Points: 10}}
	if len(days) != 2 || days[0] != want[0] || days[1] != want[1] {
		t.Fatalf("expected %+v, got %+v", want, days)
	}
}
