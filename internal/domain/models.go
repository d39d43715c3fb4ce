package domain

import (
	"fmt"
	"time"
)

// Calendar bounds.
const (
	FirstDay = 1
	LastDay  = 24
)

// ValidateDay reports ErrInvalidDay for days outside the calendar.
func ValidateDay(day int) error {
	if day < FirstDay || day > LastDay {
		return fmt.Errorf("%w: %d", ErrInvalidDay, day)
	}
	return nil
}

// Participant represents a quiz participant and their accumulated score.
type Participant struct {
	UserID      string
	DisplayName string
	Score       int
	LastUpdated time.Time
}

// LeaderboardEntry is a snapshot-friendly view of a participant.
type LeaderboardEntry struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}

// Leaderboard captures the ordered scoreboard for a quiz session.
type Leaderboard struct {
	QuizID    string             `json:"quizId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Question is the riddle behind one calendar door.
type Question struct {
	DayNumber     int      `json:"dayNumber" yaml:"day_number" validate:"min=1,max=24"`
	Text          string   `json:"text" yaml:"text" validate:"required"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correct_answer" validate:"required"`
	Images        []string `json:"images,omitempty" yaml:"images" validate:"max=5,dive,required"`
}

// QuestionView is what players get to see; it never carries the answer.
type QuestionView struct {
	DayNumber int      `json:"dayNumber"`
	Text      string   `json:"text"`
	Images    []string `json:"images"`
}

// View strips the correct answer.
func (q Question) View() QuestionView {
	images := q.Images
	if images == nil {
		images = []string{}
	}
	return QuestionView{DayNumber: q.DayNumber, Text: q.Text, Images: images}
}

// AnswerSubmission models a free-text answer from a player.
type AnswerSubmission struct {
	DayNumber int
	Answer    string
}

// PlayerAnswer is a recorded answer. A player answers each day at most once per quiz.
type PlayerAnswer struct {
	QuizID     string
	PlayerID   string
	DayNumber  int
	Answer     string
	IsCorrect  bool
	Points     int
	AnsweredAt time.Time
}

// AnsweredDay summarizes one recorded answer.
type AnsweredDay struct {
	Day     int  `json:"day"`
	Correct bool `json:"correct"`
	Points  int  `json:"points"`
}

// AnswerResult summarizes the outcome of a submission for a single player.
type AnswerResult struct {
	DayNumber     int    `json:"dayNumber"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer,omitempty"` // only revealed on a wrong answer
	Awarded       int    `json:"awarded"`
	TotalScore    int    `json:"totalScore"`
	Confidence    int    `json:"confidence"`
	Reasoning     string `json:"reasoning"`
	Method        string `json:"method"`
}
