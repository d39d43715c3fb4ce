package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been initialized.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrParticipantNotFound is returned when a player tries to act before joining.
	ErrParticipantNotFound = errors.New("participant not found in quiz")
	// ErrQuestionNotFound indicates there is no question for the requested day.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidDay indicates a day number outside the calendar.
	ErrInvalidDay = errors.New("day number out of range")
	// ErrAlreadyAnswered is returned when a player submits a second answer for the same day.
	ErrAlreadyAnswered = errors.New("question already answered")
)
