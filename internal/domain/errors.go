package domain

import "errors"

var (
	// ErrLocalSave wraps every failure to persist the local quiz list. The in-memory change is kept.
	ErrLocalSave = errors.New("could not save locally")
	// ErrQuotaExceeded is returned when durable storage rejects a write for capacity reasons.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrDocumentNotFound is returned by document stores when a key has never been written.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrSharedQuizNotFound indicates a community operation referenced an unknown shared quiz.
	ErrSharedQuizNotFound = errors.New("shared quiz not found")
	// ErrOptionNotFound indicates an option index outside the question's option list.
	ErrOptionNotFound = errors.New("option not found")
	// ErrNoOptions is returned when an option operation targets a short-text question.
	ErrNoOptions = errors.New("question type has no options")
)
