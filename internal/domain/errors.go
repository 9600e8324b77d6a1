package domain

import "errors"

var (
	// ErrNoValidQuestions means the bank produced zero usable questions; no quiz can start.
	ErrNoValidQuestions = errors.New("question bank has no valid questions")
	// ErrSetupIncomplete is returned when a participant starts without a name or avatar.
	ErrSetupIncomplete = errors.New("participant name and avatar are required")
	// ErrUnknownDifficulty is returned for a difficulty label outside the fixed table.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	// ErrSelectionClosed is returned when an option arrives outside the answering window.
	ErrSelectionClosed = errors.New("selection window closed")
	// ErrOptionUnknown is returned when a selected option is not part of the current question.
	ErrOptionUnknown = errors.New("option not part of current question")
	// ErrSessionNotFound is returned when a session ID is unknown to the registry.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrStorage marks recoverable leaderboard read/write failures. The caller keeps
	// the local score authoritative and degrades the leaderboard instead of failing.
	ErrStorage = errors.New("leaderboard storage unavailable")
)
