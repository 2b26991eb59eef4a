package domain

import "errors"

// Kind classifies engine failures so transports can map them to their own status codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindIllegalState
	KindInvalidInput
	KindCapacityExceeded
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindIllegalState:
		return "illegal_state"
	case KindInvalidInput:
		return "invalid_input"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	}
	return "unknown"
}

// Error is a classified engine failure. Values are compared by identity with errors.Is.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// KindOf reports the kind of err, or KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = newError(KindNotFound, "quiz not found")
	// ErrSessionNotFound is returned for unknown session ids, or ids that belong to another quiz.
	ErrSessionNotFound = newError(KindNotFound, "session not found")
	// ErrPlayerNotFound is returned when no session contains the player.
	ErrPlayerNotFound = newError(KindNotFound, "player not found")
	// ErrInvalidQuestionPosition is returned for positions outside [1, number of questions].
	ErrInvalidQuestionPosition = newError(KindNotFound, "question position is not valid for this session")

	ErrQuizInTrash         = newError(KindIllegalState, "quiz is in trash")
	ErrNotJoinable         = newError(KindIllegalState, "session is not in LOBBY")
	ErrIllegalTransition   = newError(KindIllegalState, "action cannot be applied in the current state")
	ErrLastQuestionAlready = newError(KindIllegalState, "already at the last question")
	ErrNotOpenForAnswers   = newError(KindIllegalState, "session is not in QUESTION_OPEN")
	ErrWrongQuestion       = newError(KindIllegalState, "session is not at this question")
	ErrSessionNotReady     = newError(KindIllegalState, "session is in LOBBY, QUESTION_COUNTDOWN or END")
	ErrNotInAnswerShow     = newError(KindIllegalState, "session is not in ANSWER_SHOW")
	ErrNotInFinalResults   = newError(KindIllegalState, "session is not in FINAL_RESULTS")

	ErrUnknownAction        = newError(KindInvalidInput, "unknown action")
	ErrQuizHasNoQuestions   = newError(KindInvalidInput, "quiz has no questions")
	ErrAutoStartTooHigh     = newError(KindInvalidInput, "autoStartNum is out of range")
	ErrNameTaken            = newError(KindInvalidInput, "name already in use")
	ErrUnknownAnswerID      = newError(KindInvalidInput, "answer id is not valid for this question")
	ErrDuplicateAnswerID    = newError(KindInvalidInput, "duplicate answer ids")
	ErrEmptySubmission      = newError(KindInvalidInput, "at least one answer id is required")
	ErrInvalidMessageLength = newError(KindInvalidInput, "message must be between 1 and 100 characters")

	ErrTooManySessions = newError(KindCapacityExceeded, "too many sessions not in END for this quiz")

	// ErrEngineClosed is returned once the engine has been shut down.
	ErrEngineClosed = errors.New("engine closed")
)
