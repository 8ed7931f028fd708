package processor

import (
	"errors"
	"net/http"
)

// Kind classifies a failed analysis.
type Kind int

const (
	KindClientInput Kind = iota + 1
	KindTranscription
	KindGeneration
)

func (k Kind) String() string {
	switch k {
	case KindClientInput:
		return "client_input"
	case KindTranscription:
		return "transcription"
	case KindGeneration:
		return "generation"
	default:
		return "unknown"
	}
}

// HTTPStatus is the response code for the kind.
func (k Kind) HTTPStatus() int {
	if k == KindClientInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Error carries a human readable Message for the caller and the cause in Err.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

const (
	MsgNoAudio          = "No audio file provided"
	MsgEmptyText        = "Please type something before analyzing."
	MsgTranscribeFailed = "Could not transcribe audio"
	MsgGenerateFailed   = "Could not generate a response"
)
