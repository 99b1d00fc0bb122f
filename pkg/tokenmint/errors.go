package tokenmint

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	KindInvalidParameters     ErrorKind = "invalid_parameters"
	KindCheckpointUnavailable ErrorKind = "checkpoint_unavailable"
	KindSigningRejected       ErrorKind = "signing_rejected"
	KindExpired               ErrorKind = "expired"
	KindRejected              ErrorKind = "rejected"
	KindNetwork               ErrorKind = "network"
	KindCanceled              ErrorKind = "canceled"
	KindInternal              ErrorKind = "internal"
)

type Stage string

const (
	StageValidate   Stage = "validate"
	StageKeygen     Stage = "keygen"
	StageRent       Stage = "rent"
	StageAssemble   Stage = "assemble"
	StageCheckpoint Stage = "checkpoint"
	StageCompose    Stage = "compose"
	StageSign       Stage = "sign"
	StageSubmit     Stage = "submit"
	StageConfirm    Stage = "confirm"
)

// CreateError is returned by every step of the launch pipeline.
type CreateError struct {
	Kind    ErrorKind
	Stage   Stage
	Message string
	// Logs holds program logs reported by the network for rejected
	// transactions.
	Logs  []string
	Cause error
}

func (e *CreateError) Error() string {
	if e == nil {
		return "token creation failed"
	}
	var builder strings.Builder
	if e.Stage != "" {
		builder.WriteString(string(e.Stage))
		builder.WriteString(": ")
	}
	builder.WriteString(e.Message)
	if e.Cause != nil {
		builder.WriteString(": ")
		builder.WriteString(e.Cause.Error())
	}
	return builder.String()
}

func (e *CreateError) Unwrap() error {
	return e.Cause
}

// Is matches on Kind, and on Stage when the target sets one, so the
// exported sentinels work with errors.Is.
func (e *CreateError) Is(target error) bool {
	other, ok := target.(*CreateError)
	if !ok || e == nil || other == nil {
		return false
	}
	if other.Kind != e.Kind {
		return false
	}
	return other.Stage == "" || other.Stage == e.Stage
}

var (
	ErrInvalidParameters     = &CreateError{Kind: KindInvalidParameters, Message: "invalid parameters"}
	ErrCheckpointUnavailable = &CreateError{Kind: KindCheckpointUnavailable, Message: "checkpoint unavailable"}
	ErrSigningRejected       = &CreateError{Kind: KindSigningRejected, Message: "signing rejected"}
	ErrExpired               = &CreateError{Kind: KindExpired, Message: "transaction expired"}
	ErrRejected              = &CreateError{Kind: KindRejected, Message: "transaction rejected"}
	ErrNetwork               = &CreateError{Kind: KindNetwork, Message: "network failure"}
	ErrCanceled              = &CreateError{Kind: KindCanceled, Message: "canceled"}
)

func newError(kind ErrorKind, stage Stage, cause error, format string, args ...any) *CreateError {
	return &CreateError{
		Kind:    kind,
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// KindOf returns the kind of a pipeline error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var createErr *CreateError
	if errors.As(err, &createErr) {
		return createErr.Kind
	}
	return ""
}

// StageOf returns the stage that produced a pipeline error.
func StageOf(err error) Stage {
	var createErr *CreateError
	if errors.As(err, &createErr) {
		return createErr.Stage
	}
	return ""
}
