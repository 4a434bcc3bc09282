// Package apperr holds the business-rule errors surfaced to API callers.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindStateConflict Kind = "state_conflict"
	KindNotFound      Kind = "not_found"
)

// Error is a business-rule violation. Two errors match under errors.Is when
// their codes are equal, so NotFound("proposal") still matches ErrNotFound.
type Error struct {
	Kind    Kind
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrValidation        = &Error{Kind: KindValidation, Code: "ValidationError", Status: http.StatusBadRequest, Message: "invalid input"}
	ErrDuplicateProposal = &Error{Kind: KindValidation, Code: "DuplicateProposal", Status: http.StatusBadRequest, Message: "you already submitted a proposal for this project"}
	ErrSelfProposal      = &Error{Kind: KindValidation, Code: "SelfProposal", Status: http.StatusBadRequest, Message: "you cannot submit a proposal to your own project"}
	ErrDuplicateReview   = &Error{Kind: KindValidation, Code: "DuplicateReview", Status: http.StatusBadRequest, Message: "you already reviewed this contract"}

	ErrForbidden = &Error{Kind: KindAuthorization, Code: "Forbidden", Status: http.StatusForbidden, Message: "you are not allowed to do this"}

	ErrProjectNotOpen        = &Error{Kind: KindStateConflict, Code: "ProjectNotOpen", Status: http.StatusBadRequest, Message: "project is not open for proposals"}
	ErrAlreadyProcessed      = &Error{Kind: KindStateConflict, Code: "AlreadyProcessed", Status: http.StatusConflict, Message: "already processed"}
	ErrContractAlreadyExists = &Error{Kind: KindStateConflict, Code: "ContractAlreadyExists", Status: http.StatusConflict, Message: "a contract already exists for this project"}
	ErrInvalidState          = &Error{Kind: KindStateConflict, Code: "InvalidState", Status: http.StatusConflict, Message: "operation not allowed in the current state"}

	ErrNotFound = &Error{Kind: KindNotFound, Code: "NotFound", Status: http.StatusNotFound, Message: "not found"}
)

// Validation returns a ValidationError carrying msg.
func Validation(msg string) *Error {
	return with(ErrValidation, msg)
}

// NotFound returns a NotFound error naming the missing entity.
func NotFound(entity string) *Error {
	return with(ErrNotFound, entity+" not found")
}

func Forbidden(msg string) *Error {
	return with(ErrForbidden, msg)
}

func AlreadyProcessed(msg string) *Error {
	return with(ErrAlreadyProcessed, msg)
}

func InvalidState(msg string) *Error {
	return with(ErrInvalidState, msg)
}

func with(base *Error, msg string) *Error {
	e := *base
	e.Message = msg
	return &e
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
