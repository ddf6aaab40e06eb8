package services

import (
	"errors"

	"edu-network/internal/auth"
	"edu-network/internal/permissions"
)

// Error kinds. Every error a service returns on purpose wraps exactly one of these, so callers
// can branch with errors.Is without knowing the specific condition.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrInvalidState     = errors.New("invalid state")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")
)

// domainError keeps the user-facing message free of the kind suffix.
type domainError struct {
	msg  string
	kind error
}

func (e *domainError) Error() string { return e.msg }
func (e *domainError) Unwrap() error { return e.kind }

func kindError(kind error, msg string) error {
	return &domainError{msg: msg, kind: kind}
}

// Users and auth.
var (
	ErrUserNotFound       = kindError(ErrNotFound, "user not found")
	ErrUserAlreadyExists  = kindError(ErrConflict, "username or email already exists")
	ErrInvalidCredentials = kindError(ErrUnauthorized, "invalid username or password")
	ErrPasswordTooShort   = kindError(ErrInvalidOperation, auth.ErrPasswordTooShort.Error())
	ErrPasswordTooLong    = kindError(ErrInvalidOperation, auth.ErrPasswordTooLong.Error())
)

// Relationship graph.
var (
	ErrSelfConnection      = kindError(ErrInvalidOperation, "you cannot connect with yourself")
	ErrSelfFollow          = kindError(ErrInvalidOperation, "you cannot follow yourself")
	ErrAlreadyConnected    = kindError(ErrConflict, "you are already connected")
	ErrDuplicateRequest    = kindError(ErrConflict, "connection request already sent")
	ErrRequestsNotAccepted = kindError(ErrForbidden, "this user is not accepting connection requests")
	ErrRequestNotFound     = kindError(ErrNotFound, "connection request not found")
	ErrNotRequestSender    = kindError(ErrForbidden, "only the sender can withdraw this request")
	ErrNotRequestRecipient = kindError(ErrForbidden, "only the recipient can respond to this request")
	ErrRequestNotPending   = kindError(ErrInvalidState, "connection request is no longer pending")
	ErrInvalidAction       = kindError(ErrInvalidOperation, "invalid action")
	ErrNotConnected        = kindError(ErrNotFound, "connection not found")
	ErrConnectionsHidden   = kindError(ErrForbidden, "you do not have permission to view this user's connections")
)

// Privacy, jobs, notifications.
var (
	ErrInvalidVisibility    = kindError(ErrInvalidOperation, "invalid visibility level")
	ErrJobNotFound          = kindError(ErrNotFound, "job listing not found")
	ErrInvalidQualification = kindError(ErrInvalidOperation, "unknown qualification")
	ErrNotificationNotFound = kindError(ErrNotFound, "notification not found")
	ErrNotOwner             = kindError(ErrForbidden, permissions.ErrNotOwner.Error())
)
