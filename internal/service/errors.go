package service

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidAuditEvent = errors.New("invalid audit event")
	ErrAuditWriteFailed  = errors.New("audit logging failed")
	ErrMisconfigured     = errors.New("auth config invalid")
)
