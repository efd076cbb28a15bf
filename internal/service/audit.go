package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vector-admin/backend/internal/model"
)

const (
	maxActionLength   = 128
	maxResourceLength = 255

	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

type AuditStore interface {
	InsertAuditEntry(ctx context.Context, entry *model.AuditEntry) error
	ListAuditEntries(ctx context.Context, from, to *time.Time, limit int) ([]model.AuditEntry, error)
}

type AuditService struct {
	repo AuditStore
}

func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// newAuditEntry validates the caller-supplied fields before anything touches
// storage. Bounds match the audit_logs column widths.
func newAuditEntry(actorID int64, action, resource string, payload map[string]any) (*model.AuditEntry, error) {
	if action == "" || len(action) > maxActionLength {
		return nil, ErrInvalidAuditEvent
	}
	if resource == "" || len(resource) > maxResourceLength {
		return nil, ErrInvalidAuditEvent
	}
	return &model.AuditEntry{
		UserID:   actorID,
		Action:   action,
		Resource: resource,
		Payload:  payload,
	}, nil
}

// Record appends one audit entry. A storage failure surfaces as
// ErrAuditWriteFailed: audit completeness is part of the calling operation's
// success contract, never best-effort.
func (s *AuditService) Record(ctx context.Context, actorID int64, action, resource string, payload map[string]any) error {
	entry, err := newAuditEntry(actorID, action, resource, payload)
	if err != nil {
		return err
	}
	if err := s.repo.InsertAuditEntry(ctx, entry); err != nil {
		return fmt.Errorf("%w: %v", ErrAuditWriteFailed, err)
	}
	return nil
}

// List returns entries within the optional time range, newest first.
func (s *AuditService) List(ctx context.Context, from, to *time.Time, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	return s.repo.ListAuditEntries(ctx, from, to, limit)
}
