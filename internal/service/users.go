package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/vector-admin/backend/internal/db"
	"github.com/vector-admin/backend/internal/model"
)

type UserStore interface {
	CreateUserAudited(ctx context.Context, email, passwordHash string, role model.Role, entry *model.AuditEntry) (*model.User, error)
	DeleteUserAudited(ctx context.Context, id int64, entry *model.AuditEntry) (bool, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type UserService struct {
	repo UserStore
}

func NewUserService(repo UserStore) *UserService {
	return &UserService{repo: repo}
}

// Create registers a new identity. Email uniqueness is enforced by the store
// constraint; the audit entry commits atomically with the insert.
func (s *UserService) Create(ctx context.Context, actor *model.User, req model.CreateUserRequest) (*model.User, error) {
	role := req.Role
	if role == "" {
		role = model.RoleViewer
	}
	if !role.Valid() {
		return nil, ErrInvalidInput
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	entry, err := newAuditEntry(actor.ID, "CREATE_USER", req.Email, map[string]any{"role": string(role)})
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUserAudited(ctx, req.Email, hash, role, entry)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		if errors.Is(err, db.ErrAuditWrite) {
			return nil, fmt.Errorf("%w: %v", ErrAuditWriteFailed, err)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx)
}

// Delete removes an identity. A caller can never delete itself.
func (s *UserService) Delete(ctx context.Context, actor *model.User, id int64) error {
	if id == actor.ID {
		return ErrInvalidInput
	}

	entry, err := newAuditEntry(actor.ID, "DELETE_USER", strconv.FormatInt(id, 10), nil)
	if err != nil {
		return err
	}

	found, err := s.repo.DeleteUserAudited(ctx, id, entry)
	if err != nil {
		if errors.Is(err, db.ErrAuditWrite) {
			return fmt.Errorf("%w: %v", ErrAuditWriteFailed, err)
		}
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}
