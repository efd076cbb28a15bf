package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/vector-admin/backend/internal/model"
)

type fakeAuthStore struct {
	users  map[string]*model.User
	nextID int64
}

func newFakeAuthStore() *fakeAuthStore {
	return &fakeAuthStore{users: map[string]*model.User{}}
}

func (f *fakeAuthStore) CreateUser(ctx context.Context, email, passwordHash string, role model.Role) (*model.User, error) {
	f.nextID++
	user := &model.User{ID: f.nextID, Email: email, PasswordHash: passwordHash, Role: role}
	f.users[email] = user
	return user, nil
}

func (f *fakeAuthStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if user, ok := f.users[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAuthStore) addUser(t *testing.T, email, password string, role model.Role) *model.User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user, err := f.CreateUser(context.Background(), email, hash, role)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return user
}

func TestLogin(t *testing.T) {
	store := newFakeAuthStore()
	store.addUser(t, "a@x.com", "Abcdef12", model.RoleViewer)
	svc := NewAuthService(store, newTestIssuer(t))

	tokens, err := svc.Login(context.Background(), "a@x.com", "Abcdef12")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected both tokens")
	}
	if tokens.TokenType != "bearer" {
		t.Fatalf("token type: %q", tokens.TokenType)
	}
	if tokens.ExpiresIn != 1800 {
		t.Fatalf("expires_in: %d", tokens.ExpiresIn)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	store := newFakeAuthStore()
	store.addUser(t, "a@x.com", "Abcdef12", model.RoleViewer)
	svc := NewAuthService(store, newTestIssuer(t))

	_, wrongPassword := svc.Login(context.Background(), "a@x.com", "Wrongpw12")
	_, noSuchUser := svc.Login(context.Background(), "nobody@x.com", "Abcdef12")
	if !errors.Is(wrongPassword, ErrUnauthorized) || !errors.Is(noSuchUser, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for both, got %v and %v", wrongPassword, noSuchUser)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	store := newFakeAuthStore()
	issuer := newTestIssuer(t)
	svc := NewAuthService(store, issuer)

	access, err := issuer.IssueAccess("a@x.com", model.RoleViewer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), access); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("access token on refresh: expected ErrUnauthorized, got %v", err)
	}
}

func TestRefreshIssuesNewPair(t *testing.T) {
	store := newFakeAuthStore()
	issuer := newTestIssuer(t)
	svc := NewAuthService(store, issuer)

	refresh, err := issuer.IssueRefresh("a@x.com", model.RoleViewer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	tokens, err := svc.Refresh(context.Background(), refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	subject, role, err := issuer.Validate(tokens.AccessToken, TokenKindAccess)
	if err != nil || subject != "a@x.com" || role != model.RoleViewer {
		t.Fatalf("new access token invalid: %q %q %v", subject, role, err)
	}
	if _, _, err := issuer.Validate(tokens.RefreshToken, TokenKindRefresh); err != nil {
		t.Fatalf("new refresh token invalid: %v", err)
	}
}

func TestResolveUsesStoreRole(t *testing.T) {
	store := newFakeAuthStore()
	store.addUser(t, "a@x.com", "Abcdef12", model.RoleViewer)
	issuer := newTestIssuer(t)
	svc := NewAuthService(store, issuer)

	// Token minted while the user was still a VIEWER.
	access, err := issuer.IssueAccess("a@x.com", model.RoleViewer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	store.users["a@x.com"].Role = model.RoleAdmin
	user, err := svc.Resolve(context.Background(), access)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.Role != model.RoleAdmin {
		t.Fatalf("expected role from store, got %q", user.Role)
	}
}

func TestResolveDeletedUser(t *testing.T) {
	store := newFakeAuthStore()
	issuer := newTestIssuer(t)
	svc := NewAuthService(store, issuer)

	access, err := issuer.IssueAccess("gone@x.com", model.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), access); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("deleted subject: expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthorize(t *testing.T) {
	svc := NewAuthService(newFakeAuthStore(), newTestIssuer(t))
	admin := &model.User{ID: 1, Role: model.RoleAdmin}
	viewer := &model.User{ID: 2, Role: model.RoleViewer}

	if err := svc.Authorize(admin, model.RoleAdmin); err != nil {
		t.Fatalf("admin in {ADMIN}: %v", err)
	}
	if err := svc.Authorize(viewer, model.RoleAdmin, model.RoleViewer); err != nil {
		t.Fatalf("viewer in {ADMIN,VIEWER}: %v", err)
	}
	if err := svc.Authorize(viewer, model.RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("viewer in {ADMIN}: expected ErrForbidden, got %v", err)
	}
	if err := svc.Authorize(admin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("empty required set must deny, got %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	store := newFakeAuthStore()
	svc := NewAuthService(store, newTestIssuer(t))

	if err := svc.EnsureAdmin(context.Background(), "root@x.com", "Abcdef12"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	user, err := store.GetUserByEmail(context.Background(), "root@x.com")
	if err != nil || user.Role != model.RoleAdmin {
		t.Fatalf("seeded admin missing or wrong role: %v", err)
	}

	// Second run is a no-op.
	if err := svc.EnsureAdmin(context.Background(), "root@x.com", "Abcdef12"); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	if err := svc.EnsureAdmin(context.Background(), "weak@x.com", "weak"); !errors.Is(err, ErrMisconfigured) {
		t.Fatalf("weak bootstrap password: expected ErrMisconfigured, got %v", err)
	}
}
