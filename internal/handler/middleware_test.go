package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/vector-admin/backend/internal/model"
	"github.com/vector-admin/backend/internal/service"
)

type fakeVectorStore struct {
	collections map[string]*model.Collection
	audits      []model.AuditEntry
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{collections: map[string]*model.Collection{}}
}

func (f *fakeVectorStore) ListCollections(ctx context.Context) ([]model.Collection, error) {
	return nil, nil
}

func (f *fakeVectorStore) GetCollectionByName(ctx context.Context, name string) (*model.Collection, error) {
	if col, ok := f.collections[name]; ok {
		return col, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeVectorStore) CreateCollectionAudited(ctx context.Context, name string, vectorSize int, distance model.Distance, entry *model.AuditEntry) (*model.Collection, error) {
	col := &model.Collection{ID: int64(len(f.collections) + 1), Name: name, VectorSize: vectorSize, Distance: distance}
	f.collections[name] = col
	f.audits = append(f.audits, *entry)
	return col, nil
}

func (f *fakeVectorStore) DeleteCollectionAudited(ctx context.Context, name string, entry *model.AuditEntry) (bool, error) {
	return false, nil
}

func (f *fakeVectorStore) UpsertPointAudited(ctx context.Context, collectionID int64, point model.Point, entry *model.AuditEntry) error {
	return nil
}

func (f *fakeVectorStore) DeletePointsAudited(ctx context.Context, collectionID int64, ids []int64, entry *model.AuditEntry) (int64, error) {
	return 0, nil
}

func (f *fakeVectorStore) ScrollPoints(ctx context.Context, collectionID int64, limit int) ([]model.Point, error) {
	return nil, nil
}

func (f *fakeVectorStore) SearchPoints(ctx context.Context, col *model.Collection, vector []float32, limit int) ([]model.SearchHit, error) {
	return nil, nil
}

type fakeAuditStore struct {
	entries []model.AuditEntry
}

func (f *fakeAuditStore) InsertAuditEntry(ctx context.Context, entry *model.AuditEntry) error {
	entry.ID = int64(len(f.entries) + 1)
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditStore) ListAuditEntries(ctx context.Context, from, to *time.Time, limit int) ([]model.AuditEntry, error) {
	return f.entries, nil
}

// adminRouter wires the real middleware chain in front of the collection
// create endpoint, backed by fakes.
func adminRouter(t *testing.T) (*gin.Engine, *fakeAuthStore, *service.TokenIssuer, *fakeVectorStore, *fakeAuditStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authSvc, store, issuer := newTestAuthService(t)
	vectorStore := newFakeVectorStore()
	auditStore := &fakeAuditStore{}
	vectorSvc := service.NewVectorService(vectorStore, service.NewAuditService(auditStore))

	r := gin.New()
	authed := r.Group("/", AuthMiddleware(authSvc))
	admin := authed.Group("/", RequireRole(authSvc, model.RoleAdmin))
	admin.POST("/collections", NewCollectionHandler(vectorSvc).Create)
	return r, store, issuer, vectorStore, auditStore
}

func bearerRequest(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareMissingOrBadToken(t *testing.T) {
	r, _, _, _, _ := adminRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/collections", bytes.NewBufferString(`{}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: expected 401, got %d", w.Code)
	}

	if w := bearerRequest(r, http.MethodPost, "/collections", "garbage", `{}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", w.Code)
	}
}

func TestAdminCreatesCollection(t *testing.T) {
	r, store, issuer, vectorStore, _ := adminRouter(t)
	addUser(t, store, "admin@x.com", "Abcdef12", model.RoleAdmin)

	token, err := issuer.IssueAccess("admin@x.com", model.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	w := bearerRequest(r, http.MethodPost, "/collections", token, `{"name":"docs","vector_size":4}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("valid admin token: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(vectorStore.audits) != 1 || vectorStore.audits[0].Action != "CREATE_COLLECTION" {
		t.Fatalf("expected CREATE_COLLECTION audit entry, got %+v", vectorStore.audits)
	}
}

func TestViewerForbiddenOnAdminRoute(t *testing.T) {
	r, store, issuer, vectorStore, auditStore := adminRouter(t)
	addUser(t, store, "viewer@x.com", "Abcdef12", model.RoleViewer)

	token, err := issuer.IssueAccess("viewer@x.com", model.RoleViewer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := bearerRequest(r, http.MethodPost, "/collections", token, `{"name":"docs","vector_size":4}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("viewer on admin route: expected 403, got %d", w.Code)
	}
	if len(vectorStore.collections) != 0 {
		t.Fatalf("forbidden request must not create anything")
	}
	if len(vectorStore.audits) != 0 || len(auditStore.entries) != 0 {
		t.Fatalf("forbidden request must not write an audit entry")
	}
}

func TestRoleChangeTakesEffectOnNextRequest(t *testing.T) {
	r, store, issuer, _, _ := adminRouter(t)
	user := addUser(t, store, "v@x.com", "Abcdef12", model.RoleViewer)

	// Token still carries the VIEWER claim, but the store row governs.
	token, err := issuer.IssueAccess("v@x.com", model.RoleViewer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	user.Role = model.RoleAdmin

	w := bearerRequest(r, http.MethodPost, "/collections", token, `{"name":"docs","vector_size":4}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("promoted user: expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequireRoleWithoutAuthUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	authSvc, _, _ := newTestAuthService(t)

	r := gin.New()
	r.POST("/admin", RequireRole(authSvc, model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no resolved user: expected 401, got %d", w.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/health", Health)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Header().Get(requestIDName) == "" {
		t.Fatalf("expected a generated request id header")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDName, "req-123")
	r.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDName); got != "req-123" {
		t.Fatalf("expected the supplied request id to be echoed, got %q", got)
	}
}
