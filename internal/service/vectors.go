package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/vector-admin/backend/internal/db"
	"github.com/vector-admin/backend/internal/model"
)

const (
	maxCollectionNameLength = 255
	defaultScrollLimit      = 10
	maxScrollLimit          = 1000
	defaultSearchLimit      = 10
	maxSearchLimit          = 100
	maxPayloadBytes         = 10000
	maxVectorElement        = 1e9
)

var collectionNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type VectorStore interface {
	ListCollections(ctx context.Context) ([]model.Collection, error)
	GetCollectionByName(ctx context.Context, name string) (*model.Collection, error)
	CreateCollectionAudited(ctx context.Context, name string, vectorSize int, distance model.Distance, entry *model.AuditEntry) (*model.Collection, error)
	DeleteCollectionAudited(ctx context.Context, name string, entry *model.AuditEntry) (bool, error)
	UpsertPointAudited(ctx context.Context, collectionID int64, point model.Point, entry *model.AuditEntry) error
	DeletePointsAudited(ctx context.Context, collectionID int64, ids []int64, entry *model.AuditEntry) (int64, error)
	ScrollPoints(ctx context.Context, collectionID int64, limit int) ([]model.Point, error)
	SearchPoints(ctx context.Context, col *model.Collection, vector []float32, limit int) ([]model.SearchHit, error)
}

// VectorService implements the collection, point and search operations.
// Every operation is coupled to an audit write: mutations commit their entry
// in the same transaction as the primary effect, audited reads fail when the
// entry cannot be recorded.
type VectorService struct {
	repo  VectorStore
	audit *AuditService
}

func NewVectorService(repo VectorStore, audit *AuditService) *VectorService {
	return &VectorService{repo: repo, audit: audit}
}

func validateCollectionName(name string) error {
	if name == "" || len(name) > maxCollectionNameLength || !collectionNameRe.MatchString(name) {
		return ErrInvalidInput
	}
	return nil
}

func validateVector(vector []float32, size int) error {
	if len(vector) != size {
		return ErrInvalidInput
	}
	for _, v := range vector {
		if v < -maxVectorElement || v > maxVectorElement {
			return ErrInvalidInput
		}
	}
	return nil
}

func (s *VectorService) getCollection(ctx context.Context, name string) (*model.Collection, error) {
	if err := validateCollectionName(name); err != nil {
		return nil, err
	}
	col, err := s.repo.GetCollectionByName(ctx, name)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return col, nil
}

func (s *VectorService) ListCollections(ctx context.Context, actor *model.User) ([]model.Collection, error) {
	collections, err := s.repo.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, actor.ID, "LIST_COLLECTIONS", "collections", nil); err != nil {
		return nil, err
	}
	return collections, nil
}

func (s *VectorService) CreateCollection(ctx context.Context, actor *model.User, req model.CreateCollectionRequest) (*model.Collection, error) {
	if err := validateCollectionName(req.Name); err != nil {
		return nil, err
	}
	if req.VectorSize < 1 {
		return nil, ErrInvalidInput
	}
	distance := req.Distance
	if distance == "" {
		distance = model.DistanceCosine
	}
	if !distance.Valid() {
		return nil, ErrInvalidInput
	}

	entry, err := newAuditEntry(actor.ID, "CREATE_COLLECTION", req.Name, nil)
	if err != nil {
		return nil, err
	}

	col, err := s.repo.CreateCollectionAudited(ctx, req.Name, req.VectorSize, distance, entry)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		if errors.Is(err, db.ErrAuditWrite) {
			return nil, fmt.Errorf("%w: %v", ErrAuditWriteFailed, err)
		}
		return nil, err
	}
	return col, nil
}

func (s *VectorService) DeleteCollection(ctx context.Context, actor *model.User, name string) error {
	if err := validateCollectionName(name); err != nil {
		return err
	}

	entry, err := newAuditEntry(actor.ID, "DELETE_COLLECTION", name, nil)
	if err != nil {
		return err
	}

	found, err := s.repo.DeleteCollectionAudited(ctx, name, entry)
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

func (s *VectorService) UpsertPoint(ctx context.Context, actor *model.User, req model.UpsertPointRequest) error {
	col, err := s.getCollection(ctx, req.Collection)
	if err != nil {
		return err
	}
	if req.ID < 1 {
		return ErrInvalidInput
	}
	if err := validateVector(req.Vector, col.VectorSize); err != nil {
		return err
	}
	if req.Payload != nil {
		encoded, err := json.Marshal(req.Payload)
		if err != nil || len(encoded) > maxPayloadBytes {
			return ErrInvalidInput
		}
	}

	entry, err := newAuditEntry(actor.ID, "UPSERT_POINT", req.Collection, map[string]any{"point_id": req.ID})
	if err != nil {
		return err
	}

	point := model.Point{ID: req.ID, Vector: req.Vector, Payload: req.Payload}
	if err := s.repo.UpsertPointAudited(ctx, col.ID, point, entry); err != nil {
		if errors.Is(err, db.ErrAuditWrite) {
			return fmt.Errorf("%w: %v", ErrAuditWriteFailed, err)
		}
		return err
	}
	return nil
}

func (s *VectorService) GetPoints(ctx context.Context, actor *model.User, collection string, limit int) ([]model.Point, error) {
	col, err := s.getCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultScrollLimit
	}
	if limit > maxScrollLimit {
		limit = maxScrollLimit
	}

	points, err := s.repo.ScrollPoints(ctx, col.ID, limit)
	if err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, actor.ID, "GET_POINTS", collection, map[string]any{"limit": limit}); err != nil {
		return nil, err
	}
	return points, nil
}

func (s *VectorService) DeletePoints(ctx context.Context, actor *model.User, req model.DeletePointsRequest) error {
	col, err := s.getCollection(ctx, req.Collection)
	if err != nil {
		return err
	}
	if len(req.IDs) == 0 {
		return ErrInvalidInput
	}

	entry, err := newAuditEntry(actor.ID, "DELETE_POINTS", req.Collection, map[string]any{"point_ids": req.IDs})
	if err != nil {
		return err
	}

	if _, err := s.repo.DeletePointsAudited(ctx, col.ID, req.IDs, entry); err != nil {
		if errors.Is(err, db.ErrAuditWrite) {
			return fmt.Errorf("%w: %v", ErrAuditWriteFailed, err)
		}
		return err
	}
	return nil
}

// Search runs a nearest-neighbor query. pgvector returns distances; the
// exposed score is 1-distance for Cosine, the negated <#> result for Dot,
// and the raw distance for Euclid and Manhattan, where the threshold acts
// as an upper bound instead of a lower one.
func (s *VectorService) Search(ctx context.Context, actor *model.User, req model.SearchRequest) ([]model.SearchHit, error) {
	col, err := s.getCollection(ctx, req.Collection)
	if err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}
	if limit < 1 || limit > maxSearchLimit {
		return nil, ErrInvalidInput
	}
	if err := validateVector(req.Vector, col.VectorSize); err != nil {
		return nil, err
	}
	if req.ScoreThreshold != nil && (*req.ScoreThreshold < 0 || *req.ScoreThreshold > 1) {
		return nil, ErrInvalidInput
	}

	raw, err := s.repo.SearchPoints(ctx, col, req.Vector, limit)
	if err != nil {
		return nil, err
	}

	withPayload := req.WithPayload == nil || *req.WithPayload
	hits := make([]model.SearchHit, 0, len(raw))
	for _, hit := range raw {
		hit.Score = scoreFromDistance(col.Distance, hit.Score)
		if req.ScoreThreshold != nil && !scoreMatches(col.Distance, hit.Score, *req.ScoreThreshold) {
			continue
		}
		if !withPayload {
			hit.Payload = nil
		}
		hits = append(hits, hit)
	}

	if err := s.audit.Record(ctx, actor.ID, "VECTOR_SEARCH", req.Collection, map[string]any{"limit": limit}); err != nil {
		return nil, err
	}
	return hits, nil
}

func scoreFromDistance(d model.Distance, distance float32) float32 {
	switch d {
	case model.DistanceCosine:
		return 1 - distance
	case model.DistanceDot:
		return -distance
	default:
		return distance
	}
}

func scoreMatches(d model.Distance, score, threshold float32) bool {
	switch d {
	case model.DistanceCosine, model.DistanceDot:
		return score >= threshold
	default:
		return score <= threshold
	}
}
