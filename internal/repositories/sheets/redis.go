package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	sheeterr "github.com/KirkDiggler/gurps-sheet-engine/internal/errors"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/sheetdoc"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentLoads bounds the parallel Gets issued by GetByOwner
const maxConcurrentLoads = 8

// Data is the stored form of a sheet document in Redis
type Data struct {
	Document  *sheetdoc.Document `json:"document"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type redisRepo struct {
	client       redis.UniversalClient
	timeProvider TimeProvider
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client       redis.UniversalClient
	TimeProvider TimeProvider
}

// NewRedisRepository creates a new Redis-backed sheet repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}

	var clock TimeProvider = utcClock{}
	if cfg.TimeProvider != nil {
		clock = cfg.TimeProvider
	}

	return &redisRepo{
		client:       cfg.Client,
		timeProvider: clock,
	}
}

func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("sheet:%s", id)
}

func (r *redisRepo) ownerSheetsKey(ownerID string) string {
	return fmt.Sprintf("owner:%s:sheets", ownerID)
}

// Create stores a new sheet document
func (r *redisRepo) Create(ctx context.Context, doc *sheetdoc.Document) error {
	if err := checkDocument(doc); err != nil {
		return err
	}

	exists, err := r.client.Exists(ctx, r.key(doc.ID)).Result()
	if err != nil {
		return unavailable(err, "failed to check sheet existence")
	}
	if exists > 0 {
		return sheeterr.AlreadyExistsf("sheet with ID '%s' already exists", doc.ID).
			WithMeta(sheeterr.MetaSheetID, doc.ID)
	}

	now := r.timeProvider.Now()
	jsonData, err := json.Marshal(Data{Document: doc, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return fmt.Errorf("failed to marshal sheet: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(doc.ID), string(jsonData), 0)
	pipe.SAdd(ctx, r.ownerSheetsKey(doc.OwnerID), doc.ID)
	if _, err = pipe.Exec(ctx); err != nil {
		return unavailable(err, "failed to create sheet")
	}

	return nil
}

// Get retrieves a sheet document by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*sheetdoc.Document, error) {
	data, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return data.Document, nil
}

func (r *redisRepo) load(ctx context.Context, id string) (*Data, error) {
	if id == "" {
		return nil, sheeterr.InvalidArgument("sheet ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(id)).Result()
	if err == redis.Nil {
		return nil, sheeterr.NotFoundf("sheet with ID '%s' not found", id).
			WithMeta(sheeterr.MetaSheetID, id)
	}
	if err != nil {
		return nil, unavailable(err, "failed to get sheet")
	}

	var data Data
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sheet %s: %w", id, err)
	}
	if data.Document == nil {
		return nil, sheeterr.Internalf("sheet %s has no document", id).
			WithMeta(sheeterr.MetaSheetID, id)
	}
	return &data, nil
}

// GetByOwner retrieves all sheet documents for a specific owner. Index
// entries whose document can no longer be loaded are skipped.
func (r *redisRepo) GetByOwner(ctx context.Context, ownerID string) ([]*sheetdoc.Document, error) {
	if ownerID == "" {
		return nil, sheeterr.InvalidArgument("owner ID is required")
	}

	ids, err := r.client.SMembers(ctx, r.ownerSheetsKey(ownerID)).Result()
	if err != nil {
		return nil, unavailable(err, "failed to list sheet IDs")
	}

	loaded := make([]*sheetdoc.Document, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, id := range ids {
		g.Go(func() error {
			doc, err := r.Get(gctx, id)
			if err != nil {
				if sheeterr.IsNotFound(err) {
					log.Printf("SheetRepository: Skipping stale index entry %s for owner %s", id, ownerID)
					return nil
				}
				return fmt.Errorf("failed to get sheet %s: %w", id, err)
			}
			loaded[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs := make([]*sheetdoc.Document, 0, len(loaded))
	for _, doc := range loaded {
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Update replaces an existing sheet document, keeping its creation time
func (r *redisRepo) Update(ctx context.Context, doc *sheetdoc.Document) error {
	if err := checkDocument(doc); err != nil {
		return err
	}

	existing, err := r.load(ctx, doc.ID)
	if err != nil {
		return err
	}

	jsonData, err := json.Marshal(Data{
		Document:  doc,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: r.timeProvider.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sheet: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(doc.ID), string(jsonData), 0)
	if previous := existing.Document.OwnerID; previous != doc.OwnerID {
		pipe.SRem(ctx, r.ownerSheetsKey(previous), doc.ID)
		pipe.SAdd(ctx, r.ownerSheetsKey(doc.OwnerID), doc.ID)
	}
	if _, err = pipe.Exec(ctx); err != nil {
		return unavailable(err, "failed to update sheet")
	}

	return nil
}

// Delete removes a sheet document and its owner index entry
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	existing, err := r.load(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.key(id))
	pipe.SRem(ctx, r.ownerSheetsKey(existing.Document.OwnerID), id)
	if _, err = pipe.Exec(ctx); err != nil {
		return unavailable(err, "failed to delete sheet")
	}

	return nil
}

func checkDocument(doc *sheetdoc.Document) error {
	if doc == nil {
		return sheeterr.InvalidArgument("sheet document cannot be nil")
	}
	if doc.ID == "" {
		return sheeterr.InvalidArgument("sheet ID is required")
	}
	if doc.OwnerID == "" {
		return sheeterr.InvalidArgument("sheet owner ID is required").
			WithMeta(sheeterr.MetaSheetID, doc.ID)
	}
	return nil
}

func unavailable(err error, message string) error {
	return sheeterr.WrapWithCode(err, sheeterr.CodeUnavailable, message)
}
