package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	sheeterr "github.com/KirkDiggler/gurps-sheet-engine/internal/errors"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/sheetdoc"
)

// InMemoryRepository is an in-memory implementation of the sheet repository
// Useful for testing and for the CLI when no Redis URL is configured
type InMemoryRepository struct {
	mu     sync.RWMutex
	sheets map[string]*sheetdoc.Document
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		sheets: make(map[string]*sheetdoc.Document),
	}
}

// Create stores a new sheet document
func (r *InMemoryRepository) Create(ctx context.Context, doc *sheetdoc.Document) error {
	if err := checkDocument(doc); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sheets[doc.ID]; exists {
		return sheeterr.AlreadyExistsf("sheet with ID '%s' already exists", doc.ID).
			WithMeta(sheeterr.MetaSheetID, doc.ID)
	}

	stored, err := cloneDocument(doc)
	if err != nil {
		return err
	}
	r.sheets[doc.ID] = stored
	return nil
}

// Get retrieves a sheet document by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*sheetdoc.Document, error) {
	if id == "" {
		return nil, sheeterr.InvalidArgument("sheet ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.sheets[id]
	if !exists {
		return nil, sheeterr.NotFoundf("sheet with ID '%s' not found", id).
			WithMeta(sheeterr.MetaSheetID, id)
	}
	return cloneDocument(doc)
}

// GetByOwner retrieves all sheet documents for a specific owner, ordered by ID
func (r *InMemoryRepository) GetByOwner(ctx context.Context, ownerID string) ([]*sheetdoc.Document, error) {
	if ownerID == "" {
		return nil, sheeterr.InvalidArgument("owner ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*sheetdoc.Document
	for _, doc := range r.sheets {
		if doc.OwnerID != ownerID {
			continue
		}
		c, err := cloneDocument(doc)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update replaces an existing sheet document
func (r *InMemoryRepository) Update(ctx context.Context, doc *sheetdoc.Document) error {
	if err := checkDocument(doc); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sheets[doc.ID]; !exists {
		return sheeterr.NotFoundf("sheet with ID '%s' not found", doc.ID).
			WithMeta(sheeterr.MetaSheetID, doc.ID)
	}

	stored, err := cloneDocument(doc)
	if err != nil {
		return err
	}
	r.sheets[doc.ID] = stored
	return nil
}

// Delete removes a sheet document
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return sheeterr.InvalidArgument("sheet ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sheets[id]; !exists {
		return sheeterr.NotFoundf("sheet with ID '%s' not found", id).
			WithMeta(sheeterr.MetaSheetID, id)
	}
	delete(r.sheets, id)
	return nil
}

// cloneDocument deep copies through JSON so callers never share row slices
// with the stored value
func cloneDocument(doc *sheetdoc.Document) (*sheetdoc.Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to copy sheet %s: %w", doc.ID, err)
	}
	var c sheetdoc.Document
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to copy sheet %s: %w", doc.ID, err)
	}
	return &c, nil
}
