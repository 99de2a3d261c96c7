// Package sheet loads stored sheet documents, applies row edits and
// persists the recalculated result.
package sheet

import (
	"context"
	"log"
	"strings"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/attribute"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/rules"
	domain "github.com/KirkDiggler/gurps-sheet-engine/internal/domain/sheet"
	sheeterr "github.com/KirkDiggler/gurps-sheet-engine/internal/errors"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/events"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/metrics"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/repositories/sheets"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/sheetdoc"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/uuid"
	"github.com/agnivade/levenshtein"
)

type Repository = sheets.Repository

// Service is the entry point for everything that reads or edits a stored sheet
type Service interface {
	// Create validates doc, assigns missing ids and stores it
	Create(ctx context.Context, doc *sheetdoc.Document) (*Summary, error)

	// Get loads and summarizes a stored sheet
	Get(ctx context.Context, id string) (*Summary, error)

	// List summarizes every sheet owned by ownerID
	List(ctx context.Context, ownerID string) ([]*Summary, error)

	// Load builds a live sheet from storage
	Load(ctx context.Context, id string) (*domain.Sheet, error)

	// SetEquipped equips or unequips an equipment row
	SetEquipped(ctx context.Context, id, rowID string, equipped bool) ([]events.Change, error)

	// SetEnabled enables or disables an advantage row
	SetEnabled(ctx context.Context, id, rowID string, enabled bool) ([]events.Change, error)

	// SetQuantity changes the count of an equipment row
	SetQuantity(ctx context.Context, id, rowID string, quantity int) ([]events.Change, error)

	// Attribute returns one resolved attribute
	Attribute(ctx context.Context, id, attrID string) (*AttributeSummary, error)

	// Delete removes a stored sheet
	Delete(ctx context.Context, id string) error
}

type service struct {
	repository    Repository
	defaults      rules.Settings
	defs          []attribute.Def
	uuidGenerator uuid.Generator
	recorder      metrics.Recorder
}

// ServiceConfig holds the dependencies of the sheet service
type ServiceConfig struct {
	Repository    Repository       // Required
	Defaults      rules.Settings   // Settings for documents that do not carry their own
	Defs          []attribute.Def  // Optional, defaults to attribute.StandardDefs
	UUIDGenerator uuid.Generator   // Optional, defaults to google uuids
	Recorder      metrics.Recorder // Optional
}

// NewService creates a sheet service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("ServiceConfig cannot be nil")
	}
	if cfg.Repository == nil {
		panic("repository is required")
	}

	svc := &service{
		repository:    cfg.Repository,
		defaults:      cfg.Defaults.Normalize(),
		defs:          cfg.Defs,
		uuidGenerator: cfg.UUIDGenerator,
		recorder:      cfg.Recorder,
	}
	if len(svc.defs) == 0 {
		svc.defs = attribute.StandardDefs()
	}
	if svc.uuidGenerator == nil {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if svc.recorder == nil {
		svc.recorder = metrics.Nop{}
	}

	return svc
}

func (s *service) options() *sheetdoc.Options {
	return &sheetdoc.Options{
		Defaults:      s.defaults,
		Defs:          s.defs,
		UUIDGenerator: s.uuidGenerator,
		Recorder:      s.recorder,
	}
}

// Create validates doc, assigns missing ids and stores it
func (s *service) Create(ctx context.Context, doc *sheetdoc.Document) (*Summary, error) {
	if doc == nil {
		return nil, sheeterr.InvalidArgument("sheet document is required")
	}
	if doc.OwnerID == "" {
		return nil, sheeterr.InvalidArgument("owner ID is required")
	}
	if doc.ID == "" {
		doc.ID = s.uuidGenerator.New()
	}

	live, err := doc.ToSheet(s.options())
	if err != nil {
		return nil, sheeterr.Wrapf(err, "invalid sheet %s", doc.ID)
	}

	// Store the canonical form so generated row ids survive reloads
	if err := s.repository.Create(ctx, sheetdoc.FromSheet(live)); err != nil {
		return nil, sheeterr.Wrap(err, "failed to store sheet")
	}

	log.Printf("SheetService: Created sheet %s (%s) for owner %s", live.ID, live.Name, live.OwnerID)
	return Summarize(live), nil
}

// Get loads and summarizes a stored sheet
func (s *service) Get(ctx context.Context, id string) (*Summary, error) {
	live, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return Summarize(live), nil
}

// List summarizes every sheet owned by ownerID
func (s *service) List(ctx context.Context, ownerID string) ([]*Summary, error) {
	docs, err := s.repository.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, sheeterr.Wrapf(err, "failed to list sheets for %s", ownerID)
	}

	summaries := make([]*Summary, 0, len(docs))
	for _, doc := range docs {
		live, err := doc.ToSheet(s.options())
		if err != nil {
			log.Printf("SheetService: Skipping unreadable sheet %s: %v", doc.ID, err)
			continue
		}
		summaries = append(summaries, Summarize(live))
	}
	return summaries, nil
}

// Load builds a live sheet from storage
func (s *service) Load(ctx context.Context, id string) (*domain.Sheet, error) {
	if id == "" {
		return nil, sheeterr.InvalidArgument("sheet ID is required")
	}

	doc, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	live, err := doc.ToSheet(s.options())
	if err != nil {
		return nil, sheeterr.Wrapf(err, "stored sheet %s is invalid", id).
			WithMeta(sheeterr.MetaSheetID, id)
	}
	return live, nil
}

// SetEquipped equips or unequips an equipment row
func (s *service) SetEquipped(ctx context.Context, id, rowID string, equipped bool) ([]events.Change, error) {
	return s.edit(ctx, id, rowID, func(live *domain.Sheet) error {
		return live.Store().SetEquipped(rowID, equipped)
	})
}

// SetEnabled enables or disables an advantage row
func (s *service) SetEnabled(ctx context.Context, id, rowID string, enabled bool) ([]events.Change, error) {
	return s.edit(ctx, id, rowID, func(live *domain.Sheet) error {
		return live.Store().SetEnabled(rowID, enabled)
	})
}

// SetQuantity changes the count of an equipment row
func (s *service) SetQuantity(ctx context.Context, id, rowID string, quantity int) ([]events.Change, error) {
	return s.edit(ctx, id, rowID, func(live *domain.Sheet) error {
		return live.Store().SetQuantity(rowID, quantity)
	})
}

// edit applies fn to a freshly loaded sheet, recalculates and stores the
// result when anything derived changed
func (s *service) edit(ctx context.Context, id, rowID string, fn func(*domain.Sheet) error) ([]events.Change, error) {
	if rowID == "" {
		return nil, sheeterr.InvalidArgument("row ID is required")
	}

	live, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(live); err != nil {
		return nil, sheeterr.Wrapf(err, "failed to edit row %s", rowID).
			WithMeta(sheeterr.MetaSheetID, id).
			WithMeta(sheeterr.MetaRowID, rowID)
	}

	if live.State() == domain.Clean {
		return nil, nil
	}

	changes := live.Recalculate()
	if err := s.repository.Update(ctx, sheetdoc.FromSheet(live)); err != nil {
		return nil, sheeterr.Wrap(err, "failed to store sheet")
	}

	log.Printf("SheetService: Edited row %s on sheet %s, %d derived values changed", rowID, id, len(changes))
	return changes, nil
}

// Attribute returns one resolved attribute. Unknown ids carry the closest
// known id as a suggestion.
func (s *service) Attribute(ctx context.Context, id, attrID string) (*AttributeSummary, error) {
	live, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := Summarize(live)
	for i := range summary.Attributes {
		if strings.EqualFold(summary.Attributes[i].ID, attrID) {
			return &summary.Attributes[i], nil
		}
	}

	notFound := sheeterr.NotFoundf("attribute %q is not defined", attrID).
		WithMeta(sheeterr.MetaSheetID, id).
		WithMeta(sheeterr.MetaAttributeID, attrID)
	if suggestion := closestAttribute(live.Attributes().Defs(), attrID); suggestion != "" {
		notFound = notFound.WithMeta(sheeterr.MetaSuggestion, suggestion)
	}
	return nil, notFound
}

// Delete removes a stored sheet
func (s *service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return sheeterr.InvalidArgument("sheet ID is required")
	}
	return s.repository.Delete(ctx, id)
}

// closestAttribute matches input against attribute ids and names and returns
// the id of the nearest one within the edit distance limit
func closestAttribute(defs []attribute.Def, input string) string {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return ""
	}

	best := ""
	bestDist := -1
	for _, def := range defs {
		for _, candidate := range []string{def.ID, strings.ToLower(def.Name)} {
			dist := levenshtein.ComputeDistance(in, candidate)
			if dist > levenshteinLimit(len(candidate)) {
				continue
			}
			if bestDist < 0 || dist < bestDist {
				best, bestDist = def.ID, dist
			}
		}
	}
	return best
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
