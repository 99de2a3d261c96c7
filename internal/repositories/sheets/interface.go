package sheets

//go:generate mockgen -destination=mock/mock.go -package=mocksheets -source=interface.go

import (
	"context"
	"time"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/sheetdoc"
)

// Repository defines the interface for sheet document persistence
type Repository interface {
	// Create stores a new sheet document
	Create(ctx context.Context, doc *sheetdoc.Document) error

	// Get retrieves a sheet document by ID
	Get(ctx context.Context, id string) (*sheetdoc.Document, error)

	// GetByOwner retrieves all sheet documents for a specific owner
	GetByOwner(ctx context.Context, ownerID string) ([]*sheetdoc.Document, error)

	// Update replaces an existing sheet document
	Update(ctx context.Context, doc *sheetdoc.Document) error

	// Delete removes a sheet document
	Delete(ctx context.Context, id string) error
}

// TimeProvider supplies the timestamps written alongside stored documents
type TimeProvider interface {
	Now() time.Time
}

type utcClock struct{}

func (utcClock) Now() time.Time {
	return time.Now().UTC()
}
