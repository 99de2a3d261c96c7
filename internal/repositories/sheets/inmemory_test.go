package sheets_test

import (
	"context"
	"testing"

	sheeterr "github.com/KirkDiggler/gurps-sheet-engine/internal/errors"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/repositories/sheets"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/sheetdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDoc(id, ownerID string) *sheetdoc.Document {
	return &sheetdoc.Document{
		ID:          id,
		OwnerID:     ownerID,
		Name:        "Sheet " + id,
		TotalPoints: 100,
		Advantages:  []sheetdoc.RowData{{Name: "Fit", Type: "advantage", BasePoints: 5}},
	}
}

func TestInMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := sheets.NewInMemoryRepository()

	t.Run("create and get", func(t *testing.T) {
		doc := newDoc("a", "owner-1")
		require.NoError(t, repo.Create(ctx, doc))

		got, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, doc, got)
	})

	t.Run("stored copies are isolated", func(t *testing.T) {
		got, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		got.Advantages[0].Name = "Changed"

		again, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "Fit", again.Advantages[0].Name)
	})

	t.Run("duplicate create fails", func(t *testing.T) {
		err := repo.Create(ctx, newDoc("a", "owner-1"))
		assert.True(t, sheeterr.IsAlreadyExists(err))
	})

	t.Run("get by owner", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newDoc("c", "owner-1")))
		require.NoError(t, repo.Create(ctx, newDoc("b", "owner-2")))

		got, err := repo.GetByOwner(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "c", got[1].ID)
	})

	t.Run("update", func(t *testing.T) {
		doc := newDoc("a", "owner-2")
		doc.TotalPoints = 125
		require.NoError(t, repo.Update(ctx, doc))

		got, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 125, got.TotalPoints)

		owned, err := repo.GetByOwner(ctx, "owner-2")
		require.NoError(t, err)
		assert.Len(t, owned, 2)
	})

	t.Run("update missing", func(t *testing.T) {
		err := repo.Update(ctx, newDoc("zzz", "owner-1"))
		assert.True(t, sheeterr.IsNotFound(err))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "a"))
		_, err := repo.Get(ctx, "a")
		assert.True(t, sheeterr.IsNotFound(err))
		assert.True(t, sheeterr.IsNotFound(repo.Delete(ctx, "a")))
	})

	t.Run("invalid arguments", func(t *testing.T) {
		assert.True(t, sheeterr.IsInvalidArgument(repo.Create(ctx, nil)))
		_, err := repo.Get(ctx, "")
		assert.True(t, sheeterr.IsInvalidArgument(err))
		_, err = repo.GetByOwner(ctx, "")
		assert.True(t, sheeterr.IsInvalidArgument(err))
	})
}
