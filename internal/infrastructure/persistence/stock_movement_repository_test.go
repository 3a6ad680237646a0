package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacy-pos/backend/internal/domain/catalog"
	"github.com/pharmacy-pos/backend/internal/domain/shared"
)

func TestGormStockMovementRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockMovementRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	lotID := uuid.New()
	otherLotID := uuid.New()

	record := func(lot uuid.UUID, movementType catalog.MovementType, quantity int64, createdAt time.Time) *catalog.StockMovement {
		movement, err := catalog.NewStockMovement(lot, productID, movementType, quantity, "sale", "Sale test")
		require.NoError(t, err)
		movement.CreatedAt = createdAt
		require.NoError(t, repo.Record(ctx, movement))
		return movement
	}

	base := time.Now().Add(-time.Hour)
	first := record(lotID, catalog.MovementTypeOut, 5, base)
	second := record(lotID, catalog.MovementTypeIn, 5, base.Add(10*time.Minute))
	record(otherLotID, catalog.MovementTypeOut, 2, base.Add(20*time.Minute))

	t.Run("finds lot journal newest first", func(t *testing.T) {
		found, err := repo.FindByLot(ctx, lotID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, second.ID, found[0].ID)
		assert.Equal(t, first.ID, found[1].ID)
		assert.Equal(t, catalog.MovementTypeIn, found[0].Type)
	})

	t.Run("finds product journal across lots", func(t *testing.T) {
		found, err := repo.FindByProduct(ctx, productID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, found, 3)
	})

	t.Run("paginates the journal", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 2

		found, err := repo.FindByProduct(ctx, productID, filter)
		require.NoError(t, err)
		assert.Len(t, found, 2)

		filter.Page = 2
		found, err = repo.FindByProduct(ctx, productID, filter)
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("empty journal for unknown lot", func(t *testing.T) {
		found, err := repo.FindByLot(ctx, uuid.New(), shared.DefaultFilter())
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}
