package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacy-pos/backend/internal/domain/sales"
	"github.com/pharmacy-pos/backend/internal/domain/shared"
)

func newTestCustomer(t *testing.T, name, phone string) *sales.Customer {
	customer, err := sales.NewCustomer(name, phone, "")
	require.NoError(t, err)
	return customer
}

func TestGormCustomerRepository_Save(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	t.Run("saves and finds by id", func(t *testing.T) {
		customer := newTestCustomer(t, "Awa Diallo", "+221771234567")
		require.NoError(t, repo.Save(ctx, customer))

		found, err := repo.FindByID(ctx, customer.ID)
		require.NoError(t, err)
		assert.Equal(t, "Awa Diallo", found.Name)
		assert.True(t, found.CreditBalance.IsZero())
	})

	t.Run("persists credit balance updates", func(t *testing.T) {
		customer := newTestCustomer(t, "Moussa Ba", "+221770000001")
		require.NoError(t, repo.Save(ctx, customer))

		customer.SetCreditBalance(decimal.NewFromInt(1500))
		require.NoError(t, repo.Save(ctx, customer))

		found, err := repo.FindByID(ctx, customer.ID)
		require.NoError(t, err)
		assert.True(t, found.CreditBalance.Equal(decimal.NewFromInt(1500)))
		assert.True(t, found.HasOutstandingCredit())
	})

	t.Run("not found for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormCustomerRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestCustomer(t, "Awa Diallo", "+221771234567")))
	require.NoError(t, repo.Save(ctx, newTestCustomer(t, "Moussa Ba", "+221770000001")))
	require.NoError(t, repo.Save(ctx, newTestCustomer(t, "Fatou Ndiaye", "+221765554433")))

	t.Run("lists in name order", func(t *testing.T) {
		found, err := repo.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, found, 3)
		assert.Equal(t, "Awa Diallo", found[0].Name)
		assert.Equal(t, "Fatou Ndiaye", found[1].Name)

		count, err := repo.Count(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("searches by name or phone", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "fatou"

		found, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Fatou Ndiaye", found[0].Name)

		filter.Search = "+22177"
		found, err = repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, found, 2)

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func TestGormCustomerRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	customer := newTestCustomer(t, "Awa Diallo", "+221771234567")
	require.NoError(t, repo.Save(ctx, customer))

	require.NoError(t, repo.Delete(ctx, customer.ID))

	_, err := repo.FindByID(ctx, customer.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = repo.Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
