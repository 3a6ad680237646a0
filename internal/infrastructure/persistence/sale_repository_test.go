package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacy-pos/backend/internal/domain/sales"
	"github.com/pharmacy-pos/backend/internal/domain/shared"
)

func newTestSale(t *testing.T, customerID *uuid.UUID) *sales.Sale {
	sale := sales.NewSale(customerID, time.Now())

	lotID := uuid.New()
	lots := []sales.SaleItemLot{
		{
			BaseEntity: shared.NewBaseEntity(),
			LotID:      lotID,
			Quantity:   3,
			UnitPrice:  decimal.NewFromInt(1000),
		},
	}
	_, err := sale.AddItem(uuid.New(), 3, decimal.NewFromInt(1000), decimal.NewFromInt(3000), lots)
	require.NoError(t, err)
	require.NoError(t, sale.RecalculateTotals())
	return sale
}

func TestGormSaleRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	t.Run("round-trips the full aggregate", func(t *testing.T) {
		sale := newTestSale(t, nil)
		_, err := sale.AddPayment(decimal.NewFromInt(2000), sales.PaymentMethodCash)
		require.NoError(t, err)
		require.NoError(t, sale.RecalculateTotals())
		require.NoError(t, repo.Save(ctx, sale))

		found, err := repo.FindByID(ctx, sale.ID)
		require.NoError(t, err)
		require.Len(t, found.Items, 1)
		require.Len(t, found.Items[0].LotsUsed, 1)
		require.Len(t, found.Payments, 1)
		assert.Equal(t, int64(3), found.Items[0].Quantity)
		assert.Equal(t, sale.Items[0].LotsUsed[0].LotID, found.Items[0].LotsUsed[0].LotID)
		assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(3000)))
		assert.True(t, found.BalanceDue.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, sales.SaleStatusPartial, found.Status)
	})

	t.Run("not found for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormSaleRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	withCustomer := newTestSale(t, &customerID)
	require.NoError(t, repo.Save(ctx, withCustomer))
	anonymous := newTestSale(t, nil)
	require.NoError(t, repo.Save(ctx, anonymous))

	t.Run("returns all sales with items preloaded", func(t *testing.T) {
		found, err := repo.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Len(t, found[0].Items, 1)

		count, err := repo.Count(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("filters by customer", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters = map[string]interface{}{"customer_id": customerID}

		found, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, withCustomer.ID, found[0].ID)
	})

	t.Run("filters by status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters = map[string]interface{}{"status": string(sales.SaleStatusDraft)}

		found, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("filters by date range", func(t *testing.T) {
		now := time.Now()
		filter := shared.DefaultFilter()
		filter.Filters = map[string]interface{}{
			"date_from": now.AddDate(0, 0, -1),
			"date_to":   now.AddDate(0, 0, 1),
		}

		found, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, found, 2)

		filter.Filters = map[string]interface{}{"date_to": now.AddDate(0, 0, -7)}
		found, err = repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestGormSaleRepository_ReplaceContents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	sale := newTestSale(t, nil)
	_, err := sale.AddPayment(decimal.NewFromInt(3000), sales.PaymentMethodCash)
	require.NoError(t, err)
	require.NoError(t, sale.RecalculateTotals())
	require.NoError(t, repo.Save(ctx, sale))
	oldItemID := sale.Items[0].ID

	sale.ClearItems()
	sale.Payments = nil
	newLots := []sales.SaleItemLot{
		{
			BaseEntity: shared.NewBaseEntity(),
			LotID:      uuid.New(),
			Quantity:   5,
			UnitPrice:  decimal.NewFromInt(1200),
		},
	}
	_, err = sale.AddItem(uuid.New(), 5, decimal.NewFromInt(1200), decimal.NewFromInt(6000), newLots)
	require.NoError(t, err)
	require.NoError(t, sale.RecalculateTotals())
	require.NoError(t, repo.ReplaceContents(ctx, sale))

	found, err := repo.FindByID(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.NotEqual(t, oldItemID, found.Items[0].ID)
	assert.Equal(t, int64(5), found.Items[0].Quantity)
	assert.Empty(t, found.Payments)
	assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(6000)))

	// Old item rows and their lot usage must be gone
	var itemCount int64
	require.NoError(t, db.Table("sale_items").Where("sale_id = ?", sale.ID).Count(&itemCount).Error)
	assert.Equal(t, int64(1), itemCount)
	var lotRowCount int64
	require.NoError(t, db.Table("sale_item_lots").Where("sale_item_id = ?", oldItemID).Count(&lotRowCount).Error)
	assert.Equal(t, int64(0), lotRowCount)
}

func TestGormSaleRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	sale := newTestSale(t, nil)
	require.NoError(t, repo.Save(ctx, sale))

	require.NoError(t, repo.Delete(ctx, sale.ID))

	_, err := repo.FindByID(ctx, sale.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var itemCount int64
	require.NoError(t, db.Table("sale_items").Where("sale_id = ?", sale.ID).Count(&itemCount).Error)
	assert.Equal(t, int64(0), itemCount)

	t.Run("not found for unknown id", func(t *testing.T) {
		err := repo.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormSaleRepository_OutstandingBalanceByCustomer(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	customerID := uuid.New()

	t.Run("zero with no sales", func(t *testing.T) {
		balance, err := repo.OutstandingBalanceByCustomer(ctx, customerID)
		require.NoError(t, err)
		assert.True(t, balance.IsZero())
	})

	t.Run("sums positive balances across sales", func(t *testing.T) {
		unpaid := newTestSale(t, &customerID)
		require.NoError(t, repo.Save(ctx, unpaid))

		partlyPaid := newTestSale(t, &customerID)
		_, err := partlyPaid.AddPayment(decimal.NewFromInt(2500), sales.PaymentMethodMobileMoney)
		require.NoError(t, err)
		require.NoError(t, partlyPaid.RecalculateTotals())
		require.NoError(t, repo.Save(ctx, partlyPaid))

		settled := newTestSale(t, &customerID)
		_, err = settled.AddPayment(decimal.NewFromInt(3000), sales.PaymentMethodCash)
		require.NoError(t, err)
		require.NoError(t, settled.RecalculateTotals())
		require.NoError(t, repo.Save(ctx, settled))

		otherCustomer := uuid.New()
		other := newTestSale(t, &otherCustomer)
		require.NoError(t, repo.Save(ctx, other))

		balance, err := repo.OutstandingBalanceByCustomer(ctx, customerID)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(3500)), "got %s", balance)
	})
}
