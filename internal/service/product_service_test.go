package service

import (
	"context"
	"testing"

	"repairpos/internal/dto"
	"repairpos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_SearchAndMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewProductService(f.products, f.movements)

	screen := f.product(t, "iPhone 12 Screen", "1500.00", 4)
	f.product(t, "USB-C Cable", "120.00", 30)

	list, err := svc.List(ctx, dto.ProductFilter{Query: "screen", Page: 1, Limit: 50})
	require.NoError(t, err)
	require.EqualValues(t, 1, list.Total)
	assert.Equal(t, screen.ID, list.Data[0].ID)

	_, err = f.ledger.Reserve(ctx, screen.ID, 1, MovementRef{Kind: model.MovementSale, Reference: "SAL00000001"})
	require.NoError(t, err)

	moves, err := svc.Movements(ctx, screen.ID, dto.MovementFilter{Page: 1, Limit: 100})
	require.NoError(t, err)
	require.Len(t, moves.Data, 1)
	assert.Equal(t, "sale", moves.Data[0].Kind)
	assert.Equal(t, -1, moves.Data[0].Quantity)
	assert.Equal(t, "SAL00000001", moves.Data[0].Reference)

	got, err := svc.Get(ctx, screen.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.StockQuantity)

	_, err = svc.Get(ctx, uuid.New())
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}
