package service

import (
	"context"
	"testing"

	"repairpos/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerService_CreateAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCustomerService(f.customers, f.clock.Now)

	malee, err := svc.Create(ctx, dto.CustomerRequest{
		Name:  "  Malee Srisuk ",
		Phone: "0812345678",
		Email: "malee@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Malee Srisuk", malee.Name)
	require.NotNil(t, malee.Phone)
	assert.Equal(t, "0812345678", *malee.Phone)
	assert.Nil(t, malee.Address)

	_, err = svc.Create(ctx, dto.CustomerRequest{Name: "Boonmee Kaew", Phone: "0899999999"})
	require.NoError(t, err)

	byName, err := svc.List(ctx, dto.CustomerFilter{Query: "MALEE", Page: 1, Limit: 50})
	require.NoError(t, err)
	require.EqualValues(t, 1, byName.Total)
	assert.Equal(t, malee.ID, byName.Data[0].ID)

	byPhone, err := svc.List(ctx, dto.CustomerFilter{Query: "08999"})
	require.NoError(t, err)
	require.Len(t, byPhone.Data, 1)
	assert.Equal(t, "Boonmee Kaew", byPhone.Data[0].Name)
	assert.Equal(t, 1, byPhone.Page)
	assert.Equal(t, 50, byPhone.Limit)

	// fixture walk-in plus the two above, ordered by name
	all, err := svc.List(ctx, dto.CustomerFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	require.EqualValues(t, 3, all.Total)
	assert.Equal(t, "Boonmee Kaew", all.Data[0].Name)
	assert.Equal(t, "Malee Srisuk", all.Data[1].Name)
	assert.Equal(t, "Walk-in", all.Data[2].Name)

	_, err = svc.Create(ctx, dto.CustomerRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestCustomerService_GetAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCustomerService(f.customers, f.clock.Now)

	got, err := svc.Get(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Walk-in", got.Name)

	updated, err := svc.Update(ctx, f.customer.ID, dto.CustomerRequest{
		Name:    "Walk-in Counter",
		Address: "12 Sukhumvit Rd",
	})
	require.NoError(t, err)
	assert.Equal(t, "Walk-in Counter", updated.Name)
	require.NotNil(t, updated.Address)

	reread, err := svc.Get(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Walk-in Counter", reread.Name)
	require.NotNil(t, reread.Address)
	assert.Equal(t, "12 Sukhumvit Rd", *reread.Address)
	assert.Nil(t, reread.Phone)

	var nf *NotFoundError
	_, err = svc.Get(ctx, uuid.New())
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindCustomer, nf.Kind)

	_, err = svc.Update(ctx, uuid.New(), dto.CustomerRequest{Name: "Nobody"})
	assert.ErrorAs(t, err, &nf)
}
