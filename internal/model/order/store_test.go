package order_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/chatdesk/backend/internal/model/order"
)

func TestMemoryStoreFindAndUpsert(t *testing.T) {
	ctx := context.Background()
	store := order.NewMemoryStore([]order.Order{{OrderID: "A-1", UserEmail: "a@example.com", Status: "shipped"}})

	got, err := store.FindByID(ctx, "A-1")
	require.NoError(t, err)
	assert.Equal(t, "shipped", got.Status)

	_, err = store.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)

	require.NoError(t, store.Upsert(ctx, []order.Order{
		{OrderID: "A-1", UserEmail: "a@example.com", Status: "delivered"},
		{OrderID: "A-0", UserEmail: "b@example.com", Status: "pending"},
	}))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A-0", all[0].OrderID)
	assert.Equal(t, "delivered", all[1].Status)
}

func TestReadCSV(t *testing.T) {
	input := "order_id,email,status,total\n" +
		"1001, buyer@example.com ,shipped,12.50\n" +
		",ghost@example.com,pending,0\n" +
		"1002,other@example.com,processing,3\n"

	orders, err := order.ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, order.Order{OrderID: "1001", UserEmail: "buyer@example.com", Status: "shipped"}, orders[0])
	assert.Equal(t, "1002", orders[1].OrderID)
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := order.ReadCSV(strings.NewReader("order_id,status\n1,shipped\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"email"`)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := order.ReadCSV(strings.NewReader(""))
	require.Error(t, err)
}
