package sqlstore_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/chatdesk/backend/internal/model/chat"
	"github.com/zhouzirui/chatdesk/backend/internal/model/order"
	"github.com/zhouzirui/chatdesk/backend/internal/store/sqlstore"
	"github.com/zhouzirui/chatdesk/backend/internal/store/storetest"
)

var dbSeq atomic.Int64

func openTestStore(t *testing.T, users []chat.User) *sqlstore.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:chatdesk_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	store, err := sqlstore.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.SeedUsers(ctx, users))
	return store
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T, users []chat.User) storetest.Store {
		return openTestStore(t, users)
	})
}

func TestSeedUsersIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, chat.SeedUsers())

	require.NoError(t, store.SeedUsers(ctx, chat.SeedUsers()))

	user, err := store.FindUser(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "support@example.com", user.Email)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := sqlstore.Open("postgres", "")
	require.Error(t, err)
}

func TestOrderStore(t *testing.T) {
	ctx := context.Background()
	orders := openTestStore(t, nil).Orders()

	require.NoError(t, orders.Upsert(ctx, []order.Order{
		{OrderID: "B-2", UserEmail: "b@example.com", Status: "pending"},
		{OrderID: "A-1", UserEmail: "a@example.com", Status: "shipped"},
	}))
	require.NoError(t, orders.Upsert(ctx, []order.Order{
		{OrderID: "B-2", UserEmail: "b@example.com", Status: "delivered"},
	}))
	require.NoError(t, orders.Upsert(ctx, nil))

	got, err := orders.FindByID(ctx, "B-2")
	require.NoError(t, err)
	assert.Equal(t, "delivered", got.Status)

	_, err = orders.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)

	all, err := orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A-1", all[0].OrderID)
}
