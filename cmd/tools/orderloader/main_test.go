package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/chatdesk/backend/internal/config"
	"github.com/zhouzirui/chatdesk/backend/internal/store/sqlstore"
)

func TestRunLoadsOrders(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("order_id,email,status\nA-1,demo@example.com,shipped\nA-2,demo@example.com,pending\n"), 0o600))

	dbPath := filepath.Join(dir, "orders.db")
	n, err := run(context.Background(), config.StoreConfig{Driver: config.DriverSQLite, DSN: dbPath}, csvPath)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	db, err := sqlstore.Open(config.DriverSQLite, dbPath)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.Orders().FindByID(context.Background(), "A-2")
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
}

func TestRunMissingFile(t *testing.T) {
	_, err := run(context.Background(), config.StoreConfig{Driver: config.DriverSQLite, DSN: filepath.Join(t.TempDir(), "x.db")}, "does-not-exist.csv")
	require.Error(t, err)
}
