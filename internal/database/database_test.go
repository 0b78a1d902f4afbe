package database

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/base-14/examples/go/echo-product-catalog/internal/logging"
	"github.com/base-14/examples/go/echo-product-catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLite(t *testing.T) {
	ctx := context.Background()

	db, err := Connect(ctx, Config{Driver: DriverSQLite, DatabaseURL: ":memory:", MaxRetries: 1})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, CheckHealth(ctx, db))
	require.NoError(t, Migrate(ctx, db))
	assert.True(t, db.Migrator().HasTable(&models.Product{}))
}

func TestConnectLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(&bytes.Buffer{})

	badPath := filepath.Join(t.TempDir(), "missing", "dir", "catalog.db")

	_, err := Connect(context.Background(), Config{
		Driver:        DriverSQLite,
		DatabaseURL:   badPath,
		MaxRetries:    2,
		RetryInterval: 10 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "There was an error connecting to the database")
	assert.Contains(t, buf.String(), "database not reachable, retrying")
}

func TestConnectUnsupportedDriverIsNotRetried(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(&bytes.Buffer{})

	_, err := Connect(context.Background(), Config{Driver: "mysql", DatabaseURL: "x", MaxRetries: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
	assert.NotContains(t, buf.String(), "retrying")
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()

	db, err := Connect(ctx, Config{Driver: DriverSQLite, DatabaseURL: ":memory:"})
	require.NoError(t, err)
	defer Close(db)
	require.NoError(t, Migrate(ctx, db))

	require.NoError(t, Seed(ctx, db))
	require.NoError(t, Seed(ctx, db))

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}
