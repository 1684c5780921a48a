package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-edarshan/internal/config"
	"ms-edarshan/internal/logger"
)

func TestPrepareSQLiteCreatesSchema(t *testing.T) {
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Prepare(ctx, config.DatabaseConfig{Driver: "sqlite"}, db, logger.NewNop()))

	var count int
	err = db.NewRaw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'bookings'").Scan(ctx, &count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPrepareSkipsWhenAutoMigrateDisabled(t *testing.T) {
	// no connection is made, so a nil handle is fine
	err := Prepare(context.Background(), config.DatabaseConfig{Driver: "postgres", AutoMigrate: false}, nil, logger.NewNop())
	assert.NoError(t, err)
}
