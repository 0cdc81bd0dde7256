package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"affiliatelink-go/internal/config"
	"affiliatelink-go/internal/model"
)

func TestOpenDB_SQLiteFile(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "links.db")
	db, err := OpenDB(config.DBConfig{Driver: "sqlite", DSN: dsn, MaxOpenConns: 2}, zap.NewNop(), zap.NewAtomicLevel())
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB(db) })

	repo := NewLinkRepository(db)
	require.NoError(t, repo.Create(context.Background(), &model.AffiliateLink{TargetURL: "https://example.com", UniqueCode: "FILEDB01"}))
	exists, err := repo.ExistsByCode(context.Background(), "FILEDB01")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOpenDB_InvalidConfig(t *testing.T) {
	_, err := OpenDB(config.DBConfig{Driver: "oracle", DSN: "x"}, zap.NewNop(), zap.NewAtomicLevel())
	assert.ErrorContains(t, err, "unsupported db.driver")

	_, err = OpenDB(config.DBConfig{Driver: "sqlite"}, zap.NewNop(), zap.NewAtomicLevel())
	assert.ErrorContains(t, err, "db.dsn is required")
}

func TestCloseDBNil(t *testing.T) {
	assert.NoError(t, CloseDB(nil))
}
