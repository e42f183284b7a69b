package iocache

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/maintinsight/maintinsight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, dbPath, table string) bool {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestMigrateAnalysis_NoneBackend(t *testing.T) {
	err := MigrateAnalysis(&bytes.Buffer{}, schema.NoneBackend, "", -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateAnalysis_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")
	var out bytes.Buffer

	// Run migration to latest version
	require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, out.String(), "to version 3")
	for _, table := range analysisTables {
		assert.True(t, tableExists(t, dbPath, table), table)
	}

	// Run migration again (should be a no-op)
	out.Reset()
	require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, out.String(), "No migration needed")

	// Step down to version 1 keeps only the runs table
	require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, dbPath, 1))
	assert.True(t, tableExists(t, dbPath, analysisRunsTable))
	assert.False(t, tableExists(t, dbPath, monthlyBucketsTable))

	// Rollback to version 0
	require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, dbPath, 0))
	assert.False(t, tableExists(t, dbPath, analysisRunsTable))

	// Migrate back up to version 3
	require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, dbPath, 3))
	assert.True(t, tableExists(t, dbPath, scoredRecordsTable))
}

func TestMigrateAnalysis_CompatibleWithStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "analysis.db")
	require.NoError(t, MigrateAnalysis(&bytes.Buffer{}, schema.SQLiteBackend, dbPath, -1))

	// The store opens a migrated database without recreating tables
	store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.BeginAnalysis("batch", "fleet.csv", time.Now(), nil)
	assert.NoError(t, err)
}

func TestMigrateAnalysis_SQLiteInMemory(t *testing.T) {
	require.NoError(t, MigrateAnalysis(&bytes.Buffer{}, schema.SQLiteBackend, ":memory:", -1))
}
