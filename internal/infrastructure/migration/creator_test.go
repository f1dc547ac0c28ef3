package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/backend/migrations"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add receipts table", "add_receipts_table"},
		{"Add-Receipts-Table", "add_receipts_table"},
		{"ADD_RECEIPTS_TABLE", "add_receipts_table"},
		{"add__receipts__table", "add_receipts_table"},
		{"Index PO 2026", "index_po_2026"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestNextVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"000001_create_catalog_tables.up.sql":    {},
		"000001_create_catalog_tables.down.sql":  {},
		"000007_add_index.up.sql":                {},
		"000007_add_index.down.sql":              {},
		"notes.txt":                              {},
		"legacy_without_number.up.sql":           {},
		"000003_create_purchase_orders.up.sql":   {},
		"000003_create_purchase_orders.down.sql": {},
	}

	next, err := NextVersion(fsys)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), next)

	next, err = NextVersion(fstest.MapFS{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next)
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000002_existing.up.sql"), nil, 0o644))

	mf, err := CreateMigration(dir, "add receipts table", "Track goods receipts")
	require.NoError(t, err)

	assert.Equal(t, "000003", mf.Version)
	assert.Equal(t, "000003_add_receipts_table.up.sql", filepath.Base(mf.UpPath))
	assert.Equal(t, "000003_add_receipts_table.down.sql", filepath.Base(mf.DownPath))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(up), "-- add receipts table (up)"))
	assert.Contains(t, string(up), "-- Track goods receipts")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(down)")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	mf, err := CreateMigration(dir, "initial", "")
	require.NoError(t, err)
	assert.Equal(t, "000001", mf.Version)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.NotContains(t, string(up), "-- \n")
}

func TestListMigrations(t *testing.T) {
	names, err := ListMigrations(osDirFS(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, names)

	names, err = ListMigrations(fstest.MapFS{
		"000002_b.up.sql":     {},
		"000002_b.down.sql":   {},
		"000001_a.up.sql":     {},
		"sub/000009_x.up.sql": {},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_a", "000002_b"}, names)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	names, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		_, err := migrations.FS.ReadFile(name + ".down.sql")
		assert.NoError(t, err, "missing down file for %s", name)
	}

	schema, err := migrations.FS.ReadFile("000002_create_purchase_orders.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(schema), "uq_purchase_orders_tenant_number")
}
