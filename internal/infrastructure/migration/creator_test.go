package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- test"), 0o644))
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add quote status", "add_quote_status"},
		{"Add-Quote-Status", "add_quote_status"},
		{"ADD_QUOTE_STATUS", "add_quote_status"},
		{"add__quote__status", "add_quote_status"},
		{"Add Stage 123", "add_stage_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add owner title", "Add a title column to opportunity owners")
	require.NoError(t, err)

	assert.Equal(t, "000001", mf.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_owner_title.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_owner_title.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add owner title\n")
	assert.Contains(t, string(up), "-- Version: 000001")
	assert.Contains(t, string(up), "Add a title column to opportunity owners")
	assert.Contains(t, string(up), "Write your UP migration SQL here")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")
	assert.Contains(t, string(down), "Rollback for Add a title column")
	assert.Contains(t, string(down), "Write your DOWN migration SQL here")
}

func TestCreateMigration_NextVersion(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "000001_create_crm_schema.up.sql", "000007_add_index.up.sql", "notes.up.sql")

	mf, err := CreateMigration(dir, "add stage history", "")
	require.NoError(t, err)
	assert.Equal(t, "000008", mf.Version)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "init", "")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateMigration(dir, "!!!", "")
	assert.Error(t, err)

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"000003_add_quote_status.up.sql", "000003_add_quote_status.down.sql",
		"000001_init_schema.up.sql", "000001_init_schema.down.sql",
		"000002_add_owner_title.up.sql", "000002_add_owner_title.down.sql",
		"README.md", ".gitkeep",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0o755))

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"000001_init_schema",
		"000002_add_owner_title",
		"000003_add_quote_status",
	}, names)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	names, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListMigrationsFS(t *testing.T) {
	fsys := fstest.MapFS{
		"db/000002_b.up.sql":   {},
		"db/000002_b.down.sql": {},
		"db/000001_a.up.sql":   {},
		"db/.up.sql":           {},
	}

	names, err := listMigrationsFS(fsys, "db")
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_a", "000002_b"}, names)
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := ListEmbeddedMigrations()
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_create_crm_schema"}, names)

	up, err := EmbeddedMigrations.ReadFile("sql/000001_create_crm_schema.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"id_sequences", "customers", "opportunities"} {
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+table)
	}

	down, err := EmbeddedMigrations.ReadFile("sql/000001_create_crm_schema.down.sql")
	require.NoError(t, err)
	assert.Contains(t, string(down), "DROP TABLE IF EXISTS opportunities")
}
