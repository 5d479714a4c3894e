package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/migrations"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add lot index", "add_lot_index"},
		{"Add-Lot-Index", "add_lot_index"},
		{"add__lot__index", "add_lot_index"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "special_chars"},
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
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

	first, err := CreateMigration(dir, "add lot index", "Index inventory items by lot", now)
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_lot_index.up.sql"), first.UpPath)

	content, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Index inventory items by lot")
	assert.Contains(t, string(content), "2026-10-15T09:30:00Z")

	second, err := CreateMigration(dir, "add gate index", "", now)
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)

	_, err = CreateMigration(dir, "!!!", "", now)
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("orders pairs by version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"000002_b.up.sql":   {},
			"000002_b.down.sql": {},
			"000001_a.up.sql":   {},
			"README.md":         {},
		}
		files, err := ListMigrations(fsys)
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, "a", files[0].Name)
		assert.Empty(t, files[0].DownPath)
		assert.Equal(t, "000002_b.down.sql", files[1].DownPath)
	})

	t.Run("down without up is rejected", func(t *testing.T) {
		_, err := ListMigrations(fstest.MapFS{"000003_c.down.sql": {}})
		assert.Error(t, err)
	})

	t.Run("embedded schema is complete", func(t *testing.T) {
		files, err := ListMigrations(migrations.FS)
		require.NoError(t, err)
		require.Len(t, files, 4)
		for i, f := range files {
			assert.Equal(t, uint(i+1), f.Version)
			assert.NotEmpty(t, f.DownPath, f.Name)
		}
	})
}
