package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesFileAndTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkb.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, 0, countSnapshots(t, s))
}

func TestOpen_ReopenKeepsSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkb.db")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "open %d", i)
		_, err = s.Load(ctx)
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 1, countSnapshots(t, s), "defaults are stored once")
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open("/nonexistent/dir/pkb.db")
	assert.Error(t, err)

	_, err = Open(filepath.Join(t.TempDir(), "pkb.db"), WithDefaults([]byte(`{"settings": {}}`)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid default dataset")
}

func TestClose(t *testing.T) {
	assert.NoError(t, (&Store{}).Close())

	s, err := Open(filepath.Join(t.TempDir(), "pkb.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_ = s.Close()
}

func TestPragmas(t *testing.T) {
	s, _, _ := createTestStore(t)

	tests := []struct {
		name, want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"user_version", "1"},
	}
	for _, tt := range tests {
		got, err := s.pragma(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestMigrate_FromUnversionedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkb.db")

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(schemaSQL)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	version, err := s.pragma("user_version")
	require.NoError(t, err)
	assert.Equal(t, "1", version)

	var name string
	err = s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'snapshots'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "idx_snapshots_fingerprint", name)
}
