package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	cfg := Config{
		DSN:             ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 30 * time.Second,
	}

	store, err := NewSQLiteStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestSQLiteStore_LoadSave(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	t.Run("missing slot", func(t *testing.T) {
		val, found, err := store.Load(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, val)
	})

	t.Run("save and load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "k1", "v1"))
		val, found, err := store.Load(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "v1", val)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "k2", "first"))
		require.NoError(t, store.Save(ctx, "k2", "second"))
		val, _, err := store.Load(ctx, "k2")
		require.NoError(t, err)
		assert.Equal(t, "second", val)

		var count int
		require.NoError(t, store.db.Get(&count, "SELECT COUNT(*) FROM slots WHERE key = ?", "k2"))
		assert.Equal(t, 1, count)
	})

	t.Run("empty value is stored", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "k3", ""))
		val, found, err := store.Load(ctx, "k3")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, val)
	})
}

func TestSQLiteStore_Persistent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(ctx, Config{DSN: dbPath})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "articles", `[{"id":"1"}]`))
	require.NoError(t, store.Close())

	// reopen, schema creation is idempotent and data survives
	store, err = NewSQLiteStore(ctx, Config{DSN: dbPath})
	require.NoError(t, err)
	defer store.Close()
	val, found, err := store.Load(ctx, "articles")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"1"}]`, val)
}

func TestSQLiteStore_ConcurrentSave(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "concurrent.db")
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, Config{DSN: dbPath, MaxOpenConns: 1})
	require.NoError(t, err)
	defer store.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Save(ctx, fmt.Sprintf("key-%d", i%3), fmt.Sprintf("val-%d", i)))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 3; i++ {
		_, found, err := store.Load(ctx, fmt.Sprintf("key-%d", i))
		require.NoError(t, err)
		assert.True(t, found)
	}
}

func TestSQLiteStore_ClosedDB(t *testing.T) {
	store, err := NewSQLiteStore(context.Background(), Config{DSN: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.Save(context.Background(), "k", "v")
	require.Error(t, err)
	_, _, err = store.Load(context.Background(), "k")
	require.Error(t, err)
}

func TestIsLockError(t *testing.T) {
	assert.False(t, isLockError(nil))
	assert.True(t, isLockError(fmt.Errorf("exec: database is locked (5) (SQLITE_BUSY)")))
	assert.True(t, isLockError(fmt.Errorf("database table is locked")))
	assert.False(t, isLockError(fmt.Errorf("no such table")))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, found, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Save(ctx, "k", "v"))
	val, found, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", val)
}
