package db

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/stretchr/testify/require"
)

func newTestDao(t *testing.T) *DbDao {
	if testing.Short() {
		t.Skip("skip postgres integration test in short mode")
	}
	db, err := GetDbConn("storefront", "localhost", "5432", "royce", "password")
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	dao := NewDbDao(db)
	require.NoError(t, dao.InitMigrate())
	return dao
}

func TestDbDao_InitMigrate(t *testing.T) {
	dao := newTestDao(t)
	require.True(t, dao.Migrator().HasTable(&KVEntry{}))
}

func TestKVStore(t *testing.T) {
	dao := newTestDao(t)
	store := NewKVStore(dao)
	ctx := context.Background()
	key := "test-orders"
	t.Cleanup(func() { _ = store.Delete(ctx, key) })

	_, err := store.Get(ctx, key)
	require.ErrorIs(t, err, repository.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, key, []byte(`[1]`)))
	require.NoError(t, store.Set(ctx, key, []byte(`[1,2]`)))

	data, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, `[1,2]`, string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	require.ErrorIs(t, err, repository.ErrKeyNotFound)
}
