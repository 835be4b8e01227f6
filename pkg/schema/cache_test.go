package schema

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bridgeline-data/sqlbridge/pkg/adapters/executor"
	"github.com/bridgeline-data/sqlbridge/pkg/apperrors"
	"github.com/bridgeline-data/sqlbridge/pkg/dialect"
	"github.com/bridgeline-data/sqlbridge/pkg/testhelpers"
)

func loadedCache(t *testing.T, d dialect.Dialect) (*Cache, *testhelpers.FakeExecutor) {
	t.Helper()
	fake := &testhelpers.FakeExecutor{Respond: testhelpers.SchemaResponder(d)}
	cache := NewCache(d, fake, zaptest.NewLogger(t))
	require.NoError(t, cache.Refresh(context.Background()))
	return cache, fake
}

func TestCacheRefreshDiscoversTables(t *testing.T) {
	cache, _ := loadedCache(t, dialect.MySQL{})
	assert.Equal(t, []string{"users", "orders"}, cache.TableNames())
}

func TestDescribeMatchesColumnNames(t *testing.T) {
	for _, d := range []dialect.Dialect{dialect.MySQL{}, dialect.SQLServer{}} {
		t.Run(string(d.Kind()), func(t *testing.T) {
			cache, _ := loadedCache(t, d)

			cols, err := cache.Describe("users")
			require.NoError(t, err)
			names, err := cache.ColumnNames("users")
			require.NoError(t, err)

			require.Len(t, names, len(cols))
			for i, col := range cols {
				assert.Equal(t, col.Name, names[i])
			}
			assert.Equal(t, []string{"id", "name", "age", "created_at"}, names)
		})
	}
}

func TestDescribeParsesColumnMetadata(t *testing.T) {
	cache, _ := loadedCache(t, dialect.MySQL{})

	cols, err := cache.Describe("users")
	require.NoError(t, err)

	id := cols[0]
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, "int", id.DataType)
	assert.Nil(t, id.MaxLength)
	assert.False(t, id.Nullable)
	assert.True(t, id.IsPrimaryKey)

	name := cols[1]
	require.NotNil(t, name.MaxLength)
	assert.Equal(t, 50, *name.MaxLength)
	assert.False(t, name.IsPrimaryKey)

	age := cols[2]
	assert.True(t, age.Nullable)
}

func TestDescribeUnknownTable(t *testing.T) {
	cache, _ := loadedCache(t, dialect.MySQL{})

	_, err := cache.Describe("missing")
	assert.ErrorIs(t, err, apperrors.ErrUnknownTable)

	_, err = cache.ColumnNames("missing")
	assert.ErrorIs(t, err, apperrors.ErrUnknownTable)

	_, err = cache.PrimaryKeyColumn("missing")
	assert.ErrorIs(t, err, apperrors.ErrUnknownTable)
}

func TestPrimaryKeyColumn(t *testing.T) {
	cache, _ := loadedCache(t, dialect.MySQL{})

	pk, err := cache.PrimaryKeyColumn("users")
	require.NoError(t, err)
	assert.Equal(t, "id", pk)

	// No column of orders is flagged, so lookup must fail.
	_, err = cache.PrimaryKeyColumn("orders")
	assert.ErrorIs(t, err, apperrors.ErrNoPrimaryKey)
}

func TestRefreshKeepsPriorStateOnEmptyResult(t *testing.T) {
	cache, fake := loadedCache(t, dialect.MySQL{})

	// A transient empty introspection result must not wipe the cache.
	fake.Respond = func(string) (*executor.Result, error) {
		return executor.Empty(), nil
	}
	require.NoError(t, cache.Refresh(context.Background()))

	assert.Equal(t, []string{"users", "orders"}, cache.TableNames())
	_, err := cache.Describe("users")
	assert.NoError(t, err)
}

func TestRefreshKeepsPriorStateOnFailure(t *testing.T) {
	cache, fake := loadedCache(t, dialect.MySQL{})

	fake.Respond = func(string) (*executor.Result, error) {
		return nil, errors.New("connection reset")
	}
	err := cache.Refresh(context.Background())
	assert.Error(t, err)

	assert.Equal(t, []string{"users", "orders"}, cache.TableNames())
	pk, pkErr := cache.PrimaryKeyColumn("users")
	require.NoError(t, pkErr)
	assert.Equal(t, "id", pk)
}

func TestUnparseableMaxLengthIsAbsent(t *testing.T) {
	d := dialect.MySQL{}
	base := testhelpers.SchemaResponder(d)
	fake := &testhelpers.FakeExecutor{
		Respond: func(stmt string) (*executor.Result, error) {
			if stmt == d.TableNamesQuery() {
				return testhelpers.TabularResult([]string{"table_name"},
					map[string]any{"table_name": "notes"}), nil
			}
			if stmt == d.ColumnsQuery("notes") {
				return testhelpers.TabularResult(
					[]string{"column_name", "data_type", "max_length", "is_nullable", "key_marker"},
					map[string]any{"column_name": "body", "data_type": "text", "max_length": "garbage", "is_nullable": "YES", "key_marker": nil},
				), nil
			}
			return base(stmt)
		},
	}

	cache := NewCache(d, fake, zaptest.NewLogger(t))
	require.NoError(t, cache.Refresh(context.Background()))

	cols, err := cache.Describe("notes")
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Nil(t, cols[0].MaxLength)
}

func TestTableNamesReturnsCopy(t *testing.T) {
	cache, _ := loadedCache(t, dialect.MySQL{})

	names := cache.TableNames()
	names[0] = "mutated"
	assert.Equal(t, []string{"users", "orders"}, cache.TableNames())
}

func TestConcurrentReadsDuringRefresh(t *testing.T) {
	cache, _ := loadedCache(t, dialect.MySQL{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				names := cache.TableNames()
				// Readers may see stale state, never partial state.
				assert.Len(t, names, 2)
				if _, err := cache.Describe("users"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, cache.Refresh(context.Background()))
	}
	wg.Wait()
}
