package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bridgeline-data/sqlbridge/pkg/apperrors"
	"github.com/bridgeline-data/sqlbridge/pkg/dialect"
	"github.com/bridgeline-data/sqlbridge/pkg/predicate"
	"github.com/bridgeline-data/sqlbridge/pkg/schema"
	"github.com/bridgeline-data/sqlbridge/pkg/testhelpers"
)

func intp(v int) *int { return &v }

func newBuilder(t *testing.T, d dialect.Dialect) *Builder {
	t.Helper()
	fake := &testhelpers.FakeExecutor{Respond: testhelpers.SchemaResponder(d)}
	cache := schema.NewCache(d, fake, zaptest.NewLogger(t))
	require.NoError(t, cache.Refresh(context.Background()))
	return New(d, cache)
}

func TestSelectUnknownTable(t *testing.T) {
	b := newBuilder(t, dialect.MySQL{})
	_, err := b.Select("missing", SelectOptions{})
	assert.ErrorIs(t, err, apperrors.ErrUnknownTable)
}

func TestSelectMySQL(t *testing.T) {
	b := newBuilder(t, dialect.MySQL{})

	stmt, err := b.Select("users", SelectOptions{
		Filter:     predicate.Compare("age", predicate.GreaterThan, 30),
		OrderBy:    "ORDER BY id",
		Start:      intp(0),
		MaxResults: intp(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE age>'30' ORDER BY id LIMIT 0,10", stmt)
}

func TestSelectSQLServerWindowed(t *testing.T) {
	b := newBuilder(t, dialect.SQLServer{})

	stmt, err := b.Select("users", SelectOptions{
		OrderBy:    "ORDER BY id",
		Start:      intp(10),
		MaxResults: intp(10),
	})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT * FROM (SELECT *, ROW_NUMBER() OVER (ORDER BY id) AS __row_num__ FROM users) AS __paged__ WHERE __row_num__ >= 10 AND __row_num__ <= 20 ORDER BY __row_num__",
		stmt)

	_, err = b.Select("users", SelectOptions{Start: intp(10)})
	assert.ErrorIs(t, err, apperrors.ErrMissingOrderBy)
}

func TestSelectSanitizesFieldList(t *testing.T) {
	b := newBuilder(t, dialect.SQLServer{})

	stmt, err := b.Select("users", SelectOptions{Fields: []string{"id--", "name"}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name FROM users", stmt)
}

func TestInsert(t *testing.T) {
	b := newBuilder(t, dialect.SQLServer{})

	plan, err := b.Insert("users", map[string]any{"name": "Ann", "age": 30})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO users (age, name) OUTPUT INSERTED.* VALUES ('30', 'Ann')", plan.Statement)
	assert.False(t, plan.NeedsFetch)
}

func TestInsertMySQLNeedsFetch(t *testing.T) {
	b := newBuilder(t, dialect.MySQL{})

	plan, err := b.Insert("users", map[string]any{"name": "Ann", "age": 30})
	require.NoError(t, err)
	assert.Equal(t,
		"START TRANSACTION; INSERT INTO users (age, name) VALUES ('30', 'Ann'); SELECT LAST_INSERT_ID() AS last_insert_id; COMMIT;",
		plan.Statement)
	assert.True(t, plan.NeedsFetch)
}

func TestInsertUnknownColumn(t *testing.T) {
	b := newBuilder(t, dialect.MySQL{})

	_, err := b.Insert("users", map[string]any{"name": "Ann", "nickname": "A"})
	require.ErrorIs(t, err, apperrors.ErrUnknownColumn)
	assert.Contains(t, err.Error(), "users.nickname")
}

func TestUpdate(t *testing.T) {
	b := newBuilder(t, dialect.MySQL{})

	stmt, err := b.Update("users", map[string]any{"age": 31},
		predicate.Compare("name", predicate.Equals, "Ann"))
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET age='31' WHERE name='Ann'", stmt)

	// A nil filter updates every row; only delete refuses that.
	stmt, err = b.Update("users", map[string]any{"age": 31}, nil)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET age='31'", stmt)

	_, err = b.Update("users", map[string]any{"nickname": "A"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrUnknownColumn)
}

func TestDeleteRequiresFilter(t *testing.T) {
	b := newBuilder(t, dialect.SQLServer{})

	_, err := b.Delete("users", nil)
	assert.ErrorIs(t, err, apperrors.ErrMissingFilter)

	stmt, err := b.Delete("users", predicate.Compare("name", predicate.Equals, "Ann"))
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM users WITH (ROWLOCK) WHERE name='Ann'", stmt)
}

func TestTruncate(t *testing.T) {
	b := newBuilder(t, dialect.MySQL{})

	stmt, err := b.Truncate("users")
	require.NoError(t, err)
	assert.Equal(t, "TRUNCATE TABLE users", stmt)

	_, err = b.Truncate("missing")
	assert.ErrorIs(t, err, apperrors.ErrUnknownTable)
}
