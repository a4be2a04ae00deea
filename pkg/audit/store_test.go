package audit

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/statusline/pkg/model"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS public.statusline_operations")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store, err := NewStore(context.Background(), sqlx.NewDb(db, "postgres"), zap.NewNop())
	require.NoError(t, err)
	return store, mock
}

func testOperations() []model.FieldOperation {
	now := time.Now()
	return []model.FieldOperation{
		{
			RunID:         "run-1",
			Position:      2,
			Trigger:       "Schweiz",
			Operation:     model.OperationRuleRewrite,
			OriginalValue: "Kanton Zürich",
			NewValue:      "Winterthur ZH",
			Reason:        "location_rule",
			CleanedAt:     now,
		},
		{
			RunID:         "run-1",
			Position:      1,
			Operation:     model.OperationFieldDeletion,
			OriginalValue: "Winterthur",
			Reason:        "marked_by_rule",
			CleanedAt:     now,
		},
	}
}

func TestNewStore_RejectsNil(t *testing.T) {
	_, err := NewStore(context.Background(), nil, zap.NewNop())
	assert.Error(t, err)

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewStore(context.Background(), sqlx.NewDb(db, "postgres"), nil)
	assert.Error(t, err)
}

func TestNewStore_SetupFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS")).
		WillReturnError(errors.New("permission denied"))

	_, err = NewStore(context.Background(), sqlx.NewDb(db, "postgres"), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RecordOperations(t *testing.T) {
	store, mock := newMockStore(t)
	ops := testOperations()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO public.statusline_operations"))
	prep.ExpectExec().
		WithArgs("run-1", 2, "Schweiz", model.OperationRuleRewrite, "Kanton Zürich", "Winterthur ZH", "location_rule", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs("run-1", 1, "", model.OperationFieldDeletion, "Winterthur", "", "marked_by_rule", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, store.RecordOperations(context.Background(), ops))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RecordOperations_RollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO public.statusline_operations"))
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.RecordOperations(context.Background(), testOperations())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RecordOperations_Empty(t *testing.T) {
	store, mock := newMockStore(t)

	require.NoError(t, store.RecordOperations(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
