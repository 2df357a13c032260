package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/nyxwell/transmute/internal/observer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepositoryAppendInsertsRow(t *testing.T) {
	db, mock := newBunDBWithMock(t)
	repo := NewEventRepository(db)

	mock.ExpectExec("^INSERT INTO \"transmute_events\"").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := &observer.EventRecord{
		ExecutionID: "exec-1",
		EventType:   "edge_succeeded",
		SrcCat:      "A",
		DstCat:      "B",
		EdgeName:    "AtoB",
		Attempt:     1,
	}
	err := repo.Append(context.Background(), rec)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryRecentScopesToExecutionAndOrdersNewestFirst(t *testing.T) {
	db, mock := newBunDBWithMock(t)
	repo := NewEventRepository(db)

	columns := []string{"id", "execution_id", "event_type", "src_cat", "dst_cat", "edge_name", "attempt", "error", "metadata", "created_at"}
	rows := sqlmock.NewRows(columns).
		AddRow(int64(2), "exec-1", "edge_succeeded", "B", "C", "BtoC", 1, "", nil, time.Now()).
		AddRow(int64(1), "exec-1", "edge_succeeded", "A", "B", "AtoB", 1, "", nil, time.Now())
	mock.ExpectQuery("^SELECT (.+) FROM \"transmute_events\"").WillReturnRows(rows)

	got, err := repo.Recent(context.Background(), "exec-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "BtoC", got[0].EdgeName)
	assert.Equal(t, "AtoB", got[1].EdgeName)
}
