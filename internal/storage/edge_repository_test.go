package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/nyxwell/transmute/pkg/transmute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeRepositorySaveInsertsRow(t *testing.T) {
	db, mock := newBunDBWithMock(t)
	repo := NewEdgeRepository(db)

	mock.ExpectExec("^INSERT INTO \"transmute_edges\"").
		WillReturnResult(sqlmock.NewResult(1, 1))

	e := &transmute.Edge{Name: "AtoB", Cost: 1, CatIn: transmute.CatKey("A"), CatOut: transmute.CatKey("B")}
	err := repo.Save(context.Background(), e, "builtin.identity")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEdgeRepositoryListReturnsRows(t *testing.T) {
	db, mock := newBunDBWithMock(t)
	repo := NewEdgeRepository(db)

	columns := []string{"id", "name", "cost", "cat_in", "cat_out", "req_in", "prov_out", "func_ref", "created_at"}
	rows := sqlmock.NewRows(columns).
		AddRow(int64(1), "AtoB", 1.0, "A", "B", "{}", "{}", "builtin.identity", time.Now())
	mock.ExpectQuery("^SELECT (.+) FROM \"transmute_edges\"").WillReturnRows(rows)

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "AtoB", got[0].Name)
	assert.Equal(t, "builtin.identity", got[0].FuncRef)
}

func TestEdgeRepositoryRehydrateRegistersResolvedEdges(t *testing.T) {
	db, mock := newBunDBWithMock(t)
	repo := NewEdgeRepository(db)

	columns := []string{"id", "name", "cost", "cat_in", "cat_out", "req_in", "prov_out", "func_ref", "created_at"}
	rows := sqlmock.NewRows(columns).
		AddRow(int64(1), "AtoB", 1.0, "A", "B", "{}", "{}", "builtin.identity", time.Now())
	mock.ExpectQuery("^SELECT (.+) FROM \"transmute_edges\"").WillReturnRows(rows)

	funcs := NewFunctionRegistry()
	funcs.Register("builtin.identity", func(v any) (any, error) { return v, nil })

	reg := transmute.NewRegistry()
	n, err := repo.Rehydrate(context.Background(), reg, funcs)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok := reg.EdgeByName("AtoB")
	assert.True(t, ok)
}

func TestEdgeRepositoryRehydrateFailsOnUnknownFunction(t *testing.T) {
	db, mock := newBunDBWithMock(t)
	repo := NewEdgeRepository(db)

	columns := []string{"id", "name", "cost", "cat_in", "cat_out", "req_in", "prov_out", "func_ref", "created_at"}
	rows := sqlmock.NewRows(columns).
		AddRow(int64(1), "AtoB", 1.0, "A", "B", "{}", "{}", "builtin.missing", time.Now())
	mock.ExpectQuery("^SELECT (.+) FROM \"transmute_edges\"").WillReturnRows(rows)

	reg := transmute.NewRegistry()
	_, err := repo.Rehydrate(context.Background(), reg, NewFunctionRegistry())
	require.ErrorIs(t, err, ErrUnknownFunction)
}
