package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "lookups.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestInsertAndQueryLookups(t *testing.T) {
	st := openTemp(t)

	require.NoError(t, st.InsertLookup(LookupRecord{TS: 100, Symbol: "AAPL", Kind: "quote", Variant: "AAPL", Outcome: OutcomeResolved, Attempts: 1, LatencyMs: 12}))
	require.NoError(t, st.InsertLookup(LookupRecord{TS: 200, Symbol: "AAPL", Kind: "overview", Outcome: OutcomeNotFound, Attempts: 3, Error: "overview for AAPL not found"}))
	require.NoError(t, st.InsertLookup(LookupRecord{TS: 300, Symbol: "INFY", Kind: "quote", Variant: "INFY.NS", Outcome: OutcomeResolved, Attempts: 2}))

	all, err := st.QueryLookups("", "", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "INFY", all[0].Symbol)
	assert.Equal(t, int64(100), all[2].TS)
	assert.NotEmpty(t, all[0].CreatedAt)

	aapl, err := st.QueryLookups("AAPL", "", 10, 0)
	require.NoError(t, err)
	require.Len(t, aapl, 2)
	assert.Equal(t, "overview", aapl[0].Kind)
	assert.Equal(t, "overview for AAPL not found", aapl[0].Error)

	quotes, err := st.QueryLookups("", "quote", 10, 0)
	require.NoError(t, err)
	assert.Len(t, quotes, 2)

	page, err := st.QueryLookups("", "", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(200), page[0].TS)
}

func TestInsertLookup_DefaultsTimestamp(t *testing.T) {
	st := openTemp(t)

	require.NoError(t, st.InsertLookup(LookupRecord{Symbol: "MSFT", Kind: "time-series", Outcome: OutcomeError}))

	rows, err := st.QueryLookups("MSFT", "", 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NotZero(t, rows[0].TS)
}

func TestNilStore(t *testing.T) {
	var st *Store

	require.NoError(t, st.InsertLookup(LookupRecord{Symbol: "AAPL"}))
	require.NoError(t, st.Close())
	_, err := st.QueryLookups("", "", 10, 0)
	require.Error(t, err)
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookups.db")

	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.InsertLookup(LookupRecord{TS: 1, Symbol: "AAPL", Kind: "quote", Outcome: OutcomeResolved}))
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	rows, err := st.QueryLookups("AAPL", "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
