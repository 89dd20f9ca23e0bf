package market_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"stock-insight/internal/market"
	"stock-insight/internal/store"
)

func mustPayload(t *testing.T, raw string) market.Payload {
	t.Helper()
	var p market.Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

const rejected = `{"Error Message": "Invalid API call. Please retry or visit the documentation."}`

func TestGetQuote_FallsBackAndStopsAtFirstUsable(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	provider := NewMockProvider(ctrl)
	gomock.InOrder(
		provider.EXPECT().
			Query(gomock.Any(), market.FunctionGlobalQuote, "RELIANCE").
			Return(mustPayload(t, rejected), nil),
		provider.EXPECT().
			Query(gomock.Any(), market.FunctionGlobalQuote, "RELIANCE.NS").
			Return(mustPayload(t, `{"Global Quote": {"01. symbol": "RELIANCE.NS", "05. price": "2950.40", "10. change percent": "1.23%"}}`), nil),
	)
	svc := market.NewService(provider, market.DefaultConfig(), nil)

	// Act
	q, err := svc.GetQuote(t.Context(), "reliance")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "RELIANCE.NS", q.Symbol)
	assert.InDelta(t, 2950.40, q.Price, 1e-9)
	assert.InDelta(t, 1.23, q.ChangePercent, 1e-9)
}

func TestGetFundamentals_AllVariantsFail(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	provider := NewMockProvider(ctrl)
	gomock.InOrder(
		provider.EXPECT().Query(gomock.Any(), market.FunctionOverview, "ZZZZ").Return(mustPayload(t, `{}`), nil),
		provider.EXPECT().Query(gomock.Any(), market.FunctionOverview, "ZZZZ.NS").Return(mustPayload(t, `{"Note": "slow down"}`), nil),
		provider.EXPECT().Query(gomock.Any(), market.FunctionOverview, "ZZZZ.BSE").Return(nil, errors.New("connection reset")),
	)
	svc := market.NewService(provider, market.DefaultConfig(), nil)

	// Act
	_, err := svc.GetFundamentals(t.Context(), "ZZZZ")

	// Assert
	require.ErrorIs(t, err, market.ErrNotFound)
	var nf *market.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, market.KindOverview, nf.Kind)
	assert.Equal(t, "ZZZZ", nf.Symbol)
	require.Len(t, nf.Attempts, 3)
	assert.Equal(t, market.OutcomeEmpty, nf.Attempts[0].Outcome)
	assert.Equal(t, market.OutcomeRejected, nf.Attempts[1].Outcome)
	assert.Equal(t, market.OutcomeEmpty, nf.Attempts[2].Outcome)
	assert.Contains(t, err.Error(), "overview for ZZZZ not found")
}

func TestGetTimeSeries_NotFoundNamesKind(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	provider := NewMockProvider(ctrl)
	provider.EXPECT().
		Query(gomock.Any(), market.FunctionTimeSeriesDaily, gomock.Any()).
		Return(mustPayload(t, rejected), nil).
		Times(3)
	svc := market.NewService(provider, market.DefaultConfig(), nil)

	// Act
	_, err := svc.GetTimeSeries(t.Context(), "NOPE", market.Timeframe1Y)

	// Assert
	var nf *market.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, market.KindTimeSeries, nf.Kind)
}

func TestGetTimeSeries_TransportFailureFallsThrough(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	provider := NewMockProvider(ctrl)
	gomock.InOrder(
		provider.EXPECT().
			Query(gomock.Any(), market.FunctionTimeSeriesDaily, "TCS").
			Return(nil, &market.TransportError{Variant: "TCS", StatusCode: 503}),
		provider.EXPECT().
			Query(gomock.Any(), market.FunctionTimeSeriesDaily, "TCS.NS").
			Return(mustPayload(t, `{"Time Series (Daily)": {
				"2024-01-02": {"4. close": "2"},
				"2024-01-01": {"4. close": "1"}
			}}`), nil),
	)
	svc := market.NewService(provider, market.DefaultConfig(), nil)

	// Act
	ts, err := svc.GetTimeSeries(t.Context(), "TCS", "bogus")

	// Assert
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.Equal(t, "2024-01-01", ts[0].Date)
	assert.Equal(t, "2024-01-02", ts[1].Date)
}

func TestGetQuote_EmptySymbol(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	provider := NewMockProvider(ctrl)
	svc := market.NewService(provider, market.Config{}, nil)

	_, err := svc.GetQuote(t.Context(), "   ")
	require.ErrorIs(t, err, market.ErrEmptySymbol)
}

func TestGetQuote_CanceledContext(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	provider := NewMockProvider(ctrl)
	svc := market.NewService(provider, market.Config{}, nil)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := svc.GetQuote(ctx, "AAPL")
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, market.ErrNotFound)
}

func TestService_RecordsLookups(t *testing.T) {
	t.Parallel()

	// Arrange
	st, err := store.Open(filepath.Join(t.TempDir(), "lookups.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctrl := gomock.NewController(t)
	provider := NewMockProvider(ctrl)
	provider.EXPECT().
		Query(gomock.Any(), market.FunctionGlobalQuote, "AAPL").
		Return(mustPayload(t, `{"Global Quote": {"01. symbol": "AAPL", "05. price": "190"}}`), nil)
	provider.EXPECT().
		Query(gomock.Any(), market.FunctionOverview, gomock.Any()).
		Return(mustPayload(t, `{}`), nil).
		Times(3)
	svc := market.NewService(provider, market.DefaultConfig(), st)

	// Act
	_, err = svc.GetQuote(t.Context(), "AAPL")
	require.NoError(t, err)
	_, err = svc.GetFundamentals(t.Context(), "AAPL")
	require.Error(t, err)

	// Assert
	rows, err := st.QueryLookups("AAPL", "", 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byKind := map[string]store.LookupRecord{}
	for _, r := range rows {
		byKind[r.Kind] = r
	}
	assert.Equal(t, store.OutcomeResolved, byKind["quote"].Outcome)
	assert.Equal(t, "AAPL", byKind["quote"].Variant)
	assert.Equal(t, 1, byKind["quote"].Attempts)
	assert.Equal(t, store.OutcomeNotFound, byKind["overview"].Outcome)
	assert.Equal(t, 3, byKind["overview"].Attempts)
	assert.Empty(t, byKind["overview"].Variant)
}
