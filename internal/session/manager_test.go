package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-insight/internal/market"
	"stock-insight/internal/session"
)

func TestManager_Lifecycle(t *testing.T) {
	t.Parallel()

	m := session.NewManager(&fakeFetcher{}, 2, market.Timeframe3M)

	s, err := m.Create()
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, market.Timeframe3M, s.Snapshot().Timeframe)

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, m.Delete(s.ID()))
	_, err = m.Get(s.ID())
	require.ErrorIs(t, err, session.ErrSessionNotFound)
	require.ErrorIs(t, m.Delete(s.ID()), session.ErrSessionNotFound)
}

func TestManager_Limit(t *testing.T) {
	t.Parallel()

	m := session.NewManager(&fakeFetcher{}, 2, "")

	a, err := m.Create()
	require.NoError(t, err)
	b, err := m.Create()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())

	_, err = m.Create()
	require.ErrorIs(t, err, session.ErrSessionLimit)
	assert.Equal(t, 2, m.Len())

	require.NoError(t, m.Delete(a.ID()))
	_, err = m.Create()
	require.NoError(t, err)
}
