package pebble

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syntrixbase/itemdeck/internal/state"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path, nil)
	require.NoError(t, err)
	return s
}

func TestStore_EmptyRead(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	defer s.Close(context.Background())

	got, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, state.Empty(), got)
}

func TestStore_RoundTripAndReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := openTestStore(t, dir)
	out, err := s.Replace(ctx, state.State{
		SelectedIDs: []int{4, 4, 2},
		SortedOrder: []int{9, 1, 9},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), out.Version)
	require.NoError(t, s.Close(ctx))

	s = openTestStore(t, dir)
	defer s.Close(ctx)
	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2}, got.SelectedIDs)
	assert.Equal(t, []int{9, 1}, got.SortedOrder)
	assert.Equal(t, uint64(1), got.Version)
}

func TestStore_ReplaceIf(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, t.TempDir())
	defer s.Close(ctx)

	_, err := s.ReplaceIf(ctx, state.State{SelectedIDs: []int{1}}, 0)
	require.NoError(t, err)

	_, err = s.ReplaceIf(ctx, state.State{SelectedIDs: []int{2}}, 0)
	assert.ErrorIs(t, err, state.ErrVersionConflict)

	out, err := s.Replace(ctx, state.State{SelectedIDs: []int{3}})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), out.Version)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("", nil)
	assert.Error(t, err)
}

func TestStore_CanceledContext(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	defer s.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Replace(ctx, state.State{})
	assert.ErrorIs(t, err, context.Canceled)
}
