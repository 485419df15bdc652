package state

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syntrixbase/itemdeck/internal/items"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	got := Normalize(State{
		SelectedIDs: []int{3, 1, 3, 2, 1},
		SortedOrder: []int{9, 0, 9, -4, 7, items.MaxID + 1, items.MaxID},
		Version:     7,
	})
	assert.Equal(t, []int{3, 1, 2}, got.SelectedIDs)
	assert.Equal(t, []int{9, 7, items.MaxID}, got.SortedOrder)
	assert.Equal(t, uint64(7), got.Version)
}

func TestNormalize_NilLists(t *testing.T) {
	t.Parallel()
	got := Normalize(State{})
	assert.NotNil(t, got.SelectedIDs)
	assert.NotNil(t, got.SortedOrder)
	assert.Empty(t, got.SelectedIDs)
	assert.Empty(t, got.SortedOrder)
}

func TestState_CloneIsDeep(t *testing.T) {
	t.Parallel()
	s := State{SelectedIDs: []int{1}, SortedOrder: []int{2}, Version: 3}
	c := s.Clone()
	c.SelectedIDs[0] = 100
	c.SortedOrder[0] = 200
	assert.Equal(t, 1, s.SelectedIDs[0])
	assert.Equal(t, 2, s.SortedOrder[0])
	assert.Equal(t, uint64(3), c.Version)
}

func TestMemoryStore_EmptyRead(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	got, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Empty(), got)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Replace(ctx, State{SelectedIDs: []int{1, 2}, SortedOrder: []int{5}})
	require.NoError(t, err)

	written, err := s.Replace(ctx, State{
		SelectedIDs: []int{7, 7, 3},
		SortedOrder: []int{5, 3, 9, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), written.Version)

	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 3}, got.SelectedIDs)
	assert.Equal(t, []int{5, 3, 9}, got.SortedOrder)
	assert.Equal(t, uint64(2), got.Version)
}

func TestMemoryStore_ReplaceDropsOutOfDomainIDs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	ids := []int{0, 5, items.MaxID + 1}
	_, err := s.Replace(ctx, State{SelectedIDs: ids, SortedOrder: ids})
	require.NoError(t, err)

	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, got.SelectedIDs)
	assert.Equal(t, []int{5}, got.SortedOrder)
}

func TestMemoryStore_ReplaceOverwritesBothFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Replace(ctx, State{SelectedIDs: []int{1}, SortedOrder: []int{2, 1}})
	require.NoError(t, err)
	_, err = s.Replace(ctx, State{SelectedIDs: []int{3}})
	require.NoError(t, err)

	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, got.SelectedIDs)
	assert.Empty(t, got.SortedOrder)
}

func TestMemoryStore_ReadIsolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()
	input := []int{1, 2, 3}

	_, err := s.Replace(ctx, State{SortedOrder: input})
	require.NoError(t, err)
	input[0] = 99

	got, err := s.Read(ctx)
	require.NoError(t, err)
	got.SortedOrder[1] = 42

	again, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, again.SortedOrder)
}

func TestMemoryStore_ReplaceIf(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	out, err := s.ReplaceIf(ctx, State{SelectedIDs: []int{1}}, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), out.Version)

	_, err = s.ReplaceIf(ctx, State{SelectedIDs: []int{2}}, 0)
	assert.ErrorIs(t, err, ErrVersionConflict)

	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got.SelectedIDs)

	out, err = s.ReplaceIf(ctx, State{SelectedIDs: []int{2}}, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), out.Version)
}

func TestMemoryStore_ConcurrentReplaceLastWriterWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := s.Replace(ctx, State{SelectedIDs: []int{id}, SortedOrder: []int{id}})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), got.Version)
	require.Len(t, got.SelectedIDs, 1)
	// Whole-object semantics: both fields come from the same writer.
	assert.Equal(t, got.SelectedIDs, got.SortedOrder)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Replace(ctx, State{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.ReplaceIf(ctx, State{}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrderSource(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Replace(ctx, State{SortedOrder: []int{3, 1}})
	require.NoError(t, err)

	order, err := OrderSource(s).SortedOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, order)
}

func TestOrderSource_FeedsGenerator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Replace(ctx, State{SortedOrder: []int{3, 500000}})
	require.NoError(t, err)

	res, err := items.NewGenerator(OrderSource(s)).Generate(ctx, items.Request{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2, 4, 5, 6, 7, 8, 9, 10}, res.Items)
	assert.True(t, res.HasMore)
}
