package items

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticOrder(ids ...int) OrderSource {
	return OrderSourceFunc(func(context.Context) ([]int, error) {
		return ids, nil
	})
}

func TestGenerator_DefaultWindow(t *testing.T) {
	t.Parallel()
	g := NewGenerator(staticOrder())

	res, err := g.Generate(context.Background(), Request{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, seq(1, 20), res.Items)
	assert.True(t, res.HasMore)
	assert.Equal(t, HasMoreFullPage, g.mode)
}

func TestGenerator_SavedOrderWithinWindow(t *testing.T) {
	t.Parallel()
	g := NewGenerator(staticOrder(5, 3, 9, 500000))

	res, err := g.Generate(context.Background(), Request{Offset: 0, Limit: 9})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 3, 9, 1, 2, 4, 6, 7, 8}, res.Items)

	// Saved identifiers beyond the candidate window are not pulled forward.
	res, err = g.Generate(context.Background(), Request{Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res.Items)
}

func TestGenerator_SecondPageAfterReorder(t *testing.T) {
	t.Parallel()
	g := NewGenerator(staticOrder(4, 1))

	first, err := g.Generate(context.Background(), Request{Offset: 0, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, first.Items)

	second, err := g.Generate(context.Background(), Request{Offset: 3, Limit: 3})
	require.NoError(t, err)
	// Window of 6 candidates: 4,1 first, then 2,3,5,6.
	assert.Equal(t, []int{3, 5, 6}, second.Items)
}

func TestGenerator_Query(t *testing.T) {
	t.Parallel()
	g := NewGenerator(staticOrder(100, 10))

	res, err := g.Generate(context.Background(), Request{Query: "10", Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, []int{100, 10, 101, 102}, res.Items)
	assert.True(t, res.HasMore)

	res, err = g.Generate(context.Background(), Request{Query: "nope", Limit: 4})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.False(t, res.HasMore)
}

func TestGenerator_EndOfDomain(t *testing.T) {
	t.Parallel()
	g := NewGenerator(staticOrder())

	res, err := g.Generate(context.Background(), Request{Query: "1000000", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, []int{1000000}, res.Items)
	assert.False(t, res.HasMore)

	res, err = g.Generate(context.Background(), Request{Offset: MaxID - 2, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []int{999999, 1000000}, res.Items)
	assert.False(t, res.HasMore)
}

func TestGenerator_Lookahead(t *testing.T) {
	t.Parallel()
	g := NewGenerator(staticOrder(), WithHasMoreMode(HasMoreLookahead))

	res, err := g.Generate(context.Background(), Request{Query: "999999", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{999999}, res.Items)
	assert.False(t, res.HasMore)

	res, err = g.Generate(context.Background(), Request{Limit: 1})
	require.NoError(t, err)
	assert.True(t, res.HasMore)
}

func TestGenerator_OrderSourceError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	g := NewGenerator(OrderSourceFunc(func(context.Context) ([]int, error) {
		return nil, boom
	}))

	_, err := g.Generate(context.Background(), Request{Limit: 1})
	assert.ErrorIs(t, err, boom)
}

func TestGenerator_CanceledContext(t *testing.T) {
	t.Parallel()
	g := NewGenerator(staticOrder())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, Request{Limit: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGenerator_NilSource(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewGenerator(nil) })
}
