package items

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// OrderSource supplies the currently saved custom order.
type OrderSource interface {
	SortedOrder(ctx context.Context) ([]int, error)
}

// OrderSourceFunc adapts a function to OrderSource.
type OrderSourceFunc func(ctx context.Context) ([]int, error)

// SortedOrder calls f.
func (f OrderSourceFunc) SortedOrder(ctx context.Context) ([]int, error) {
	return f(ctx)
}

// Request describes one page of items.
type Request struct {
	Query  string
	Offset int
	Limit  int
}

// Result is one page of items.
type Result struct {
	Items   []int `json:"items"`
	HasMore bool  `json:"hasMore"`
}

// Generator runs the filter, overlay and pagination steps for a request.
type Generator struct {
	orders OrderSource
	mode   HasMoreMode
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithHasMoreMode selects the hasMore policy.
func WithHasMoreMode(mode HasMoreMode) Option {
	return func(g *Generator) {
		g.mode = mode
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator creates a Generator reading the saved order from orders.
func NewGenerator(orders OrderSource, opts ...Option) *Generator {
	if orders == nil {
		panic("order source cannot be nil")
	}
	g := &Generator{
		orders: orders,
		mode:   HasMoreFullPage,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "items")
	return g
}

// Generate computes the page described by req.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	saved, err := g.orders.SortedOrder(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read saved order: %w", err)
	}

	n := budget(req.Offset, req.Limit, g.mode)
	candidates := []int{}
	if n > 0 {
		candidates = slices.Collect(Filter(req.Query, n))
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	merged := Merge(candidates, saved)
	page, hasMore := Page(merged, req.Offset, req.Limit, g.mode)

	g.logger.Debug("Generated items page",
		"query", req.Query,
		"offset", req.Offset,
		"limit", req.Limit,
		"candidates", len(candidates),
		"saved", len(saved),
		"returned", len(page),
		"has_more", hasMore,
	)

	return Result{Items: page, HasMore: hasMore}, nil
}
