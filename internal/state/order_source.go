package state

import (
	"context"

	"github.com/syntrixbase/itemdeck/internal/items"
)

// OrderSource exposes the saved order of r to an items.Generator.
func OrderSource(r Reader) items.OrderSource {
	return items.OrderSourceFunc(func(ctx context.Context) ([]int, error) {
		s, err := r.Read(ctx)
		if err != nil {
			return nil, err
		}
		return s.SortedOrder, nil
	})
}
