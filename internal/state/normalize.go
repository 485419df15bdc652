package state

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/syntrixbase/itemdeck/internal/items"
)

// Normalize de-duplicates both lists of s, keeping the first occurrence of
// every identifier in its original position. Identifiers outside the item
// domain are dropped. The version is left untouched.
func Normalize(s State) State {
	return State{
		SelectedIDs: dedup(s.SelectedIDs),
		SortedOrder: dedup(s.SortedOrder),
		Version:     s.Version,
	}
}

func dedup(ids []int) []int {
	out := make([]int, 0, len(ids))
	seen := roaring.New()
	for _, id := range ids {
		if !inDomain(id) {
			continue
		}
		if seen.CheckedAdd(uint32(id)) {
			out = append(out, id)
		}
	}
	return out
}

func inDomain(id int) bool {
	return id >= items.MinID && id <= items.MaxID
}
