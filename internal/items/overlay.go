package items

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Merge overlays savedOrder on top of candidates.
//
// Identifiers of savedOrder that are also candidates are emitted first, in
// savedOrder's order and at most once each. The remaining candidates follow
// in their own order. Saved identifiers that are not candidates are dropped,
// so the result is always a permutation of candidates.
//
// An empty savedOrder returns candidates unchanged.
func Merge(candidates []int, savedOrder []int) []int {
	if len(savedOrder) == 0 {
		return candidates
	}

	present := roaring.New()
	for _, id := range candidates {
		if inDomain(id) {
			present.Add(uint32(id))
		}
	}

	merged := make([]int, 0, len(candidates))
	placed := roaring.New()
	for _, id := range savedOrder {
		if !inDomain(id) || !present.Contains(uint32(id)) {
			continue
		}
		if placed.CheckedAdd(uint32(id)) {
			merged = append(merged, id)
		}
	}

	if placed.IsEmpty() {
		return candidates
	}

	for _, id := range candidates {
		if inDomain(id) && placed.Contains(uint32(id)) {
			continue
		}
		merged = append(merged, id)
	}
	return merged
}

func inDomain(id int) bool {
	return id >= MinID && id <= MaxID
}
