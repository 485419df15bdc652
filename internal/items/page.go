package items

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Window defaults applied to missing, malformed or negative parameters.
const (
	DefaultOffset = 0
	DefaultLimit  = 20
)

// HasMoreMode selects how Page decides whether more items are available.
type HasMoreMode int

const (
	// HasMoreFullPage reports more items whenever the page is full. It says
	// true when the next page is empty and false after any partial page.
	// Existing clients depend on this behaviour, so it is the default.
	HasMoreFullPage HasMoreMode = iota

	// HasMoreLookahead reports more items only if at least one item exists
	// beyond the window. The caller must supply one extra item after the
	// window for this to be exact.
	HasMoreLookahead
)

// String returns the configuration name of the mode.
func (m HasMoreMode) String() string {
	switch m {
	case HasMoreFullPage:
		return "full_page"
	case HasMoreLookahead:
		return "lookahead"
	default:
		return fmt.Sprintf("HasMoreMode(%d)", int(m))
	}
}

// ParseHasMoreMode parses a configuration name. The empty string selects
// HasMoreFullPage.
func ParseHasMoreMode(s string) (HasMoreMode, error) {
	switch s {
	case "", "full_page":
		return HasMoreFullPage, nil
	case "lookahead":
		return HasMoreLookahead, nil
	default:
		return 0, fmt.Errorf("unknown has_more mode %q (must be full_page or lookahead)", s)
	}
}

// Page returns merged[offset:offset+limit], clipped to the sequence, and
// whether more items are available according to mode.
func Page(merged []int, offset, limit int, mode HasMoreMode) ([]int, bool) {
	offset = max(offset, 0)
	limit = max(limit, 0)

	page := []int{}
	if offset < len(merged) {
		end := len(merged)
		if limit < end-offset {
			end = offset + limit
		}
		page = slices.Clone(merged[offset:end])
	}

	if mode == HasMoreLookahead {
		return page, offset < len(merged) && len(merged)-offset > limit
	}
	return page, len(page) == limit
}

// ParseWindow converts raw offset and limit parameters. Anything that is
// not a non-negative base-10 integer falls back to the default.
func ParseWindow(offset, limit string) (int, int) {
	return parseNonNegative(offset, DefaultOffset), parseNonNegative(limit, DefaultLimit)
}

func parseNonNegative(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return def
	}
	return n
}

// budget is the number of candidates needed to serve the window.
func budget(offset, limit int, mode HasMoreMode) int {
	offset = max(offset, 0)
	limit = max(limit, 0)
	// Nothing past MaxID+1 can ever be produced, which also keeps the sum
	// from overflowing.
	if offset > MaxID || limit > MaxID {
		return MaxID + 1
	}
	n := offset + limit
	if mode == HasMoreLookahead {
		n++
	}
	return n
}
