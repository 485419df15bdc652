// Package items produces pages over the virtual item domain [MinID, MaxID].
//
// A page is computed in three steps:
//
//   - Filter lazily enumerates the identifiers whose decimal form contains
//     the search query, in ascending order.
//   - Merge overlays a previously saved custom order on top of the filtered
//     candidates. Saved identifiers that are still candidates come first, in
//     saved order; every other candidate follows in natural order.
//   - Page cuts the offset/limit window out of the merged sequence and
//     reports whether more items are available.
//
// Candidates are only materialized up to offset+limit (plus one when the
// lookahead mode is enabled), so the saved order is honoured within the
// requested window and never over the unbounded tail of the domain.
package items
