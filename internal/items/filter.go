package items

import (
	"bytes"
	"iter"
	"strconv"
)

const (
	// MinID is the smallest identifier of the domain.
	MinID = 1
	// MaxID is the largest identifier of the domain. Scans stop here even
	// when fewer matches than requested were found.
	MaxID = 1_000_000
)

// maxQueryDigits is the number of decimal digits of MaxID. A longer query
// can never be a substring of an identifier.
const maxQueryDigits = 7

// Matches reports whether the decimal representation of id contains query.
// The empty query matches every identifier.
func Matches(id int, query string) bool {
	var buf [20]byte
	return containsDigits(buf[:0], id, []byte(query))
}

// containsDigits formats id into buf and reports whether needle occurs in it.
func containsDigits(buf []byte, id int, needle []byte) bool {
	if len(needle) == 0 {
		return true
	}
	return bytes.Contains(strconv.AppendInt(buf, int64(id), 10), needle)
}

// Filter returns the identifiers in [MinID, MaxID] matching query, ascending.
//
// The sequence stops after minCount matches when minCount > 0; otherwise it
// runs until MaxID or until the consumer stops pulling. Each call returns an
// independent sequence, so nothing survives between requests.
func Filter(query string, minCount int) iter.Seq[int] {
	start, ok := scanStart(query)
	needle := []byte(query)

	return func(yield func(int) bool) {
		if !ok {
			return
		}
		var buf [maxQueryDigits + 1]byte
		found := 0
		for id := start; id <= MaxID; id++ {
			if !containsDigits(buf[:0], id, needle) {
				continue
			}
			if !yield(id) {
				return
			}
			found++
			if minCount > 0 && found >= minCount {
				return
			}
		}
	}
}

// scanStart returns the first identifier worth testing for query. An
// identifier containing the digit string q is never smaller than the numeric
// value of q, so everything below it is skipped. ok is false when no
// identifier can match.
func scanStart(query string) (start int, ok bool) {
	if query == "" {
		return MinID, true
	}
	if len(query) > maxQueryDigits {
		return 0, false
	}
	value := 0
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		value = value*10 + int(c-'0')
	}
	if value > MaxID {
		return 0, false
	}
	return max(MinID, value), true
}
