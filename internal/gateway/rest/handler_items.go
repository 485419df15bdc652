package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/schema"

	"github.com/syntrixbase/itemdeck/internal/items"
	"github.com/syntrixbase/itemdeck/internal/metrics"
)

// ItemsQuery holds the raw query parameters of GET /items. offset and
// limit stay strings so malformed values fall back to defaults instead of
// failing the request.
type ItemsQuery struct {
	Query  string `schema:"query"`
	Offset string `schema:"offset"`
	Limit  string `schema:"limit"`
}

var itemsDecoder = newItemsDecoder()

func newItemsDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

func (h *Handler) handleItems(w http.ResponseWriter, r *http.Request) {
	var q ItemsQuery
	if err := itemsDecoder.Decode(&q, r.URL.Query()); err != nil {
		h.logger.Warn("Items: invalid query parameters", "error", err)
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid query parameters")
		return
	}

	offset, limit := items.ParseWindow(q.Offset, q.Limit)
	start := time.Now()
	res, err := h.generator.Generate(r.Context(), items.Request{
		Query:  q.Query,
		Offset: offset,
		Limit:  limit,
	})
	metrics.ItemsGenerateDuration.WithLabelValues(strconv.FormatBool(q.Query != "")).Observe(time.Since(start).Seconds())
	if err != nil {
		h.writeStateError(w, r, err, "Failed to generate items")
		return
	}
	if res.Items == nil {
		res.Items = []int{}
	}
	metrics.ItemsPageSize.Observe(float64(len(res.Items)))

	writeJSON(w, http.StatusOK, res)
}
