package shared

import (
	"net/http"
	"strconv"
)

// Page is a limit/offset window read from the query string.
type Page struct {
	Limit  int
	Offset int
}

// ParsePagination reads ?limit and ?offset. Malformed or negative values fall
// back to the defaults and limit is clamped to maxLimit.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Page {
	q := r.URL.Query()
	page := Page{
		Limit:  queryInt(q.Get("limit"), defaultLimit, 1),
		Offset: queryInt(q.Get("offset"), 0, 0),
	}
	if maxLimit > 0 {
		page.Limit = min(page.Limit, maxLimit)
	}
	return page
}

// SetTotal exposes the unpaged row count to the client.
func SetTotal(w http.ResponseWriter, total int) {
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
}

func queryInt(raw string, fallback, floor int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < floor {
		return fallback
	}
	return v
}
