package api

import (
	"net/http"
	"time"
)

func (rt *Router) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	start := r.URL.Query().Get("path")

	began := time.Now()
	results, err := rt.storage.Search(r.Context(), query, start)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordSearch(time.Since(began))
	}

	respond(w, http.StatusOK, map[string]any{
		"results": results,
	})
}
