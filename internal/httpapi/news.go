package httpapi

import (
	"net/http"

	"github.com/kyaraz/halkaarz/internal/store"
)

func (a *api) latestNews(w http.ResponseWriter, r *http.Request) {
	limit, apiErr := queryInt(r, "limit", 0)
	if apiErr != nil {
		a.respondError(w, r, apiErr)
		return
	}

	items, err := a.deps.News.LatestNews(r.Context(), limit)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newNewsList(items))
}

func (a *api) listNews(w http.ResponseWriter, r *http.Request) {
	limit, apiErr := queryInt(r, "limit", 0)
	if apiErr != nil {
		a.respondError(w, r, apiErr)
		return
	}
	offset, apiErr := queryInt(r, "offset", 0)
	if apiErr != nil {
		a.respondError(w, r, apiErr)
		return
	}

	items, err := a.deps.News.ListNews(r.Context(), store.NewsFilter{
		Ticker:      r.URL.Query().Get("ticker"),
		SessionType: r.URL.Query().Get("session_type"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newNewsList(items))
}
