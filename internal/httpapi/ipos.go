package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kyaraz/halkaarz/internal/store"
)

// getSections serves the home screen: live offerings bucketed by lifecycle
// stage. Archived offerings appear in no bucket.
func (a *api) getSections(w http.ResponseWriter, r *http.Request) {
	sections, err := a.deps.IPOs.Sections(r.Context())
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sectionsResponse{
		Announced:       newIPOSummaryList(sections.Announced),
		InSubscription:  newIPOSummaryList(sections.InSubscription),
		RecentlyTrading: newIPOSummaryList(sections.RecentlyTrading),
	})
}

func (a *api) listIPOs(w http.ResponseWriter, r *http.Request) {
	year, apiErr := queryInt(r, "year", 0)
	if apiErr != nil {
		a.respondError(w, r, apiErr)
		return
	}
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

	ipos, err := a.deps.IPOs.ListIPOs(r.Context(), store.ListFilter{
		Status: r.URL.Query().Get("status"),
		Year:   year,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newIPOSummaryList(ipos))
}

func (a *api) getIPO(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		a.respondError(w, r, badRequest("id must be an integer"))
		return
	}

	ipo, err := a.deps.IPOs.GetIPO(r.Context(), id)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newIPODetailResponse(ipo))
}
