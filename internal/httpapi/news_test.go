package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/kyaraz/halkaarz/internal/model"
	"github.com/kyaraz/halkaarz/internal/store"
)

func newsFixture(id int64, ticker, title string) model.NewsItem {
	return model.NewsItem{
		ID:             id,
		Ticker:         ticker,
		DisclosureID:   1000 + id,
		Title:          title,
		MatchedKeyword: "sozlesme imzalandi",
		SessionType:    model.SessionInSession,
		Sentiment:      "positive",
		PublishedAt:    time.Date(2026, 3, 3, 14, 30, 0, 0, time.UTC),
	}
}

func TestLatestNews(t *testing.T) {
	a := newTestAPI(t)
	a.news.items = []model.NewsItem{
		newsFixture(2, "TACTR", "Onemli Sozlesme Imzalandi"),
		newsFixture(1, "KULER", "Yeni Ihale Kazanildi"),
	}

	resp, data := a.do(t, http.MethodGet, "/api/v1/news/latest?limit=5", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if a.news.gotLimit != 5 {
		t.Errorf("limit = %d, want 5", a.news.gotLimit)
	}

	var list []newsResponse
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("unmarshal news: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	got := list[0]
	if got.Ticker != "TACTR" || got.DisclosureID != 1002 {
		t.Errorf("news[0] = %q %d, want TACTR 1002", got.Ticker, got.DisclosureID)
	}
	if got.SessionType != model.SessionInSession || got.Sentiment != "positive" {
		t.Errorf("news[0] session/sentiment = %q %q, want in_session positive", got.SessionType, got.Sentiment)
	}
}

func TestLatestNews_LimitLeftToStore(t *testing.T) {
	a := newTestAPI(t)

	resp, _ := a.do(t, http.MethodGet, "/api/v1/news/latest", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if a.news.gotLimit != 0 {
		t.Errorf("limit = %d, want 0 so the store applies its default", a.news.gotLimit)
	}
}

func TestListNews_PassesFilter(t *testing.T) {
	a := newTestAPI(t)

	resp, _ := a.do(t, http.MethodGet, "/api/v1/news?ticker=tactr&session_type=off_session&limit=10&offset=2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	want := store.NewsFilter{Ticker: "tactr", SessionType: "off_session", Limit: 10, Offset: 2}
	if a.news.gotFilter != want {
		t.Errorf("filter = %+v, want %+v", a.news.gotFilter, want)
	}
}

func TestListNews_MalformedLimit(t *testing.T) {
	a := newTestAPI(t)

	resp, data := a.do(t, http.MethodGet, "/api/v1/news?limit=ten", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if code, _, _ := decodeErrorBody(t, data); code != "bad_request" {
		t.Errorf("error code = %q, want %q", code, "bad_request")
	}
}
