package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kyaraz/halkaarz/internal/fetch"
	"github.com/kyaraz/halkaarz/internal/model"
)

const detailHTML = `<!doctype html>
<html><body>
<article>
<h2 class="il-bist-kod">#TRHAL</h2>
<h1 class="il-halka-arz-sirket">Tarhal Gıda Sanayi A.Ş.</h1>

<table class="sp-table">
<tr><td>Halka Arz Tarihi :</td><td>19-20 Şubat 2026  10:00-13:00</td></tr>
<tr><td>Halka Arz Fiyatı :</td><td>22,50 TL</td></tr>
<tr><td>Dağıtım Yöntemi :</td><td>Eşit Dağıtım **</td></tr>
<tr><td>Pay :</td><td>38.000.000 Lot</td></tr>
<tr><td>Aracı Kurum :</td><td>Tera Yatırım</td></tr>
<tr><td>Fiili Dolaşımdaki Pay Oranı :</td><td>%28,99</td></tr>
<tr><td>Pazar :</td><td>Yıldız Pazar</td></tr>
<tr><td>BİST İlk İşlem Tarihi :</td><td>25 Şubat 2026</td></tr>
</table>

<table class="as-table">
<tr><th>Grup</th><th>Kişi Sayısı</th><th>Lot</th><th>Oran</th></tr>
<tr><td>Yurt İçi Bireysel</td><td>795.046</td><td>28.500.000</td><td>%75</td></tr>
<tr><td>Yüksek Başvurulu Bireysel</td><td>12.340</td><td>3.800.000</td><td>%10</td></tr>
<tr><td>Yurt İçi Kurumsal</td><td>98</td><td>3.800.000</td><td>%10</td></tr>
<tr><td>Yurt Dışı Kurumsal</td><td>12</td><td>1.900.000</td><td>%5</td></tr>
<tr><td>Toplam</td><td>807.496</td><td>38.000.000</td></tr>
</table>

<table class="fs-extra">
<tr><td>Finansal Tablo</td><td>2025/9</td><td>2024</td></tr>
<tr><td>Hasılat</td><td>2,4 Milyar TL</td><td>1,9 Milyar TL</td></tr>
<tr><td>Brüt Kar</td><td>527,0 Milyon TL</td><td>410,3 Milyon TL</td></tr>
</table>

<h5>Halka Arz Şekli</h5>
<p>Sermaye Artırımı: 30.000.000 Lot</p>
<p>Ortak Satışı: 8.000.000 Lot</p>

<h5>Detaylar</h5>
<p>Halka Açıklık - %29,5</p>
<p>İskonto %12,5 oranında uygulanmıştır.</p>
<p>Fiyat İstikrarı 30 gün boyunca uygulanacaktır.</p>
<p>Satmama Taahhüdü 1 Yıl süreyle geçerlidir.</p>
<p>500 Bin katılım → 8 Lot</p>

<h5>Fonun Kullanım Yeri</h5>
<p>- %45 Yatırım harcamaları<br>- %35 İşletme sermayesi<br>- %20 Finansal borç ödemesi</p>

<details class="acc">
<summary class="acc-header">Şirket Hakkında</summary>
<div class="acc-body">
<p>Tarhal Gıda</p>
<p>Tarhal Gıda Sanayi A.Ş. 1987 yılında kurulmuş olup bakliyat işleme ve
paketleme alanında faaliyet göstermektedir.</p>
</div>
</details>

<p><a href="/wp-content/izahname-tarhal.pdf">İzahname</a></p>

<details class="acc">
<summary class="acc-header">Başvuru Yerleri</summary>
<div class="acc-body"><ul>
<li>Tera Yatırım Menkul Değerler A.Ş.</li>
<li class="unlist">QNB Finansbank A.Ş.</li>
<li><s>Ziraat Yatırım Menkul Değerler</s></li>
<li>* Konsorsiyum listesi daha sonra tamamlanacaktır</li>
</ul></div>
</details>
</article>
</body></html>`

func newHalkarzTest(t *testing.T, handler http.Handler) (*HalkarzScraper, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := fetch.New(srv.URL, fetch.WithRetries(0, time.Millisecond))
	return NewHalkarz(client, 2, nil), srv
}

func mustDec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFetchDetail(t *testing.T) {
	h, srv := newHalkarzTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailHTML)
	}))

	ipo, err := h.FetchDetail(context.Background(), srv.URL+"/tarhal-gida/")
	if err != nil {
		t.Fatalf("FetchDetail() error = %v", err)
	}

	t.Run("header", func(t *testing.T) {
		if ipo.Ticker != "TRHAL" {
			t.Errorf("Ticker = %q, want TRHAL", ipo.Ticker)
		}
		if ipo.CompanyName != "Tarhal Gıda Sanayi A.Ş." {
			t.Errorf("CompanyName = %q", ipo.CompanyName)
		}
	})

	t.Run("subscription window", func(t *testing.T) {
		wantStart := time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)
		wantEnd := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
		if ipo.SubscriptionStart == nil || !ipo.SubscriptionStart.Equal(wantStart) {
			t.Errorf("SubscriptionStart = %v, want %v", ipo.SubscriptionStart, wantStart)
		}
		if ipo.SubscriptionEnd == nil || !ipo.SubscriptionEnd.Equal(wantEnd) {
			t.Errorf("SubscriptionEnd = %v, want %v", ipo.SubscriptionEnd, wantEnd)
		}
		if ipo.SubscriptionHours != "10:00-13:00" {
			t.Errorf("SubscriptionHours = %q, want 10:00-13:00", ipo.SubscriptionHours)
		}
	})

	t.Run("terms", func(t *testing.T) {
		if ipo.IPOPrice == nil || !ipo.IPOPrice.Equal(mustDec("22.50")) {
			t.Errorf("IPOPrice = %v, want 22.50", ipo.IPOPrice)
		}
		if ipo.DistributionMethod != model.DistributionEqual {
			t.Errorf("DistributionMethod = %q, want esit", ipo.DistributionMethod)
		}
		if ipo.TotalLots == nil || *ipo.TotalLots != 38_000_000 {
			t.Errorf("TotalLots = %v, want 38000000", ipo.TotalLots)
		}
		if ipo.LeadBroker != "Tera Yatırım" {
			t.Errorf("LeadBroker = %q", ipo.LeadBroker)
		}
		if ipo.MarketSegment != "yildiz_pazar" {
			t.Errorf("MarketSegment = %q, want yildiz_pazar", ipo.MarketSegment)
		}
		wantTrading := time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC)
		if ipo.TradingStart == nil || !ipo.TradingStart.Equal(wantTrading) {
			t.Errorf("TradingStart = %v, want %v", ipo.TradingStart, wantTrading)
		}
	})

	t.Run("allocations", func(t *testing.T) {
		wantGroups := []string{
			model.AllocationRetail,
			model.AllocationHighDemand,
			model.AllocationDomesticInst,
			model.AllocationForeignInst,
		}
		if len(ipo.Allocations) != len(wantGroups) {
			t.Fatalf("got %d allocations, want %d", len(ipo.Allocations), len(wantGroups))
		}
		for i, want := range wantGroups {
			if ipo.Allocations[i].GroupName != want {
				t.Errorf("allocation[%d].GroupName = %q, want %q", i, ipo.Allocations[i].GroupName, want)
			}
		}

		retail := ipo.Allocations[0]
		if retail.ParticipantCount == nil || *retail.ParticipantCount != 795_046 {
			t.Errorf("retail participants = %v, want 795046", retail.ParticipantCount)
		}
		if retail.AllocatedLots == nil || *retail.AllocatedLots != 28_500_000 {
			t.Errorf("retail lots = %v, want 28500000", retail.AllocatedLots)
		}
		if retail.AllocationPct == nil || !retail.AllocationPct.Equal(mustDec("75")) {
			t.Errorf("retail pct = %v, want 75", retail.AllocationPct)
		}
		if retail.AvgLotPerPerson == nil || !retail.AvgLotPerPerson.Equal(mustDec("35.85")) {
			t.Errorf("retail avg lot = %v, want 35.85", retail.AvgLotPerPerson)
		}

		if ipo.TotalApplicants == nil || *ipo.TotalApplicants != 807_496 {
			t.Errorf("TotalApplicants = %v, want 807496", ipo.TotalApplicants)
		}
	})

	t.Run("financials", func(t *testing.T) {
		if ipo.RevenueCurrentYear == nil || !ipo.RevenueCurrentYear.Equal(mustDec("2400000000")) {
			t.Errorf("RevenueCurrentYear = %v, want 2400000000", ipo.RevenueCurrentYear)
		}
		if ipo.RevenuePreviousYear == nil || !ipo.RevenuePreviousYear.Equal(mustDec("1900000000")) {
			t.Errorf("RevenuePreviousYear = %v, want 1900000000", ipo.RevenuePreviousYear)
		}
		if ipo.GrossProfit == nil || !ipo.GrossProfit.Equal(mustDec("527000000")) {
			t.Errorf("GrossProfit = %v, want 527000000", ipo.GrossProfit)
		}
	})

	t.Run("free text figures", func(t *testing.T) {
		// Body text overrides the table value for the float percentage.
		if ipo.PublicFloatPct == nil || !ipo.PublicFloatPct.Equal(mustDec("29.5")) {
			t.Errorf("PublicFloatPct = %v, want 29.5", ipo.PublicFloatPct)
		}
		if ipo.DiscountPct == nil || !ipo.DiscountPct.Equal(mustDec("12.5")) {
			t.Errorf("DiscountPct = %v, want 12.5", ipo.DiscountPct)
		}
		if ipo.PriceStabilityDays == nil || *ipo.PriceStabilityDays != 30 {
			t.Errorf("PriceStabilityDays = %v, want 30", ipo.PriceStabilityDays)
		}
		if ipo.LockUpPeriodDays == nil || *ipo.LockUpPeriodDays != 365 {
			t.Errorf("LockUpPeriodDays = %v, want 365", ipo.LockUpPeriodDays)
		}
		if ipo.CapitalIncreaseLots == nil || *ipo.CapitalIncreaseLots != 30_000_000 {
			t.Errorf("CapitalIncreaseLots = %v, want 30000000", ipo.CapitalIncreaseLots)
		}
		if ipo.PartnerSaleLots == nil || *ipo.PartnerSaleLots != 8_000_000 {
			t.Errorf("PartnerSaleLots = %v, want 8000000", ipo.PartnerSaleLots)
		}
		if ipo.EstimatedLotsPerPerson == nil || !ipo.EstimatedLotsPerPerson.Equal(mustDec("8")) {
			t.Errorf("EstimatedLotsPerPerson = %v, want 8", ipo.EstimatedLotsPerPerson)
		}
		wantUsage := "%45 Yatırım harcamaları; %35 İşletme sermayesi; %20 Finansal borç ödemesi"
		if ipo.FundUsage != wantUsage {
			t.Errorf("FundUsage = %q, want %q", ipo.FundUsage, wantUsage)
		}
	})

	t.Run("description and prospectus", func(t *testing.T) {
		if ipo.Description == "" || ipo.Description == "Tarhal Gıda" {
			t.Errorf("Description = %q, want the long paragraph", ipo.Description)
		}
		want := srv.URL + "/wp-content/izahname-tarhal.pdf"
		if ipo.ProspectusURL != want {
			t.Errorf("ProspectusURL = %q, want %q", ipo.ProspectusURL, want)
		}
	})

	t.Run("rejected brokers", func(t *testing.T) {
		if len(ipo.Brokers) != 2 {
			t.Fatalf("got %d brokers, want 2 (only rejected ones)", len(ipo.Brokers))
		}
		if ipo.Brokers[0].BrokerName != "QNB Finansbank A.Ş." || ipo.Brokers[0].BrokerType != "banka" {
			t.Errorf("broker[0] = %+v, want QNB Finansbank / banka", ipo.Brokers[0])
		}
		if ipo.Brokers[1].BrokerName != "Ziraat Yatırım Menkul Değerler" || ipo.Brokers[1].BrokerType != "araci_kurum" {
			t.Errorf("broker[1] = %+v, want Ziraat / araci_kurum", ipo.Brokers[1])
		}
		for i, b := range ipo.Brokers {
			if !b.IsRejected {
				t.Errorf("broker[%d].IsRejected = false, want true", i)
			}
		}
	})
}

func wpListHandler(t *testing.T, pages map[string][]map[string]any) (http.Handler, *int) {
	t.Helper()
	requests := 0
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/posts" {
			http.NotFound(w, r)
			return
		}
		requests++
		posts, ok := pages[r.URL.Query().Get("page")]
		if !ok {
			// Past the last page WordPress answers 400.
			http.Error(w, `{"code":"rest_post_invalid_page_number"}`, http.StatusBadRequest)
			return
		}
		if err := json.NewEncoder(w).Encode(posts); err != nil {
			t.Errorf("encode posts: %v", err)
		}
	}), &requests
}

func wpPostJSON(id int, slug, title, link string) map[string]any {
	return map[string]any{
		"id":    id,
		"slug":  slug,
		"title": map[string]any{"rendered": title},
		"link":  link,
	}
}

func TestListPosts(t *testing.T) {
	t.Run("single short page", func(t *testing.T) {
		handler, requests := wpListHandler(t, map[string][]map[string]any{
			"1": {
				wpPostJSON(101, "tarhal-gida", "Tarhal G&#305;da Sanayi A.&#350;. Halka Arz&#305;", "https://example.com/tarhal-gida/"),
				wpPostJSON(102, "borteks", "Borteks Tekstil Halka Arz", "https://example.com/borteks/"),
			},
		})
		h, _ := newHalkarzTest(t, handler)

		posts, err := h.ListPosts(context.Background())
		if err != nil {
			t.Fatalf("ListPosts() error = %v", err)
		}
		if len(posts) != 2 {
			t.Fatalf("got %d posts, want 2", len(posts))
		}
		if posts[0].Title != "Tarhal Gıda Sanayi A.Ş. Halka Arzı" {
			t.Errorf("title not unescaped: %q", posts[0].Title)
		}
		if *requests != 1 {
			t.Errorf("made %d requests, want 1 (short page ends paging)", *requests)
		}
	})

	t.Run("full page continues to next", func(t *testing.T) {
		var page1 []map[string]any
		for i := 0; i < wpPerPage; i++ {
			page1 = append(page1, wpPostJSON(i+1, fmt.Sprintf("post-%d", i+1), "Post", "https://example.com/p/"))
		}
		handler, requests := wpListHandler(t, map[string][]map[string]any{
			"1": page1,
			"2": {wpPostJSON(900, "last", "Last", "https://example.com/last/")},
		})
		h, _ := newHalkarzTest(t, handler)

		posts, err := h.ListPosts(context.Background())
		if err != nil {
			t.Fatalf("ListPosts() error = %v", err)
		}
		if len(posts) != wpPerPage+1 {
			t.Errorf("got %d posts, want %d", len(posts), wpPerPage+1)
		}
		if *requests != 2 {
			t.Errorf("made %d requests, want 2", *requests)
		}
	})

	t.Run("error past first page keeps results", func(t *testing.T) {
		var page1 []map[string]any
		for i := 0; i < wpPerPage; i++ {
			page1 = append(page1, wpPostJSON(i+1, fmt.Sprintf("post-%d", i+1), "Post", "https://example.com/p/"))
		}
		handler, _ := wpListHandler(t, map[string][]map[string]any{"1": page1})
		h, _ := newHalkarzTest(t, handler)

		posts, err := h.ListPosts(context.Background())
		if err != nil {
			t.Fatalf("ListPosts() error = %v, want nil", err)
		}
		if len(posts) != wpPerPage {
			t.Errorf("got %d posts, want %d", len(posts), wpPerPage)
		}
	})

	t.Run("error on first page fails", func(t *testing.T) {
		handler, _ := wpListHandler(t, nil)
		h, _ := newHalkarzTest(t, handler)

		if _, err := h.ListPosts(context.Background()); err == nil {
			t.Fatal("ListPosts() error = nil, want error")
		}
	})
}

func TestFetchMatching(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			http.Error(w, "{}", http.StatusBadRequest)
			return
		}
		posts := []map[string]any{
			wpPostJSON(101, "tarhal-gida", "Tarhal Gıda Sanayi A.Ş. Halka Arzı (TRHAL)", srv.URL+"/tarhal-gida/"),
			wpPostJSON(102, "unrelated", "Piyasa Haberleri", srv.URL+"/unrelated/"),
		}
		json.NewEncoder(w).Encode(posts)
	})
	mux.HandleFunc("/tarhal-gida/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailHTML)
	})

	client := fetch.New(srv.URL, fetch.WithRetries(0, time.Millisecond))
	h := NewHalkarz(client, 2, nil)

	ipos := []*model.IPO{
		{ID: 7, CompanyName: "Tarhal Gıda Sanayi A.Ş."},
		{ID: 8, CompanyName: "Meridyen Enerji A.Ş."},
	}

	results, err := h.FetchMatching(context.Background(), ipos)
	if err != nil {
		t.Fatalf("FetchMatching() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	detail, ok := results[7]
	if !ok {
		t.Fatal("no result for IPO 7")
	}
	if detail.Ticker != "TRHAL" {
		t.Errorf("Ticker = %q, want TRHAL", detail.Ticker)
	}
	if _, ok := results[8]; ok {
		t.Error("unmatched IPO 8 should not be in results")
	}
}

func TestMatchPost(t *testing.T) {
	h := NewHalkarz(nil, 1, nil)

	tests := []struct {
		post    string
		company string
		want    bool
	}{
		{"Tarhal Gıda Sanayi A.Ş. Halka Arzı", "Tarhal Gıda Sanayi A.Ş.", true},
		{"Tarhal Gıda Halka Arz", "TARHAL GIDA SANAYİ VE TİCARET A.Ş.", true},
		{"Meridyen Enerji Üretim A.Ş.", "Tarhal Gıda Sanayi A.Ş.", false},
		{"", "Tarhal Gıda", false},
	}
	for _, tt := range tests {
		if got := h.MatchPost(tt.post, tt.company); got != tt.want {
			t.Errorf("MatchPost(%q, %q) = %v, want %v", tt.post, tt.company, got, tt.want)
		}
	}
}
