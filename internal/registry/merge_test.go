package registry

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kyaraz/halkaarz/internal/model"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func i64Ptr(v int64) *int64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestMergeIPO_FillsEmptyFields(t *testing.T) {
	dst := &model.IPO{
		ID:          1,
		CompanyName: "Taç Tarım",
		Status:      model.StatusNewlyApproved,
	}
	src := &model.IPO{
		Ticker:    "TACTR",
		IPOPrice:  decPtr("22.50"),
		TotalLots: i64Ptr(50_000_000),
		Sector:    "Tarım",
	}

	fields := mergeIPO(dst, src)

	if dst.Ticker != "TACTR" {
		t.Errorf("Ticker = %q, want %q", dst.Ticker, "TACTR")
	}
	if dst.IPOPrice == nil || !dst.IPOPrice.Equal(decimal.RequireFromString("22.50")) {
		t.Errorf("IPOPrice = %v, want 22.50", dst.IPOPrice)
	}
	if len(fields) != 4 {
		t.Errorf("len(fields) = %d, want 4: %v", len(fields), fields)
	}
	for _, col := range []string{"ticker", "ipo_price", "total_lots", "sector"} {
		if _, ok := fields[col]; !ok {
			t.Errorf("fields missing %q", col)
		}
	}
}

func TestMergeIPO_NeverBlanksFields(t *testing.T) {
	dst := &model.IPO{
		ID:          1,
		CompanyName: "Taç Tarım",
		Ticker:      "TACTR",
		Status:      model.StatusInDistribution,
		IPOPrice:    decPtr("22.50"),
		Sector:      "Tarım",
	}
	src := &model.IPO{} // a source that published nothing

	fields := mergeIPO(dst, src)

	if len(fields) != 0 {
		t.Errorf("fields = %v, want none", fields)
	}
	if dst.Ticker != "TACTR" || dst.Sector != "Tarım" || dst.IPOPrice == nil {
		t.Error("empty source blanked existing fields")
	}
}

func TestMergeIPO_NoChangeForEqualValues(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	dst := &model.IPO{
		ID:                1,
		CompanyName:       "Taç Tarım",
		Ticker:            "TACTR",
		IPOPrice:          decPtr("22.50"),
		SubscriptionStart: timePtr(start),
	}
	src := &model.IPO{
		Ticker:            "TACTR",
		IPOPrice:          decPtr("22.5"), // same value, different exponent
		SubscriptionStart: timePtr(start.Add(10 * time.Hour)),
	}

	if fields := mergeIPO(dst, src); len(fields) != 0 {
		t.Errorf("fields = %v, want none", fields)
	}
}

func TestMergeIPO_CorrectsChangedValues(t *testing.T) {
	dst := &model.IPO{
		ID:              1,
		CompanyName:     "Taç Tarım",
		SubscriptionEnd: timePtr(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)),
	}
	// The window was extended by two days.
	src := &model.IPO{
		SubscriptionEnd: timePtr(time.Date(2026, 3, 6, 15, 0, 0, 0, time.UTC)),
	}

	fields := mergeIPO(dst, src)

	want := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if dst.SubscriptionEnd == nil || !dst.SubscriptionEnd.Equal(want) {
		t.Errorf("SubscriptionEnd = %v, want %v", dst.SubscriptionEnd, want)
	}
	if got, ok := fields["subscription_end"].(time.Time); !ok || !got.Equal(want) {
		t.Errorf("fields[subscription_end] = %v, want %v", fields["subscription_end"], want)
	}
}

func TestMergeIPO_StatusOnlyMovesForward(t *testing.T) {
	dst := &model.IPO{ID: 1, CompanyName: "Taç Tarım", Status: model.StatusAwaitingTrading}

	// A stale page still says the subscription is open.
	if fields := mergeIPO(dst, &model.IPO{Status: model.StatusInDistribution}); len(fields) != 0 {
		t.Errorf("backward status produced fields %v", fields)
	}
	if dst.Status != model.StatusAwaitingTrading {
		t.Errorf("Status = %q, want unchanged", dst.Status)
	}

	fields := mergeIPO(dst, &model.IPO{Status: model.StatusTrading})
	if fields["status"] != model.StatusTrading {
		t.Errorf("fields[status] = %v, want %q", fields["status"], model.StatusTrading)
	}
	if dst.Status != model.StatusTrading {
		t.Errorf("Status = %q, want %q", dst.Status, model.StatusTrading)
	}
}

func TestMergeIPO_CompanyNameFillsOnce(t *testing.T) {
	dst := &model.IPO{ID: 1, CompanyName: "Taç Tarım Ürünleri A.Ş."}
	src := &model.IPO{CompanyName: "TAÇ TARIM ÜRÜNLERİ ANONİM ŞİRKETİ"}

	if fields := mergeIPO(dst, src); len(fields) != 0 {
		t.Errorf("fields = %v, want none", fields)
	}
	if dst.CompanyName != "Taç Tarım Ürünleri A.Ş." {
		t.Errorf("CompanyName = %q, want original", dst.CompanyName)
	}
}

func TestMergeIPO_DoesNotMutateSource(t *testing.T) {
	price := decPtr("10.00")
	src := &model.IPO{IPOPrice: price}
	dst := &model.IPO{ID: 1, CompanyName: "X"}

	mergeIPO(dst, src)
	*dst.IPOPrice = decimal.RequireFromString("99.99")

	if !price.Equal(decimal.RequireFromString("10.00")) {
		t.Error("merge shared the source pointer with dst")
	}
}
