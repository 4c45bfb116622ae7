package news

import (
	"testing"
	"time"

	"github.com/kyaraz/halkaarz/internal/model"
	"github.com/kyaraz/halkaarz/internal/scrape"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		keyword string
		ok      bool
	}{
		{"contract signed", "Müşterimiz ile sözleşme imzalanmıştır", "sozlesme imzalanmistir", true},
		{"tender won", "Açılan ihalede en avantajlı teklif şirketimizce verilmiştir", "en avantajli teklif", true},
		{"new order", "Yurt dışı müşteriden yeni sipariş alınması hakkında", "yeni siparis", true},
		{"share buyback", "Pay geri alım programı başlatılması", "pay geri alim programi", true},
		{"plain filing", "Finansal rapor bildirimi", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyword, ok := Match(tt.text)
			if ok != tt.ok || keyword != tt.keyword {
				t.Errorf("Match(%q) = %q, %v, want %q, %v", tt.text, keyword, ok, tt.keyword, tt.ok)
			}
		})
	}
}

func TestMatchFirstHitWins(t *testing.T) {
	// Both a contract and a tender pattern appear; the earlier list entry wins.
	keyword, ok := Match("İhale sonucu sözleşme imzalanmıştır")
	if !ok {
		t.Fatal("expected a match")
	}
	if keyword != "sozlesme imzalanmistir" {
		t.Errorf("keyword = %q, want %q", keyword, "sozlesme imzalanmistir")
	}
}

func TestSessionTypeAt(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"mid session", time.Date(2026, 2, 18, 14, 30, 0, 0, scrape.Istanbul), model.SessionInSession},
		{"open boundary", time.Date(2026, 2, 18, 10, 0, 0, 0, scrape.Istanbul), model.SessionInSession},
		{"just before close", time.Date(2026, 2, 18, 18, 9, 0, 0, scrape.Istanbul), model.SessionInSession},
		{"at close", time.Date(2026, 2, 18, 18, 10, 0, 0, scrape.Istanbul), model.SessionOffSession},
		{"before open", time.Date(2026, 2, 18, 9, 59, 0, 0, scrape.Istanbul), model.SessionOffSession},
		{"evening", time.Date(2026, 2, 18, 21, 0, 0, 0, scrape.Istanbul), model.SessionOffSession},
		{"saturday", time.Date(2026, 2, 21, 14, 0, 0, 0, scrape.Istanbul), model.SessionOffSession},
		{"sunday", time.Date(2026, 2, 22, 14, 0, 0, 0, scrape.Istanbul), model.SessionOffSession},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SessionTypeAt(tt.at); got != tt.want {
				t.Errorf("SessionTypeAt(%v) = %q, want %q", tt.at, got, tt.want)
			}
		})
	}
}

func TestSessionTypeAtConvertsZone(t *testing.T) {
	// 08:00 UTC is 11:00 in Istanbul, inside the session.
	at := time.Date(2026, 2, 18, 8, 0, 0, 0, time.UTC)
	if got := SessionTypeAt(at); got != model.SessionInSession {
		t.Errorf("SessionTypeAt(%v) = %q, want %q", at, got, model.SessionInSession)
	}
}

func TestDedup(t *testing.T) {
	d := NewDedup([]int64{100, 200})

	if !d.Seen(100) {
		t.Error("primed ID reported as new")
	}
	if d.Seen(300) {
		t.Error("fresh ID reported as seen")
	}
	if !d.Seen(300) {
		t.Error("ID not remembered after first call")
	}
	if got := d.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}
