package notify

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kyaraz/halkaarz/internal/model"
)

func TestNewIPOMessage(t *testing.T) {
	price := decimal.RequireFromString("18.20")
	ipo := &model.IPOSummary{ID: 5, CompanyName: "Taç Tarım Ürünleri A.Ş.", Ticker: "TACTR", IPOPrice: &price}

	n := NewIPOMessage(ipo)

	if n.Title != "🆕 Yeni Halka Arz" {
		t.Errorf("Title = %q", n.Title)
	}
	want := "Taç Tarım Ürünleri A.Ş. (TACTR) — 18.20 TL"
	if n.Body != want {
		t.Errorf("Body = %q, want %q", n.Body, want)
	}
	if n.Channel != ChannelIPOAlerts {
		t.Errorf("Channel = %q, want %q", n.Channel, ChannelIPOAlerts)
	}
	if n.Data["type"] != "new_ipo" || n.Data["ipo_id"] != "5" || n.Data["ticker"] != "TACTR" {
		t.Errorf("Data = %v", n.Data)
	}
}

func TestNewIPOMessage_MinimalFields(t *testing.T) {
	n := NewIPOMessage(&model.IPOSummary{ID: 1, CompanyName: "Arz A.Ş."})

	if n.Body != "Arz A.Ş." {
		t.Errorf("Body = %q, want company name only", n.Body)
	}
	if n.Data["ticker"] != "" {
		t.Errorf("ticker = %q, want empty", n.Data["ticker"])
	}
}

func TestSubscriptionStartMessage(t *testing.T) {
	end := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	n := SubscriptionStartMessage(&model.IPOSummary{ID: 2, CompanyName: "Arz A.Ş.", Ticker: "ARZT", SubscriptionEnd: &end})

	want := "ARZT halka arz başvurusu başladı! Son gün: 04.03.2026"
	if n.Body != want {
		t.Errorf("Body = %q, want %q", n.Body, want)
	}
}

func TestReminderMessage(t *testing.T) {
	n := ReminderMessage(&model.IPOSummary{ID: 2, Ticker: "ARZT"}, 2*time.Hour)

	want := "ARZT için başvuru son gün! Kapanışa 2 saat kaldı."
	if n.Body != want {
		t.Errorf("Body = %q, want %q", n.Body, want)
	}
	if n.Data["type"] != "reminder" {
		t.Errorf("Data type = %q", n.Data["type"])
	}
}

func TestReminderLabel(t *testing.T) {
	tests := []struct {
		window time.Duration
		want   string
	}{
		{30 * time.Minute, "30 dakika"},
		{time.Hour, "1 saat"},
		{2 * time.Hour, "2 saat"},
		{4 * time.Hour, "4 saat"},
	}
	for _, tt := range tests {
		if got := ReminderLabel(tt.window); got != tt.want {
			t.Errorf("ReminderLabel(%v) = %q, want %q", tt.window, got, tt.want)
		}
	}
}

func TestCeilingBrokenMessage(t *testing.T) {
	n := CeilingBrokenMessage(&model.IPOSummary{ID: 9, Ticker: "TACTR"})

	if n.Body != "TACTR tavan çözüldü!" {
		t.Errorf("Body = %q", n.Body)
	}
	if n.Channel != ChannelCeilingAlerts {
		t.Errorf("Channel = %q, want %q", n.Channel, ChannelCeilingAlerts)
	}
}

func TestNewsMessage(t *testing.T) {
	tests := []struct {
		name        string
		sessionType string
		wantTitle   string
	}{
		{"in session", model.SessionInSession, "⚡ Seans İçi Pozitif Haber Yakalandı - TACTR"},
		{"off session", model.SessionOffSession, "🌙 Seans Dışı Pozitif Haber Yakalandı - TACTR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewsMessage(&model.NewsItem{
				Ticker:         "TACTR",
				DisclosureID:   1419001,
				MatchedKeyword: "sozlesme imzal",
				Sentiment:      "positive",
				SessionType:    tt.sessionType,
			})

			if n.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", n.Title, tt.wantTitle)
			}
			if n.Body != "Sembol: TACTR\nsozlesme imzal" {
				t.Errorf("Body = %q", n.Body)
			}
			if n.Channel != ChannelKAPNews {
				t.Errorf("Channel = %q, want %q", n.Channel, ChannelKAPNews)
			}
			if n.Data["kap_id"] != "1419001" {
				t.Errorf("kap_id = %q", n.Data["kap_id"])
			}
		})
	}
}

func TestIsExpoToken(t *testing.T) {
	if !IsExpoToken("ExponentPushToken[abc123]") {
		t.Error("valid expo token rejected")
	}
	if IsExpoToken("fGh3:APA91b...") {
		t.Error("fcm token accepted as expo")
	}
	if IsExpoToken("") {
		t.Error("empty token accepted")
	}
}
