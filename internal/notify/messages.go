package notify

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kyaraz/halkaarz/internal/model"
)

// Message bodies are composed in Turkish, matching the wording the mobile app
// ships with. Prices render with two decimals as announced.

func tickerOrName(ipo *model.IPOSummary) string {
	if ipo.Ticker != "" {
		return ipo.Ticker
	}
	return ipo.CompanyName
}

func ipoData(kind string, ipo *model.IPOSummary) map[string]string {
	return map[string]string{
		"type":   kind,
		"ipo_id": strconv.FormatInt(ipo.ID, 10),
		"ticker": ipo.Ticker,
	}
}

// NewIPOMessage announces a freshly approved offering.
func NewIPOMessage(ipo *model.IPOSummary) *Notification {
	body := ipo.CompanyName
	if ipo.Ticker != "" {
		body += " (" + ipo.Ticker + ")"
	}
	if ipo.IPOPrice != nil {
		body += " — " + ipo.IPOPrice.StringFixed(2) + " TL"
	}
	return &Notification{
		Title:   "🆕 Yeni Halka Arz",
		Body:    body,
		Data:    ipoData("new_ipo", ipo),
		Channel: ChannelIPOAlerts,
	}
}

// SubscriptionStartMessage announces the first subscription day.
func SubscriptionStartMessage(ipo *model.IPOSummary) *Notification {
	body := tickerOrName(ipo) + " halka arz başvurusu başladı!"
	if ipo.SubscriptionEnd != nil {
		body += " Son gün: " + ipo.SubscriptionEnd.Format("02.01.2006")
	}
	return &Notification{
		Title:   "📋 Başvuru Başladı",
		Body:    body,
		Data:    ipoData("ipo_start", ipo),
		Channel: ChannelIPOAlerts,
	}
}

// LastDayWarningMessage warns the evening before that tomorrow closes the
// subscription.
func LastDayWarningMessage(ipo *model.IPOSummary) *Notification {
	return &Notification{
		Title:   "⏰ Son Gün Uyarısı",
		Body:    tickerOrName(ipo) + " halka arz başvurusu YARIN son gün!",
		Data:    ipoData("ipo_last_day", ipo),
		Channel: ChannelIPOAlerts,
	}
}

// ReminderMessage counts down to the 17:00 close on the last subscription day.
func ReminderMessage(ipo *model.IPOSummary, window time.Duration) *Notification {
	return &Notification{
		Title:   "Son Gün Hatırlatma",
		Body:    fmt.Sprintf("%s için başvuru son gün! Kapanışa %s kaldı.", tickerOrName(ipo), ReminderLabel(window)),
		Data:    ipoData("reminder", ipo),
		Channel: ChannelIPOAlerts,
	}
}

// ReminderLabel renders a reminder window the way the app wording expects.
func ReminderLabel(window time.Duration) string {
	if window < time.Hour {
		return strconv.Itoa(int(window.Minutes())) + " dakika"
	}
	return strconv.Itoa(int(window.Hours())) + " saat"
}

// AllocationResultMessage announces published distribution results.
func AllocationResultMessage(ipo *model.IPOSummary) *Notification {
	return &Notification{
		Title:   "📊 Dağıtım Sonuçları",
		Body:    tickerOrName(ipo) + " dağıtım sonuçları açıklandı!",
		Data:    ipoData("ipo_result", ipo),
		Channel: ChannelIPOAlerts,
	}
}

// FirstTradingDayMessage announces the first day on the exchange.
func FirstTradingDayMessage(ipo *model.IPOSummary) *Notification {
	body := tickerOrName(ipo) + " bugün borsada işlem görmeye başlıyor!"
	if ipo.IPOPrice != nil {
		body += " (Halka arz fiyatı: " + ipo.IPOPrice.StringFixed(2) + " TL)"
	}
	return &Notification{
		Title:   "🔔 Bugün İşlem Görmeye Başlıyor",
		Body:    body,
		Data:    ipoData("first_trading_day", ipo),
		Channel: ChannelIPOAlerts,
	}
}

// CeilingBrokenMessage announces the end of a ceiling streak.
func CeilingBrokenMessage(ipo *model.IPOSummary) *Notification {
	return &Notification{
		Title:   "🔓 Tavan Çözüldü",
		Body:    tickerOrName(ipo) + " tavan çözüldü!",
		Data:    ipoData("ceiling_broken", ipo),
		Channel: ChannelCeilingAlerts,
	}
}

// NewsMessage announces a positive disclosure match. The title differs by
// whether the disclosure landed during BIST trading hours.
func NewsMessage(item *model.NewsItem) *Notification {
	var title string
	if item.SessionType == model.SessionInSession {
		title = "⚡ Seans İçi Pozitif Haber Yakalandı - " + item.Ticker
	} else {
		title = "🌙 Seans Dışı Pozitif Haber Yakalandı - " + item.Ticker
	}
	return &Notification{
		Title: title,
		Body:  "Sembol: " + item.Ticker + "\n" + item.MatchedKeyword,
		Data: map[string]string{
			"type":            "kap_news",
			"ticker":          item.Ticker,
			"kap_id":          strconv.FormatInt(item.DisclosureID, 10),
			"sentiment":       item.Sentiment,
			"matched_keyword": item.MatchedKeyword,
		},
		Channel: ChannelKAPNews,
	}
}
