package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/kyaraz/halkaarz/internal/fetch"
	"github.com/kyaraz/halkaarz/internal/model"
)

// KAPScraper queries the public disclosure platform. The client passed in
// must carry the Referer and X-Requested-With headers the query endpoint
// expects, or it answers with an empty list.
type KAPScraper struct {
	client *fetch.Client
	logger *slog.Logger
}

func NewKAP(client *fetch.Client, logger *slog.Logger) *KAPScraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &KAPScraper{client: client, logger: logger}
}

// Disclosure is one entry of the disclosure query response.
type Disclosure struct {
	Index       int64
	CompanyName string
	Ticker      string
	Title       string
	PublishedAt time.Time
	URL         string
}

const (
	disclosureQueryPath = "/tr/api/memberDisclosureQuery"
	disclosurePagePath  = "/tr/Bildirim/"
	ipoSubject          = "halka arz"
)

type disclosureQuery struct {
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
	Subject  string `json:"subject,omitempty"`
}

type kapDisclosure struct {
	DisclosureIndex json.Number `json:"disclosureIndex"`
	CompanyName     string      `json:"companyName"`
	MemberName      string      `json:"memberName"`
	StockCode       string      `json:"stockCode"`
	MemberCode      string      `json:"memberCode"`
	Title           string      `json:"disclosureTitle"`
	Subject         string      `json:"subject"`
	PublishDate     string      `json:"publishDate"`
	DisclosureDate  string      `json:"disclosureDate"`
}

// Istanbul is the exchange timezone; falls back to fixed UTC+3 when the
// zone database is unavailable.
var Istanbul = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Istanbul")
	if err != nil {
		return time.FixedZone("TRT", 3*60*60)
	}
	return loc
}()

// IPODisclosures returns offering-subject disclosures published in the last
// daysBack days.
func (k *KAPScraper) IPODisclosures(ctx context.Context, daysBack int) ([]Disclosure, error) {
	to := time.Now().In(Istanbul)
	return k.Disclosures(ctx, to.AddDate(0, 0, -daysBack), to, ipoSubject)
}

// LatestDisclosures returns every disclosure published today, unfiltered.
// The news job polls this and filters on its side.
func (k *KAPScraper) LatestDisclosures(ctx context.Context) ([]Disclosure, error) {
	now := time.Now().In(Istanbul)
	return k.Disclosures(ctx, now, now, "")
}

// Disclosures runs the disclosure query for the given window. subject narrows
// the search when non-empty.
func (k *KAPScraper) Disclosures(ctx context.Context, from, to time.Time, subject string) ([]Disclosure, error) {
	payload := disclosureQuery{
		FromDate: from.Format("2006-01-02"),
		ToDate:   to.Format("2006-01-02"),
		Subject:  subject,
	}

	var raw []kapDisclosure
	if err := k.client.PostJSON(ctx, disclosureQueryPath, payload, &raw); err != nil {
		return nil, fmt.Errorf("disclosure query: %w", err)
	}

	disclosures := make([]Disclosure, 0, len(raw))
	for _, r := range raw {
		index, err := r.DisclosureIndex.Int64()
		if err != nil || index == 0 {
			continue
		}

		d := Disclosure{
			Index:       index,
			CompanyName: firstNonEmpty(r.CompanyName, r.MemberName),
			Ticker:      cleanTicker(firstNonEmpty(r.StockCode, r.MemberCode)),
			Title:       firstNonEmpty(r.Title, r.Subject),
			URL:         k.client.BaseURL() + disclosurePagePath + r.DisclosureIndex.String(),
		}
		if ts, err := parseKAPTime(firstNonEmpty(r.PublishDate, r.DisclosureDate)); err == nil {
			d.PublishedAt = ts
		} else {
			d.PublishedAt = time.Now().In(Istanbul)
		}
		disclosures = append(disclosures, d)
	}

	return disclosures, nil
}

func parseKAPTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"02.01.2006 15:04:05", "02.01.2006 15:04", "02.01.2006"} {
		if ts, err := time.ParseInLocation(layout, s, Istanbul); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized disclosure time %q", s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Words that mark a disclosure as part of the offering process.
var ipoTitleKeywords = []string{
	"halka arz",
	"izahname",
	"tahsisat",
	"talep toplama",
	"fiyat araligi",
	"satis suresi",
	"dagitim listesi",
}

// IsIPORelated reports whether a disclosure title belongs to the offering
// process rather than day-to-day company news.
func IsIPORelated(title string) bool {
	folded := FoldTurkish(title)
	for _, kw := range ipoTitleKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// DisclosureDetail fetches a disclosure page and returns its text content.
func (k *KAPScraper) DisclosureDetail(ctx context.Context, index int64) (string, error) {
	body, err := k.client.GetHTML(ctx, fmt.Sprintf("%s%d", disclosurePagePath, index), nil)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse disclosure page: %w", err)
	}

	content := doc.Find(".disclosure-content, .sub-content, #divContent").First()
	if content.Length() == 0 {
		content = doc.Find("body")
	}
	return BlockText(content), nil
}

var (
	kapPriceRe = regexp.MustCompile(`(?:halka\s*arz\s*fiyati|pay\s*basina\s*fiyat|birim\s*pay\s*fiyati)\s*[:=]?\s*(\d+[.,]\d{2})\s*tl`)
	kapDateRe  = regexp.MustCompile(`\d{1,2}[./]\d{1,2}[./]\d{4}`)
	kapLotsRe  = regexp.MustCompile(`(\d[\d.]*)\s*(?:adet|lot|pay)\s*(?:halka\s*arzi?|satisa\s*sunul)`)
	kapTotalRe = regexp.MustCompile(`toplam\s*(\d[\d.]*)\s*(?:adet|lot|pay)`)
)

// ExtractIPOFields pulls offering terms out of disclosure text. The result is
// sparse; disclosures usually carry one or two of these at a time.
func ExtractIPOFields(text string) *model.IPO {
	folded := FoldTurkish(text)
	ipo := &model.IPO{}

	if m := kapPriceRe.FindStringSubmatch(folded); m != nil {
		if price, err := ParseDecimalTR(m[1]); err == nil && price.IsPositive() {
			ipo.IPOPrice = &price
		}
	}

	if dates := kapDateRe.FindAllString(folded, -1); len(dates) >= 2 {
		start, serr := ParseTurkishDate(dates[0])
		end, eerr := ParseTurkishDate(dates[len(dates)-1])
		if serr == nil && eerr == nil && !end.Before(start) {
			ipo.SubscriptionStart = &start
			ipo.SubscriptionEnd = &end
		}
	}

	m := kapLotsRe.FindStringSubmatch(folded)
	if m == nil {
		m = kapTotalRe.FindStringSubmatch(folded)
	}
	if m != nil {
		if lots, err := ParseLots(m[1]); err == nil && lots > 0 {
			ipo.TotalLots = &lots
		}
	}

	switch {
	case strings.Contains(folded, model.DistributionEqual+" dagitim"):
		ipo.DistributionMethod = model.DistributionEqual
	case strings.Contains(folded, model.DistributionProportional):
		ipo.DistributionMethod = model.DistributionProportional
	case strings.Contains(folded, model.DistributionMixed):
		ipo.DistributionMethod = model.DistributionMixed
	}

	return ipo
}
