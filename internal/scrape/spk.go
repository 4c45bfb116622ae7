package scrape

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/kyaraz/halkaarz/internal/fetch"
	"github.com/kyaraz/halkaarz/internal/model"
)

// SPKScraper reads the board's published data: the pending application table
// on the main site and the issuance JSON API on the web service host. The
// two hosts share a broken certificate chain, so both clients are expected
// to skip TLS verification.
type SPKScraper struct {
	site   *fetch.Client // spk.gov.tr
	api    *fetch.Client // ws.spk.gov.tr
	logger *slog.Logger
}

func NewSPK(site, api *fetch.Client, logger *slog.Logger) *SPKScraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &SPKScraper{site: site, api: api, logger: logger}
}

const (
	applicationsPath = "/istatistikler/basvurular/ilk-halka-arz-basvurusu"
	issuancePath     = "/BorclanmaAraclari/api/IlkHalkaArzVerileri"
)

// Application is one row of the pending application table.
type Application struct {
	RowNumber       int
	CompanyName     string
	ApplicationDate *time.Time
}

// Applications scrapes the pending offering application list. The page is a
// plain HTML table: row number, company name, application date.
func (s *SPKScraper) Applications(ctx context.Context) ([]Application, error) {
	body, err := s.site.GetHTML(ctx, applicationsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("applications page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse applications page: %w", err)
	}

	table := findApplicationsTable(doc)
	if table == nil {
		return nil, fmt.Errorf("applications table not found")
	}

	var apps []Application
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		rowNum, err := strconv.Atoi(strings.TrimSpace(cells.Eq(0).Text()))
		if err != nil {
			return // header or filler row
		}

		app := Application{
			RowNumber:   rowNum,
			CompanyName: strings.TrimSpace(cells.Eq(1).Text()),
		}
		if app.CompanyName == "" {
			return
		}
		if d, err := time.ParseInLocation("02.01.2006", strings.TrimSpace(cells.Eq(2).Text()), time.UTC); err == nil {
			app.ApplicationDate = &d
		}
		apps = append(apps, app)
	})

	s.logger.Debug("applications scraped", "count", len(apps))
	return apps, nil
}

// findApplicationsTable picks the table whose text mentions the company
// column header, falling back to the largest table on the page.
func findApplicationsTable(doc *goquery.Document) *goquery.Selection {
	var table *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		if strings.Contains(FoldTurkish(t.Text()), "sirketler") {
			table = t
			return false
		}
		return true
	})
	if table != nil {
		return table
	}

	maxRows := 0
	doc.Find("table").Each(func(_ int, t *goquery.Selection) {
		if n := t.Find("tr").Length(); n > maxRows {
			maxRows = n
			table = t
		}
	})
	return table
}

// IssuanceRecord is one completed offering from the issuance API, carrying
// the listing date and the final offering terms.
type IssuanceRecord struct {
	Ticker         string
	CompanyName    string
	TradingStart   *time.Time
	IPOPrice       *decimal.Decimal
	MarketSegment  string
	LeadBroker     string
	OfferingSizeTL *decimal.Decimal
	PublicFloatPct *decimal.Decimal
	Method         string
	Period         string
}

type issuanceItem struct {
	BorsaKodu                  string              `json:"borsaKodu"`
	SirketUnvani               string              `json:"sirketUnvani"`
	HalkaArzFiyatiTl           decimal.NullDecimal `json:"halkaArzFiyatiTl"`
	BorsadaIslemGormeTarihi    string              `json:"borsadaIslemGormeTarihi"`
	IlkIslemGorduguPazar       string              `json:"ilkIslemGorduguPazar"`
	HalkaArzaAracilikEdenKurum string              `json:"halkaArzaAracilikEdenKurum"`
	HalkaArzOrani              decimal.NullDecimal `json:"halkaArzOrani"`
	HalkaArzSekli              string              `json:"halkaArzSekli"`
	ToplamTutarBinTl           decimal.NullDecimal `json:"satisaSunulanToplamTutarPiyasaDegeriBinTl"`
	Donem                      string              `json:"donem"`
}

// IssuanceData fetches the completed offerings of one year.
func (s *SPKScraper) IssuanceData(ctx context.Context, year int) ([]IssuanceRecord, error) {
	query := url.Values{"yil": {strconv.Itoa(year)}}

	var items []issuanceItem
	if err := s.api.GetJSON(ctx, issuancePath, query, &items); err != nil {
		return nil, fmt.Errorf("issuance data %d: %w", year, err)
	}

	records := make([]IssuanceRecord, 0, len(items))
	for _, item := range items {
		rec := parseIssuanceItem(item)
		if rec == nil {
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

// RecentIssuances merges the current and previous calendar year. A year that
// fails to fetch is logged and skipped so one bad response does not hide the
// other year's listings.
func (s *SPKScraper) RecentIssuances(ctx context.Context) ([]IssuanceRecord, error) {
	year := time.Now().In(Istanbul).Year()

	var all []IssuanceRecord
	var lastErr error
	for _, y := range []int{year, year - 1} {
		records, err := s.IssuanceData(ctx, y)
		if err != nil {
			s.logger.Warn("issuance fetch failed", "year", y, "error", err)
			lastErr = err
			continue
		}
		all = append(all, records...)
	}
	if len(all) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return all, nil
}

func parseIssuanceItem(item issuanceItem) *IssuanceRecord {
	ticker := cleanTicker(item.BorsaKodu)
	company := strings.TrimSpace(item.SirketUnvani)
	if ticker == "" || company == "" {
		return nil
	}

	rec := &IssuanceRecord{
		Ticker:        ticker,
		CompanyName:   company,
		MarketSegment: strings.TrimSpace(item.IlkIslemGorduguPazar),
		Method:        strings.TrimSpace(item.HalkaArzSekli),
		Period:        strings.TrimSpace(item.Donem),
	}

	if d, err := parseISODate(item.BorsadaIslemGormeTarihi); err == nil {
		rec.TradingStart = &d
	}
	if item.HalkaArzFiyatiTl.Valid {
		rec.IPOPrice = &item.HalkaArzFiyatiTl.Decimal
	}
	if item.ToplamTutarBinTl.Valid {
		size := item.ToplamTutarBinTl.Decimal.Mul(decimal.NewFromInt(1000))
		rec.OfferingSizeTL = &size
	}
	if item.HalkaArzOrani.Valid {
		rec.PublicFloatPct = &item.HalkaArzOrani.Decimal
	}

	// The broker field arrives with stray quotes and embedded newlines when
	// a consortium is listed.
	broker := strings.Trim(strings.TrimSpace(item.HalkaArzaAracilikEdenKurum), `"`)
	rec.LeadBroker = strings.ReplaceAll(broker, "\n", ", ")

	return rec
}

func parseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if ts, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC); err == nil {
		return model.Midnight(ts), nil
	}
	if len(s) >= 10 {
		if ts, err := time.ParseInLocation("2006-01-02", s[:10], time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
