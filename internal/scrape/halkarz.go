package scrape

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/kyaraz/halkaarz/internal/fetch"
	"github.com/kyaraz/halkaarz/internal/model"
)

// HalkarzScraper reads halkarz.com: the WordPress REST API for the post list
// and the per-offering detail pages for the actual data.
type HalkarzScraper struct {
	client  *fetch.Client
	workers int
	logger  *slog.Logger
}

// NewHalkarz creates a scraper over the given client. workers bounds the
// concurrent detail fetches.
func NewHalkarz(client *fetch.Client, workers int, logger *slog.Logger) *HalkarzScraper {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HalkarzScraper{client: client, workers: workers, logger: logger}
}

// Post is one halkarz.com listing entry.
type Post struct {
	ID    int64
	Slug  string
	Title string
	Link  string
}

type wpPost struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Link string `json:"link"`
}

const (
	wpPostsPath = "/wp-json/wp/v2/posts"
	wpPerPage   = 50
	wpMaxPages  = 5
)

// ListPosts pages through the WordPress API and returns every listed post.
func (h *HalkarzScraper) ListPosts(ctx context.Context) ([]Post, error) {
	var all []Post

	for page := 1; page <= wpMaxPages; page++ {
		query := url.Values{
			"per_page": {strconv.Itoa(wpPerPage)},
			"page":     {strconv.Itoa(page)},
			"_fields":  {"id,slug,title,link"},
		}

		var posts []wpPost
		if err := h.client.GetJSON(ctx, wpPostsPath, query, &posts); err != nil {
			if page == 1 {
				return nil, fmt.Errorf("list posts: %w", err)
			}
			// Past the last page the API returns an error; keep what we have.
			h.logger.Debug("post listing stopped", "page", page, "error", err)
			break
		}
		if len(posts) == 0 {
			break
		}

		for _, p := range posts {
			all = append(all, Post{
				ID:    p.ID,
				Slug:  p.Slug,
				Title: html.UnescapeString(p.Title.Rendered),
				Link:  p.Link,
			})
		}

		if len(posts) < wpPerPage {
			break
		}
	}

	return all, nil
}

// MatchPost reports whether a post title refers to the given company.
func (h *HalkarzScraper) MatchPost(postTitle, companyName string) bool {
	return CompanyNamesMatch(postTitle, companyName)
}

// FetchMatching lists posts, matches them against the given offerings and
// fetches the detail page for every match, bounded by the worker limit.
// Failed detail fetches are logged and skipped; the rest is returned.
func (h *HalkarzScraper) FetchMatching(ctx context.Context, ipos []*model.IPO) (map[int64]*model.IPO, error) {
	posts, err := h.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}

	type match struct {
		ipoID int64
		link  string
	}
	var matches []match
	for _, ipo := range ipos {
		for _, post := range posts {
			if h.MatchPost(post.Title, ipo.CompanyName) {
				matches = append(matches, match{ipoID: ipo.ID, link: post.Link})
				break
			}
		}
	}

	results := make(map[int64]*model.IPO, len(matches))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)
	for _, m := range matches {
		g.Go(func() error {
			detail, err := h.FetchDetail(gctx, m.link)
			if err != nil {
				h.logger.Warn("detail fetch failed", "url", m.link, "error", err)
				return nil
			}
			mu.Lock()
			results[m.ipoID] = detail
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// FetchDetail downloads and parses one detail page. The returned record is
// sparse: only fields the page actually carries are set.
func (h *HalkarzScraper) FetchDetail(ctx context.Context, pageURL string) (*model.IPO, error) {
	body, err := h.client.GetHTML(ctx, pageURL, nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse detail page: %w", err)
	}

	ipo := &model.IPO{}

	h.parseHeader(doc, ipo)
	h.parseMainTable(doc, ipo)
	h.parseResultsTable(doc, ipo)
	h.parseFinancialTable(doc, ipo)
	h.parseSections(doc, ipo)
	h.parseProspectus(doc, ipo, pageURL)
	h.parseBrokers(doc, ipo)

	return ipo, nil
}

// parseHeader reads the ticker and company headings.
func (h *HalkarzScraper) parseHeader(doc *goquery.Document, ipo *model.IPO) {
	if ticker := cleanTicker(doc.Find("h2.il-bist-kod").First().Text()); ticker != "" {
		ipo.Ticker = ticker
	}
	if name := strings.TrimSpace(doc.Find("h1.il-halka-arz-sirket").First().Text()); name != "" {
		ipo.CompanyName = name
	}
}

// parseMainTable reads the label:value rows of table.sp-table.
func (h *HalkarzScraper) parseMainTable(doc *goquery.Document, ipo *model.IPO) {
	doc.Find("table.sp-table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		label := FoldTurkish(strings.TrimRight(strings.TrimSpace(cells.Eq(0).Text()), " :"))
		value := strings.TrimSpace(cells.Eq(1).Text())
		if label == "" || value == "" {
			return
		}

		switch {
		case strings.Contains(label, "halka arz tarihi"):
			if start, end, err := ParseDateRange(value); err == nil {
				ipo.SubscriptionStart = &start
				ipo.SubscriptionEnd = &end
			}
			if hours := ParseSubscriptionHours(value); hours != "" {
				ipo.SubscriptionHours = hours
			}

		case strings.Contains(label, "fiyat") || strings.Contains(label, "aralig"):
			if price, err := ParseDecimalTR(value); err == nil && price.IsPositive() {
				ipo.IPOPrice = &price
			}

		case strings.Contains(label, "dagitim"):
			ipo.DistributionMethod = NormalizeDistribution(value)

		case label == "pay" || strings.Contains(label, "pay miktari"):
			if lots, err := ParseLots(value); err == nil && lots > 0 {
				ipo.TotalLots = &lots
			}

		case strings.Contains(label, "araci kurum"):
			ipo.LeadBroker = value

		case strings.Contains(label, "fiili dolasim"):
			if pct, err := ParsePercent(value); err == nil {
				ipo.PublicFloatPct = &pct
			}

		case strings.Contains(label, "bist kodu") || strings.Contains(label, "borsa kodu"):
			if ticker := cleanTicker(value); ticker != "" {
				ipo.Ticker = ticker
			}

		// "pazar" before the trading date check: the market row label can
		// mention BIST too.
		case strings.Contains(label, "pazar"):
			ipo.MarketSegment = NormalizeMarket(value)

		case strings.Contains(label, "bist") && strings.Contains(label, "islem"):
			if d, err := ParseTurkishDate(value); err == nil {
				ipo.TradingStart = &d
			}
		}
	})
}

// parseResultsTable reads the distribution results from table.as-table.
// Rows: group | participant count | allocated lots | optional percentage.
func (h *HalkarzScraper) parseResultsTable(doc *goquery.Document, ipo *model.IPO) {
	doc.Find("table.as-table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		label := FoldTurkish(strings.TrimSpace(cells.Eq(0).Text()))
		participants, perr := ParseLots(cells.Eq(1).Text())
		lots, lerr := ParseLots(cells.Eq(2).Text())

		var pct *decimal.Decimal
		if cells.Length() >= 4 {
			if p, err := ParsePercent(cells.Eq(3).Text()); err == nil {
				pct = &p
			}
		}

		group := ""
		switch {
		case strings.Contains(label, "yuksek"):
			group = model.AllocationHighDemand
		case strings.Contains(label, "bireysel"):
			group = model.AllocationRetail
		case strings.Contains(label, "kurumsal") && strings.Contains(label, "dis"):
			group = model.AllocationForeignInst
		case strings.Contains(label, "kurumsal"):
			group = model.AllocationDomesticInst
		case strings.Contains(label, "toplam"):
			if perr == nil && participants > 0 {
				ipo.TotalApplicants = &participants
			}
			return
		default:
			return
		}

		alloc := model.IPOAllocation{GroupName: group, AllocationPct: pct}
		if perr == nil && participants > 0 {
			alloc.ParticipantCount = &participants
		}
		if lerr == nil && lots > 0 {
			alloc.AllocatedLots = &lots
		}
		if alloc.ParticipantCount != nil && alloc.AllocatedLots != nil {
			avg := decimal.NewFromInt(lots).Div(decimal.NewFromInt(participants)).Round(2)
			alloc.AvgLotPerPerson = &avg
		}
		if alloc.ParticipantCount != nil || alloc.AllocatedLots != nil {
			ipo.Allocations = append(ipo.Allocations, alloc)
		}
	})
}

// parseFinancialTable reads revenue and gross profit from table.fs-extra.
// The first value column is the most recent period, the second the prior year.
func (h *HalkarzScraper) parseFinancialTable(doc *goquery.Document, ipo *model.IPO) {
	doc.Find("table.fs-extra tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		label := FoldTurkish(strings.TrimSpace(cells.Eq(0).Text()))
		current, err := ParseFinancialTL(cells.Eq(1).Text())
		if err != nil {
			return
		}

		switch {
		case strings.Contains(label, "hasilat"):
			ipo.RevenueCurrentYear = &current
			if cells.Length() >= 3 {
				if prev, err := ParseFinancialTL(cells.Eq(2).Text()); err == nil {
					ipo.RevenuePreviousYear = &prev
				}
			}
		case strings.Contains(label, "brut"):
			ipo.GrossProfit = &current
		}
	})
}

var (
	publicFloatRe = regexp.MustCompile(`halka\s+aciklik\s*[-–:]?\s*%?\s*(\d+[.,]?\d*)`)
	discountRe    = regexp.MustCompile(`iskonto\w*\s*[-–:]?\s*%?\s*(\d+[.,]?\d*)`)
	stabilityRe   = regexp.MustCompile(`fiyat\s+istikrar\w*\s*[-–:]?\s*(\d+)\s*gun`)
	lockUpRe      = regexp.MustCompile(`satmama\s+taahhud\w*\D{0,40}?(\d+)\s*(yil|ay)`)
	capIncreaseRe = regexp.MustCompile(`sermaye\s+artirimi\s*:\s*([\d.]+)\s*lot`)
	partnerSaleRe = regexp.MustCompile(`ortak\s+satisi\s*:\s*([\d.]+)\s*lot`)
	lotEstimateRe = regexp.MustCompile(`500\s*bin\s*katilim\D{0,10}(\d+)\s*lot`)
	fundUsageRe   = regexp.MustCompile(`(?m)-\s*(%\d+\s+[^\n]+)$`)
)

// parseSections extracts the free-text figures scattered below the tables.
func (h *HalkarzScraper) parseSections(doc *goquery.Document, ipo *model.IPO) {
	text := BlockText(doc.Selection)
	folded := FoldTurkish(text)

	if m := publicFloatRe.FindStringSubmatch(folded); m != nil {
		if pct, err := ParsePercent(m[1]); err == nil {
			ipo.PublicFloatPct = &pct
		}
	}
	if m := discountRe.FindStringSubmatch(folded); m != nil {
		if pct, err := ParsePercent(m[1]); err == nil {
			ipo.DiscountPct = &pct
		}
	}
	if m := stabilityRe.FindStringSubmatch(folded); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil {
			ipo.PriceStabilityDays = &days
		}
	}
	if m := lockUpRe.FindStringSubmatch(folded); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			days := n * 30
			if m[2] == "yil" {
				days = n * 365
			}
			ipo.LockUpPeriodDays = &days
		}
	}
	if m := capIncreaseRe.FindStringSubmatch(folded); m != nil {
		if lots, err := ParseLots(m[1]); err == nil && lots > 0 {
			ipo.CapitalIncreaseLots = &lots
		}
	}
	if ms := partnerSaleRe.FindAllStringSubmatch(folded, -1); len(ms) > 0 {
		var total int64
		for _, m := range ms {
			if lots, err := ParseLots(m[1]); err == nil {
				total += lots
			}
		}
		if total > 0 {
			ipo.PartnerSaleLots = &total
		}
	}
	if m := lotEstimateRe.FindStringSubmatch(folded); m != nil {
		if est, err := decimal.NewFromString(m[1]); err == nil {
			ipo.EstimatedLotsPerPerson = &est
		}
	}
	// Captured from the unfolded text so the stored wording keeps its
	// Turkish characters.
	if ms := fundUsageRe.FindAllStringSubmatch(text, -1); len(ms) > 0 {
		var uses []string
		for _, m := range ms {
			uses = append(uses, strings.TrimSpace(m[1]))
		}
		ipo.FundUsage = strings.Join(uses, "; ")
	}

	// Company description: the longest paragraph of the "Şirket Hakkında"
	// accordion; the first paragraph is sometimes just the company name.
	doc.Find("summary.acc-header").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		heading := FoldTurkish(s.Text())
		if !strings.Contains(heading, "sirket") || !strings.Contains(heading, "hakkinda") {
			return true
		}
		best := ""
		s.NextAllFiltered("div.acc-body").First().Find("p").Each(func(_ int, p *goquery.Selection) {
			if txt := strings.TrimSpace(p.Text()); len(txt) > len(best) {
				best = txt
			}
		})
		if len(best) > 50 {
			ipo.Description = best
		}
		return false
	})
}

// parseProspectus picks the first PDF or prospectus link.
func (h *HalkarzScraper) parseProspectus(doc *goquery.Document, ipo *model.IPO, pageURL string) {
	base, _ := url.Parse(pageURL)
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		text := FoldTurkish(a.Text())
		if strings.HasSuffix(href, ".pdf") || strings.Contains(text, "izahname") || strings.Contains(text, "prospekt") {
			if ref, err := url.Parse(href); err == nil && base != nil {
				href = base.ResolveReference(ref).String()
			}
			ipo.ProspectusURL = href
			return false
		}
		return true
	})
}

// parseBrokers collects rejected consortium members from the application
// accordion. Clean brokers are not stored; only the ones users must be
// warned away from.
func (h *HalkarzScraper) parseBrokers(doc *goquery.Document, ipo *model.IPO) {
	doc.Find("details.acc").EachWithBreak(func(_ int, details *goquery.Selection) bool {
		heading := FoldTurkish(details.Find("summary").First().Text())
		if !strings.Contains(heading, "basvuru") {
			return true
		}

		details.Find("li").Each(func(_ int, li *goquery.Selection) {
			name := strings.TrimSpace(li.Text())
			if name == "" || strings.HasPrefix(name, "*") || strings.Contains(FoldTurkish(name), "tamamlanacak") {
				return
			}

			class, _ := li.Attr("class")
			style, _ := li.Attr("style")
			rejected := strings.Contains(class, "unlist") ||
				strings.Contains(class, "cross") ||
				li.Find("s").Length() > 0 ||
				strings.Contains(style, "line-through") ||
				li.Find("i[class*='times']").Length() > 0
			if !rejected {
				return
			}

			brokerType := "araci_kurum"
			if strings.Contains(FoldTurkish(name), "bank") {
				brokerType = "banka"
			}
			ipo.Brokers = append(ipo.Brokers, model.IPOBroker{
				BrokerName: name,
				BrokerType: brokerType,
				IsRejected: true,
			})
		})
		return false
	})
}

var tickerRe = regexp.MustCompile(`[^A-Z]`)

func cleanTicker(s string) string {
	t := tickerRe.ReplaceAllString(strings.ToUpper(strings.TrimSpace(s)), "")
	if len(t) < 3 || len(t) > 10 {
		return ""
	}
	return t
}
