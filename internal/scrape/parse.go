package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/kyaraz/halkaarz/internal/model"
)

var turkishMonths = map[string]time.Month{
	"ocak":    time.January,
	"subat":   time.February,
	"mart":    time.March,
	"nisan":   time.April,
	"mayis":   time.May,
	"haziran": time.June,
	"temmuz":  time.July,
	"agustos": time.August,
	"eylul":   time.September,
	"ekim":    time.October,
	"kasim":   time.November,
	"aralik":  time.December,
}

// FoldTurkish lowercases s and maps Turkish letters to their ASCII
// equivalents, so keyword and label comparisons survive the upstream sites'
// inconsistent casing and encoding.
func FoldTurkish(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'ç', 'Ç':
			return 'c'
		case 'ğ', 'Ğ':
			return 'g'
		case 'ı', 'I', 'İ':
			return 'i'
		case 'ö', 'Ö':
			return 'o'
		case 'ş', 'Ş':
			return 's'
		case 'ü', 'Ü':
			return 'u'
		}
		return unicode.ToLower(r)
	}, s)
}

// Corporate suffixes and filler words dropped during company name matching.
var nameStopwords = map[string]bool{
	"a": true, "s": true, "as": true,
	"anonim": true, "sirketi": true, "sirket": true,
	"san": true, "tic": true, "sanayi": true, "ticaret": true,
	"ltd": true, "sti": true, "ve": true, "dis": true, "ic": true,
	"halka": true, "arz": true, "arzi": true,
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeCompanyName folds s and strips corporate suffixes, producing the
// key used to match the same company across halkarz, KAP and SPK spellings.
func NormalizeCompanyName(s string) string {
	folded := nonAlnum.ReplaceAllString(FoldTurkish(s), " ")

	var kept []string
	for _, tok := range strings.Fields(folded) {
		if nameStopwords[tok] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// CompanyNamesMatch reports whether two company spellings refer to the same
// company: exact normalized match, containment either way, or a shared
// leading token.
func CompanyNamesMatch(a, b string) bool {
	na := NormalizeCompanyName(a)
	nb := NormalizeCompanyName(b)
	if na == "" || nb == "" {
		return false
	}

	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}

	ta := strings.Fields(na)
	tb := strings.Fields(nb)
	if len(ta[0]) >= 4 && ta[0] == tb[0] {
		return true
	}
	if len(ta) >= 2 && len(tb) >= 2 && ta[0] == tb[0] && ta[1] == tb[1] {
		return true
	}
	return false
}

var (
	numericDateRe = regexp.MustCompile(`(\d{1,2})[./](\d{1,2})[./](\d{4})`)
	isoDateRe     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	namedDateRe   = regexp.MustCompile(`(\d{1,2})\s+([a-z]+)\s+(\d{4})`)
	yearRe        = regexp.MustCompile(`20\d{2}`)
	dayRe         = regexp.MustCompile(`\b\d{1,2}\b`)
	clockRe       = regexp.MustCompile(`\d{1,2}[:.]\d{2}\s*[-–]\s*\d{1,2}[:.]\d{2}`)
	clockPartRe   = regexp.MustCompile(`\d{1,2}[:.]\d{2}`)
)

// ParseTurkishDate parses the date spellings the upstream sites use:
// "12 Ocak 2026", "12.01.2026", "12/01/2026" and ISO "2026-01-12[T...]".
// The result is midnight UTC.
func ParseTurkishDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		return civilDate(m[1], m[2], m[3])
	}
	if m := numericDateRe.FindStringSubmatch(s); m != nil {
		return civilDate(m[3], m[2], m[1])
	}

	folded := FoldTurkish(s)
	if m := namedDateRe.FindStringSubmatch(folded); m != nil {
		if month, ok := turkishMonths[m[2]]; ok {
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			return makeDate(year, month, day)
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseDateRange parses subscription windows: "19-20 Şubat 2026",
// "30 Ocak - 1 Şubat 2026", "12.01.2026 - 14.01.2026" or a single date
// (start == end). Clock ranges appended to the text are ignored.
func ParseDateRange(s string) (start, end time.Time, err error) {
	text := clockRe.ReplaceAllString(strings.TrimSpace(s), "")
	folded := FoldTurkish(text)

	// Numeric pairs first: "12.01.2026 - 14.01.2026"
	if dates := numericDateRe.FindAllStringSubmatch(folded, -1); len(dates) > 0 {
		start, err = civilDate(dates[0][3], dates[0][2], dates[0][1])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		last := dates[len(dates)-1]
		end, err = civilDate(last[3], last[2], last[1])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start, end, nil
	}

	yearStr := yearRe.FindString(folded)
	if yearStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("no year in range %q", s)
	}
	year, _ := strconv.Atoi(yearStr)

	months := findMonths(folded)
	if len(months) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("no month in range %q", s)
	}

	if len(months) >= 2 {
		// "30 Ocak - 1 Şubat 2026": day before each month name belongs to it.
		startDay := lastDayBefore(folded[:months[0].pos])
		endDay := lastDayBefore(folded[:months[1].pos])
		if startDay == 0 || endDay == 0 {
			return time.Time{}, time.Time{}, fmt.Errorf("no days in range %q", s)
		}
		start, err = makeDate(year, months[0].month, startDay)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err = makeDate(year, months[1].month, endDay)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start, end, nil
	}

	// Single month: collect day numbers before the year.
	scope := folded
	if idx := strings.Index(folded, yearStr); idx >= 0 {
		scope = folded[:idx]
	}
	var days []int
	for _, d := range dayRe.FindAllString(scope, -1) {
		n, _ := strconv.Atoi(d)
		if n >= 1 && n <= 31 {
			days = append(days, n)
		}
	}
	if len(days) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("no days in range %q", s)
	}

	minDay, maxDay := days[0], days[0]
	for _, d := range days[1:] {
		if d < minDay {
			minDay = d
		}
		if d > maxDay {
			maxDay = d
		}
	}

	start, err = makeDate(year, months[0].month, minDay)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = makeDate(year, months[0].month, maxDay)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// ParseSubscriptionHours extracts a clock range like "10:00-17:00" from a
// subscription date cell, normalized to HH:MM-HH:MM.
func ParseSubscriptionHours(s string) string {
	m := clockRe.FindString(s)
	if m == "" {
		return ""
	}
	parts := clockPartRe.FindAllString(m, 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.ReplaceAll(parts[0], ".", ":") + "-" + strings.ReplaceAll(parts[1], ".", ":")
}

type monthAt struct {
	pos   int
	month time.Month
}

func findMonths(folded string) []monthAt {
	var found []monthAt
	for name, month := range turkishMonths {
		idx := strings.Index(folded, name)
		for idx >= 0 {
			found = append(found, monthAt{pos: idx, month: month})
			next := strings.Index(folded[idx+len(name):], name)
			if next < 0 {
				break
			}
			idx += len(name) + next
		}
	}
	// Sort by position; the map iteration order is random.
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j].pos < found[j-1].pos; j-- {
			found[j], found[j-1] = found[j-1], found[j]
		}
	}
	return found
}

func lastDayBefore(s string) int {
	days := dayRe.FindAllString(s, -1)
	for i := len(days) - 1; i >= 0; i-- {
		n, _ := strconv.Atoi(days[i])
		if n >= 1 && n <= 31 {
			return n
		}
	}
	return 0
}

func civilDate(year, month, day string) (time.Time, error) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return makeDate(y, time.Month(m), d)
}

func makeDate(year int, month time.Month, day int) (time.Time, error) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid date %04d-%02d-%02d", year, month, day)
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

// ParseDecimalTR parses Turkish-formatted numbers: comma decimal separator,
// dot thousands separator, optional currency suffix ("22,00 TL",
// "1.234,56").
func ParseDecimalTR(s string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' || r == ',' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("no number in %q", s)
	}

	switch {
	case strings.Contains(cleaned, ","):
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case strings.Count(cleaned, ".") > 1:
		// Multiple dots are thousands separators: "38.000.000"
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse number %q: %w", s, err)
	}
	return d, nil
}

// ParseLots parses a lot count: "38.000.000 Lot", "795.046 adet".
func ParseLots(s string) (int64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0, fmt.Errorf("no number in %q", s)
	}
	return strconv.ParseInt(cleaned, 10, 64)
}

var pctRe = regexp.MustCompile(`%?\s*(\d+[.,]?\d*)`)

// ParsePercent parses "%28,99" or "22.35" into a decimal percentage.
func ParsePercent(s string) (decimal.Decimal, error) {
	m := pctRe.FindStringSubmatch(s)
	if m == nil {
		return decimal.Decimal{}, fmt.Errorf("no percentage in %q", s)
	}
	return decimal.NewFromString(strings.ReplaceAll(m[1], ",", "."))
}

var financialRe = regexp.MustCompile(`\d+[.,]?\d*`)

// ParseFinancialTL parses announced financial figures like "2,4 Milyar TL"
// or "527,0 Milyon TL" into plain TL.
func ParseFinancialTL(s string) (decimal.Decimal, error) {
	folded := FoldTurkish(s)

	multiplier := decimal.NewFromInt(1)
	switch {
	case strings.Contains(folded, "milyar"):
		multiplier = decimal.NewFromInt(1_000_000_000)
	case strings.Contains(folded, "milyon"):
		multiplier = decimal.NewFromInt(1_000_000)
	case strings.Contains(folded, "bin"):
		multiplier = decimal.NewFromInt(1_000)
	}

	m := financialRe.FindString(folded)
	if m == "" {
		return decimal.Decimal{}, fmt.Errorf("no number in %q", s)
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m, ",", "."))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse financial %q: %w", s, err)
	}
	return d.Mul(multiplier), nil
}

// NormalizeDistribution maps announced distribution wording to the stored
// method constants; unrecognized wording is kept as trimmed raw text.
func NormalizeDistribution(s string) string {
	folded := FoldTurkish(s)
	switch {
	case strings.Contains(folded, "esit"):
		return model.DistributionEqual
	case strings.Contains(folded, "oransal"):
		return model.DistributionProportional
	case strings.Contains(folded, "karma"):
		return model.DistributionMixed
	}
	return strings.TrimRight(strings.TrimSpace(s), " *")
}

// NormalizeMarket maps BIST market names to their stored form.
func NormalizeMarket(s string) string {
	folded := FoldTurkish(s)
	switch {
	case strings.Contains(folded, "yildiz"):
		return "yildiz_pazar"
	case strings.Contains(folded, "alt"):
		return "alt_pazar"
	case strings.Contains(folded, "ana"):
		return "ana_pazar"
	}
	return strings.TrimSpace(s)
}
