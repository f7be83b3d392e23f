package heuristic

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

var monthsIT = map[string]time.Month{
	"gennaio": time.January, "febbraio": time.February, "marzo": time.March,
	"aprile": time.April, "maggio": time.May, "giugno": time.June,
	"luglio": time.July, "agosto": time.August, "settembre": time.September,
	"ottobre": time.October, "novembre": time.November, "dicembre": time.December,

	"gen": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "mag": time.May, "giu": time.June,
	"lug": time.July, "ago": time.August, "set": time.September,
	"ott": time.October, "nov": time.November, "dic": time.December,
}

var (
	reDateDMY      = regexp.MustCompile(`\b(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})\b`)
	reDateDMYShort = regexp.MustCompile(`\b(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2})\b`)
	reDateISO      = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	reDateWords    = regexp.MustCompile(`\b(\d{1,2})\s+([a-zàèéìòù.]{3,10})\s+(\d{4})\b`)

	rePlaceholder = regexp.MustCompile(`(?i)(?:\b|_)(y{2,4}|m{2}|d{2})(?:\b|_)`)
)

// twoDigitYearPivot splits two-digit years: below it is 20xx, otherwise 19xx.
const twoDigitYearPivot = 50

type datePattern struct {
	re    *regexp.Regexp
	build func(groups []string) (int, time.Month, int, bool)
}

var datePatterns = []datePattern{
	{re: reDateDMY, build: func(g []string) (int, time.Month, int, bool) {
		return atoi(g[3]), time.Month(atoi(g[2])), atoi(g[1]), true
	}},
	{re: reDateDMYShort, build: func(g []string) (int, time.Month, int, bool) {
		yy := atoi(g[3])
		year := 1900 + yy
		if yy < twoDigitYearPivot {
			year = 2000 + yy
		}
		return year, time.Month(atoi(g[2])), atoi(g[1]), true
	}},
	{re: reDateISO, build: func(g []string) (int, time.Month, int, bool) {
		return atoi(g[1]), time.Month(atoi(g[2])), atoi(g[3]), true
	}},
	{re: reDateWords, build: func(g []string) (int, time.Month, int, bool) {
		month, ok := monthsIT[strings.ReplaceAll(g[2], ".", "")]
		if !ok {
			return 0, 0, 0, false
		}
		return atoi(g[3]), month, atoi(g[1]), true
	}},
}

// FindDate returns the first calendar-valid date found, trying the patterns
// dd/mm/yyyy, dd/mm/yy, yyyy-mm-dd and "14 ottobre 2025" in that order.
func FindDate(text string) *domain.Date {
	t := strings.ToLower(text)
	for _, p := range datePatterns {
		g := p.re.FindStringSubmatch(t)
		if g == nil || rePlaceholder.MatchString(g[0]) {
			continue
		}
		year, month, day, ok := p.build(g)
		if !ok {
			continue
		}
		if d, ok := safeDate(year, month, day); ok {
			return &d
		}
	}
	return nil
}

func safeDate(year int, month time.Month, day int) (domain.Date, bool) {
	if year <= 0 || month < time.January || month > time.December || day < 1 {
		return domain.Date{}, false
	}
	d := domain.NewDate(year, month, day)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return domain.Date{}, false
	}
	return d, true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
