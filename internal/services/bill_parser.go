package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/foxxcyber/hisab-kitab/internal/models"
)

type dateLayout int

const (
	layoutYMD dateLayout = iota
	layoutNumericDMY
	layoutDayMonthName
	layoutMonthNameDay
)

type datePattern struct {
	re     *regexp.Regexp
	layout dateLayout
}

type categoryRule struct {
	name string
	re   *regexp.Regexp
}

// BillParser turns raw OCR text into a best-effort bill record
type BillParser struct {
	titleSkipWords []string
	amountLine     *regexp.Regexp
	amountToken    *regexp.Regexp
	numberToken    *regexp.Regexp
	thousandsSep   *regexp.Regexp
	datePatterns   []datePattern
	categoryRules  []categoryRule
	maxAmount      float64
	yearWindow     int
	now            func() time.Time
}

// NewBillParser creates a new bill parser
func NewBillParser() *BillParser {
	const monthNames = `(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*`

	return &BillParser{
		titleSkipWords: []string{"invoice", "receipt", "bill", "total", "amount"},
		amountLine:     regexp.MustCompile(`(?i)(total|amount|fare|paid|price|grand|rs|₹)`),
		amountToken:    regexp.MustCompile(`₹?\s?\d{1,4}(\.\d{1,2})?`),
		numberToken:    regexp.MustCompile(`\d+(\.\d{1,2})?`),
		thousandsSep:   regexp.MustCompile(`(\d),(\d{3})`),
		datePatterns: []datePattern{
			// 2024-03-15, 2024/3/5
			{regexp.MustCompile(`\b(\d{4})[-/](\d{1,2})[-/](\d{1,2})\b`), layoutYMD},
			// 15-03-2024, 3/15/2024
			{regexp.MustCompile(`\b(\d{1,2})[-/](\d{1,2})[-/](\d{4})\b`), layoutNumericDMY},
			// 15/03/24
			{regexp.MustCompile(`\b(\d{1,2})[-/](\d{1,2})[-/](\d{2})\b`), layoutNumericDMY},
			// 15 Mar 2024, 5 September 2024
			{regexp.MustCompile(`(?i)\b(\d{1,2})\s` + monthNames + `\s(\d{4})\b`), layoutDayMonthName},
			// Mar 15, 2024
			{regexp.MustCompile(`(?i)\b` + monthNames + `\s(\d{1,2}),?\s(\d{4})\b`), layoutMonthNameDay},
		},
		categoryRules: []categoryRule{
			{"Travel", regexp.MustCompile(`uber|ola|bus|train|flight|ticket|travel|transport`)},
			{"Food", regexp.MustCompile(`restaurant|food|meal|dine|pizza|burger`)},
			{"Health", regexp.MustCompile(`medical|pharmacy|hospital|doctor`)},
			{"Shopping", regexp.MustCompile(`shopping|mall|store|clothes|apparel`)},
			{"Utilities", regexp.MustCompile(`electricity|water|gas|bill|recharge`)},
		},
		maxAmount:  10000,
		yearWindow: 10,
		now:        time.Now,
	}
}

// Parse extracts title, amount, date and category relative to the current time
func (p *BillParser) Parse(ocrText string) *models.ParsedBill {
	return p.ParseAt(ocrText, p.now())
}

// ParseAt extracts bill fields, treating now as the reference time for date
// plausibility and the fallback date.
func (p *BillParser) ParseAt(ocrText string, now time.Time) *models.ParsedBill {
	lines := p.splitLines(ocrText)

	return &models.ParsedBill{
		Title:    p.extractTitle(lines),
		Amount:   p.extractAmount(lines, ocrText, now),
		Date:     p.extractDate(ocrText, now),
		Category: p.extractCategory(ocrText),
	}
}

// splitLines trims every line and drops empty ones
func (p *BillParser) splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// extractTitle picks the first line that is not a generic bill heading
func (p *BillParser) extractTitle(lines []string) string {
	for _, line := range lines {
		lower := strings.ToLower(line)
		skip := false
		for _, w := range p.titleSkipWords {
			if strings.Contains(lower, w) {
				skip = true
				break
			}
		}
		if !skip {
			return line
		}
	}
	return ""
}

// extractAmount prefers the first keyword line, then falls back to the
// largest plausible number anywhere in the text.
func (p *BillParser) extractAmount(lines []string, text string, now time.Time) *float64 {
	for _, line := range lines {
		if !p.amountLine.MatchString(line) {
			continue
		}
		token := p.amountToken.FindString(p.stripThousands(line))
		if token != "" {
			if v, ok := p.parseNumber(token); ok && v > 0 && v < p.maxAmount {
				return &v
			}
		}
		break
	}

	var best *float64
	for _, token := range p.numberToken.FindAllString(p.stripThousands(text), -1) {
		v, ok := p.parseNumber(token)
		if !ok || v <= 0 || v >= p.maxAmount || p.looksLikeYear(v, now) {
			continue
		}
		if best == nil || v > *best {
			val := v
			best = &val
		}
	}
	return best
}

// stripThousands removes grouping commas so 1,250.00 reads as one token
func (p *BillParser) stripThousands(s string) string {
	for {
		next := p.thousandsSep.ReplaceAllString(s, "$1$2")
		if next == s {
			return s
		}
		s = next
	}
}

func (p *BillParser) parseNumber(token string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, token)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// looksLikeYear reports whether v is a whole number close to the current year
func (p *BillParser) looksLikeYear(v float64, now time.Time) bool {
	if v != math.Trunc(v) {
		return false
	}
	year := now.Year()
	return int(v) >= year-p.yearWindow && int(v) <= year+1
}

// extractDate returns the most recent plausible date within the past year,
// or today when nothing matches.
func (p *BillParser) extractDate(text string, now time.Time) time.Time {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	oneYearAgo := time.Date(now.Year()-1, now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var latest *time.Time
	for _, dp := range p.datePatterns {
		for _, m := range dp.re.FindAllStringSubmatch(text, -1) {
			for _, candidate := range p.dateCandidates(dp.layout, m, loc) {
				if candidate.After(today) || candidate.Before(oneYearAgo) {
					continue
				}
				if latest == nil || candidate.After(*latest) {
					c := candidate
					latest = &c
				}
			}
		}
	}

	if latest == nil {
		return today
	}
	return *latest
}

// dateCandidates interprets one regex match. Numeric day/month forms are
// ambiguous, so both orders are returned when both are real dates.
func (p *BillParser) dateCandidates(layout dateLayout, m []string, loc *time.Location) []time.Time {
	var out []time.Time
	add := func(y, mo, d int) {
		if t, ok := calendarDate(y, mo, d, loc); ok {
			for _, existing := range out {
				if existing.Equal(t) {
					return
				}
			}
			out = append(out, t)
		}
	}

	switch layout {
	case layoutYMD:
		add(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	case layoutNumericDMY:
		a, b, y := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if len(m[3]) == 2 {
			y += 2000
		}
		add(y, b, a)
		add(y, a, b)
	case layoutDayMonthName:
		add(atoi(m[3]), monthIndex(m[2]), atoi(m[1]))
	case layoutMonthNameDay:
		add(atoi(m[3]), monthIndex(m[1]), atoi(m[2]))
	}
	return out
}

// extractCategory maps keywords in the text to a spending category
func (p *BillParser) extractCategory(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range p.categoryRules {
		if rule.re.MatchString(lower) {
			return rule.name
		}
	}
	return ""
}

func calendarDate(y, m, d int, loc *time.Location) (time.Time, bool) {
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func monthIndex(name string) int {
	if len(name) < 3 {
		return 0
	}
	switch strings.ToLower(name[:3]) {
	case "jan":
		return 1
	case "feb":
		return 2
	case "mar":
		return 3
	case "apr":
		return 4
	case "may":
		return 5
	case "jun":
		return 6
	case "jul":
		return 7
	case "aug":
		return 8
	case "sep":
		return 9
	case "oct":
		return 10
	case "nov":
		return 11
	case "dec":
		return 12
	}
	return 0
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
