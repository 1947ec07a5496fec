package dialogue

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var (
	// The introduction phrase is case-insensitive, the captured name is not:
	// "ich bin müde" must not become a name.
	namePhraseRE = regexp.MustCompile(`(?:^|[^\p{L}])(?i:ich\s+bin|mein\s+name\s+ist|ich\s+hei(?:ß|ss)e)\s+(\p{Lu}[\p{L}'-]*(?:\s+\p{Lu}[\p{L}'-]*){0,3})`)

	isoDateRE    = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	germanDateRE = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4}|\d{2})\b`)

	clockRE    = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	dotClockRE = regexp.MustCompile(`(?i)\b([01]?\d|2[0-3])\.([0-5]\d)\s*uhr\b`)
	hourUhrRE  = regexp.MustCompile(`(?i)\b(?:um\s+)?(\d{1,2})\s*uhr\b`)
	umHourRE   = regexp.MustCompile(`(?i)\bum\s+(\d{1,2})\b`)
	emailRE    = regexp.MustCompile(`[^\s@]+@[^\s@]+\.[^\s@]+`)
	phoneRE    = regexp.MustCompile(`\+?\d[\d\s\-/()]{4,}\d`)
	spaceRunRE = regexp.MustCompile(`\s+`)
)

const minPhoneDigits = 6

// normalize lower-cases, trims and collapses inner whitespace.
func normalize(text string) string {
	return spaceRunRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}

// ExtractName finds a name introduced by "ich bin", "mein Name ist" or
// "ich heiße".
func ExtractName(text string) (string, bool) {
	m := namePhraseRE.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(spaceRunRE.ReplaceAllString(m[1], " "))
	return name, name != ""
}

// BareName accepts a message consisting only of one to three capitalized
// tokens, e.g. "Anna Müller".
func BareName(text string) (string, bool) {
	trimmed := strings.TrimRight(strings.TrimSpace(text), ".!")
	tokens := strings.Fields(trimmed)
	if len(tokens) == 0 || len(tokens) > 3 {
		return "", false
	}
	for _, tok := range tokens {
		if !isNameToken(tok) {
			return "", false
		}
	}
	return strings.Join(tokens, " "), true
}

func isNameToken(tok string) bool {
	for i, r := range tok {
		if i == 0 {
			if !unicode.IsUpper(r) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && r != '-' && r != '\'' {
			return false
		}
	}
	return tok != ""
}

// ExtractDate returns the first calendar-valid date in ISO form. Accepted
// inputs are YYYY-MM-DD, D.M.YYYY and D.M.YY (two-digit years are 20YY).
func ExtractDate(text string) (string, bool) {
	for _, m := range isoDateRE.FindAllStringSubmatch(text, -1) {
		if iso, ok := isoFromParts(m[1], m[2], m[3]); ok {
			return iso, true
		}
	}
	for _, m := range germanDateRE.FindAllStringSubmatch(text, -1) {
		year := m[3]
		if len(year) == 2 {
			y, _ := strconv.Atoi(year)
			year = strconv.Itoa(2000 + y)
		}
		if iso, ok := isoFromParts(year, m[2], m[1]); ok {
			return iso, true
		}
	}
	return "", false
}

func isoFromParts(yearStr, monthStr, dayStr string) (string, bool) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return "", false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return "", false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return "", false
	}
	// time.Date normalizes 31.02 into March; a mismatch means the date does
	// not exist.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// ExtractTime returns a 24h HH:MM time. "14 Uhr", "um 14" and "um 14 Uhr"
// become "14:00", "14.30 Uhr" becomes "14:30". Date tokens are ignored so
// "um 24.12." is not a time. An out-of-range hour falls through to the next
// pattern.
func ExtractTime(text string) (string, bool) {
	text = maskDates(text)
	for _, re := range []*regexp.Regexp{clockRE, dotClockRE} {
		if m := re.FindStringSubmatch(text); m != nil {
			hour, _ := strconv.Atoi(m[1])
			return fmt.Sprintf("%02d:%s", hour, m[2]), true
		}
	}
	for _, re := range []*regexp.Regexp{hourUhrRE, umHourRE} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		hour, err := strconv.Atoi(m[1])
		if err != nil || hour > 23 {
			continue
		}
		return fmt.Sprintf("%02d:00", hour), true
	}
	return "", false
}

// ExtractEmail returns the first token shaped like an email address.
func ExtractEmail(text string) (string, bool) {
	m := emailRE.FindString(text)
	if m == "" {
		return "", false
	}
	m = strings.TrimLeft(m, "(<\"'")
	m = strings.TrimRight(m, ".,;:!?)>\"'")
	if !emailRE.MatchString(m) {
		return "", false
	}
	return m, true
}

// ExtractPhone returns a phone number with at least six digits, keeping a
// leading plus and dropping separators. Dates, times and email addresses are
// masked first so their digits never count.
func ExtractPhone(text string) (string, bool) {
	text = maskAll(text, emailRE, isoDateRE, germanDateRE, clockRE, dotClockRE, hourUhrRE, umHourRE)
	for _, candidate := range phoneRE.FindAllString(text, -1) {
		if phone := compactPhone(candidate); countDigits(phone) >= minPhoneDigits {
			return phone, true
		}
	}
	return "", false
}

func compactPhone(raw string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func maskDates(text string) string {
	return maskAll(text, isoDateRE, germanDateRE)
}

// maskAll blanks every match of the given patterns, preserving byte offsets.
func maskAll(text string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			return strings.Repeat(" ", len(m))
		})
	}
	return text
}

// LooksLikeSlotData reports whether a message probably answers a request for
// appointment data: a date, a time, a long digit run, an email address, a name
// introduction or a bare capitalized name.
func LooksLikeSlotData(text string) bool {
	if hasSlotSignal(text) {
		return true
	}
	_, ok := BareName(text)
	return ok
}

// hasSlotSignal is LooksLikeSlotData without the bare-name rule.
func hasSlotSignal(text string) bool {
	if _, ok := ExtractDate(text); ok {
		return true
	}
	if _, ok := ExtractTime(text); ok {
		return true
	}
	if _, ok := ExtractPhone(text); ok {
		return true
	}
	if _, ok := ExtractEmail(text); ok {
		return true
	}
	_, ok := ExtractName(text)
	return ok
}
