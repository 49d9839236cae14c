package textutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/promo-radar/internal/types"
)

// periodRangeRe matches "YYYY.MM.DD ~ YYYY.MM.DD" style ranges with any of
// the separators the card sites use. Years on either side may be 2 digits.
var periodRangeRe = regexp.MustCompile(
	`(\d{2,4})[./-](\d{1,2})[./-](\d{1,2})\s*(?:~|∼|～|-|–)\s*(\d{2,4})[./-](\d{1,2})[./-](\d{1,2})`)

// periodNoEndYearRe matches ranges whose end date carries only month and
// day ("2026.02.01~03.31"); the end year is inherited from the start.
var periodNoEndYearRe = regexp.MustCompile(
	`(\d{2,4})[./-](\d{1,2})[./-](\d{1,2})\s*(?:~|∼|～|-|–)\s*(\d{1,2})[./-](\d{1,2})`)

type periodRange struct {
	sy, sm, sd int
	ey, em, ed int
}

// matchRange finds the first date range in value. The full form wins only
// when its end month/day are plausible; otherwise the leading end field was
// really a yearless month and the no-end-year form applies.
func matchRange(value string) (periodRange, bool) {
	if m := periodRangeRe.FindStringSubmatch(value); m != nil {
		var p periodRange
		p.sy, _ = strconv.Atoi(m[1])
		p.sm, _ = strconv.Atoi(m[2])
		p.sd, _ = strconv.Atoi(m[3])
		p.ey, _ = strconv.Atoi(m[4])
		p.em, _ = strconv.Atoi(m[5])
		p.ed, _ = strconv.Atoi(m[6])
		if p.sy < 100 {
			p.sy += 2000
		}
		if p.ey < 100 {
			p.ey += 2000
		}
		if p.em >= 1 && p.em <= 12 && p.ed >= 1 && p.ed <= 31 {
			return p, true
		}
	}
	if m := periodNoEndYearRe.FindStringSubmatch(value); m != nil {
		var p periodRange
		p.sy, _ = strconv.Atoi(m[1])
		p.sm, _ = strconv.Atoi(m[2])
		p.sd, _ = strconv.Atoi(m[3])
		p.em, _ = strconv.Atoi(m[4])
		p.ed, _ = strconv.Atoi(m[5])
		if p.sy < 100 {
			p.sy += 2000
		}
		p.ey = p.sy
		return p, true
	}
	return periodRange{}, false
}

// NormalizePeriod rewrites a recognizable date range into the canonical
// "YYYY.MM.DD~YYYY.MM.DD" form. Two-digit years get 2000 added; an end date
// without a year inherits the start year. Text with no recognizable range
// is returned cleaned but otherwise untouched.
func NormalizePeriod(s string) string {
	value := CleanText(s)
	if value == "" {
		return ""
	}
	p, ok := matchRange(value)
	if !ok {
		return value
	}
	return fmt.Sprintf("%04d.%02d.%02d~%04d.%02d.%02d", p.sy, p.sm, p.sd, p.ey, p.em, p.ed)
}

// ParsePeriodDates extracts the start and end dates from a period string.
// Returns ok=false when no range is present or the digits do not form real
// calendar dates.
func ParsePeriodDates(period string) (start, end time.Time, ok bool) {
	text := strings.TrimSpace(period)
	if text == "" || IsEmptyValue(text) {
		return time.Time{}, time.Time{}, false
	}
	p, ok := matchRange(text)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	start, ok1 := makeDate(p.sy, p.sm, p.sd)
	end, ok2 := makeDate(p.ey, p.em, p.ed)
	if !ok1 || !ok2 {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject rollovers like Feb 30.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

var digitsOnlyRe = regexp.MustCompile(`[^0-9]`)

// FormatCompactDate turns "20260201" into "2026.02.01". Anything that does
// not reduce to exactly eight digits yields "".
func FormatCompactDate(yyyymmdd string) string {
	digits := digitsOnlyRe.ReplaceAllString(yyyymmdd, "")
	if len(digits) != 8 {
		return ""
	}
	return digits[0:4] + "." + digits[4:6] + "." + digits[6:8]
}

// BuildPeriod joins two compact dates into a range string, tolerating a
// missing side.
func BuildPeriod(startYYYYMMDD, endYYYYMMDD string) string {
	start := FormatCompactDate(startYYYYMMDD)
	end := FormatCompactDate(endYYYYMMDD)
	switch {
	case start != "" && end != "":
		return start + "~" + end
	case start != "":
		return start
	default:
		return end
	}
}

// ComputeStatus derives the event status from its end date as of now.
func ComputeStatus(periodEnd *time.Time, now time.Time) string {
	if periodEnd == nil {
		return types.StatusUnknown
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if periodEnd.Before(today) {
		return types.StatusEnded
	}
	return types.StatusActive
}
