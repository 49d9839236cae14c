package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	amountRe  = regexp.MustCompile(`(\d[\d,]{0,8})\s*(만|천)?\s*원`)
	percentRe = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*%`)
)

// ParseBenefit reads the first won amount and the first percentage out of a
// benefit value string. "10% (최대 1만원)" yields (10000, 10.0, true).
// Placeholder text yields ok=false.
func ParseBenefit(value string) (amountWon int64, pct float64, ok bool) {
	if IsEmptyValue(value) {
		return 0, 0, false
	}
	text := strings.ReplaceAll(strings.ReplaceAll(value, ",", ""), " ", "")
	if m := amountRe.FindStringSubmatch(text); m != nil {
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err == nil {
			switch m[2] {
			case "만":
				v *= 10000
			case "천":
				v *= 1000
			}
			amountWon = v
			ok = true
		}
	}
	if m := percentRe.FindStringSubmatch(text); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			pct = v
			ok = true
		}
	}
	return amountWon, pct, ok
}

// ExtractAmounts collects every won amount mentioned in the text, scaled by
// the 만/천 multipliers. Used by the rule analyzer to take the maximum.
func ExtractAmounts(text string) []int64 {
	compact := strings.ReplaceAll(text, ",", "")
	var out []int64
	for _, m := range amountRe.FindAllStringSubmatch(compact, -1) {
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		switch m[2] {
		case "만":
			v *= 10000
		case "천":
			v *= 1000
		}
		out = append(out, v)
	}
	return out
}

// ExtractPercents collects every percentage mentioned in the text.
func ExtractPercents(text string) []float64 {
	var out []float64
	for _, m := range percentRe.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// MaxAmount returns the largest value in vals, or 0 for an empty slice.
func MaxAmount(vals []int64) int64 {
	var max int64
	for _, v := range vals {
		if v > max {
			max = v
		}
	}
	return max
}

// MaxPercent returns the largest value in vals, or 0 for an empty slice.
func MaxPercent(vals []float64) float64 {
	var max float64
	for _, v := range vals {
		if v > max {
			max = v
		}
	}
	return max
}
