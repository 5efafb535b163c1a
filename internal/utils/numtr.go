package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var rxKeepNums = regexp.MustCompile(`[^\d.,\-]`)

// NormalizeAmountTR приводит "1.234,50", "1 234,50 TL", "₺99,9", "1234.5" к виду "1234.50" для strconv/decimal.
// Если есть и точка, и запятая, десятичный из них последний. Несколько точек без запятой означают разряды.
func NormalizeAmountTR(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	// убрать пробелы всех видов, валюту и прочий мусор
	s = rxKeepNums.ReplaceAllString(s, "")
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}
	if s == "" || strings.Contains(s, "-") {
		return "", false
	}

	lastDot, lastComma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		i := max(lastDot, lastComma)
		s = strings.NewReplacer(".", "", ",", "").Replace(s[:i]) + "." + s[i+1:]
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	if s == "." || strings.Count(s, ".") > 1 {
		return "", false
	}
	if neg {
		s = "-" + s
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", false
	}
	return s, true
}

// ParseAmountTR делает то же, но сразу в float64.
func ParseAmountTR(s string) (float64, bool) {
	n, ok := NormalizeAmountTR(s)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(n, 64)
	return f, err == nil
}
