// Package normalize converts between the human-entered strings found on
// invoices and their canonical typed values (cents, gallons, dates), and
// back to display strings. Conversions never return an error: a value that
// cannot be parsed simply reports ok=false and the caller keeps the
// original string.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CentsFromString parses a money string like "$1,234.56" into integer
// cents. The fractional part beyond two digits is truncated toward zero.
func CentsFromString(s string) (int64, bool) {
	v := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "$", ""), ",", ""))
	if v == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, false
	}
	return d.Mul(decimal.NewFromInt(100)).IntPart(), true
}

// FormatCents renders cents as "$1,234.56".
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return sign + "$" + groupThousands(strconv.FormatInt(c/100, 10)) + "." + pad2(c%100)
}

// GallonsFromString parses quantity strings like "1,320 gallons" or
// "1500 gal" into a float.
func GallonsFromString(s string) (float64, bool) {
	v := strings.ToLower(s)
	v = strings.ReplaceAll(v, "gallons", "")
	v = strings.ReplaceAll(v, "gal", "")
	v = strings.ReplaceAll(v, ",", "")
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatGallons renders a gallon quantity as "1,320 gallons" (grouped,
// no decimals).
func FormatGallons(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := strconv.FormatFloat(v, 'f', 0, 64)
	return sign + groupThousands(whole) + " gallons"
}

// dateLayouts is ordered; the first layout that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1-2-2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// DateFromString parses a date string against the known layouts.
func DateFromString(s string) (time.Time, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDateISO renders a date as YYYY-MM-DD for storage.
func FormatDateISO(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateDisplay renders a date as "Jan 08, 2026" for the UI.
func FormatDateDisplay(t time.Time) string {
	return t.Format("Jan 02, 2006")
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(digits[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func pad2(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
