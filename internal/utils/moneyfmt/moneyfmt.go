// Package moneyfmt renders account ids and balances as the grouped
// human-readable strings used on the wire, and parses them back. Both
// codecs round-trip exactly; parsing is lenient about embedded separator
// whitespace and punctuation but fails closed on anything else.
package moneyfmt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is the currency suffix appended to rendered balances.
const Unit = "DU"

// idGroup is the digit-group width of a rendered account id.
const idGroup = 4

// FormatAccountID renders an account id as space-separated 4-digit
// groups, at least two groups wide: 45 -> "0000 0045".
func FormatAccountID(id int64) string {
	s := strconv.FormatInt(id, 10)
	width := 2 * idGroup
	if len(s) > width {
		width = (len(s) + idGroup - 1) / idGroup * idGroup
	}
	s = strings.Repeat("0", width-len(s)) + s

	var b strings.Builder
	for i := 0; i < len(s); i += idGroup {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+idGroup])
	}
	return b.String()
}

// ParseAccountID parses a rendered account id. Separator whitespace and
// punctuation between digit groups is ignored, so "0000 0045", "0000-0045"
// and "45" all parse to 45. Any other character is an error.
func ParseAccountID(s string) (int64, error) {
	digits := strings.Map(func(r rune) rune {
		if isSeparator(r) {
			return -1
		}
		return r
	}, s)
	if digits == "" {
		return 0, fmt.Errorf("account id %q: no digits", s)
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("account id %q: %w", s, err)
	}
	return id, nil
}

// FormatBalance renders an integer amount of minor units as a fixed-point
// decimal with the currency suffix: 1250 -> "12.50 DU".
func FormatBalance(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2) + " " + Unit
}

// ParseBalance parses a rendered balance back to minor units. The unit
// suffix is optional, separators are ignored, and sub-cent precision is
// rejected so that every accepted input maps to exactly one integer.
func ParseBalance(s string) (int64, error) {
	t := strings.TrimSpace(s)
	if n := len(t); n >= len(Unit) && strings.EqualFold(t[n-len(Unit):], Unit) {
		t = strings.TrimSpace(t[:n-len(Unit)])
	}
	t = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '_' || r == '\'' {
			return -1
		}
		return r
	}, t)
	if t == "" {
		return 0, fmt.Errorf("balance %q: empty", s)
	}

	d, err := decimal.NewFromString(t)
	if err != nil {
		return 0, fmt.Errorf("balance %q: %w", s, err)
	}
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("balance %q: more than two decimal places", s)
	}
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("balance %q: out of range", s)
	}
	return minor.IntPart(), nil
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '-', '.', ',', '_', '\'':
		return true
	}
	return false
}
