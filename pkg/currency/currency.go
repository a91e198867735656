// Package currency formats INR amounts for display.
//
// Pure and stateless. Upstream data may be partially loaded, so the *Ptr
// variants treat a missing amount as zero instead of failing, and NaN/Inf
// collapse to zero everywhere.
package currency

import (
	"math"
	"strconv"
	"strings"
)

const symbol = "₹"

// Symbol returns the currency symbol.
func Symbol() string { return symbol }

// Format renders amount as a 2-decimal string with the ₹ symbol: "₹25.50".
func Format(amount float64) string {
	return symbol + FormatBare(amount)
}

// FormatBare renders amount as a 2-decimal string without the symbol.
func FormatBare(amount float64) string {
	return strconv.FormatFloat(sanitize(amount), 'f', 2, 64)
}

// FormatPtr is Format for possibly-missing amounts; nil renders as "₹0.00".
func FormatPtr(amount *float64) string {
	return symbol + FormatBarePtr(amount)
}

// FormatBarePtr is FormatBare for possibly-missing amounts.
func FormatBarePtr(amount *float64) string {
	if amount == nil {
		return "0.00"
	}
	return FormatBare(*amount)
}

// FormatWhole renders amount rounded to whole rupees with en-IN digit
// grouping: FormatWhole(125450.75) == "₹1,25,451".
//
// Rounding is half-toward-positive-infinity, matching the display rule the
// revenue chips have always used.
func FormatWhole(amount float64) string {
	return symbol + FormatWholeBare(amount)
}

// FormatWholeBare is FormatWhole without the symbol.
func FormatWholeBare(amount float64) string {
	n := int64(math.Floor(sanitize(amount) + 0.5))
	return groupIndian(n)
}

// FormatWholePtr is FormatWhole for possibly-missing amounts; nil → "₹0".
func FormatWholePtr(amount *float64) string {
	if amount == nil {
		return symbol + "0"
	}
	return FormatWhole(*amount)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// groupIndian inserts en-IN separators: the last three digits form one group,
// every two digits after that form another (12,34,567).
func groupIndian(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	if len(digits) > 3 {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		digits = strings.Join(append(groups, tail), ",")
	}

	if neg {
		return "-" + digits
	}
	return digits
}
