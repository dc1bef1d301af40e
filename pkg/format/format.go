// Package format provides shared formatting helpers for console output.
package format

import (
	"fmt"
	"strings"
	"time"
)

// Currency formats an amount in Indian currency format (lakhs, crores
// grouping), which is what the fleet trades in.
func Currency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	result := "₹" + indianGroups(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// indianGroups applies the Indian numbering system: a group of three on the
// right, then groups of two.
func indianGroups(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	s = s[:n-3]
	for len(s) > 0 {
		if len(s) >= 2 {
			result = s[len(s)-2:] + "," + result
			s = s[:len(s)-2]
		} else {
			result = s + "," + result
			s = ""
		}
	}
	return result
}

// PnL formats a signed P&L amount with an explicit plus for gains.
func PnL(pnl float64) string {
	formatted := Currency(pnl)
	if pnl > 0 {
		return "+" + formatted
	}
	return formatted
}

// Percent formats a percentage with sign.
func Percent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// Pct formats an unsigned percentage with one decimal.
func Pct(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// Estimated tags a formatted figure as a client-side estimate.
func Estimated(formatted string) string {
	return "~" + formatted + " (est.)"
}

// Age renders a duration since t compactly ("3s", "2m10s", "1h04m").
func Age(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// Qty formats a quantity with Indian grouping.
func Qty(qty int) string {
	neg := qty < 0
	if neg {
		qty = -qty
	}
	s := indianGroups(fmt.Sprintf("%d", qty))
	if neg {
		return "-" + s
	}
	return s
}
