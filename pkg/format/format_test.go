package format

import (
	"testing"
	"time"
)

func TestCurrencyIndianGrouping(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "₹0.00"},
		{999, "₹999.00"},
		{1000, "₹1,000.00"},
		{125000, "₹1,25,000.00"},
		{10000000, "₹1,00,00,000.00"},
		{-45250.5, "-₹45,250.50"},
	}
	for _, tt := range tests {
		if got := Currency(tt.amount); got != tt.want {
			t.Errorf("Currency(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestPnLSign(t *testing.T) {
	if got := PnL(1500); got != "+₹1,500.00" {
		t.Errorf("PnL(1500) = %q", got)
	}
	if got := PnL(-1500); got != "-₹1,500.00" {
		t.Errorf("PnL(-1500) = %q", got)
	}
	if got := PnL(0); got != "₹0.00" {
		t.Errorf("PnL(0) = %q", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(2.5); got != "+2.50%" {
		t.Errorf("Percent(2.5) = %q", got)
	}
	if got := Percent(-1.25); got != "-1.25%" {
		t.Errorf("Percent(-1.25) = %q", got)
	}
}

func TestEstimated(t *testing.T) {
	if got := Estimated("₹50,000.00"); got != "~₹50,000.00 (est.)" {
		t.Errorf("Estimated = %q", got)
	}
}

func TestAge(t *testing.T) {
	if got := Age(time.Time{}); got != "—" {
		t.Errorf("zero time = %q", got)
	}
	if got := Age(time.Now().Add(-5 * time.Second)); got != "5s" {
		t.Errorf("5s ago = %q", got)
	}
	if got := Age(time.Now().Add(-130 * time.Second)); got != "2m10s" {
		t.Errorf("130s ago = %q", got)
	}
}

func TestQty(t *testing.T) {
	if got := Qty(-125000); got != "-1,25,000" {
		t.Errorf("Qty(-125000) = %q", got)
	}
}
