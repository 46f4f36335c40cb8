package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		amount   int64
		currency string
	}{
		{"INR", INR(4900), 4900, "inr"},
		{"Rupees", Rupees(49), 4900, "inr"},
		{"USD", USD(4900), 4900, "usd"},
		{"EUR", EUR(19900), 19900, "eur"},
		{"GBP", GBP(9900), 9900, "gbp"},
		{"Zero", Zero("INR"), 0, "inr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.money.Amount != tt.amount {
				t.Errorf("expected amount %d, got %d", tt.amount, tt.money.Amount)
			}
			if tt.money.Currency != tt.currency {
				t.Errorf("expected currency %q, got %q", tt.currency, tt.money.Currency)
			}
		})
	}
}

func TestArithmetic(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		got := INR(4900).Add(INR(2900))
		if got.Amount != 7800 {
			t.Errorf("expected 7800, got %d", got.Amount)
		}
	})

	t.Run("Subtract", func(t *testing.T) {
		got := INR(4900).Subtract(INR(2900))
		if got.Amount != 2000 {
			t.Errorf("expected 2000, got %d", got.Amount)
		}
	})

	t.Run("Multiply", func(t *testing.T) {
		got := INR(2900).Multiply(3)
		if got.Amount != 8700 {
			t.Errorf("expected 8700, got %d", got.Amount)
		}
	})

	t.Run("Negate", func(t *testing.T) {
		got := INR(100).Negate()
		if got.Amount != -100 {
			t.Errorf("expected -100, got %d", got.Amount)
		}
	})

	t.Run("Abs", func(t *testing.T) {
		if got := INR(-500).Abs(); got.Amount != 500 {
			t.Errorf("expected 500, got %d", got.Amount)
		}
		if got := INR(500).Abs(); got.Amount != 500 {
			t.Errorf("expected 500, got %d", got.Amount)
		}
	})
}

func TestCurrencyMismatchPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for currency mismatch")
		}
	}()
	INR(100).Add(USD(100))
}

func TestComparisons(t *testing.T) {
	if !INR(0).IsZero() {
		t.Error("INR(0) should be zero")
	}
	if !INR(100).IsPositive() {
		t.Error("INR(100) should be positive")
	}
	if !INR(-100).IsNegative() {
		t.Error("INR(-100) should be negative")
	}
	if !INR(100).Equal(INR(100)) {
		t.Error("equal values should be Equal")
	}
	if INR(100).Equal(USD(100)) {
		t.Error("different currencies should not be Equal")
	}
	if !INR(100).LessThan(INR(200)) {
		t.Error("100 should be less than 200")
	}
	if !INR(200).GreaterThan(INR(100)) {
		t.Error("200 should be greater than 100")
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		name  string
		money Money
		major string
		str   string
	}{
		{"rupees", INR(4900), "49.00", "₹49.00"},
		{"paise", INR(4905), "49.05", "₹49.05"},
		{"negative", INR(-4900), "-49.00", "₹-49.00"},
		{"dollars", USD(12345), "123.45", "$123.45"},
		{"unknown currency", Money{Amount: 100, Currency: "xyz"}, "1.00", "XYZ 1.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.money.FormatMajor(); got != tt.major {
				t.Errorf("FormatMajor: expected %q, got %q", tt.major, got)
			}
			if got := tt.money.String(); got != tt.str {
				t.Errorf("String: expected %q, got %q", tt.str, got)
			}
		})
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(INR(4900))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	s := string(data)
	if !strings.Contains(s, `"amount":4900`) {
		t.Errorf("expected amount field, got %s", s)
	}
	if !strings.Contains(s, `"currency":"inr"`) {
		t.Errorf("expected currency field, got %s", s)
	}
	if !strings.Contains(s, `"display"`) {
		t.Errorf("expected display field, got %s", s)
	}
}

func TestSum(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got := Sum()
		if !got.IsZero() || got.Currency != "inr" {
			t.Errorf("expected zero inr, got %+v", got)
		}
	})

	t.Run("values", func(t *testing.T) {
		got := Sum(INR(100), INR(200), INR(-50))
		if got.Amount != 250 {
			t.Errorf("expected 250, got %d", got.Amount)
		}
	})
}
