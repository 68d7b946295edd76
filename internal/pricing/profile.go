package pricing

import (
	"fmt"
	"math"
)

// MarkupMode selects how CostProfile.Markup is applied to the subtotal.
type MarkupMode string

const (
	// MarkupMultiplier: total = subtotal × markup.
	MarkupMultiplier MarkupMode = "multiplier"
	// MarkupPercent: total = subtotal × (1 + markup/100).
	MarkupPercent MarkupMode = "percent"
)

const (
	// DefaultMultiplier replaces a persisted multiplier below 1.
	DefaultMultiplier = 2.0
	// DefaultMarkupPercent replaces a negative percent markup. Equivalent to ×2.
	DefaultMarkupPercent = 100.0
	DefaultCurrency      = "MDL"
)

// CostProfile holds the shop-wide pricing settings. The field names mirror the
// persisted print settings document.
type CostProfile struct {
	// ElectricityCost is the energy price per kWh.
	ElectricityCost float64 `json:"electricityCost"`
	// PrinterPower is the machine draw in watts.
	PrinterPower float64 `json:"printerPower"`
	// Markup is a multiplier or a percentage depending on MarkupMode.
	Markup     float64    `json:"markup"`
	MarkupMode MarkupMode `json:"markupMode"`
	// LaborCost is the depreciation charged per printing hour.
	LaborCost float64 `json:"laborCost"`
	Currency  string  `json:"currency"`
}

// DefaultCostProfile is used whenever no settings have been persisted.
func DefaultCostProfile() CostProfile {
	return CostProfile{
		ElectricityCost: 3.15,
		PrinterPower:    300,
		Markup:          2,
		MarkupMode:      MarkupMultiplier,
		LaborCost:       10,
		Currency:        DefaultCurrency,
	}
}

// ParseMarkupMode maps a config or form value to a mode. Empty means multiplier.
func ParseMarkupMode(raw string) (MarkupMode, error) {
	switch MarkupMode(raw) {
	case "", MarkupMultiplier:
		return MarkupMultiplier, nil
	case MarkupPercent:
		return MarkupPercent, nil
	default:
		return "", fmt.Errorf("unknown markup mode %q", raw)
	}
}

// Validate reports the first missing or non-numeric field.
func (p CostProfile) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"electricityCost", p.ElectricityCost},
		{"printerPower", p.PrinterPower},
		{"markup", p.Markup},
		{"laborCost", p.LaborCost},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &InvalidProfileError{Field: f.name, Reason: "must be a finite number"}
		}
		if f.value < 0 && f.name != "markup" {
			return &InvalidProfileError{Field: f.name, Reason: "must be non-negative"}
		}
	}
	if _, err := ParseMarkupMode(string(p.MarkupMode)); err != nil {
		return &InvalidProfileError{Field: "markupMode", Reason: err.Error()}
	}
	return nil
}

// Multiplier returns the factor applied to the subtotal. It is never below 1:
// a multiplier under 1 falls back to DefaultMultiplier and a negative percent
// falls back to DefaultMarkupPercent.
func (p CostProfile) Multiplier() float64 {
	if p.MarkupMode == MarkupPercent {
		pct := p.Markup
		if pct < 0 {
			pct = DefaultMarkupPercent
		}
		return 1 + pct/100
	}

	if p.Markup < 1 {
		return DefaultMultiplier
	}
	return p.Markup
}

func (p CostProfile) currency() string {
	if p.Currency == "" {
		return DefaultCurrency
	}
	return p.Currency
}
