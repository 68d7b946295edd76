package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// InvalidProfileError means a material price or a cost profile field was
// missing or not a usable number.
type InvalidProfileError struct {
	Field  string
	Reason string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid pricing profile: %s %s", e.Field, e.Reason)
}

// ItemInput represents the per-print quantities that drive the cost.
type ItemInput struct {
	WeightGrams float64
	PrintHours  float64
	PricePerKg  float64
}

// Breakdown contains every line item of the cost calculation.
type Breakdown struct {
	MaterialCost     float64 `json:"materialCost"`
	EnergyCost       float64 `json:"energyCost"`
	DepreciationCost float64 `json:"depreciationCost"`
	Subtotal         float64 `json:"subtotal"`
	MarkupAmount     float64 `json:"markupAmount"`
	Total            float64 `json:"total"`
	Multiplier       float64 `json:"multiplier"`
	Currency         string  `json:"currency"`
}

// Compose computes the cost breakdown for one print.
func Compose(item ItemInput, profile CostProfile) (Breakdown, error) {
	if err := validateItem(item); err != nil {
		return Breakdown{}, err
	}
	if err := profile.Validate(); err != nil {
		return Breakdown{}, err
	}

	materialCost := (item.WeightGrams / 1000.0) * item.PricePerKg
	energyCost := (profile.PrinterPower / 1000.0) * item.PrintHours * profile.ElectricityCost
	depreciationCost := item.PrintHours * profile.LaborCost

	subtotal := materialCost + energyCost + depreciationCost
	multiplier := profile.Multiplier()
	total := subtotal * multiplier

	return Breakdown{
		MaterialCost:     materialCost,
		EnergyCost:       energyCost,
		DepreciationCost: depreciationCost,
		Subtotal:         subtotal,
		MarkupAmount:     total - subtotal,
		Total:            total,
		Multiplier:       multiplier,
		Currency:         profile.currency(),
	}, nil
}

func validateItem(item ItemInput) error {
	if math.IsNaN(item.PricePerKg) || math.IsInf(item.PricePerKg, 0) || item.PricePerKg <= 0 {
		return &InvalidProfileError{Field: "price", Reason: "must be a positive number"}
	}
	if math.IsNaN(item.WeightGrams) || math.IsInf(item.WeightGrams, 0) || item.WeightGrams < 0 {
		return &InvalidProfileError{Field: "weight", Reason: "must be a finite non-negative number"}
	}
	if math.IsNaN(item.PrintHours) || math.IsInf(item.PrintHours, 0) || item.PrintHours < 0 {
		return &InvalidProfileError{Field: "printTime", Reason: "must be a finite non-negative number"}
	}
	return nil
}

// Rounded returns a copy with every monetary field rounded half away from
// zero to the given number of decimal places.
func (b Breakdown) Rounded(places int32) Breakdown {
	r := func(v float64) float64 { return round(v, places) }
	return Breakdown{
		MaterialCost:     r(b.MaterialCost),
		EnergyCost:       r(b.EnergyCost),
		DepreciationCost: r(b.DepreciationCost),
		Subtotal:         r(b.Subtotal),
		MarkupAmount:     r(b.MarkupAmount),
		Total:            r(b.Total),
		Multiplier:       b.Multiplier,
		Currency:         b.Currency,
	}
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Customer is the breakdown shown on the site: two decimals.
func (b Breakdown) Customer() Breakdown { return b.Rounded(2) }

// Admin is the breakdown shown to the operator: whole currency units.
func (b Breakdown) Admin() Breakdown { return b.Rounded(0) }
