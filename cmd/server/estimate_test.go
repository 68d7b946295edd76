package main

import (
	"strings"
	"testing"

	"github.com/Simplici0/shiftprint/internal/mesh"
	"github.com/Simplici0/shiftprint/internal/pricing"
)

func TestRenderEstimateShowsBreakdown(t *testing.T) {
	b, err := pricing.Compose(pricing.ItemInput{WeightGrams: 100, PrintHours: 4, PricePerKg: 290}, pricing.DefaultCostProfile())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	est := pricing.Estimate{
		VolumeCm3:   80.65,
		WeightGrams: 100,
		Dimensions:  mesh.Dimensions{X: 40, Y: 40, Z: 50},
		PrintHours:  4,
		Cost:        &b,
	}

	out, err := renderEstimate("vase.stl", est, false)
	if err != nil {
		t.Fatalf("renderEstimate: %v", err)
	}
	for _, want := range []string{"vase.stl", "29.00", "3.78", "40.00", "72.78", "145.56", "MDL"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	admin, err := renderEstimate("vase.stl", est, true)
	if err != nil {
		t.Fatalf("renderEstimate admin: %v", err)
	}
	if !strings.Contains(admin, "146") || strings.Contains(admin, "145.56") {
		t.Fatalf("admin output not rounded to whole units:\n%s", admin)
	}
}

func TestRenderEstimateWithoutCost(t *testing.T) {
	out, err := renderEstimate("part.stl", pricing.Estimate{VolumeCm3: 8, WeightGrams: 9.92, PrintHours: 0.4}, false)
	if err != nil {
		t.Fatalf("renderEstimate: %v", err)
	}
	if strings.Contains(out, "Total") {
		t.Fatalf("unexpected total without cost:\n%s", out)
	}
}
