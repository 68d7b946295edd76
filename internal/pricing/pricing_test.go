package pricing

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/Simplici0/shiftprint/internal/mesh"
	"github.com/Simplici0/shiftprint/internal/mesh/meshtest"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func spreadsheetProfile() CostProfile {
	return CostProfile{
		ElectricityCost: 3.15,
		PrinterPower:    300,
		Markup:          2,
		MarkupMode:      MarkupMultiplier,
		LaborCost:       10,
		Currency:        "MDL",
	}
}

func TestCompose_MatchesSpreadsheet(t *testing.T) {
	b, err := Compose(ItemInput{WeightGrams: 100, PrintHours: 4, PricePerKg: 290}, spreadsheetProfile())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	c := b.Customer()
	nearlyEqual(t, "materialCost", c.MaterialCost, 29.0)
	nearlyEqual(t, "energyCost", c.EnergyCost, 3.78)
	nearlyEqual(t, "depreciationCost", c.DepreciationCost, 40.0)
	nearlyEqual(t, "subtotal", c.Subtotal, 72.78)
	nearlyEqual(t, "total", c.Total, 145.56)
	nearlyEqual(t, "markupAmount", c.MarkupAmount, 72.78)
	if c.Currency != "MDL" {
		t.Fatalf("currency = %q", c.Currency)
	}
}

func TestCompose_AdminRoundsToWholeUnits(t *testing.T) {
	b, err := Compose(ItemInput{WeightGrams: 100, PrintHours: 4, PricePerKg: 290}, spreadsheetProfile())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	a := b.Admin()
	nearlyEqual(t, "energyCost", a.EnergyCost, 4)
	nearlyEqual(t, "subtotal", a.Subtotal, 73)
	nearlyEqual(t, "total", a.Total, 146)
}

func TestCompose_MarkupBelowOneClampsToTwo(t *testing.T) {
	profile := spreadsheetProfile()
	profile.Markup = 0.5

	b, err := Compose(ItemInput{WeightGrams: 100, PrintHours: 4, PricePerKg: 290}, profile)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	nearlyEqual(t, "multiplier", b.Multiplier, 2)
	nearlyEqual(t, "total", b.Customer().Total, 145.56)
	if b.Total < b.Subtotal {
		t.Fatalf("total %v below subtotal %v", b.Total, b.Subtotal)
	}
}

func TestCompose_PercentMarkup(t *testing.T) {
	profile := spreadsheetProfile()
	profile.MarkupMode = MarkupPercent
	profile.Markup = 30

	b, err := Compose(ItemInput{WeightGrams: 1000, PricePerKg: 100}, profile)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	nearlyEqual(t, "total", b.Customer().Total, 130)
	nearlyEqual(t, "markupAmount", b.Customer().MarkupAmount, 30)

	profile.Markup = -10
	b, err = Compose(ItemInput{WeightGrams: 1000, PricePerKg: 100}, profile)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	nearlyEqual(t, "total", b.Customer().Total, 200)
}

func TestCompose_InvalidProfile(t *testing.T) {
	cases := map[string]struct {
		item    ItemInput
		profile CostProfile
	}{
		"zero price":    {ItemInput{WeightGrams: 10, PrintHours: 1}, spreadsheetProfile()},
		"nan price":     {ItemInput{WeightGrams: 10, PrintHours: 1, PricePerKg: math.NaN()}, spreadsheetProfile()},
		"inf weight":    {ItemInput{WeightGrams: math.Inf(1), PrintHours: 1, PricePerKg: 290}, spreadsheetProfile()},
		"inf hours":     {ItemInput{WeightGrams: 10, PrintHours: math.Inf(1), PricePerKg: 290}, spreadsheetProfile()},
		"nan power":     {ItemInput{WeightGrams: 10, PricePerKg: 1}, CostProfile{PrinterPower: math.NaN()}},
		"negative rate": {ItemInput{WeightGrams: 10, PricePerKg: 1}, CostProfile{ElectricityCost: -1}},
		"bad mode":      {ItemInput{WeightGrams: 10, PricePerKg: 1}, CostProfile{MarkupMode: "double"}},
	}
	for name, tc := range cases {
		_, err := Compose(tc.item, tc.profile)
		var profileErr *InvalidProfileError
		if !errors.As(err, &profileErr) {
			t.Fatalf("%s: expected InvalidProfileError, got %v", name, err)
		}
	}
}

func TestDeriveWeight(t *testing.T) {
	nearlyEqual(t, "weight", DeriveWeight(1.0, DensityFor("PLA")), 1.24)
	nearlyEqual(t, "petg", DensityFor("petg"), 1.27)
	nearlyEqual(t, "unknown", DensityFor("wood"), DefaultDensity)
}

func TestDerivePrintTime(t *testing.T) {
	nearlyEqual(t, "layer 0.2", DerivePrintTime(TimeInput{WeightGrams: 100, LayerHeight: "0.2"}), 4.0)
	nearlyEqual(t, "layer 0.32", DerivePrintTime(TimeInput{WeightGrams: 90, LayerHeight: "0.32"}), 2.0)
	nearlyEqual(t, "unknown layer", DerivePrintTime(TimeInput{WeightGrams: 50, LayerHeight: "0.5"}), 2.0)
	nearlyEqual(t, "volume mode", DerivePrintTime(TimeInput{VolumeCm3: 12, WeightGrams: 999}), 1.0)
}

func TestEstimateMesh_CubeIsIdempotent(t *testing.T) {
	in := EstimateInput{
		FileName:    "cube.stl",
		Data:        meshtest.BinarySTL(meshtest.Cube(10)),
		Material:    &Material{Type: "PLA", PricePerKg: 290},
		LayerHeight: "0.2",
		Profile:     spreadsheetProfile(),
	}

	first, err := EstimateMesh(in)
	if err != nil {
		t.Fatalf("EstimateMesh: %v", err)
	}
	second, err := EstimateMesh(in)
	if err != nil {
		t.Fatalf("EstimateMesh: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("estimates differ: %+v vs %+v", first, second)
	}

	nearlyEqual(t, "volume", first.VolumeCm3, 1.0)
	nearlyEqual(t, "weight", first.WeightGrams, 1.24)
	nearlyEqual(t, "hours", first.PrintHours, 1.24/25)
	if first.Cost == nil {
		t.Fatalf("expected cost for a priced material")
	}
}

func TestEstimateMesh_NoMaterialSkipsCost(t *testing.T) {
	est, err := EstimateMesh(EstimateInput{
		FileName: "cube.stl",
		Data:     meshtest.BinarySTL(meshtest.Cube(10)),
		Scale:    2,
		Profile:  spreadsheetProfile(),
	})
	if err != nil {
		t.Fatalf("EstimateMesh: %v", err)
	}
	if est.Cost != nil {
		t.Fatalf("expected no cost, got %+v", est.Cost)
	}
	nearlyEqual(t, "volume", est.VolumeCm3, 8.0)
	nearlyEqual(t, "hours", est.PrintHours, 8.0*MinutesPerCm3/60)
}

func TestEstimateMesh_EmptyMeshIsGeometryError(t *testing.T) {
	empty := meshtest.BinarySTL(&mesh.Mesh{})
	est, err := EstimateMesh(EstimateInput{FileName: "empty.stl", Data: empty, Profile: spreadsheetProfile()})

	var geoErr *mesh.GeometryError
	if !errors.As(err, &geoErr) {
		t.Fatalf("expected GeometryError, got %v", err)
	}
	if est.Cost != nil || est.WeightGrams != 0 {
		t.Fatalf("expected empty estimate, got %+v", est)
	}
}

func TestEstimateMesh_InvalidProfileKeepsGeometry(t *testing.T) {
	est, err := EstimateMesh(EstimateInput{
		FileName: "cube.stl",
		Data:     meshtest.BinarySTL(meshtest.Cube(10)),
		Material: &Material{Type: "ABS"},
		Profile:  spreadsheetProfile(),
	})

	var profileErr *InvalidProfileError
	if !errors.As(err, &profileErr) {
		t.Fatalf("expected InvalidProfileError, got %v", err)
	}
	nearlyEqual(t, "weight", est.WeightGrams, 1.04)
	if est.Cost != nil {
		t.Fatalf("expected no cost")
	}
}

func TestLoyaltyDiscount(t *testing.T) {
	cases := map[int]int{-1: 0, 0: 0, 1: 5, 3: 15, 5: 25, 9: 25}
	for completed, want := range cases {
		if got := LoyaltyDiscount(completed); got != want {
			t.Fatalf("LoyaltyDiscount(%d) = %d, want %d", completed, got, want)
		}
	}
}

func TestApplyDiscount(t *testing.T) {
	nearlyEqual(t, "no discount", ApplyDiscount(145.555, 0), 145.56)
	nearlyEqual(t, "15%", ApplyDiscount(200, 15), 170)
	nearlyEqual(t, "25%", ApplyDiscount(99.99, 25), 74.99)
}

func TestDetectType(t *testing.T) {
	cases := map[string]string{
		"PETG Carbon":    "PETG",
		"nylon PA12":     "NYLON",
		"Silk PLA":       "PLA",
		"Resin":          "PLA",
		"":               "PLA",
		"ASA outdoor":    "ASA",
		"PLA/PETG blend": "PETG",
	}
	for name, want := range cases {
		if got := DetectType(name); got != want {
			t.Fatalf("DetectType(%q) = %q, want %q", name, got, want)
		}
	}
}
