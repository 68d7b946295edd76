package pricing

import "strings"

// Material is the pricing view of a catalog material.
type Material struct {
	ID         string
	Name       string
	Type       string
	Density    float64 // g/cm³
	PricePerKg float64
}

const (
	DefaultMaterialType = "PLA"
	DefaultDensity      = 1.24
	DefaultPricePerKg   = 290.0

	// MinutesPerCm3 drives the volume-based print time estimate.
	MinutesPerCm3 = 5.0
	// DefaultLayerHeight is what the upload form sends when the customer
	// does not pick one.
	DefaultLayerHeight = "0.2"
	// DefaultSpeed is used for layer heights missing from the speed table.
	DefaultSpeed = 25.0
)

var densities = map[string]float64{
	"PLA":   1.24,
	"ABS":   1.04,
	"PETG":  1.27,
	"TPU":   1.21,
	"NYLON": 1.14,
	"ASA":   1.07,
}

// speeds maps layer height (mm) to extrusion throughput in grams per hour.
var speeds = map[string]float64{
	"0.15": 15,
	"0.2":  25,
	"0.28": 35,
	"0.32": 45,
}

// DefaultMaterial is used when an order names no material or one that does
// not resolve.
func DefaultMaterial() Material {
	return Material{
		Name:       DefaultMaterialType,
		Type:       DefaultMaterialType,
		Density:    DefaultDensity,
		PricePerKg: DefaultPricePerKg,
	}
}

// DensityFor returns the density of a material type tag, case-insensitively.
// Unknown and empty tags get DefaultDensity.
func DensityFor(materialType string) float64 {
	if d, ok := densities[strings.ToUpper(strings.TrimSpace(materialType))]; ok {
		return d
	}
	return DefaultDensity
}

// SpeedFor returns grams per hour for a layer height selector.
func SpeedFor(layerHeight string) float64 {
	if s, ok := speeds[strings.TrimSpace(layerHeight)]; ok {
		return s
	}
	return DefaultSpeed
}

// LayerHeights lists the selectors with a known speed.
func LayerHeights() []string {
	return []string{"0.15", "0.2", "0.28", "0.32"}
}

// DeriveWeight converts a volume into grams.
func DeriveWeight(volumeCm3, density float64) float64 {
	return volumeCm3 * density
}

// TimeInput carries both inputs of the print time heuristics.
type TimeInput struct {
	VolumeCm3   float64
	WeightGrams float64
	// LayerHeight selects the throughput-based estimate. Empty selects the
	// volume-based one.
	LayerHeight string
}

// DerivePrintTime estimates printing hours.
func DerivePrintTime(in TimeInput) float64 {
	if strings.TrimSpace(in.LayerHeight) == "" {
		return in.VolumeCm3 * MinutesPerCm3 / 60
	}
	return in.WeightGrams / SpeedFor(in.LayerHeight)
}

// typeOrder checks PLA last so that names like "PLA/PETG blend" resolve to
// the more specific type.
var typeOrder = []string{"PETG", "ABS", "TPU", "NYLON", "ASA", "PLA"}

// DetectType guesses a material type tag from a display name such as
// "PETG Carbon". Names with no known tag get DefaultMaterialType.
func DetectType(name string) string {
	upper := strings.ToUpper(name)
	for _, t := range typeOrder {
		if strings.Contains(upper, t) {
			return t
		}
	}
	return DefaultMaterialType
}
