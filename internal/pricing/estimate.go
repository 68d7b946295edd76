package pricing

import (
	"github.com/Simplici0/shiftprint/internal/mesh"
)

// EstimateInput is everything needed to price one uploaded mesh.
type EstimateInput struct {
	FileName string
	Data     []byte
	// Scale multiplies every coordinate. Zero means 1.
	Scale float64
	// Material nil measures with the default density and skips the cost.
	Material    *Material
	LayerHeight string
	Profile     CostProfile
}

// Estimate is the computed result attached to an order.
type Estimate struct {
	VolumeCm3   float64         `json:"volumeCm3"`
	WeightGrams float64         `json:"weightGrams"`
	Dimensions  mesh.Dimensions `json:"dimensions"`
	PrintHours  float64         `json:"printHours"`
	Cost        *Breakdown      `json:"cost,omitempty"`
}

// EstimateMesh runs parse → geometry → weight → time → cost. It has no side
// effects, so identical inputs give identical outputs.
//
// A *mesh.GeometryError leaves the estimate empty. An *InvalidProfileError
// returns the measured estimate without a cost.
func EstimateMesh(in EstimateInput) (Estimate, error) {
	m, err := mesh.Parse(in.FileName, in.Data)
	if err != nil {
		return Estimate{}, err
	}

	geo, err := mesh.ComputeGeometry(m.Scaled(in.Scale))
	if err != nil {
		return Estimate{}, err
	}

	material := DefaultMaterial()
	if in.Material != nil {
		material = *in.Material
	}
	density := material.Density
	if density <= 0 {
		density = DensityFor(material.Type)
	}

	weight := DeriveWeight(geo.VolumeCm3, density)
	est := Estimate{
		VolumeCm3:   geo.VolumeCm3,
		WeightGrams: weight,
		Dimensions:  geo.Dimensions,
		PrintHours: DerivePrintTime(TimeInput{
			VolumeCm3:   geo.VolumeCm3,
			WeightGrams: weight,
			LayerHeight: in.LayerHeight,
		}),
	}

	if in.Material == nil {
		return est, nil
	}

	cost, err := Compose(ItemInput{
		WeightGrams: est.WeightGrams,
		PrintHours:  est.PrintHours,
		PricePerKg:  material.PricePerKg,
	}, in.Profile)
	if err != nil {
		return est, err
	}
	est.Cost = &cost
	return est, nil
}
