package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Simplici0/shiftprint/internal/pricing"
)

type estimateOptions struct {
	materialType string
	pricePerKg   float64
	layerHeight  string
	scale        float64
	markupMode   string
	admin        bool
}

func newEstimateCmd() *cobra.Command {
	var opts estimateOptions
	cmd := &cobra.Command{
		Use:   "estimate FILE",
		Short: "Print the cost breakdown for an STL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.materialType, "type", pricing.DefaultMaterialType, "Material type (PLA, PETG, ABS, TPU, NYLON, ASA)")
	cmd.Flags().Float64Var(&opts.pricePerKg, "price", pricing.DefaultPricePerKg, "Material price per kilogram")
	cmd.Flags().StringVar(&opts.layerHeight, "layer-height", pricing.DefaultLayerHeight, "Layer height in mm ("+strings.Join(pricing.LayerHeights(), ", ")+"); empty uses the volume-based time")
	cmd.Flags().Float64Var(&opts.scale, "scale", 1, "Uniform scale factor")
	cmd.Flags().StringVar(&opts.markupMode, "markup-mode", string(pricing.MarkupMultiplier), "Markup mode: multiplier or percent")
	cmd.Flags().BoolVar(&opts.admin, "admin", false, "Round to whole units as in operator messages")
	return cmd
}

func runEstimate(cmd *cobra.Command, file string, opts estimateOptions) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	mode, err := pricing.ParseMarkupMode(opts.markupMode)
	if err != nil {
		return err
	}
	profile := pricing.DefaultCostProfile()
	profile.MarkupMode = mode
	if mode == pricing.MarkupPercent {
		profile.Markup = pricing.DefaultMarkupPercent
	}

	kind := strings.ToUpper(strings.TrimSpace(opts.materialType))
	material := pricing.Material{
		Name:       kind,
		Type:       kind,
		Density:    pricing.DensityFor(kind),
		PricePerKg: opts.pricePerKg,
	}

	est, err := pricing.EstimateMesh(pricing.EstimateInput{
		FileName:    filepath.Base(file),
		Data:        data,
		Scale:       opts.scale,
		Material:    &material,
		LayerHeight: strings.TrimSpace(opts.layerHeight),
		Profile:     profile,
	})
	if err != nil {
		return err
	}

	out, err := renderEstimate(filepath.Base(file), est, opts.admin)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// renderEstimate formats the measured geometry and the cost breakdown as a
// boxed table followed by the highlighted total.
func renderEstimate(name string, est pricing.Estimate, admin bool) (string, error) {
	places := int32(2)
	if admin {
		places = 0
	}
	num := func(v float64) string {
		if admin {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.2f", v)
	}

	rows := [][]string{
		{"Item", "Value"},
		{"File", name},
		{"Volume, cm3", fmt.Sprintf("%.2f", est.VolumeCm3)},
		{"Size, mm", fmt.Sprintf("%.1f x %.1f x %.1f", est.Dimensions.X, est.Dimensions.Y, est.Dimensions.Z)},
		{"Weight, g", fmt.Sprintf("%.1f", est.WeightGrams)},
		{"Print time, h", fmt.Sprintf("%.2f", est.PrintHours)},
	}

	total := ""
	if est.Cost != nil {
		b := est.Cost.Rounded(places)
		rows = append(rows,
			[]string{"Material", num(b.MaterialCost)},
			[]string{"Electricity", num(b.EnergyCost)},
			[]string{"Depreciation", num(b.DepreciationCost)},
			[]string{"Subtotal", num(b.Subtotal)},
			[]string{fmt.Sprintf("Markup x%g", b.Multiplier), num(b.MarkupAmount)},
		)
		green := color.New(color.FgGreen, color.Bold).SprintFunc()
		total = fmt.Sprintf("Total: %s", green(num(b.Total)+" "+b.Currency))
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(rows).Srender()
	if err != nil {
		return "", fmt.Errorf("render estimate table: %w", err)
	}
	if total == "" {
		return table, nil
	}
	return table + "\n" + total, nil
}
