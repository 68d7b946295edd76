// Package export renders order documents.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/Simplici0/shiftprint/internal/pricing"
	"github.com/Simplici0/shiftprint/internal/store"
)

var (
	headerColor   = [3]int{33, 37, 41}
	headerText    = [3]int{255, 255, 255}
	sectionColor  = [3]int{13, 110, 253}
	bodyTextColor = [3]int{33, 37, 41}
	lineColor     = [3]int{200, 200, 200}
)

const labelWidth = 60.0

// QuotePDF writes a one-page quote for o to w.
func QuotePDF(w io.Writer, o store.Order, shopName string, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Quote %s", o.ID), true)
	pdf.SetCreationDate(now)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerText[0], headerText[1], headerText[2])
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 14, tr("  "+shopName+" - print quote"), "", 1, "L", true, 0, "")
	pdf.Ln(4)

	section := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionColor[0], sectionColor[1], sectionColor[2])
		pdf.Cell(0, 8, title)
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(3)
	}
	row := func(label, value string) {
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.CellFormat(labelWidth, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
	}

	section("Order")
	row("Order", o.ID)
	row("File", o.FileName)
	row("Status", o.Status)
	row("Uploaded", o.UploadDate.Format("02.01.2006 15:04"))
	material := o.MaterialName
	if o.OperatorSelectedMaterial != "" {
		material = o.OperatorSelectedMaterial
	}
	if material == "" {
		material = "operator choice"
	}
	row("Material", material)
	if o.MaterialColor != "" {
		row("Color", o.MaterialColor)
	}
	row("Layer height", o.LayerHeight+" mm")
	row("Infill", o.Infill+" %")
	row("Scale", o.Scale)
	pdf.Ln(4)

	if est := o.Estimate; est != nil {
		section("Model")
		row("Volume", fmt.Sprintf("%.2f cm3", est.VolumeCm3))
		row("Dimensions", fmt.Sprintf("%.1f x %.1f x %.1f mm", est.Dimensions.X, est.Dimensions.Y, est.Dimensions.Z))
		row("Weight", fmt.Sprintf("%.2f g", est.WeightGrams))
		row("Print time", fmt.Sprintf("%.1f h", est.PrintHours))
		pdf.Ln(4)
	}

	section("Price")
	if o.Estimate != nil && o.Estimate.Cost != nil {
		costRows(row, o.Estimate.Cost.Customer())
	}
	switch {
	case o.FinalCost != nil:
		row("Final price", fmt.Sprintf("%.2f %s", *o.FinalCost, currencyOf(o)))
	case o.EstimatedCost != nil:
		row("Estimated price", fmt.Sprintf("%.2f %s", *o.EstimatedCost, currencyOf(o)))
	default:
		row("Price", "to be confirmed by the operator")
	}

	if o.CustomerName != "" || o.CustomerPhone != "" {
		pdf.Ln(4)
		section("Customer")
		row("Name", o.CustomerName)
		row("Phone", o.CustomerPhone)
		if o.CustomerEmail != "" {
			row("Email", o.CustomerEmail)
		}
	}

	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Generated %s", now.Format("2006-01-02 15:04"))), "", 0, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("error writing PDF quote: %w", err)
	}
	return nil
}

func costRows(row func(label, value string), c pricing.Breakdown) {
	row("Material", fmt.Sprintf("%.2f %s", c.MaterialCost, c.Currency))
	row("Electricity", fmt.Sprintf("%.2f %s", c.EnergyCost, c.Currency))
	row("Depreciation", fmt.Sprintf("%.2f %s", c.DepreciationCost, c.Currency))
	row("Subtotal", fmt.Sprintf("%.2f %s", c.Subtotal, c.Currency))
	row("Markup", fmt.Sprintf("%.2f %s", c.MarkupAmount, c.Currency))
	row("Total", fmt.Sprintf("%.2f %s", c.Total, c.Currency))
}

func currencyOf(o store.Order) string {
	if o.Estimate != nil && o.Estimate.Cost != nil && o.Estimate.Cost.Currency != "" {
		return o.Estimate.Cost.Currency
	}
	return pricing.DefaultCurrency
}
