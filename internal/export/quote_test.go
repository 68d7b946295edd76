package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/Simplici0/shiftprint/internal/pricing"
	"github.com/Simplici0/shiftprint/internal/store"
)

func TestQuotePDF(t *testing.T) {
	final := 150.0
	o := store.Order{
		ID:           "6f1c1f7e-8d0a-4b5e-9a43-2f4c2d8b9e10",
		FileName:     "bracket.stl",
		Status:       store.StatusApproved,
		MaterialName: "PETG",
		LayerHeight:  "0.2",
		Infill:       "20",
		Scale:        "1",
		UploadDate:   time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		Estimate: &pricing.Estimate{
			VolumeCm3:   80.6,
			WeightGrams: 100,
			PrintHours:  4,
			Cost:        &pricing.Breakdown{MaterialCost: 29, EnergyCost: 3.78, DepreciationCost: 40, Subtotal: 72.78, MarkupAmount: 72.78, Total: 145.56, Multiplier: 2, Currency: "MDL"},
		},
		FinalCost:    &final,
		CustomerName: "Ana",
	}

	var buf bytes.Buffer
	if err := QuotePDF(&buf, o, "Shiftprint", time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("render quote: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", buf.Bytes()[:8])
	}
	if buf.Len() < 1000 {
		t.Fatalf("PDF looks truncated: %d bytes", buf.Len())
	}
}

func TestQuotePDFWithoutEstimate(t *testing.T) {
	var buf bytes.Buffer
	err := QuotePDF(&buf, store.Order{ID: "x", FileName: "a.obj", OperatorChoice: true}, "Shiftprint", time.Now())
	if err != nil {
		t.Fatalf("render quote: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected PDF header")
	}
}
