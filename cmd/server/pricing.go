package main

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Simplici0/shiftprint/internal/mesh"
	"github.com/Simplici0/shiftprint/internal/pricing"
	"github.com/Simplici0/shiftprint/internal/store"
)

type printSettingsRequest struct {
	ElectricityCost *float64 `json:"electricityCost"`
	PrinterPower    *float64 `json:"printerPower"`
	Markup          *float64 `json:"markup"`
	MarkupMode      string   `json:"markupMode"`
	LaborCost       *float64 `json:"laborCost"`
	Currency        string   `json:"currency"`
}

type calculateCostRequest struct {
	MaterialID string   `json:"materialId"`
	Weight     *float64 `json:"weight"`
	PrintTime  *float64 `json:"printTime"`
}

type calculateCostResponse struct {
	MaterialCost    float64 `json:"materialCost"`
	ElectricityCost float64 `json:"electricityCost"`
	LaborCost       float64 `json:"laborCost"`
	Subtotal        float64 `json:"subtotal"`
	Markup          float64 `json:"markup"`
	TotalCost       float64 `json:"totalCost"`
	Currency        string  `json:"currency"`
}

func (s *server) handlePrintSettingsGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPrintSettings(r.Context())
	if err != nil {
		log.Printf("load print settings: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load print settings")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handlePrintSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var req printSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for _, f := range []struct {
		name  string
		value *float64
	}{
		{"electricityCost", req.ElectricityCost},
		{"printerPower", req.PrinterPower},
		{"markup", req.Markup},
		{"laborCost", req.LaborCost},
	} {
		if f.value == nil {
			writeError(w, http.StatusBadRequest, f.name+" is required")
			return
		}
	}

	mode, err := pricing.ParseMarkupMode(strings.TrimSpace(req.MarkupMode))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := pricing.CostProfile{
		ElectricityCost: *req.ElectricityCost,
		PrinterPower:    *req.PrinterPower,
		Markup:          *req.Markup,
		MarkupMode:      mode,
		LaborCost:       *req.LaborCost,
		Currency:        strings.TrimSpace(req.Currency),
	}
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.Markup < 0 {
		writeError(w, http.StatusBadRequest, "markup must be non-negative")
		return
	}

	saved, err := s.store.UpdatePrintSettings(r.Context(), p)
	if err != nil {
		log.Printf("update print settings: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update print settings")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *server) handleCalculateCost(w http.ResponseWriter, r *http.Request) {
	var req calculateCostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Weight == nil || req.PrintTime == nil {
		writeError(w, http.StatusBadRequest, "weight and printTime are required")
		return
	}

	ctx := r.Context()
	m, err := s.store.GetMaterial(ctx, strings.TrimSpace(req.MaterialID))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Material not found")
		return
	}
	if err != nil {
		log.Printf("load material: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load material")
		return
	}

	profile, err := s.store.GetPrintSettings(ctx)
	if err != nil {
		log.Printf("load print settings: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load print settings")
		return
	}

	b, err := pricing.Compose(pricing.ItemInput{
		WeightGrams: *req.Weight,
		PrintHours:  *req.PrintTime,
		PricePerKg:  m.Price,
	}, profile)
	var profileErr *pricing.InvalidProfileError
	if errors.As(err, &profileErr) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("compose cost: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to calculate cost")
		return
	}

	b = b.Customer()
	writeJSON(w, http.StatusOK, calculateCostResponse{
		MaterialCost:    b.MaterialCost,
		ElectricityCost: b.EnergyCost,
		LaborCost:       b.DepreciationCost,
		Subtotal:        b.Subtotal,
		Markup:          b.MarkupAmount,
		TotalCost:       b.Total,
		Currency:        b.Currency,
	})
}

// handleEstimate prices an upload without creating an order.
func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	fileName, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	if !mesh.Measurable(fileName) {
		writeError(w, http.StatusBadRequest, "only STL files can be measured")
		return
	}

	est, err := s.estimateMesh(r.Context(), meshRequest{
		fileName:    fileName,
		data:        data,
		materialID:  r.FormValue("materialId"),
		layerHeight: formValueOr(r, "layerHeight", pricing.DefaultLayerHeight),
		scale:       parseScale(r.FormValue("scale")),
	})
	var geoErr *mesh.GeometryError
	var profileErr *pricing.InvalidProfileError
	switch {
	case errors.As(err, &geoErr):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.As(err, &profileErr):
		log.Printf("price estimate for %s: %v", fileName, err)
	case err != nil:
		log.Printf("estimate %s: %v", fileName, err)
		writeError(w, http.StatusInternalServerError, "failed to estimate")
		return
	}

	if est.Cost != nil {
		c := est.Cost.Customer()
		est.Cost = &c
	}
	writeJSON(w, http.StatusOK, est)
}
