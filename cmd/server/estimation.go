package main

import (
	"context"
	"errors"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/Simplici0/shiftprint/internal/pricing"
	"github.com/Simplici0/shiftprint/internal/store"
)

type meshRequest struct {
	fileName       string
	data           []byte
	materialID     string
	operatorChoice bool
	layerHeight    string
	scale          float64
}

// resolveMaterial looks up the catalog material. Absent, malformed and unknown
// ids fall back to the default material.
func (s *server) resolveMaterial(ctx context.Context, id string) pricing.Material {
	id = strings.TrimSpace(id)
	if id == "" {
		return pricing.DefaultMaterial()
	}
	m, err := s.store.GetMaterial(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("material %q not found, using %s defaults", id, pricing.DefaultMaterialType)
		return pricing.DefaultMaterial()
	}
	if err != nil {
		log.Printf("load material %s: %v; using defaults", id, err)
		return pricing.DefaultMaterial()
	}
	return toPricingMaterial(m)
}

func toPricingMaterial(m store.Material) pricing.Material {
	kind := m.Type
	if strings.TrimSpace(kind) == "" {
		kind = pricing.DetectType(m.Name)
	}
	return pricing.Material{
		ID:         m.ID,
		Name:       m.Name,
		Type:       kind,
		Density:    pricing.DensityFor(kind),
		PricePerKg: m.Price,
	}
}

func (s *server) estimateMesh(ctx context.Context, req meshRequest) (pricing.Estimate, error) {
	profile, err := s.store.GetPrintSettings(ctx)
	if err != nil {
		return pricing.Estimate{}, err
	}

	var material *pricing.Material
	if !req.operatorChoice {
		m := s.resolveMaterial(ctx, req.materialID)
		material = &m
	}

	return pricing.EstimateMesh(pricing.EstimateInput{
		FileName:    req.fileName,
		Data:        req.data,
		Scale:       req.scale,
		Material:    material,
		LayerHeight: req.layerHeight,
		Profile:     profile,
	})
}

// parseScale returns 1 for empty, malformed and non-positive values.
func parseScale(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	return v
}
