// Package seed fills a fresh database with the shop's starter catalog.
package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Simplici0/shiftprint/internal/pricing"
)

type defaultMaterial struct {
	name   string
	nameRo string
	kind   string
	price  float64
	colors string
}

var defaultMaterials = []defaultMaterial{
	{"PLA", "PLA", "PLA", 290, `["white","black","grey","red","blue"]`},
	{"PETG", "PETG", "PETG", 320, `["black","transparent"]`},
	{"ABS", "ABS", "ABS", 300, `["black","white"]`},
	{"TPU", "TPU", "TPU", 450, `["black"]`},
	{"Nylon", "Nailon", "Nylon", 550, `["natural"]`},
}

// Config contains the values required by startup seed.
type Config struct {
	// MarkupMode is written to a freshly created print settings row.
	MarkupMode pricing.MarkupMode
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureMaterials(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensurePrintSettings(ctx, tx, cfg, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureMaterials(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	for _, m := range defaultMaterials {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM materials WHERE name = ? LIMIT 1)`, m.name).Scan(&exists); err != nil {
			return fmt.Errorf("check material %s existence: %w", m.name, err)
		}
		if exists {
			continue
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO materials (id, name, name_ro, colors_json, type, price)
			VALUES (?, ?, ?, ?, ?, ?)
		`, uuid.NewString(), m.name, m.nameRo, m.colors, m.kind, m.price); err != nil {
			return fmt.Errorf("insert material %s: %w", m.name, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensurePrintSettings(ctx context.Context, tx *sql.Tx, cfg Config, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM print_settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check print settings existence: %w", err)
	}
	if exists {
		return nil
	}

	defaults := pricing.DefaultCostProfile()
	if cfg.MarkupMode == pricing.MarkupPercent {
		defaults.MarkupMode = pricing.MarkupPercent
		defaults.Markup = pricing.DefaultMarkupPercent
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO print_settings (
			id,
			electricity_cost,
			printer_power,
			markup,
			markup_mode,
			labor_cost,
			currency
		)
		VALUES (1, ?, ?, ?, ?, ?, ?)
	`, defaults.ElectricityCost, defaults.PrinterPower, defaults.Markup, string(defaults.MarkupMode), defaults.LaborCost, defaults.Currency); err != nil {
		return fmt.Errorf("insert print settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}
