package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/shiftprint/internal/pricing"
)

// EnsurePrintSettings creates the settings singleton with defaults unless it
// already exists. It reports whether a row was inserted.
func (s *Store) EnsurePrintSettings(ctx context.Context, defaults pricing.CostProfile) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO print_settings (
			id,
			electricity_cost,
			printer_power,
			markup,
			markup_mode,
			labor_cost,
			currency
		) VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		defaults.ElectricityCost,
		defaults.PrinterPower,
		defaults.Markup,
		string(defaults.MarkupMode),
		defaults.LaborCost,
		defaults.Currency,
	)
	if err != nil {
		return false, fmt.Errorf("insert default print_settings: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert default print_settings: %w", err)
	}
	return n == 1, nil
}

// GetPrintSettings returns the singleton, creating it lazily on first read.
func (s *Store) GetPrintSettings(ctx context.Context) (pricing.CostProfile, error) {
	if _, err := s.EnsurePrintSettings(ctx, pricing.DefaultCostProfile()); err != nil {
		return pricing.CostProfile{}, err
	}

	var p pricing.CostProfile
	var mode string
	err := s.db.QueryRowContext(ctx, `
		SELECT electricity_cost, printer_power, markup, markup_mode, labor_cost, currency
		FROM print_settings
		WHERE id = 1
	`).Scan(
		&p.ElectricityCost,
		&p.PrinterPower,
		&p.Markup,
		&mode,
		&p.LaborCost,
		&p.Currency,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pricing.CostProfile{}, fmt.Errorf("print_settings singleton not found")
		}
		return pricing.CostProfile{}, fmt.Errorf("query print_settings: %w", err)
	}
	p.MarkupMode = pricing.MarkupMode(mode)
	return p, nil
}

// UpdatePrintSettings overwrites the singleton.
func (s *Store) UpdatePrintSettings(ctx context.Context, p pricing.CostProfile) (pricing.CostProfile, error) {
	if p.MarkupMode == "" {
		p.MarkupMode = pricing.MarkupMultiplier
	}
	if p.Currency == "" {
		p.Currency = pricing.DefaultCurrency
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO print_settings (id, electricity_cost, printer_power, markup, markup_mode, labor_cost, currency)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			electricity_cost = excluded.electricity_cost,
			printer_power = excluded.printer_power,
			markup = excluded.markup,
			markup_mode = excluded.markup_mode,
			labor_cost = excluded.labor_cost,
			currency = excluded.currency,
			updated_at = CURRENT_TIMESTAMP
	`,
		p.ElectricityCost,
		p.PrinterPower,
		p.Markup,
		string(p.MarkupMode),
		p.LaborCost,
		p.Currency,
	)
	if err != nil {
		return pricing.CostProfile{}, fmt.Errorf("update print_settings: %w", err)
	}
	return p, nil
}
