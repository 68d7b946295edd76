package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/shiftprint/internal/pricing"
)

const (
	StatusPending          = "pending"
	StatusOrdered          = "ordered"
	StatusApproved         = "approved"
	StatusPriceChanged     = "price_changed"
	StatusMaterialSelected = "material_selected"
	StatusCompleted        = "completed"
)

// Order is an uploaded print request and everything the operator adds later.
type Order struct {
	ID                       string            `json:"id"`
	FileName                 string            `json:"fileName"`
	FileURL                  string            `json:"fileUrl"`
	MaterialID               string            `json:"materialId,omitempty"`
	MaterialName             string            `json:"materialName,omitempty"`
	MaterialColor            string            `json:"materialColor,omitempty"`
	OperatorChoice           bool              `json:"operatorChoice"`
	OperatorSelectedMaterial string            `json:"operatorSelectedMaterial,omitempty"`
	Purpose                  string            `json:"purpose,omitempty"`
	Loads                    string            `json:"loads,omitempty"`
	Scale                    string            `json:"scale"`
	Infill                   string            `json:"infill"`
	LayerHeight              string            `json:"layerHeight"`
	Weight                   *float64          `json:"weight"`
	PrintTime                *float64          `json:"printTime"`
	EstimatedCost            *float64          `json:"estimatedCost"`
	Estimate                 *pricing.Estimate `json:"estimate,omitempty"`
	FinalCost                *float64          `json:"finalCost"`
	Status                   string            `json:"status"`
	CustomerName             string            `json:"customerName,omitempty"`
	CustomerPhone            string            `json:"customerPhone,omitempty"`
	CustomerEmail            string            `json:"customerEmail,omitempty"`
	AuthMethod               string            `json:"authMethod,omitempty"`
	UploadDate               time.Time         `json:"uploadDate"`
	OrderedDate              *time.Time        `json:"orderedDate"`
	ApprovedDate             *time.Time        `json:"approvedDate"`
	PriceModifiedDate        *time.Time        `json:"priceModifiedDate"`
	CompletedDate            *time.Time        `json:"completedDate"`
}

// Confirmation is the customer data attached when an order is placed.
type Confirmation struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	AuthMethod    string
	FinalCost     *float64
}

const orderColumns = `
	id, file_name, file_url, material_id, material_name, material_color,
	operator_choice, operator_selected_material, purpose, loads, scale, infill, layer_height,
	weight, print_time, estimated_cost, estimate_json, final_cost, status,
	customer_name, customer_phone, customer_email, auth_method,
	upload_date, ordered_date, approved_date, price_modified_date, completed_date`

// CreateOrder inserts o in a single write and returns it with id, status and
// upload date filled in.
func (s *Store) CreateOrder(ctx context.Context, o Order) (Order, error) {
	o.ID = newID()
	if o.Status == "" {
		o.Status = StatusPending
	}
	if o.UploadDate.IsZero() {
		o.UploadDate = s.now()
	}
	o.UploadDate = o.UploadDate.UTC().Truncate(time.Microsecond)

	var estimateJSON sql.NullString
	if o.Estimate != nil {
		b, err := json.Marshal(o.Estimate)
		if err != nil {
			return Order{}, fmt.Errorf("encode order estimate: %w", err)
		}
		estimateJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		o.ID, o.FileName, o.FileURL, nullString(o.MaterialID), nullString(o.MaterialName), nullString(o.MaterialColor),
		o.OperatorChoice, nullString(o.OperatorSelectedMaterial), nullString(o.Purpose), nullString(o.Loads), o.Scale, o.Infill, o.LayerHeight,
		nullFloat(o.Weight), nullFloat(o.PrintTime), nullFloat(o.EstimatedCost), estimateJSON, nullFloat(o.FinalCost), o.Status,
		nullString(o.CustomerName), nullString(o.CustomerPhone), nullString(o.CustomerEmail), nullString(o.AuthMethod),
		formatTime(o.UploadDate), nullTime(o.OrderedDate), nullTime(o.ApprovedDate), nullTime(o.PriceModifiedDate), nullTime(o.CompletedDate),
	)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (Order, error) {
	if !ValidID(id) {
		return Order{}, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

// ListOrders returns the newest orders first.
func (s *Store) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY upload_date DESC, rowid DESC
		LIMIT ?
	`, limit)
}

// ListOrdersByEmail returns a customer's orders, newest first.
func (s *Store) ListOrdersByEmail(ctx context.Context, email string, limit int) ([]Order, error) {
	return s.queryOrders(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE customer_email = ?
		ORDER BY upload_date DESC, rowid DESC
		LIMIT ?
	`, email, limit)
}

// CountCompletedByEmail counts finished orders for loyalty discounts.
func (s *Store) CountCompletedByEmail(ctx context.Context, email string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders WHERE customer_email = ? AND status = ?
	`, email, StatusCompleted).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completed orders: %w", err)
	}
	return n, nil
}

// ConfirmOrder attaches customer data and moves the order to ordered.
func (s *Store) ConfirmOrder(ctx context.Context, id string, c Confirmation) (Order, error) {
	now := s.now()
	err := s.updateOrder(ctx, id, `
		UPDATE orders
		SET
			customer_name = ?,
			customer_phone = ?,
			customer_email = ?,
			auth_method = ?,
			final_cost = ?,
			status = ?,
			ordered_date = ?
		WHERE id = ?
	`, nullString(c.CustomerName), nullString(c.CustomerPhone), nullString(c.CustomerEmail), nullString(c.AuthMethod),
		nullFloat(c.FinalCost), StatusOrdered, formatTime(now), id)
	if err != nil {
		return Order{}, err
	}
	return s.GetOrder(ctx, id)
}

// ApproveOrder marks the order approved. A nil finalCost keeps the current one.
func (s *Store) ApproveOrder(ctx context.Context, id string, finalCost *float64) error {
	return s.updateOrder(ctx, id, `
		UPDATE orders
		SET status = ?, approved_date = ?, final_cost = COALESCE(?, final_cost)
		WHERE id = ?
	`, StatusApproved, formatTime(s.now()), nullFloat(finalCost), id)
}

func (s *Store) CompleteOrder(ctx context.Context, id string) error {
	return s.updateOrder(ctx, id, `
		UPDATE orders SET status = ?, completed_date = ? WHERE id = ?
	`, StatusCompleted, formatTime(s.now()), id)
}

// ChangeOrderPrice records an operator price override.
func (s *Store) ChangeOrderPrice(ctx context.Context, id string, price float64) error {
	return s.updateOrder(ctx, id, `
		UPDATE orders SET final_cost = ?, price_modified_date = ?, status = ? WHERE id = ?
	`, price, formatTime(s.now()), StatusPriceChanged, id)
}

// SelectOrderMaterial records the operator's pick for operator-choice orders.
func (s *Store) SelectOrderMaterial(ctx context.Context, id, materialName string) error {
	return s.updateOrder(ctx, id, `
		UPDATE orders SET operator_selected_material = ?, status = ? WHERE id = ?
	`, materialName, StatusMaterialSelected, id)
}

func (s *Store) updateOrder(ctx context.Context, id, query string, args ...any) error {
	if !ValidID(id) {
		return ErrNotFound
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order %s: %w", id, err)
	}
	return expectOne(result)
}

func (s *Store) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o                                              Order
		materialID, materialName, materialColor        sql.NullString
		selected, purpose, loads, estimateJSON         sql.NullString
		customerName, customerPhone, customerEmail     sql.NullString
		authMethod, uploadDate                         sql.NullString
		orderedDate, approvedDate, priceDate, doneDate sql.NullString
		weight, printTime, estimatedCost, finalCost    sql.NullFloat64
	)

	err := row.Scan(
		&o.ID, &o.FileName, &o.FileURL, &materialID, &materialName, &materialColor,
		&o.OperatorChoice, &selected, &purpose, &loads, &o.Scale, &o.Infill, &o.LayerHeight,
		&weight, &printTime, &estimatedCost, &estimateJSON, &finalCost, &o.Status,
		&customerName, &customerPhone, &customerEmail, &authMethod,
		&uploadDate, &orderedDate, &approvedDate, &priceDate, &doneDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, err
		}
		return Order{}, fmt.Errorf("scan order: %w", err)
	}

	o.MaterialID = materialID.String
	o.MaterialName = materialName.String
	o.MaterialColor = materialColor.String
	o.OperatorSelectedMaterial = selected.String
	o.Purpose = purpose.String
	o.Loads = loads.String
	o.CustomerName = customerName.String
	o.CustomerPhone = customerPhone.String
	o.CustomerEmail = customerEmail.String
	o.AuthMethod = authMethod.String
	o.Weight = floatPtr(weight)
	o.PrintTime = floatPtr(printTime)
	o.EstimatedCost = floatPtr(estimatedCost)
	o.FinalCost = floatPtr(finalCost)

	if estimateJSON.Valid {
		var est pricing.Estimate
		if err := json.Unmarshal([]byte(estimateJSON.String), &est); err != nil {
			return Order{}, fmt.Errorf("decode estimate of order %s: %w", o.ID, err)
		}
		o.Estimate = &est
	}

	uploaded, err := parseNullTime(uploadDate)
	if err != nil || uploaded == nil {
		return Order{}, fmt.Errorf("parse upload date of order %s: %v", o.ID, err)
	}
	o.UploadDate = *uploaded

	for _, f := range []struct {
		dst **time.Time
		src sql.NullString
	}{
		{&o.OrderedDate, orderedDate},
		{&o.ApprovedDate, approvedDate},
		{&o.PriceModifiedDate, priceDate},
		{&o.CompletedDate, doneDate},
	} {
		t, err := parseNullTime(f.src)
		if err != nil {
			return Order{}, fmt.Errorf("parse date of order %s: %w", o.ID, err)
		}
		*f.dst = t
	}

	return o, nil
}
