package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Material is a filament offered for custom prints.
type Material struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	NameRo        string   `json:"nameRo"`
	Colors        []string `json:"colors"`
	Type          string   `json:"type"`
	Price         float64  `json:"price"`
	Description   string   `json:"description"`
	DescriptionRo string   `json:"descriptionRo"`
}

// GalleryItem is a showcase photo of a finished print.
type GalleryItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	TitleRo     string `json:"titleRo"`
	Image       string `json:"image"`
	Material    string `json:"material"`
	Description string `json:"description"`
}

// ShopItem is a ready-made product for sale.
type ShopItem struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	NameRo        string  `json:"nameRo"`
	Price         float64 `json:"price"`
	Material      string  `json:"material"`
	Image         string  `json:"image"`
	Description   string  `json:"description"`
	DescriptionRo string  `json:"descriptionRo"`
	InStock       bool    `json:"inStock"`
}

func (s *Store) ListMaterials(ctx context.Context) ([]Material, error) {
	return s.listMaterials(ctx, -1)
}

// ListMaterialsLimit returns at most limit materials in creation order.
func (s *Store) ListMaterialsLimit(ctx context.Context, limit int) ([]Material, error) {
	return s.listMaterials(ctx, limit)
}

func (s *Store) listMaterials(ctx context.Context, limit int) ([]Material, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, name_ro, colors_json, type, price, description, description_ro
		FROM materials
		ORDER BY created_at, rowid
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	materials := make([]Material, 0)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}
	return materials, nil
}

func (s *Store) GetMaterial(ctx context.Context, id string) (Material, error) {
	if !ValidID(id) {
		return Material{}, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, name_ro, colors_json, type, price, description, description_ro
		FROM materials
		WHERE id = ?
	`, id)
	m, err := scanMaterial(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Material{}, ErrNotFound
	}
	return m, err
}

func (s *Store) CreateMaterial(ctx context.Context, m Material) (Material, error) {
	m.ID = newID()
	colors, err := encodeColors(m.Colors)
	if err != nil {
		return Material{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO materials (id, name, name_ro, colors_json, type, price, description, description_ro)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.NameRo, colors, m.Type, m.Price, m.Description, m.DescriptionRo)
	if err != nil {
		return Material{}, fmt.Errorf("insert material: %w", err)
	}
	if m.Colors == nil {
		m.Colors = []string{}
	}
	return m, nil
}

func (s *Store) UpdateMaterial(ctx context.Context, id string, m Material) (Material, error) {
	if !ValidID(id) {
		return Material{}, ErrNotFound
	}
	colors, err := encodeColors(m.Colors)
	if err != nil {
		return Material{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE materials
		SET
			name = ?,
			name_ro = ?,
			colors_json = ?,
			type = ?,
			price = ?,
			description = ?,
			description_ro = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, m.Name, m.NameRo, colors, m.Type, m.Price, m.Description, m.DescriptionRo, id)
	if err != nil {
		return Material{}, fmt.Errorf("update material: %w", err)
	}
	if err := expectOne(result); err != nil {
		return Material{}, err
	}

	m.ID = id
	if m.Colors == nil {
		m.Colors = []string{}
	}
	return m, nil
}

func (s *Store) DeleteMaterial(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "materials", id)
}

func scanMaterial(row rowScanner) (Material, error) {
	var m Material
	var colors string
	if err := row.Scan(&m.ID, &m.Name, &m.NameRo, &colors, &m.Type, &m.Price, &m.Description, &m.DescriptionRo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Material{}, err
		}
		return Material{}, fmt.Errorf("scan material: %w", err)
	}
	if err := json.Unmarshal([]byte(colors), &m.Colors); err != nil || m.Colors == nil {
		m.Colors = []string{}
	}
	return m, nil
}

func encodeColors(colors []string) (string, error) {
	if colors == nil {
		colors = []string{}
	}
	b, err := json.Marshal(colors)
	if err != nil {
		return "", fmt.Errorf("encode material colors: %w", err)
	}
	return string(b), nil
}

func (s *Store) ListGalleryItems(ctx context.Context) ([]GalleryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, title_ro, image, material, description
		FROM gallery_items
		ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("query gallery items: %w", err)
	}
	defer rows.Close()

	items := make([]GalleryItem, 0)
	for rows.Next() {
		var it GalleryItem
		if err := rows.Scan(&it.ID, &it.Title, &it.TitleRo, &it.Image, &it.Material, &it.Description); err != nil {
			return nil, fmt.Errorf("scan gallery item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gallery items: %w", err)
	}
	return items, nil
}

func (s *Store) CreateGalleryItem(ctx context.Context, it GalleryItem) (GalleryItem, error) {
	it.ID = newID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gallery_items (id, title, title_ro, image, material, description)
		VALUES (?, ?, ?, ?, ?, ?)
	`, it.ID, it.Title, it.TitleRo, it.Image, it.Material, it.Description)
	if err != nil {
		return GalleryItem{}, fmt.Errorf("insert gallery item: %w", err)
	}
	return it, nil
}

func (s *Store) UpdateGalleryItem(ctx context.Context, id string, it GalleryItem) (GalleryItem, error) {
	if !ValidID(id) {
		return GalleryItem{}, ErrNotFound
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE gallery_items
		SET
			title = ?,
			title_ro = ?,
			image = ?,
			material = ?,
			description = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, it.Title, it.TitleRo, it.Image, it.Material, it.Description, id)
	if err != nil {
		return GalleryItem{}, fmt.Errorf("update gallery item: %w", err)
	}
	if err := expectOne(result); err != nil {
		return GalleryItem{}, err
	}
	it.ID = id
	return it, nil
}

func (s *Store) DeleteGalleryItem(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "gallery_items", id)
}

func (s *Store) ListShopItems(ctx context.Context) ([]ShopItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, name_ro, price, material, image, description, description_ro, in_stock
		FROM shop_items
		ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("query shop items: %w", err)
	}
	defer rows.Close()

	items := make([]ShopItem, 0)
	for rows.Next() {
		var it ShopItem
		if err := rows.Scan(&it.ID, &it.Name, &it.NameRo, &it.Price, &it.Material, &it.Image, &it.Description, &it.DescriptionRo, &it.InStock); err != nil {
			return nil, fmt.Errorf("scan shop item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shop items: %w", err)
	}
	return items, nil
}

func (s *Store) CreateShopItem(ctx context.Context, it ShopItem) (ShopItem, error) {
	it.ID = newID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shop_items (id, name, name_ro, price, material, image, description, description_ro, in_stock)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, it.ID, it.Name, it.NameRo, it.Price, it.Material, it.Image, it.Description, it.DescriptionRo, it.InStock)
	if err != nil {
		return ShopItem{}, fmt.Errorf("insert shop item: %w", err)
	}
	return it, nil
}

func (s *Store) UpdateShopItem(ctx context.Context, id string, it ShopItem) (ShopItem, error) {
	if !ValidID(id) {
		return ShopItem{}, ErrNotFound
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE shop_items
		SET
			name = ?,
			name_ro = ?,
			price = ?,
			material = ?,
			image = ?,
			description = ?,
			description_ro = ?,
			in_stock = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, it.Name, it.NameRo, it.Price, it.Material, it.Image, it.Description, it.DescriptionRo, it.InStock, id)
	if err != nil {
		return ShopItem{}, fmt.Errorf("update shop item: %w", err)
	}
	if err := expectOne(result); err != nil {
		return ShopItem{}, err
	}
	it.ID = id
	return it, nil
}

func (s *Store) DeleteShopItem(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "shop_items", id)
}

// deleteByID is only called with the fixed table names above.
func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	if !ValidID(id) {
		return ErrNotFound
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return expectOne(result)
}
