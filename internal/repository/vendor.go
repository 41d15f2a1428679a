package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"streetbite/internal/model"
)

const vendorColumns = `id, owner_id, name, status, latitude, longitude, address, created_at, updated_at`

type vendorRepository struct {
	db *sqlx.DB
}

func NewVendorRepository(db *sqlx.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) GetByID(ctx context.Context, id int64) (*model.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE id = $1`

	var v model.Vendor
	if err := r.db.GetContext(ctx, &v, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFound("vendor", id)
		}
		return nil, fmt.Errorf("get vendor by id: %w", err)
	}
	return &v, nil
}

func (r *vendorRepository) UpdateStatus(ctx context.Context, id int64, status model.VendorStatus) (*model.Vendor, error) {
	query := `
		UPDATE vendors SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + vendorColumns

	var v model.Vendor
	if err := r.db.GetContext(ctx, &v, query, status, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFound("vendor", id)
		}
		return nil, fmt.Errorf("update vendor status: %w", err)
	}
	return &v, nil
}

// UpdateLocation keeps the stored address when address is nil.
func (r *vendorRepository) UpdateLocation(ctx context.Context, id int64, lat, lon float64, address *string) (*model.Vendor, error) {
	query := `
		UPDATE vendors
		SET latitude = $1, longitude = $2, address = COALESCE($3, address), updated_at = NOW()
		WHERE id = $4
		RETURNING ` + vendorColumns

	var v model.Vendor
	if err := r.db.GetContext(ctx, &v, query, lat, lon, address, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFound("vendor", id)
		}
		return nil, fmt.Errorf("update vendor location: %w", err)
	}
	return &v, nil
}

type menuItemRepository struct {
	db *sqlx.DB
}

func NewMenuItemRepository(db *sqlx.DB) MenuItemRepository {
	return &menuItemRepository{db: db}
}

func (r *menuItemRepository) SetAvailability(ctx context.Context, id int64, available bool) (*model.MenuItem, error) {
	query := `
		UPDATE menu_items SET is_available = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, vendor_id, name, is_available, updated_at
	`

	var m model.MenuItem
	if err := r.db.GetContext(ctx, &m, query, available, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFound("menu item", id)
		}
		return nil, fmt.Errorf("update menu item availability: %w", err)
	}
	return &m, nil
}
