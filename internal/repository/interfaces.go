package repository

import (
	"context"

	"streetbite/internal/model"
)

type OrderRepository interface {
	// Create inserts a new order and fills in ID and timestamps
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListByVendor(ctx context.Context, vendorID int64) ([]model.Order, error)
	// UpdateStatus sets the status in a single statement and returns the updated row.
	// Returns a NotFoundError (and changes nothing) if the order does not exist.
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// UpdateEngagement locks the user row, lets fn mutate the engagement fields
	// and persists them, all in one transaction.
	UpdateEngagement(ctx context.Context, id int64, fn func(u *model.User) error) (*model.User, error)
	// TopByXP returns the highest-XP users of a role, ties broken by id.
	TopByXP(ctx context.Context, role model.Role, limit int) ([]model.User, error)
	// RankByXP returns the 1-based position of a user among all users by XP desc, id asc.
	RankByXP(ctx context.Context, id int64) (int, error)
}

type VendorRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Vendor, error)
	UpdateStatus(ctx context.Context, id int64, status model.VendorStatus) (*model.Vendor, error)
	UpdateLocation(ctx context.Context, id int64, lat, lon float64, address *string) (*model.Vendor, error)
}

type MenuItemRepository interface {
	SetAvailability(ctx context.Context, id int64, available bool) (*model.MenuItem, error)
}

type DeviceTokenRepository interface {
	// Upsert creates or updates a device token for a user
	Upsert(ctx context.Context, userID int64, token, platform string) error
	// GetByUserID returns all device tokens for a user
	GetByUserID(ctx context.Context, userID int64) ([]model.DeviceToken, error)
	// Delete removes token if userID owns it
	Delete(ctx context.Context, userID int64, token string) (int64, error)
	// DeleteMany removes a set of tokens, e.g. ones the push provider reports as unregistered
	DeleteMany(ctx context.Context, tokens []string) (int64, error)
	// DeleteByUserID removes every token a user owns
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
}
