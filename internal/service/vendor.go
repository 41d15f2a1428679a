package service

import (
	"context"
	"log"

	"streetbite/internal/model"
	"streetbite/internal/repository"
)

// LiveSync mirrors vendor and menu changes into the live store.
type LiveSync interface {
	SyncMenuAvailability(ctx context.Context, itemID int64, available bool)
	SyncVendorStatus(ctx context.Context, vendorID int64, status model.VendorStatus)
	SyncVendorLocation(ctx context.Context, vendorID int64, lat, lon float64, address *string)
}

// VendorService applies vendor and menu changes that web clients watch live.
// The database write comes first and its errors are returned; the live sync
// after it cannot fail the call.
type VendorService struct {
	vendorRepo repository.VendorRepository
	menuRepo   repository.MenuItemRepository
	sync       LiveSync
}

func NewVendorService(vendorRepo repository.VendorRepository, menuRepo repository.MenuItemRepository, sync LiveSync) *VendorService {
	return &VendorService{
		vendorRepo: vendorRepo,
		menuRepo:   menuRepo,
		sync:       sync,
	}
}

func (s *VendorService) UpdateStatus(ctx context.Context, vendorID int64, status string) (*model.Vendor, error) {
	newStatus, err := model.ParseVendorStatus(status)
	if err != nil {
		return nil, err
	}

	vendor, err := s.vendorRepo.UpdateStatus(ctx, vendorID, newStatus)
	if err != nil {
		return nil, err
	}

	log.Printf("[VendorService] Vendor %d status -> %s", vendor.ID, vendor.Status)
	s.sync.SyncVendorStatus(ctx, vendor.ID, vendor.Status)
	return vendor, nil
}

func (s *VendorService) UpdateLocation(ctx context.Context, vendorID int64, req *model.UpdateVendorLocationRequest) (*model.Vendor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	vendor, err := s.vendorRepo.UpdateLocation(ctx, vendorID, *req.Latitude, *req.Longitude, req.Address)
	if err != nil {
		return nil, err
	}

	s.sync.SyncVendorLocation(ctx, vendor.ID, *req.Latitude, *req.Longitude, req.Address)
	return vendor, nil
}

func (s *VendorService) SetMenuItemAvailability(ctx context.Context, itemID int64, available bool) (*model.MenuItem, error) {
	item, err := s.menuRepo.SetAvailability(ctx, itemID, available)
	if err != nil {
		return nil, err
	}

	s.sync.SyncMenuAvailability(ctx, item.ID, item.IsAvailable)
	return item, nil
}
