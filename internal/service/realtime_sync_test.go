package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streetbite/internal/model"
)

var syncNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestBridge(store DocumentStore) *SyncBridge {
	b := NewSyncBridge(store, time.Second)
	b.now = func() time.Time { return syncNow }
	return b
}

func TestSyncBridge_Projections(t *testing.T) {
	addr := "12 Nguyen Hue"

	tests := []struct {
		name           string
		run            func(b *SyncBridge)
		wantCollection string
		wantDoc        string
		wantFields     map[string]any
	}{
		{
			name:           "menu availability",
			run:            func(b *SyncBridge) { b.SyncMenuAvailability(context.Background(), 7, false) },
			wantCollection: CollectionLiveMenuItems,
			wantDoc:        "7",
			wantFields:     map[string]any{"isAvailable": false, "lastUpdated": syncNow.UnixMilli()},
		},
		{
			name:           "vendor status",
			run:            func(b *SyncBridge) { b.SyncVendorStatus(context.Background(), 3, model.VendorStatusBusy) },
			wantCollection: CollectionLiveVendors,
			wantDoc:        "3",
			wantFields:     map[string]any{"status": "BUSY", "lastUpdated": syncNow.UnixMilli()},
		},
		{
			name:           "vendor location with address",
			run:            func(b *SyncBridge) { b.SyncVendorLocation(context.Background(), 3, 10.77, 106.70, &addr) },
			wantCollection: CollectionLiveVendors,
			wantDoc:        "3",
			wantFields: map[string]any{
				"latitude": 10.77, "longitude": 106.70, "address": addr, "lastUpdated": syncNow.UnixMilli(),
			},
		},
		{
			name:           "vendor location without address",
			run:            func(b *SyncBridge) { b.SyncVendorLocation(context.Background(), 3, 10.77, 106.70, nil) },
			wantCollection: CollectionLiveVendors,
			wantDoc:        "3",
			wantFields:     map[string]any{"latitude": 10.77, "longitude": 106.70, "lastUpdated": syncNow.UnixMilli()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockDocumentStore{}
			tt.run(newTestBridge(store))

			require.Len(t, store.calls, 1)
			call := store.calls[0]
			assert.Equal(t, tt.wantCollection, call.Collection)
			assert.Equal(t, tt.wantDoc, call.DocID)
			assert.Equal(t, tt.wantFields, call.Fields)
		})
	}
}

func TestSyncBridge_StoreErrorsAreSwallowed(t *testing.T) {
	store := &mockDocumentStore{err: errors.New("firestore unavailable")}
	b := newTestBridge(store)

	assert.NotPanics(t, func() {
		b.SyncMenuAvailability(context.Background(), 1, true)
		b.SyncVendorStatus(context.Background(), 1, model.VendorStatusAvailable)
	})
	assert.Len(t, store.calls, 2)
}

func TestSyncBridge_DetachedFromRequestCancel(t *testing.T) {
	var ctxErr error
	store := storeFunc(func(ctx context.Context, collection, docID string, fields map[string]any) error {
		ctxErr = ctx.Err()
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})
	b := newTestBridge(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.SyncVendorStatus(ctx, 1, model.VendorStatusBusy)

	assert.NoError(t, ctxErr)
}

func TestSyncBridge_NilStoreIsNoop(t *testing.T) {
	b := NewSyncBridge(nil, 0)
	assert.NotPanics(t, func() {
		b.SyncMenuAvailability(context.Background(), 1, true)
	})
}

type storeFunc func(ctx context.Context, collection, docID string, fields map[string]any) error

func (f storeFunc) Put(ctx context.Context, collection, docID string, fields map[string]any) error {
	return f(ctx, collection, docID, fields)
}

// =============================================================================
// VENDOR SERVICE
// =============================================================================

func TestVendorService_UpdateStatus(t *testing.T) {
	store := &mockDocumentStore{}
	vendorRepo := &mockVendorRepository{
		updateStatusFn: func(ctx context.Context, id int64, status model.VendorStatus) (*model.Vendor, error) {
			return &model.Vendor{ID: id, Status: status}, nil
		},
	}
	svc := NewVendorService(vendorRepo, &mockMenuItemRepository{}, newTestBridge(store))

	vendor, err := svc.UpdateStatus(context.Background(), 4, "busy")
	require.NoError(t, err)
	assert.Equal(t, model.VendorStatusBusy, vendor.Status)

	require.Len(t, store.calls, 1)
	assert.Equal(t, "BUSY", store.calls[0].Fields["status"])
}

func TestVendorService_PrimaryFailureSkipsSync(t *testing.T) {
	store := &mockDocumentStore{}
	svc := NewVendorService(&mockVendorRepository{}, &mockMenuItemRepository{}, newTestBridge(store))

	_, err := svc.UpdateStatus(context.Background(), 4, "AVAILABLE")
	assert.True(t, model.IsNotFound(err))

	_, err = svc.SetMenuItemAvailability(context.Background(), 9, true)
	assert.True(t, model.IsNotFound(err))

	assert.Empty(t, store.calls)
}

func TestVendorService_SyncFailureDoesNotFailUpdate(t *testing.T) {
	store := &mockDocumentStore{err: errors.New("redis down")}
	menuRepo := &mockMenuItemRepository{
		setAvailabilityFn: func(ctx context.Context, id int64, available bool) (*model.MenuItem, error) {
			return &model.MenuItem{ID: id, IsAvailable: available}, nil
		},
	}
	svc := NewVendorService(&mockVendorRepository{}, menuRepo, newTestBridge(store))

	item, err := svc.SetMenuItemAvailability(context.Background(), 9, false)
	require.NoError(t, err)
	assert.False(t, item.IsAvailable)
	assert.Len(t, store.calls, 1)
}

func TestVendorService_UpdateLocation(t *testing.T) {
	lat, lon := 10.77, 106.70
	badLat := 91.0

	store := &mockDocumentStore{}
	vendorRepo := &mockVendorRepository{
		updateLocationFn: func(ctx context.Context, id int64, la, lo float64, address *string) (*model.Vendor, error) {
			return &model.Vendor{ID: id, Latitude: &la, Longitude: &lo, Address: address}, nil
		},
	}
	svc := NewVendorService(vendorRepo, &mockMenuItemRepository{}, newTestBridge(store))

	_, err := svc.UpdateLocation(context.Background(), 2, &model.UpdateVendorLocationRequest{Latitude: &lat, Longitude: &lon})
	require.NoError(t, err)
	require.Len(t, store.calls, 1)
	assert.Equal(t, lat, store.calls[0].Fields["latitude"])

	_, err = svc.UpdateLocation(context.Background(), 2, &model.UpdateVendorLocationRequest{Latitude: &badLat, Longitude: &lon})
	assert.True(t, model.IsValidation(err))

	_, err = svc.UpdateStatus(context.Background(), 2, "closed")
	assert.True(t, model.IsValidation(err))
	assert.Len(t, store.calls, 1)
}
