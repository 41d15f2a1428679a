package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"streetbite/internal/metrics"
	"streetbite/internal/model"
)

// Live store collections read by web clients
const (
	CollectionLiveMenuItems = "live_menu_items"
	CollectionLiveVendors   = "live_vendors"
)

const defaultSyncTimeout = 5 * time.Second

// DocumentStore is the secondary, low-latency read store (Firestore, Redis).
// Put merges fields into the document, creating it if missing.
type DocumentStore interface {
	Put(ctx context.Context, collection, docID string, fields map[string]any) error
}

// SyncBridge mirrors vendor and menu fields into the live store.
//
// The primary database stays the system of record. Every sync is
// fire-and-forget: failures are logged in discard and never returned.
// A nil store disables syncing.
type SyncBridge struct {
	store   DocumentStore
	timeout time.Duration
	now     func() time.Time
}

func NewSyncBridge(store DocumentStore, timeout time.Duration) *SyncBridge {
	if timeout <= 0 {
		timeout = defaultSyncTimeout
	}
	return &SyncBridge{
		store:   store,
		timeout: timeout,
		now:     time.Now,
	}
}

// SyncMenuAvailability writes live_menu_items/{itemID}.
func (b *SyncBridge) SyncMenuAvailability(ctx context.Context, itemID int64, available bool) {
	b.put(ctx, CollectionLiveMenuItems, itemID, map[string]any{
		"isAvailable": available,
	})
}

// SyncVendorStatus writes the status field of live_vendors/{vendorID}.
func (b *SyncBridge) SyncVendorStatus(ctx context.Context, vendorID int64, status model.VendorStatus) {
	b.put(ctx, CollectionLiveVendors, vendorID, map[string]any{
		"status": string(status),
	})
}

// SyncVendorLocation writes the location fields of live_vendors/{vendorID}.
// A nil address leaves the stored one untouched.
func (b *SyncBridge) SyncVendorLocation(ctx context.Context, vendorID int64, lat, lon float64, address *string) {
	fields := map[string]any{
		"latitude":  lat,
		"longitude": lon,
	}
	if address != nil {
		fields["address"] = *address
	}
	b.put(ctx, CollectionLiveVendors, vendorID, fields)
}

func (b *SyncBridge) put(ctx context.Context, collection string, id int64, fields map[string]any) {
	if b.store == nil {
		return
	}
	docID := strconv.FormatInt(id, 10)
	fields["lastUpdated"] = b.now().UnixMilli()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
	defer cancel()

	err := b.store.Put(ctx, collection, docID, fields)
	b.discard(collection, docID, err)
}

// discard is where live store errors end.
func (b *SyncBridge) discard(collection, docID string, err error) {
	if err == nil {
		metrics.LiveSyncWritesTotal.WithLabelValues(collection, metrics.ResultSuccess).Inc()
		return
	}
	metrics.LiveSyncWritesTotal.WithLabelValues(collection, metrics.ResultFailure).Inc()

	derr := &model.DeliveryError{Op: "sync", Recipient: collection + "/" + docID, Err: err}
	if errors.Is(err, context.DeadlineExceeded) {
		log.Printf("[SyncBridge] Timed out after %v: %v", b.timeout, derr)
		return
	}
	log.Printf("[SyncBridge] %v", derr)
}
