package model

import (
	"fmt"
	"strings"
	"time"
)

// VendorStatus covers both live availability and the approval workflow.
type VendorStatus string

const (
	VendorStatusAvailable   VendorStatus = "AVAILABLE"
	VendorStatusBusy        VendorStatus = "BUSY"
	VendorStatusUnavailable VendorStatus = "UNAVAILABLE"
	VendorStatusPending     VendorStatus = "PENDING"
	VendorStatusApproved    VendorStatus = "APPROVED"
	VendorStatusRejected    VendorStatus = "REJECTED"
	VendorStatusSuspended   VendorStatus = "SUSPENDED"
)

// ParseVendorStatus accepts any casing.
func ParseVendorStatus(s string) (VendorStatus, error) {
	status := VendorStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case VendorStatusAvailable, VendorStatusBusy, VendorStatusUnavailable,
		VendorStatusPending, VendorStatusApproved, VendorStatusRejected, VendorStatusSuspended:
		return status, nil
	}
	return "", NewValidation("status", fmt.Sprintf("unknown vendor status %q", s))
}

// Vendor is a food stall owned by a user account.
type Vendor struct {
	ID        int64        `db:"id" json:"id"`
	OwnerID   int64        `db:"owner_id" json:"owner_id"`
	Name      string       `db:"name" json:"name"`
	Status    VendorStatus `db:"status" json:"status"`
	Latitude  *float64     `db:"latitude" json:"latitude"`
	Longitude *float64     `db:"longitude" json:"longitude"`
	Address   *string      `db:"address" json:"address"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// MenuItem is the subset of a menu row the live pipeline touches.
type MenuItem struct {
	ID          int64     `db:"id" json:"id"`
	VendorID    int64     `db:"vendor_id" json:"vendor_id"`
	Name        string    `db:"name" json:"name"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// UpdateVendorStatusRequest is the request body for PUT /vendors/{id}/status.
type UpdateVendorStatusRequest struct {
	Status string `json:"status"`
}

// UpdateVendorLocationRequest is the request body for PUT /vendors/{id}/location.
type UpdateVendorLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   *string  `json:"address"`
}

// Validate rejects missing or out-of-range coordinates.
func (r *UpdateVendorLocationRequest) Validate() error {
	if r.Latitude == nil || r.Longitude == nil {
		return NewValidation("location", "latitude and longitude are required")
	}
	if *r.Latitude < -90 || *r.Latitude > 90 {
		return NewValidation("latitude", "must be between -90 and 90")
	}
	if *r.Longitude < -180 || *r.Longitude > 180 {
		return NewValidation("longitude", "must be between -180 and 180")
	}
	return nil
}

// UpdateAvailabilityRequest is the request body for PUT /menu-items/{id}/availability.
type UpdateAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}
