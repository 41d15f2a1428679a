package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"streetbite/internal/httputil"
	"streetbite/internal/model"
)

// VendorService applies the vendor and menu changes clients watch live.
type VendorService interface {
	UpdateStatus(ctx context.Context, vendorID int64, status string) (*model.Vendor, error)
	UpdateLocation(ctx context.Context, vendorID int64, req *model.UpdateVendorLocationRequest) (*model.Vendor, error)
	SetMenuItemAvailability(ctx context.Context, itemID int64, available bool) (*model.MenuItem, error)
}

type VendorHandler struct {
	vendorService VendorService
}

func NewVendorHandler(vendorService VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

// UpdateStatus handles PUT /vendors/{id}/status
func (h *VendorHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := pathID(w, r, "id", "vendor")
	if !ok {
		return
	}

	var req model.UpdateVendorStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	vendor, err := h.vendorService.UpdateStatus(r.Context(), vendorID, req.Status)
	if err != nil {
		httputil.WriteServiceError(w, "update vendor status", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, vendor)
}

// UpdateLocation handles PUT /vendors/{id}/location
func (h *VendorHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := pathID(w, r, "id", "vendor")
	if !ok {
		return
	}

	var req model.UpdateVendorLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	vendor, err := h.vendorService.UpdateLocation(r.Context(), vendorID, &req)
	if err != nil {
		httputil.WriteServiceError(w, "update vendor location", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, vendor)
}

// SetAvailability handles PUT /menu-items/{id}/availability
func (h *VendorHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "id", "menu item")
	if !ok {
		return
	}

	var req model.UpdateAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.IsAvailable == nil {
		httputil.WriteBadRequest(w, "is_available is required")
		return
	}

	item, err := h.vendorService.SetMenuItemAvailability(r.Context(), itemID, *req.IsAvailable)
	if err != nil {
		httputil.WriteServiceError(w, "update menu item availability", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, item)
}
