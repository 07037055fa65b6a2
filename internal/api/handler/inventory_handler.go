package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

type InventoryHandler struct {
	inventoryService service.IInventoryService
}

func NewInventoryHandler(inventoryService service.IInventoryService) *InventoryHandler {
	if inventoryService == nil {
		panic("inventoryService cannot be nil")
	}
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// List 帶 product_id 時回傳該商品的庫存
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if productID := r.URL.Query().Get("product_id"); productID != "" {
		inv, err := h.inventoryService.GetByProduct(ctx, productID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.SuccessJSON(w, http.StatusOK, inv)
		return
	}
	rows, err := h.inventoryService.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, rows)
}

func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.inventoryService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, inv)
}

func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	rows, err := h.inventoryService.LowStock(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, rows)
}

func (h *InventoryHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		response.ErrorJSON(w, http.StatusBadRequest, response.ErrorBody{
			Code:    "validation_failed",
			Message: "quantity is required",
			Field:   "quantity",
		})
		return
	}
	inv, err := h.inventoryService.SetQuantity(r.Context(), chi.URLParam(r, "id"), *req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, inv)
}
