package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orderService service.IOrderService
}

func NewOrderHandler(orderService service.IOrderService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{
		orderService: orderService,
	}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

/*
List 支援 query:
  - q: 比對訂單 id 或收件人姓名
  - status: 只列出該狀態
*/
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	term, rawStatus := query.Get("q"), query.Get("status")

	var status model.OrderStatus
	if rawStatus != "" {
		parsed, err := model.ParseOrderStatus(rawStatus)
		if err != nil {
			writeError(w, r, err)
			return
		}
		status = parsed
	}

	ctx := r.Context()
	var (
		orders []model.Order
		err    error
	)
	if term == "" && status == "" {
		orders, err = h.orderService.List(ctx)
	} else {
		orders, err = h.orderService.Search(ctx, term, status)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var in service.PlaceOrderInput
	if !decodeBody(w, r, &in) {
		return
	}
	order, err := h.orderService.PlaceOrder(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	status, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.orderService.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, order)
}
