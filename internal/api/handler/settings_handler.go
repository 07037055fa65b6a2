package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

type SettingsHandler struct {
	settingsService  service.ISettingsService
	dashboardService service.IDashboardService
}

func NewSettingsHandler(settingsService service.ISettingsService, dashboardService service.IDashboardService) *SettingsHandler {
	if settingsService == nil || dashboardService == nil {
		panic("settingsService and dashboardService cannot be nil")
	}
	return &SettingsHandler{
		settingsService:  settingsService,
		dashboardService: dashboardService,
	}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, settings)
}

// Save 整份覆寫, 沒帶的欄位會變成零值
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if !decodeBody(w, r, &settings) {
		return
	}
	saved, err := h.settingsService.Save(r.Context(), settings)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, saved)
}

func (h *SettingsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.SuccessJSON(w, http.StatusOK, stats)
}
