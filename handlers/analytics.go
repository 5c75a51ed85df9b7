package handlers

import (
	"net/http"

	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/services"
)

// AnalyticsHandler, tıklama istatistikleri endpoint'leri.
// Tüm endpoint'ler ?range=week|month|year alır (varsayılan week).
type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
}

// NewAnalyticsHandler, constructor.
func NewAnalyticsHandler(analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Top godoc
// GET /api/analytics/top?range=week
func (h *AnalyticsHandler) Top(w http.ResponseWriter, r *http.Request) {
	dr, ok := parseRange(w, r)
	if !ok {
		return
	}

	top, err := h.analyticsService.TopURLs(r.Context(), dr)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pkg.JSON(w, http.StatusOK, top)
}

// URL godoc
// GET /api/analytics/urls/{code}?range=month
func (h *AnalyticsHandler) URL(w http.ResponseWriter, r *http.Request) {
	dr, ok := parseRange(w, r)
	if !ok {
		return
	}

	analytics, err := h.analyticsService.URLAnalytics(r.Context(), r.PathValue("code"), dr)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pkg.JSON(w, http.StatusOK, analytics)
}

// Overview godoc
// GET /api/analytics/overview/{code}?range=year
// URL detayı, URL analitiği ve en çok tıklananlar tek yanıtta.
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	dr, ok := parseRange(w, r)
	if !ok {
		return
	}

	overview, err := h.analyticsService.Overview(r.Context(), r.PathValue("code"), dr)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pkg.JSON(w, http.StatusOK, overview)
}

func parseRange(w http.ResponseWriter, r *http.Request) (models.DateRange, bool) {
	dr, err := models.ParseDateRange(r.URL.Query().Get("range"))
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, localizer(r).T("validation.rangeInvalid"))
		return "", false
	}
	return dr, true
}
