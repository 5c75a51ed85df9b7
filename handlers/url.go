package handlers

import (
	"net/http"
	"strconv"

	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/services"
)

// URLHandler, kısa link endpoint'leri.
type URLHandler struct {
	urlService services.URLService
}

// NewURLHandler, constructor.
func NewURLHandler(urlService services.URLService) *URLHandler {
	return &URLHandler{urlService: urlService}
}

// URLListResponse, liste sayfası: kayıtlar + sayfa navigasyonu.
type URLListResponse struct {
	Page       *models.Page[models.ShortURL] `json:"page"`
	Pagination models.Pagination             `json:"pagination"`
}

// List godoc
// GET /api/urls?page=1&pageSize=10
func (h *URLHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", services.DefaultPage)
	pageSize := queryInt(r, "pageSize", services.DefaultPageSize)

	result, err := h.urlService.List(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	pkg.JSON(w, http.StatusOK, URLListResponse{
		Page:       result,
		Pagination: models.PaginationOf(result),
	})
}

// Stats godoc
// GET /api/urls/stats
func (h *URLHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.urlService.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	pkg.JSON(w, http.StatusOK, stats)
}

// Get godoc
// GET /api/urls/{id}
func (h *URLHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.urlService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	pkg.JSON(w, http.StatusOK, u)
}

// Detail godoc
// GET /api/urls/detail/{code}
func (h *URLHandler) Detail(w http.ResponseWriter, r *http.Request) {
	u, err := h.urlService.Detail(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	pkg.JSON(w, http.StatusOK, u)
}

// Create godoc
// POST /api/urls
// Body: { "title": "...", "originalUrl": "https://...", "expiresAt": "2025-12-31T00:00:00Z" | null }
func (h *URLHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateURLRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.urlService.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pkg.JSONWithMessage(w, http.StatusCreated, u, localizer(r).T("url.created"))
}

// Update godoc
// PUT /api/urls/{id}
// Path'teki id gövdedeki id'nin önüne geçer.
func (h *URLHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateURLRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.urlService.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pkg.JSONWithMessage(w, http.StatusOK, u, localizer(r).T("url.updated"))
}

// Delete godoc
// DELETE /api/urls/{id}
func (h *URLHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.urlService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	pkg.JSONWithMessage(w, http.StatusOK, nil, localizer(r).T("url.deleted"))
}

// queryInt, sayısal query parametresi. Yoksa veya geçersizse fallback.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
