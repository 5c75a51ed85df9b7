package handlers

import (
	"net/http"

	"github.com/akinalp/kisalt/middleware"
	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/pkg/ratelimit"
	"github.com/akinalp/kisalt/services"
)

// ContactHandler, iletişim formu endpoint'i.
type ContactHandler struct {
	contactService services.ContactService
	limiter        *ratelimit.CooldownLimiter
}

// NewContactHandler, constructor. limiter nil ise spam koruması kapalıdır.
func NewContactHandler(contactService services.ContactService, limiter *ratelimit.CooldownLimiter) *ContactHandler {
	return &ContactHandler{contactService: contactService, limiter: limiter}
}

// Send godoc
// POST /api/contact
// Body: { "name": "...", "email": "...", "subject": "...", "message": "..." }
func (h *ContactHandler) Send(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil {
		ip := ratelimit.ExtractIP(r)
		if !h.limiter.Allow(ip) {
			middleware.TooManyRequests(w, r, h.limiter.CooldownSeconds(ip))
			return
		}
	}

	var req models.ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.contactService.Send(r.Context(), &req); err != nil {
		writeError(w, r, err)
		return
	}
	pkg.JSONWithMessage(w, http.StatusOK, nil, localizer(r).T("contact.sent"))
}
