package handlers

import (
	"net/http"

	"github.com/akinalp/kisalt/middleware"
	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/pkg/ratelimit"
	"github.com/akinalp/kisalt/services"
)

// AuthHandler, auth endpoint'lerini yöneten struct.
// Service interface'i ve rate limiter constructor'dan alınır (DI).
type AuthHandler struct {
	authService  services.AuthService
	loginLimiter *ratelimit.WindowLimiter
}

// NewAuthHandler, constructor.
// loginLimiter: login/register brute-force koruması. nil ise devre dışı kalır.
func NewAuthHandler(authService services.AuthService, loginLimiter *ratelimit.WindowLimiter) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		loginLimiter: loginLimiter,
	}
}

// Login godoc
// POST /api/auth/login
//
// Başarılı login sayacı sıfırlar — meşru kullanıcı bloke olmaz.
// Token'lar yanıtta dönmez; dashboard onları session store'da tutar.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ExtractIP(r)
	if !h.allow(w, r, ip) {
		return
	}

	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.Login(r.Context(), &req); err != nil {
		writeError(w, r, err)
		return
	}

	if h.loginLimiter != nil {
		h.loginLimiter.Reset(ip)
	}

	pkg.JSONWithMessage(w, http.StatusOK, h.authService.Status(), localizer(r).T("auth.loggedIn"))
}

// Register godoc
// POST /api/auth/register
// Oturum açmaz; arayüz kullanıcıyı login sayfasına yönlendirir.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, ratelimit.ExtractIP(r)) {
		return
	}

	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.Register(r.Context(), &req); err != nil {
		writeError(w, r, err)
		return
	}

	pkg.JSONWithMessage(w, http.StatusCreated, nil, localizer(r).T("auth.registered"))
}

// Logout godoc
// POST /api/auth/logout
// Remote çağrı başarısız olsa da yerel oturum kapanır; hata yine de bildirilir.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	pkg.JSONWithMessage(w, http.StatusOK, h.authService.Status(), localizer(r).T("auth.loggedOut"))
}

func (h *AuthHandler) allow(w http.ResponseWriter, r *http.Request, ip string) bool {
	if h.loginLimiter == nil || h.loginLimiter.Allow(ip) {
		return true
	}
	middleware.TooManyRequests(w, r, h.loginLimiter.RetryAfterSeconds(ip))
	return false
}
