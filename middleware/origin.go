package middleware

import (
	"net/http"
	"net/url"
	"slices"

	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/pkg/i18n"
)

// SameOrigin, durum değiştiren istekleri (POST, PUT, PATCH, DELETE) sadece
// dashboard'un kendi sayfasından veya allowed listesindeki origin'lerden kabul eder.
//
// Dashboard remote API oturumunu process genelinde tutar; tarayıcıdaki başka bir
// sayfanın preflight gerektirmeyen bir form/text POST'u bu oturumla çalışmamalı.
// Origin ve Sec-Fetch-Site header'ı olmayan istekler (curl, script) tarayıcı
// dışıdır ve kabul edilir.
func SameOrigin(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) || crossSiteAllowed(r, allowed) {
				next.ServeHTTP(w, r)
				return
			}

			loc := i18n.FromContext(r.Context(), i18n.NewLocalizer(i18n.DefaultLanguage))
			pkg.ErrorWithMessage(w, http.StatusForbidden, loc.T("errors.forbidden"))
		})
	}
}

// OriginAllowed, Origin header'ını izinli listeyle veya istek host'uyla karşılaştırır.
// Origin header'ı yoksa true döner. WebSocket upgrade'i de bu kontrolü kullanır.
func OriginAllowed(r *http.Request, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(allowed, "*") || slices.Contains(allowed, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

func crossSiteAllowed(r *http.Request, allowed []string) bool {
	if r.Header.Get("Origin") != "" {
		return OriginAllowed(r, allowed)
	}
	// Origin göndermeyen eski tarayıcılar için fetch metadata.
	switch r.Header.Get("Sec-Fetch-Site") {
	case "", "same-origin", "none":
		return true
	default:
		return false
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
