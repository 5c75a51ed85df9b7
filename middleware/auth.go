// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware Pattern nedir?
// Her HTTP request, handler'a ulaşmadan önce bir veya daha fazla middleware'dan geçer.
// Middleware'lar zincir şeklinde çalışır: Language → RateLimit → RequireSession → Handler
//
// Go'da middleware bir fonksiyondur:
//
//	func(next http.Handler) http.Handler
//
// Middleware kendi işini yapar, sonra next'i çağırır.
// Eğer hata varsa next'i çağırmaz → request burada durur.
package middleware

import (
	"net/http"

	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/pkg/i18n"
)

// SessionChecker, RequireSession'ın ihtiyaç duyduğu tek metod.
// services.AuthService ve services.SessionStore bu interface'i karşılar.
type SessionChecker interface {
	IsAuthenticated() bool
}

// SessionMiddleware, oturum gerektiren endpoint'leri korur.
//
// Dashboard remote API'nin token'larını kendisi taşır; tarayıcıdan token
// beklenmez. Oturum yoksa istek remote API'ye hiç gitmez ve 401 döner —
// arayüz bunu "login sayfasına yönlendir" olarak yorumlar.
type SessionMiddleware struct {
	sessions SessionChecker
}

// NewSessionMiddleware, constructor.
func NewSessionMiddleware(sessions SessionChecker) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

// Require, oturum açık değilse 401 döner, next ÇAĞIRILMAZ.
func (m *SessionMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.sessions.IsAuthenticated() {
			loc := i18n.FromContext(r.Context(), i18n.NewLocalizer(i18n.DefaultLanguage))
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, loc.T("errors.loginRequired"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
