package middleware

import (
	"net/http"
	"strconv"

	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/pkg/i18n"
	"github.com/akinalp/kisalt/pkg/ratelimit"
)

// RateLimit, IP bazlı sabit pencere sınırlaması uygular.
// Limit aşılınca 429 + Retry-After döner. limiter nil ise devre dışıdır.
//
// Kısa link çözümleme gibi oturumsuz, herkese açık route'lar için kullanılır.
func RateLimit(limiter *ratelimit.WindowLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ratelimit.ExtractIP(r)
			if !limiter.Allow(ip) {
				TooManyRequests(w, r, limiter.RetryAfterSeconds(ip))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TooManyRequests, 429 yanıtını lokalize mesajla yazar.
// Handler içinde limit uygulayan endpoint'ler (login, iletişim) de kullanır.
func TooManyRequests(w http.ResponseWriter, r *http.Request, retryAfter int) {
	loc := i18n.FromContext(r.Context(), i18n.NewLocalizer(i18n.DefaultLanguage))
	seconds := strconv.Itoa(retryAfter)

	w.Header().Set("Retry-After", seconds)
	pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
		loc.TWithParams("errors.tooManyRequests", map[string]string{"seconds": seconds}))
}
