package middleware

import (
	"net/http"

	"github.com/akinalp/kisalt/pkg/i18n"
)

// Language, Accept-Language header'ından dili belirler ve Localizer'ı context'e ekler.
// Header yoksa veya desteklenmiyorsa fallback dil (APP_LANGUAGE) kullanılır.
//
// apiclient aynı localizer'ı context'ten okur; böylece remote API'ye giden
// Accept-Language ve hata mesajları isteği yapan sekmenin dilinde olur.
func Language(fallback string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := fallback
			if header := r.Header.Get("Accept-Language"); header != "" {
				lang = i18n.DetectLanguage(header)
			}

			loc := i18n.NewLocalizer(lang)
			w.Header().Set("Content-Language", loc.Lang())
			next.ServeHTTP(w, r.WithContext(i18n.WithLocalizer(r.Context(), loc)))
		})
	}
}
