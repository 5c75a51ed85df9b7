// Package handlers, dashboard'un HTTP request/response işlemlerini yönetir.
//
// Handler'ın görevi çok basit ve "ince" (thin) olmalı:
// 1. Request body'yi veya path/query parametrelerini parse et
// 2. Service katmanını çağır
// 3. Sonucu remote API ile aynı envelope formatında döndür
//
// Handler ASLA iş mantığı (business logic) içermez.
// Handler ASLA remote API'ye doğrudan gitmez — service'leri kullanır.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/pkg/i18n"
	"github.com/akinalp/kisalt/services"
)

// maxBodyBytes, JSON request body üst sınırı.
const maxBodyBytes = 1 << 20

// localizer, Language middleware'inin context'e koyduğu localizer.
func localizer(r *http.Request) *i18n.Localizer {
	return i18n.FromContext(r.Context(), i18n.NewLocalizer(i18n.DefaultLanguage))
}

// decodeJSON, body'yi dst'ye parse eder. Hata durumunda 400 yazar ve false döner.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, localizer(r).T("errors.invalidBody"))
		return false
	}
	return true
}

// writeError, service hatasını kullanıcının dilinde envelope olarak yazar.
//
//   - ValidationError → 400, alan mesajları errors listesinde
//   - İletişim formu kapalı → 503
//   - APIError → remote API'nin status/mesaj/listesi aynen (pkg.Error)
//   - Diğerleri → sentinel'e göre status
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	loc := localizer(r)

	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		pkg.ErrorWithDetails(w, http.StatusBadRequest, loc.T("errors.badRequest"), verr.Messages(loc))
	case errors.Is(err, services.ErrContactDisabled):
		pkg.ErrorWithMessage(w, http.StatusServiceUnavailable, loc.T("contact.notConfigured"))
	default:
		if _, ok := pkg.AsAPIError(err); !ok && errors.Is(err, pkg.ErrInternal) {
			pkg.ErrorWithMessage(w, http.StatusInternalServerError, loc.T("errors.generic"))
			return
		}
		pkg.Error(w, err)
	}
}
