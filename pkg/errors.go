// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Go'da error'lar basit değerlerdir (string taşıyan struct'lar).
// errors.New() ile sabit error değişkenleri tanımlarız.
// Böylece error karşılaştırması string yerine referans ile yapılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
//
// API'den dönen her hata bu sentinel'lerden birine sınıflandırılır
// (bkz. Classify). Üst katmanlar HTTP status code'u değil, sentinel'i kontrol eder.
package pkg

import (
	"errors"
	"net/http"
)

// Domain-level error'lar.
// apiclient HTTP status code'larını bu error'lara map'ler,
// dashboard handler'ları ise tersine çevirir (bkz. response.go).
var (
	ErrBadRequest    = errors.New("bad request")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrInternal      = errors.New("internal error")
	ErrNetwork       = errors.New("network error")
	ErrRequestSetup  = errors.New("request setup failed")
	ErrSessionEnded  = errors.New("session ended")
	ErrUnexpected    = errors.New("unexpected status")
	ErrTooManyTries  = errors.New("too many requests")
	ErrAlreadyExists = errors.New("already exists")
)

// Classify, HTTP status code'unu sentinel error'a çevirir.
//
//	400 → ErrBadRequest (validation)
//	401 → ErrUnauthorized (refresh akışını tetikler)
//	403 → ErrForbidden
//	404 → ErrNotFound
//	5xx → ErrInternal
//
// Diğer 4xx'ler ErrUnexpected olarak döner.
func Classify(status int) error {
	switch {
	case status == http.StatusBadRequest:
		return ErrBadRequest
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrAlreadyExists
	case status == http.StatusTooManyRequests:
		return ErrTooManyTries
	case status >= 500:
		return ErrInternal
	default:
		return ErrUnexpected
	}
}
