package pkg

import (
	"encoding/json"
	"errors"
	"net/http"
)

// APIResponse, dashboard API'sinin tüm yanıtları için standart format.
// Remote API ile birebir aynı envelope'u kullanır:
//
//	{success, data, message, errors, statusCode}
//
// Böylece dashboard'u kullanan bir arayüz iki API'yi aynı şekilde okuyabilir.
type APIResponse struct {
	Success    bool     `json:"success"`
	Data       any      `json:"data"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	StatusCode int      `json:"statusCode"`
}

// JSON, başarılı bir yanıt gönderir.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, APIResponse{
		Success:    true,
		Data:       data,
		Errors:     []string{},
		StatusCode: status,
	})
}

// JSONWithMessage, başarılı yanıtı bir bilgi mesajıyla birlikte gönderir
// (ör: "URL başarıyla silindi").
func JSONWithMessage(w http.ResponseWriter, status int, data any, message string) {
	write(w, status, APIResponse{
		Success:    true,
		Data:       data,
		Message:    message,
		Errors:     []string{},
		StatusCode: status,
	})
}

// Error, hata yanıtı gönderir.
//
// APIError ise remote API'nin status'u, mesajı ve hata listesi aynen aktarılır.
// Ağ hatası (status 0) 502 Bad Gateway olarak döner — dashboard bir proxy gibi davranır.
// Diğer domain error'ları mapErrorToStatus ile status code'a çevrilir.
func Error(w http.ResponseWriter, err error) {
	if apiErr, ok := AsAPIError(err); ok {
		status := apiErr.StatusCode
		if status == 0 {
			status = mapErrorToStatus(apiErr)
		}
		ErrorWithDetails(w, status, apiErr.Message, apiErr.Errors)
		return
	}

	ErrorWithMessage(w, mapErrorToStatus(err), err.Error())
}

// ErrorWithMessage, özel mesajlı hata yanıtı gönderir.
func ErrorWithMessage(w http.ResponseWriter, status int, message string) {
	ErrorWithDetails(w, status, message, nil)
}

// ErrorWithDetails, mesaj + alan bazlı hata listesiyle yanıt gönderir.
func ErrorWithDetails(w http.ResponseWriter, status int, message string, details []string) {
	if details == nil {
		details = []string{}
	}
	write(w, status, APIResponse{
		Success:    false,
		Message:    message,
		Errors:     details,
		StatusCode: status,
	})
}

func write(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// mapErrorToStatus, domain error'ları HTTP status code'larına eşler.
// errors.Is() kullanarak error chain'ini kontrol eder —
// wrap edilmiş error'lar da doğru match eder.
func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionEnded), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrTooManyTries):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
