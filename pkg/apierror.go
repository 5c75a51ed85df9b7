package pkg

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/akinalp/kisalt/pkg/i18n"
)

// APIError, remote API'den dönen (veya hiç dönmeyen) bir yanıtın normalize edilmiş hali.
//
// Kind her zaman errors.go'daki sentinel'lerden biridir, böylece çağıran taraf
// status code bilmeden errors.Is(err, pkg.ErrNotFound) ile kontrol edebilir.
// Err varsa asıl neden (transport hatası, refresh hatası vb.) onu taşır.
type APIError struct {
	StatusCode int      // 0 → yanıt alınamadı
	Message    string   // kullanıcıya gösterilecek, lokalize edilmiş mesaj
	Errors     []string // envelope'taki alan bazlı hata listesi
	Kind       error
	Err        error
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap, hem Kind'ı hem de asıl nedeni error zincirine ekler.
// Go 1.20+ çoklu unwrap: errors.Is her iki dalı da dolaşır.
func (e *APIError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewStatusError, HTTP yanıtı alınmış ama başarısız bir istek için APIError üretir.
// message boşsa status code'a göre varsayılan (lokalize) mesaj kullanılır.
func NewStatusError(status int, message string, details []string, loc *i18n.Localizer) *APIError {
	if loc == nil {
		loc = i18n.NewLocalizer(i18n.DefaultLanguage)
	}
	if message == "" {
		message = DefaultStatusMessage(status, loc)
	}
	return &APIError{
		StatusCode: status,
		Message:    message,
		Errors:     details,
		Kind:       Classify(status),
	}
}

// NewNetworkError, istek gönderildi ama yanıt alınamadı durumu.
func NewNetworkError(cause error, loc *i18n.Localizer) *APIError {
	if loc == nil {
		loc = i18n.NewLocalizer(i18n.DefaultLanguage)
	}
	return &APIError{
		Message: loc.T("errors.network"),
		Kind:    ErrNetwork,
		Err:     cause,
	}
}

// NewSetupError, istek hiç oluşturulamadı durumu (geçersiz URL, encode hatası).
func NewSetupError(cause error, loc *i18n.Localizer) *APIError {
	if loc == nil {
		loc = i18n.NewLocalizer(i18n.DefaultLanguage)
	}
	return &APIError{
		Message: loc.T("errors.setup"),
		Kind:    ErrRequestSetup,
		Err:     cause,
	}
}

// NewSessionEndedError, refresh başarısız olduğunda tüm bekleyen isteklere dönen hata.
// Status her zaman 401'dir: oturum bitti, tekrar giriş gerekir.
// Asıl neden (refresh yanıtı, ağ hatası) Err'de ve Errors'ta taşınır.
func NewSessionEndedError(cause error, loc *i18n.Localizer) *APIError {
	if loc == nil {
		loc = i18n.NewLocalizer(i18n.DefaultLanguage)
	}
	var details []string
	var apiErr *APIError
	if errors.As(cause, &apiErr) {
		details = apiErr.Errors
	}
	return &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    loc.T("errors.sessionEnded"),
		Errors:     details,
		Kind:       ErrSessionEnded,
		Err:        cause,
	}
}

// DefaultStatusMessage, envelope'ta mesaj yoksa gösterilecek metni döner.
func DefaultStatusMessage(status int, loc *i18n.Localizer) string {
	switch status {
	case http.StatusBadRequest:
		return loc.T("errors.badRequest")
	case http.StatusUnauthorized:
		return loc.T("errors.unauthorized")
	case http.StatusForbidden:
		return loc.T("errors.forbidden")
	case http.StatusNotFound:
		return loc.T("errors.notFound")
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return loc.T("errors.server")
	default:
		return loc.TWithParams("errors.status", map[string]string{"status": strconv.Itoa(status)})
	}
}

// AsAPIError, error zincirinde APIError arar.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Details, hatanın alan bazlı mesaj listesini döner.
// Liste boşsa hatanın kendi mesajı tek elemanlı liste olarak döner —
// form'larda her zaman en az bir satır gösterilebilsin diye.
func Details(err error) []string {
	if err == nil {
		return nil
	}
	if apiErr, ok := AsAPIError(err); ok && len(apiErr.Errors) > 0 {
		return apiErr.Errors
	}
	return []string{err.Error()}
}

// StatusOf, error'un taşıdığı HTTP status code'u döner (yoksa 0).
func StatusOf(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.StatusCode
	}
	return 0
}
