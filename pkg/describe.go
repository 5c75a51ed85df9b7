package pkg

import (
	"net/http"
	"strconv"

	"github.com/akinalp/kisalt/pkg/i18n"
)

// ErrorView, bir hatanın kullanıcıya gösterilecek hali.
// Dashboard'daki hata paneli ve CLI çıktısı aynı yapıyı kullanır.
type ErrorView struct {
	Title       string   `json:"title"`
	Message     string   `json:"message"`
	Errors      []string `json:"errors,omitempty"`
	StatusCode  int      `json:"statusCode,omitempty"`
	StatusLine  string   `json:"statusLine,omitempty"`
	Destructive bool     `json:"destructive"`
}

// Describe, error'u status code'una göre başlık + mesaj + detay listesine çevirir.
//
// 400'de API'nin kendi mesajı korunur (validation mesajı anlamlıdır),
// 401/403/404/5xx'te sabit, lokalize metin gösterilir.
// APIError olmayan hatalarda sadece err.Error() mesaj olarak kullanılır.
func Describe(err error, loc *i18n.Localizer) ErrorView {
	if loc == nil {
		loc = i18n.NewLocalizer(i18n.DefaultLanguage)
	}

	view := ErrorView{
		Title:   loc.T("panel.genericTitle"),
		Message: loc.T("panel.genericMessage"),
	}
	if err == nil {
		return view
	}

	apiErr, ok := AsAPIError(err)
	if !ok {
		view.Message = err.Error()
		return view
	}

	status := apiErr.StatusCode
	if apiErr.Message != "" {
		view.Message = apiErr.Message
	}
	view.Errors = apiErr.Errors
	view.StatusCode = status

	switch {
	case status == http.StatusNotFound:
		view.Title = loc.T("panel.notFoundTitle")
		view.Message = loc.T("panel.notFoundMessage")
	case status == http.StatusBadRequest:
		view.Title = loc.T("panel.badRequestTitle")
		view.Destructive = true
	case status == http.StatusUnauthorized:
		view.Title = loc.T("panel.unauthorizedTitle")
		view.Message = loc.T("panel.unauthorizedMessage")
	case status == http.StatusForbidden:
		view.Title = loc.T("panel.forbiddenTitle")
		view.Message = loc.T("panel.forbiddenMessage")
		view.Destructive = true
	case status >= 500:
		view.Title = loc.T("panel.serverTitle")
		view.Message = loc.T("panel.serverMessage")
		view.Destructive = true
	}

	if status > 0 {
		view.StatusLine = loc.TWithParams("panel.statusCode", map[string]string{"status": strconv.Itoa(status)})
	}

	return view
}
