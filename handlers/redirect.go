package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"

	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/services"
)

// RedirectHandler, kısa linki hedefe yönlendirir.
type RedirectHandler struct {
	redirectService services.RedirectService
}

// NewRedirectHandler, constructor.
func NewRedirectHandler(redirectService services.RedirectService) *RedirectHandler {
	return &RedirectHandler{redirectService: redirectService}
}

// errorPage, çözümleme başarısız olduğunda gösterilen sayfa.
var errorPage = template.Must(template.New("redirect-error").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.View.Title}}</title>
</head>
<body>
<main>
<h1>{{.View.Title}}</h1>
<p>{{.View.Message}}</p>
{{- if .View.Errors}}
<ul>
{{- range .View.Errors}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
<p>{{.Hint}}</p>
{{- if .View.StatusLine}}
<small>{{.View.StatusLine}}</small>
{{- end}}
<p><a href="/">{{.BackHome}}</a></p>
</main>
</body>
</html>
`))

type errorPageData struct {
	Lang     string
	View     pkg.ErrorView
	Hint     string
	BackHome string
}

// Resolve godoc
// GET /r/{code}
// Başarılıysa 302 ile hedefe, değilse HTML hata sayfası (status korunur).
func (h *RedirectHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	target, err := h.redirectService.Resolve(r.Context(), r.PathValue("code"))
	if err == nil {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	loc := localizer(r)
	status := pkg.StatusOf(err)
	if status < http.StatusBadRequest {
		status = http.StatusBadGateway
		if errors.Is(err, pkg.ErrBadRequest) {
			status = http.StatusBadRequest
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	data := errorPageData{
		Lang:     loc.Lang(),
		View:     pkg.Describe(err, loc),
		Hint:     loc.T("panel.invalidLink"),
		BackHome: loc.T("panel.backHome"),
	}
	if err := errorPage.Execute(w, data); err != nil {
		log.Printf("[handlers] failed to render redirect error page: %v", err)
	}
}
