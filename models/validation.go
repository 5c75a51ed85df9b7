package models

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/pkg/i18n"
)

// emailPattern, formlarda kullanılan e-posta biçimi (TLD en az 2 harf).
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// FieldError, tek bir alan için doğrulama hatası. Key bir i18n anahtarıdır.
type FieldError struct {
	Field string `json:"field"`
	Key   string `json:"key"`
}

// ValidationError, bir request'in tüm alan hataları.
// errors.Is(err, pkg.ErrBadRequest) true döner.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Key)
	}
	return pkg.ErrBadRequest.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return pkg.ErrBadRequest
}

// Messages, alan hatalarını verilen dile çevirir.
func (e *ValidationError) Messages(loc *i18n.Localizer) []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, loc.T(f.Key))
	}
	return out
}

// validator, alan hatalarını biriktirir. Her alan için ilk hata yeterlidir.
type validator struct {
	fields []FieldError
}

func (v *validator) add(field, key string) {
	v.fields = append(v.fields, FieldError{Field: field, Key: key})
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func (v *validator) email(field, value string) {
	switch {
	case strings.TrimSpace(value) == "":
		v.add(field, "validation.emailRequired")
	case !isEmail(value):
		v.add(field, "validation.emailInvalid")
	}
}

func (v *validator) minLen(field, value string, n int, key string) {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < n {
		v.add(field, key)
	}
}

func (v *validator) webURL(field, value string) {
	switch {
	case strings.TrimSpace(value) == "":
		v.add(field, "validation.urlRequired")
	case !isWebURL(value):
		v.add(field, "validation.urlInvalid")
	}
}

func isEmail(s string) bool {
	if !emailPattern.MatchString(s) {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

func isWebURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// RequireField, path parametreleri (id, kısa kod) için tek alanlı zorunluluk kontrolü.
func RequireField(field, value, key string) error {
	var v validator
	v.minLen(field, strings.TrimSpace(value), 1, key)
	return v.err()
}
