package models

import (
	"strings"
	"unicode/utf8"
)

// LoginRequest, POST /Auth/login gövdesi.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate, login formu kuralları: e-posta zorunlu ve geçerli, şifre zorunlu.
func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)

	var v validator
	v.email("email", r.Email)
	if r.Password == "" {
		v.add("password", "validation.passwordRequired")
	}
	return v.err()
}

// RegisterRequest, POST /Auth/register gövdesi.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Validate, kayıt formu kuralları. Şifre en az 6 karakter.
func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)

	var v validator
	v.minLen("firstName", r.FirstName, 1, "validation.firstNameRequired")
	v.minLen("lastName", r.LastName, 1, "validation.lastNameRequired")
	v.email("email", r.Email)
	switch {
	case r.Password == "":
		v.add("password", "validation.passwordRequired")
	case utf8.RuneCountInString(r.Password) < 6:
		v.add("password", "validation.passwordTooShort")
	}
	return v.err()
}

// LogoutRequest, POST /Auth/logout ve POST /Auth/refresh-token gövdesi.
type LogoutRequest = Tokens
