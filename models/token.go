package models

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims, access token'ın payload'ından gösterim için okunan alanlar.
//
// İmza doğrulanmaz: anahtar remote API'dedir ve token bu process için opaque'tır.
// Bu alanlar hiçbir yetkilendirme kararında kullanılmamalıdır.
type TokenClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// ParseClaimsUnverified, JWT formatındaki access token'ın payload'ını doğrulamadan çözer.
// Token JWT değilse error döner.
func ParseClaimsUnverified(accessToken string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("access token is not a readable JWT: %w", err)
	}
	return claims, nil
}

// Claims, session'ın access token'ından claim'leri okur.
func (s *Session) Claims() (*TokenClaims, error) {
	return ParseClaimsUnverified(s.Tokens.AccessToken)
}
