package models

import "time"

// Tokens, remote API'nin verdiği access/refresh token çifti.
// İkisi de client için opaque string'dir; refresh-token isteğinin gövdesi de budur.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Complete, iki token'ın da dolu olup olmadığını döner.
func (t Tokens) Complete() bool {
	return t.AccessToken != "" && t.RefreshToken != ""
}

// Session, bir profil için saklanan oturum.
//
// Login veya başarılı refresh ile oluşur; logout veya başarısız refresh ile silinir.
// Version her Save'de artar — diğer process'ler değişikliği buradan fark eder.
type Session struct {
	Profile   string    `json:"profile"`
	Tokens    Tokens    `json:"-"` // dışarıya hiçbir zaman serialize edilmez
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionReason, oturum değişikliğinin sebebi.
type SessionReason string

const (
	ReasonLogin   SessionReason = "login"
	ReasonRefresh SessionReason = "refresh"
	ReasonLogout  SessionReason = "logout"
	ReasonExpired SessionReason = "expired" // refresh başarısız → "oturum sona erdi" sinyali
	ReasonSync    SessionReason = "sync"    // başka bir process'in değişikliği
)

// SessionEvent, session store abonelerine yayınlanan olay.
type SessionEvent struct {
	Authenticated bool          `json:"authenticated"`
	Reason        SessionReason `json:"reason"`
	At            time.Time     `json:"at"`
}

// SessionStatus, dashboard'un /api/session yanıtı ve CLI status çıktısı.
// Claims sadece gösterim içindir; doğrulanmamış payload'dan okunur.
type SessionStatus struct {
	Authenticated bool       `json:"authenticated"`
	Profile       string     `json:"profile"`
	Email         string     `json:"email,omitempty"`
	Subject       string     `json:"subject,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}
