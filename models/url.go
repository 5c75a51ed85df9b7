package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ─── Timestamp ───

// isoMillis, istek gövdelerinde gönderilen UTC ISO-8601 biçimi (milisaniyeli).
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// timestampLayouts, backend'den gelebilecek biçimler. Zone bilgisi olmayanlar UTC kabul edilir.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp, backend'in farklı tarih biçimlerini kabul eden time.Time sarmalayıcı.
type Timestamp struct {
	time.Time
}

// NewTimestamp, t'yi UTC'ye çevirip sarar.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t.UTC()}
}

// ParseTimestamp, desteklenen biçimlerden birini çözer.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t.UTC()}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unsupported timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(isoMillis))
}

// ─── ShortURL ───

// ShortURL, backend'in sahip olduğu kısaltılmış URL kaydı. Client sadece gösterir/düzenler.
type ShortURL struct {
	ID          string     `json:"id"`
	Title       string     `json:"title,omitempty"`
	OriginalURL string     `json:"originalUrl"`
	ShortCode   string     `json:"shortCode"`
	ExpiresAt   *Timestamp `json:"expiresAt,omitempty"`
	ClickCount  int64      `json:"clickCount"`
	CreatedAt   Timestamp  `json:"createdAt"`
	UpdatedAt   *Timestamp `json:"updatedAt,omitempty"`
}

// IsActive, süresi yoksa veya süresi now'dan sonra bitiyorsa true.
func (u *ShortURL) IsActive(now time.Time) bool {
	return u.ExpiresAt == nil || u.ExpiresAt.IsZero() || u.ExpiresAt.After(now)
}

// CreateURLRequest, POST /Url/shorten gövdesi.
// ExpiresAt nil ise JSON'da null gönderilir.
type CreateURLRequest struct {
	Title       string     `json:"title"`
	OriginalURL string     `json:"originalUrl"`
	ExpiresAt   *Timestamp `json:"expiresAt"`
}

func (r *CreateURLRequest) Validate() error {
	r.OriginalURL = strings.TrimSpace(r.OriginalURL)
	r.Title = strings.TrimSpace(r.Title)

	var v validator
	v.webURL("originalUrl", r.OriginalURL)
	return v.err()
}

// UpdateURLRequest, PUT /Url/{id} gövdesi. ID hem path'te hem gövdede taşınır.
type UpdateURLRequest struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	OriginalURL string     `json:"originalUrl"`
	ExpiresAt   *Timestamp `json:"expiresAt"`
}

func (r *UpdateURLRequest) Validate() error {
	r.OriginalURL = strings.TrimSpace(r.OriginalURL)
	r.Title = strings.TrimSpace(r.Title)

	var v validator
	if strings.TrimSpace(r.ID) == "" {
		v.add("id", "validation.idRequired")
	}
	v.webURL("originalUrl", r.OriginalURL)
	return v.err()
}

// ─── Page ───

// Page, backend'in sayfalı liste yanıtı. Index 1'den başlar.
type Page[T any] struct {
	Items       []T  `json:"items"`
	Index       int  `json:"index"`
	Size        int  `json:"size"`
	Count       int  `json:"count"`
	Pages       int  `json:"pages"`
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

// ─── DashboardStats ───

// DashboardStats, dashboard özet kartları.
// TotalURLs tüm kayıtların sayısıdır; diğerleri sadece verilen sayfa üzerinden hesaplanır.
type DashboardStats struct {
	TotalURLs   int   `json:"totalUrls"`
	TotalClicks int64 `json:"totalClicks"`
	ActiveURLs  int   `json:"activeUrls"`
	RecentURLs  int   `json:"recentUrls"`
}

// ComputeStats, ilk sayfadan dashboard istatistiklerini hesaplar.
// "Son" = now'dan bir ay öncesinden sonra oluşturulan.
func ComputeStats(page *Page[ShortURL], now time.Time) DashboardStats {
	stats := DashboardStats{TotalURLs: page.Count}
	monthAgo := now.AddDate(0, -1, 0)

	for i := range page.Items {
		u := &page.Items[i]
		stats.TotalClicks += u.ClickCount
		if u.IsActive(now) {
			stats.ActiveURLs++
		}
		if u.CreatedAt.After(monthAgo) {
			stats.RecentURLs++
		}
	}
	return stats
}
