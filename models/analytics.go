package models

import (
	"fmt"
	"time"
)

// ─── Date range ───

// DateRange, analitik sorgularının zaman penceresi.
type DateRange string

const (
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
	RangeYear  DateRange = "year"
)

// ParseDateRange, boş değeri "week" kabul eder.
func ParseDateRange(s string) (DateRange, error) {
	switch r := DateRange(s); r {
	case "":
		return RangeWeek, nil
	case RangeWeek, RangeMonth, RangeYear:
		return r, nil
	default:
		return "", fmt.Errorf("unknown date range %q", s)
	}
}

// Bounds, loc saat dilimine göre [başlangıç günü 00:00:00.000, bugün 23:59:59.999] döner.
// week → 7 gün önce, month → 1 ay önce, year → 12 ay önce.
func (r DateRange) Bounds(now time.Time, loc *time.Location) (start, end time.Time) {
	local := now.In(loc)
	y, m, d := local.Date()
	end = time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)

	from := local
	switch r {
	case RangeMonth:
		from = local.AddDate(0, -1, 0)
	case RangeYear:
		from = local.AddDate(0, -12, 0)
	default:
		from = local.AddDate(0, 0, -7)
	}
	fy, fm, fd := from.Date()
	start = time.Date(fy, fm, fd, 0, 0, 0, 0, loc)
	return start, end
}

// FormatISO, sorgu parametresi biçimi: UTC, milisaniyeli ISO-8601 (ör: 2025-03-01T21:00:00.000Z).
func FormatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// ─── Analytics ───

// TopURL, /Analytic/top-urls öğesi.
type TopURL struct {
	ID         string `json:"id"`
	ShortCode  string `json:"shortCode"`
	Title      string `json:"title,omitempty"`
	ClickCount int64  `json:"clickCount"`
}

type DailyStat struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type HourlyStat struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

type ReferrerStat struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}

type DeviceStat struct {
	DeviceType string `json:"deviceType"`
	Count      int64  `json:"count"`
}

type BrowserStat struct {
	Browser string `json:"browser"`
	Count   int64  `json:"count"`
}

type OSStat struct {
	OperatingSystem string `json:"operatingSystem"`
	Count           int64  `json:"count"`
}

type CountryStat struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

// URLAnalytics, bir kısa kod için verilen aralıktaki toplu tıklama istatistikleri.
type URLAnalytics struct {
	ShortCode       string         `json:"shortCode"`
	TotalClicks     int64          `json:"totalClicks"`
	UniqueVisitors  *int64         `json:"uniqueVisitors,omitempty"`
	AvgClicksPerDay *float64       `json:"avgClicksPerDay,omitempty"`
	FirstClick      *Timestamp     `json:"firstClick,omitempty"`
	LastClick       *Timestamp     `json:"lastClick,omitempty"`
	CountryStats    []CountryStat  `json:"countryStats"`
	BrowserStats    []BrowserStat  `json:"browserStats"`
	OSStats         []OSStat       `json:"osStats"`
	DeviceStats     []DeviceStat   `json:"deviceStats"`
	ReferrerStats   []ReferrerStat `json:"referrerStats"`
	HourlyStats     []HourlyStat   `json:"hourlyStats"`
	DailyStats      []DailyStat    `json:"dailyStats"`
}

// AnalyticsOverview, tek bir kısa kod sayfasının tüm verisi.
type AnalyticsOverview struct {
	URL       *ShortURL     `json:"url"`
	Analytics *URLAnalytics `json:"analytics"`
	TopURLs   []TopURL      `json:"topUrls"`
	Range     DateRange     `json:"range"`
	StartDate string        `json:"startDate"`
	EndDate   string        `json:"endDate"`
}
