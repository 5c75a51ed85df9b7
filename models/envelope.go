package models

// Envelope, remote API'nin tüm yanıtlarını saran standart format.
//
//	{"success": true, "data": {...}, "message": "", "errors": [], "statusCode": 200}
//
// data null gelirse Data zero value kalır.
type Envelope[T any] struct {
	Success    bool     `json:"success"`
	Data       T        `json:"data"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	StatusCode int      `json:"statusCode"`
}

// Empty, data taşımayan yanıtlar için (register, logout, delete).
type Empty struct{}
