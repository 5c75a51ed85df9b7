package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/kisalt/middleware"
	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/pkg/ratelimit"
	"github.com/akinalp/kisalt/services"
)

// ─── Fakes ───

type fakeAuth struct {
	loginErr  error
	logoutErr error
	status    models.SessionStatus
	logins    int
}

func (f *fakeAuth) Login(_ context.Context, req *models.LoginRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	f.logins++
	if f.loginErr != nil {
		return f.loginErr
	}
	f.status.Authenticated = true
	return nil
}

func (f *fakeAuth) Register(_ context.Context, req *models.RegisterRequest) error {
	return req.Validate()
}

func (f *fakeAuth) Logout(context.Context) error {
	f.status.Authenticated = false
	return f.logoutErr
}

func (f *fakeAuth) IsAuthenticated() bool        { return f.status.Authenticated }
func (f *fakeAuth) Status() models.SessionStatus { return f.status }

type fakeURLs struct {
	page             *models.Page[models.ShortURL]
	gotPage, gotSize int
	err              error
	deleted          []string
}

func (f *fakeURLs) List(_ context.Context, page, pageSize int) (*models.Page[models.ShortURL], error) {
	f.gotPage, f.gotSize = page, pageSize
	return f.page, f.err
}

func (f *fakeURLs) Get(_ context.Context, id string) (*models.ShortURL, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ShortURL{ID: id, ShortCode: "abc123"}, nil
}

func (f *fakeURLs) Detail(_ context.Context, code string) (*models.ShortURL, error) {
	return &models.ShortURL{ID: "1", ShortCode: code}, f.err
}

func (f *fakeURLs) Create(_ context.Context, req *models.CreateURLRequest) (*models.ShortURL, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &models.ShortURL{ID: "new", OriginalURL: req.OriginalURL, ShortCode: "xyz"}, nil
}

func (f *fakeURLs) Update(_ context.Context, id string, req *models.UpdateURLRequest) (*models.ShortURL, error) {
	req.ID = id
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &models.ShortURL{ID: id, OriginalURL: req.OriginalURL}, nil
}

func (f *fakeURLs) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeURLs) Stats(context.Context) (*models.DashboardStats, error) {
	return &models.DashboardStats{TotalURLs: 3}, f.err
}

type fakeAnalytics struct {
	gotRange models.DateRange
}

func (f *fakeAnalytics) TopURLs(_ context.Context, r models.DateRange) ([]models.TopURL, error) {
	f.gotRange = r
	return []models.TopURL{{ID: "1", ShortCode: "abc", ClickCount: 9}}, nil
}

func (f *fakeAnalytics) URLAnalytics(_ context.Context, code string, r models.DateRange) (*models.URLAnalytics, error) {
	f.gotRange = r
	return &models.URLAnalytics{ShortCode: code}, nil
}

func (f *fakeAnalytics) Overview(_ context.Context, code string, r models.DateRange) (*models.AnalyticsOverview, error) {
	f.gotRange = r
	return &models.AnalyticsOverview{}, nil
}

type fakeRedirect struct {
	targets map[string]string
	err     error
}

func (f *fakeRedirect) Resolve(_ context.Context, code string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.targets[code], nil
}

func (f *fakeRedirect) Forget(string) {}
func (f *fakeRedirect) Purge()        {}
func (f *fakeRedirect) Close()        {}

type fakeContact struct {
	sendErr error
	sent    int
}

func (f *fakeContact) Send(_ context.Context, req *models.ContactRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent++
	return nil
}

func (f *fakeContact) Enabled() bool { return f.sendErr == nil }

type fakeRefresher struct{ err error }

func (f fakeRefresher) Refresh(context.Context) error { return f.err }

type fixedCount int

func (c fixedCount) ConnectionCount() int { return int(c) }

// ─── Helpers ───

// envelope, yanıtı data'sı ham kalacak şekilde okur.
type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Errors     []string        `json:"errors"`
	StatusCode int             `json:"statusCode"`
}

// serve, tek bir route'u Language middleware'iyle çalıştırır.
func serve(t *testing.T, pattern string, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	mux := http.NewServeMux()
	mux.Handle(pattern, h)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "10.1.1.1:5000"

	rec := httptest.NewRecorder()
	middleware.Language("tr")(mux).ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// ─── Auth ───

func TestAuthHandler_Login(t *testing.T) {
	auth := &fakeAuth{status: models.SessionStatus{Profile: "default"}}
	h := NewAuthHandler(auth, nil)

	rec := serve(t, "POST /api/auth/login", h.Login, http.MethodPost, "/api/auth/login",
		`{"email":"ada@example.com","password":"secret"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Giriş başarılı", env.Message)

	var status models.SessionStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.Authenticated)
	assert.NotContains(t, rec.Body.String(), "accessToken")
}

func TestAuthHandler_LoginValidation(t *testing.T) {
	h := NewAuthHandler(&fakeAuth{}, nil)

	rec := serve(t, "POST /api/auth/login", h.Login, http.MethodPost, "/api/auth/login",
		`{"email":"not-an-email","password":"secret"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, []string{"Geçerli bir e-posta adresi giriniz"}, env.Errors)
}

func TestAuthHandler_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&fakeAuth{}, nil)

	rec := serve(t, "POST /api/auth/login", h.Login, http.MethodPost, "/api/auth/login", `{"email":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Geçersiz istek gövdesi", decode(t, rec).Message)
}

func TestAuthHandler_LoginRateLimited(t *testing.T) {
	limiter := ratelimit.NewWindowLimiter(1, time.Minute)
	defer limiter.Close()

	auth := &fakeAuth{loginErr: &pkg.APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "Kullanıcı bilgileri hatalı",
		Errors:     []string{},
		Kind:       pkg.ErrUnauthorized,
	}}
	h := NewAuthHandler(auth, limiter)
	body := `{"email":"ada@example.com","password":"wrong"}`

	rec := serve(t, "POST /api/auth/login", h.Login, http.MethodPost, "/api/auth/login", body)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Kullanıcı bilgileri hatalı", decode(t, rec).Message)

	rec = serve(t, "POST /api/auth/login", h.Login, http.MethodPost, "/api/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, auth.logins, "blocked attempt never reaches the service")
}

func TestAuthHandler_RegisterAndLogout(t *testing.T) {
	auth := &fakeAuth{status: models.SessionStatus{Authenticated: true}}
	h := NewAuthHandler(auth, nil)

	rec := serve(t, "POST /api/auth/register", h.Register, http.MethodPost, "/api/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Kayıt başarılı, şimdi giriş yapabilirsiniz", decode(t, rec).Message)

	rec = serve(t, "POST /api/auth/logout", h.Logout, http.MethodPost, "/api/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Çıkış yapıldı", decode(t, rec).Message)
	assert.False(t, auth.status.Authenticated)
}

// ─── Session ───

func TestSessionHandler_RefreshFailure(t *testing.T) {
	auth := &fakeAuth{}
	ended := pkg.NewSessionEndedError(errors.New("refresh rejected"), nil)
	h := NewSessionHandler(auth, fakeRefresher{err: ended})

	rec := serve(t, "POST /api/session/refresh", h.Refresh, http.MethodPost, "/api/session/refresh", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, decode(t, rec).Success)

	rec = serve(t, "GET /api/session", h.Status, http.MethodGet, "/api/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":false,"profile":""}`, string(decode(t, rec).Data))
}

// ─── URLs ───

func TestURLHandler_ListWithPagination(t *testing.T) {
	urls := &fakeURLs{page: &models.Page[models.ShortURL]{
		Items: []models.ShortURL{{ID: "1"}}, Index: 2, Size: 5, Count: 11, Pages: 3,
		HasPrevious: true, HasNext: true,
	}}
	h := NewURLHandler(urls)

	rec := serve(t, "GET /api/urls", h.List, http.MethodGet, "/api/urls?page=2&pageSize=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, urls.gotPage)
	assert.Equal(t, 5, urls.gotSize)

	var body URLListResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &body))
	assert.Len(t, body.Page.Items, 1)
	assert.True(t, body.Pagination.Visible)
	assert.Equal(t, models.PageLink{Page: 1, Enabled: true}, body.Pagination.Prev)
	assert.Equal(t, models.PageLink{Page: 3, Enabled: true}, body.Pagination.Next)
}

func TestURLHandler_ListDefaults(t *testing.T) {
	urls := &fakeURLs{page: &models.Page[models.ShortURL]{Items: []models.ShortURL{}, Index: 1, Pages: 1}}
	h := NewURLHandler(urls)

	rec := serve(t, "GET /api/urls", h.List, http.MethodGet, "/api/urls?page=abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.DefaultPage, urls.gotPage)
	assert.Equal(t, services.DefaultPageSize, urls.gotSize)
}

func TestURLHandler_CreateUpdateDelete(t *testing.T) {
	urls := &fakeURLs{}
	h := NewURLHandler(urls)

	rec := serve(t, "POST /api/urls", h.Create, http.MethodPost, "/api/urls",
		`{"originalUrl":"https://example.com/very/long","expiresAt":null}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "URL başarıyla oluşturuldu", decode(t, rec).Message)

	rec = serve(t, "POST /api/urls", h.Create, http.MethodPost, "/api/urls", `{"originalUrl":"ftp://x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"Geçerli bir URL giriniz"}, decode(t, rec).Errors)

	rec = serve(t, "PUT /api/urls/{id}", h.Update, http.MethodPut, "/api/urls/42",
		`{"id":"ignored","originalUrl":"https://example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.ShortURL
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &updated))
	assert.Equal(t, "42", updated.ID)

	rec = serve(t, "DELETE /api/urls/{id}", h.Delete, http.MethodDelete, "/api/urls/42", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "URL başarıyla silindi", decode(t, rec).Message)
	assert.Equal(t, []string{"42"}, urls.deleted)
}

func TestURLHandler_PassesRemoteErrorThrough(t *testing.T) {
	urls := &fakeURLs{err: &pkg.APIError{
		StatusCode: http.StatusNotFound,
		Message:    "URL bulunamadı",
		Errors:     []string{"id: 42"},
		Kind:       pkg.ErrNotFound,
	}}
	h := NewURLHandler(urls)

	rec := serve(t, "GET /api/urls/{id}", h.Get, http.MethodGet, "/api/urls/42", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "URL bulunamadı", env.Message)
	assert.Equal(t, []string{"id: 42"}, env.Errors)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
}

func TestURLHandler_NetworkErrorIsBadGateway(t *testing.T) {
	urls := &fakeURLs{err: pkg.NewNetworkError(errors.New("dial tcp: refused"), nil)}
	h := NewURLHandler(urls)

	rec := serve(t, "GET /api/urls/stats", h.Stats, http.MethodGet, "/api/urls/stats", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

// ─── Analytics ───

func TestAnalyticsHandler_Range(t *testing.T) {
	analytics := &fakeAnalytics{}
	h := NewAnalyticsHandler(analytics)

	rec := serve(t, "GET /api/analytics/top", h.Top, http.MethodGet, "/api/analytics/top", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RangeWeek, analytics.gotRange)

	rec = serve(t, "GET /api/analytics/urls/{code}", h.URL, http.MethodGet, "/api/analytics/urls/abc?range=year", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RangeYear, analytics.gotRange)

	rec = serve(t, "GET /api/analytics/overview/{code}", h.Overview, http.MethodGet, "/api/analytics/overview/abc?range=decade", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Geçersiz tarih aralığı", decode(t, rec).Message)
}

// ─── Redirect ───

func TestRedirectHandler_Found(t *testing.T) {
	h := NewRedirectHandler(&fakeRedirect{targets: map[string]string{"abc": "https://example.com/target"}})

	rec := serve(t, "GET /r/{code}", h.Resolve, http.MethodGet, "/r/abc", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com/target", rec.Header().Get("Location"))
}

func TestRedirectHandler_ErrorPage(t *testing.T) {
	h := NewRedirectHandler(&fakeRedirect{err: &pkg.APIError{
		StatusCode: http.StatusNotFound,
		Message:    "Kısa kod bulunamadı",
		Kind:       pkg.ErrNotFound,
	}})

	rec := serve(t, "GET /r/{code}", h.Resolve, http.MethodGet, "/r/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	page := rec.Body.String()
	assert.Contains(t, page, "Kayıt bulunamadı")
	assert.Contains(t, page, "Ana Sayfaya Dön")
	assert.Contains(t, page, "Durum Kodu: 404")
}

func TestRedirectHandler_EscapesRemoteText(t *testing.T) {
	h := NewRedirectHandler(&fakeRedirect{err: &pkg.APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "<script>alert(1)</script>",
		Kind:       pkg.ErrBadRequest,
	}})

	rec := serve(t, "GET /r/{code}", h.Resolve, http.MethodGet, "/r/bad", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}

func TestRedirectHandler_NetworkError(t *testing.T) {
	h := NewRedirectHandler(&fakeRedirect{err: pkg.NewNetworkError(errors.New("timeout"), nil)})

	rec := serve(t, "GET /r/{code}", h.Resolve, http.MethodGet, "/r/abc", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

// ─── Contact ───

func TestContactHandler(t *testing.T) {
	contact := &fakeContact{}
	h := NewContactHandler(contact, nil)
	body := `{"name":"Ada","email":"ada@example.com","subject":"Merhaba","message":"Uzunca bir mesaj metni"}`

	rec := serve(t, "POST /api/contact", h.Send, http.MethodPost, "/api/contact", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, contact.sent)

	disabled := NewContactHandler(&fakeContact{sendErr: services.ErrContactDisabled}, nil)
	rec = serve(t, "POST /api/contact", disabled.Send, http.MethodPost, "/api/contact", body)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "İletişim formu yapılandırılmamış", decode(t, rec).Message)
}

func TestContactHandler_Cooldown(t *testing.T) {
	limiter := ratelimit.NewCooldownLimiter(1, time.Minute, time.Minute)
	defer limiter.Close()

	contact := &fakeContact{}
	h := NewContactHandler(contact, limiter)
	body := `{"name":"Ada","email":"ada@example.com","subject":"Merhaba","message":"Uzunca bir mesaj metni"}`

	require.Equal(t, http.StatusOK, serve(t, "POST /api/contact", h.Send, http.MethodPost, "/api/contact", body).Code)
	rec := serve(t, "POST /api/contact", h.Send, http.MethodPost, "/api/contact", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1, contact.sent)
}

// ─── Health ───

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(&fakeAuth{status: models.SessionStatus{Authenticated: true}}, fixedCount(2))

	rec := serve(t, "GET /api/health", h.Health, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &health))
	assert.Equal(t, "ok", health.Status)
	assert.True(t, health.Authenticated)
	assert.Equal(t, 2, health.Connections)
}
