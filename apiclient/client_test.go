package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
)

// ─── Fakes ───

// fakeStore, TokenStore'un bellek içi sahtesi. clears sadece gerçekten silinen
// oturumları sayar (SessionStore.Expire ile aynı davranış). stored doluysa
// başka bir process'in yazdığı oturumu temsil eder; Reload onu belleğe alır.
type fakeStore struct {
	mu      sync.Mutex
	tokens  *models.Tokens
	stored  *models.Tokens
	saves   []models.Tokens
	clears  int
	reloads int
}

func newFakeStore(access, refresh string) *fakeStore {
	s := &fakeStore{}
	if access != "" || refresh != "" {
		s.tokens = &models.Tokens{AccessToken: access, RefreshToken: refresh}
	}
	return s
}

func (s *fakeStore) Tokens() (models.Tokens, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		return models.Tokens{}, false
	}
	return *s.tokens, true
}

func (s *fakeStore) Save(_ context.Context, t models.Tokens, _ models.SessionReason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = &t
	s.saves = append(s.saves, t)
	return nil
}

func (s *fakeStore) Reload(_ context.Context) (models.Tokens, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloads++
	if s.stored != nil {
		s.tokens, s.stored = s.stored, nil
	}
	if s.tokens == nil {
		return models.Tokens{}, false, nil
	}
	return *s.tokens, true, nil
}

func (s *fakeStore) Expire(_ context.Context) (models.Tokens, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stored != nil {
		s.tokens, s.stored = s.stored, nil
		return *s.tokens, true, nil
	}
	if s.tokens == nil {
		return models.Tokens{}, false, nil
	}
	s.tokens = nil
	s.clears++
	return models.Tokens{}, false, nil
}

// storeExternally, başka bir process'in oturumu yenilediğini taklit eder.
func (s *fakeStore) storeExternally(t models.Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = &t
}

func (s *fakeStore) clearCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

// backend, remote API'nin sahtesi: sadece valid token'ı kabul eder.
type backend struct {
	srv *httptest.Server

	mu           sync.Mutex
	valid        string
	authHeaders  []string
	refreshGate  chan struct{}
	refreshReply func(w http.ResponseWriter, body models.Tokens)

	refreshCalls atomic.Int32
	unauthorized atomic.Int32
	hits         atomic.Int32
}

func newBackend(t *testing.T, valid string) *backend {
	b := &backend{valid: valid}
	b.refreshReply = func(w http.ResponseWriter, body models.Tokens) {
		b.mu.Lock()
		b.valid = "a2"
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"accessToken":"a2","refreshToken":"r2"},"message":"","errors":[],"statusCode":200}`)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/Auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		assert.Empty(t, r.Header.Get("Authorization"), "refresh must not carry a bearer token")

		var body models.Tokens
		_ = json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		gate := b.refreshGate
		b.mu.Unlock()
		if gate != nil {
			<-gate
		}
		b.refreshReply(w, body)
	})
	mux.HandleFunc("/api/v1/Url/", func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		auth := r.Header.Get("Authorization")

		b.mu.Lock()
		b.authHeaders = append(b.authHeaders, auth)
		ok := auth == "Bearer "+b.valid
		b.mu.Unlock()

		if !ok {
			b.unauthorized.Add(1)
			writeJSON(w, http.StatusUnauthorized, `{"success":false,"data":null,"message":"","errors":[],"statusCode":401}`)
			return
		}
		writeJSON(w, http.StatusOK, fmt.Sprintf(`{"success":true,"data":%q,"message":"","errors":[],"statusCode":200}`, r.URL.Path))
	})

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) lastAuth() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.authHeaders) == 0 {
		return ""
	}
	return b.authHeaders[len(b.authHeaders)-1]
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newTestClient(b *backend, store TokenStore) *Client {
	return New(store, Options{BaseURL: b.srv.URL + "/api/v1", Timeout: 5 * time.Second})
}

func fireConcurrent(t *testing.T, c *Client, n int) []error {
	t.Helper()

	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path, err := Get[string](context.Background(), c, fmt.Sprintf("/Url/%d", i), nil)
			if err == nil && path != fmt.Sprintf("/api/v1/Url/%d", i) {
				err = fmt.Errorf("unexpected payload %q", path)
			}
			errs[i] = err
		}()
	}
	wg.Wait()
	return errs
}

// holdRefreshUntil, refresh yanıtını n adet 401 görülene kadar bekletir.
func (b *backend) holdRefreshUntil(n int32) {
	gate := make(chan struct{})
	b.mu.Lock()
	b.refreshGate = gate
	b.mu.Unlock()

	go func() {
		deadline := time.Now().Add(5 * time.Second)
		for b.unauthorized.Load() < n && time.Now().Before(deadline) {
			time.Sleep(2 * time.Millisecond)
		}
		close(gate)
	}()
}

// ─── Refresh flow ───

func TestConcurrent401s_SingleRefreshAndAllRetried(t *testing.T) {
	const n = 8
	b := newBackend(t, "a2")
	store := newFakeStore("a1", "r1")
	c := newTestClient(b, store)

	b.holdRefreshUntil(n)
	errs := fireConcurrent(t, c, n)

	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, int32(1), b.refreshCalls.Load(), "exactly one refresh call")
	assert.Equal(t, int32(n), b.unauthorized.Load())
	assert.Equal(t, []models.Tokens{{AccessToken: "a2", RefreshToken: "r2"}}, store.saves)
	assert.Equal(t, 0, store.clearCount())

	b.mu.Lock()
	retriedWithA2 := 0
	for _, h := range b.authHeaders {
		if h == "Bearer a2" {
			retriedWithA2++
		}
	}
	b.mu.Unlock()
	assert.Equal(t, n, retriedWithA2, "every request retried once with the refreshed token")
}

func TestAfterRefresh_RequestsCarryNewToken(t *testing.T) {
	b := newBackend(t, "a2")
	store := newFakeStore("a1", "r1")
	c := newTestClient(b, store)

	_, err := Get[string](context.Background(), c, "/Url/first", nil)
	require.NoError(t, err)

	_, err = Get[string](context.Background(), c, "/Url/second", nil)
	require.NoError(t, err)

	assert.Equal(t, "Bearer a2", b.lastAuth())
	assert.Equal(t, int32(1), b.unauthorized.Load(), "second request goes straight through")
	assert.Equal(t, int32(1), b.refreshCalls.Load())
}

func TestRefreshFailure_RejectsAllAndClearsOnce(t *testing.T) {
	const n = 6
	b := newBackend(t, "never")
	b.refreshReply = func(w http.ResponseWriter, _ models.Tokens) {
		writeJSON(w, http.StatusBadRequest, `{"success":false,"data":null,"message":"Refresh token geçersiz","errors":["expired"],"statusCode":400}`)
	}
	store := newFakeStore("a1", "r1")
	c := newTestClient(b, store)

	b.holdRefreshUntil(n)
	errs := fireConcurrent(t, c, n)

	for i, err := range errs {
		require.Error(t, err, "request %d", i)
		assert.True(t, errors.Is(err, pkg.ErrSessionEnded), "request %d: %v", i, err)
		assert.True(t, IsSessionEnded(err))
		assert.Equal(t, http.StatusUnauthorized, pkg.StatusOf(err))
	}
	assert.Equal(t, int32(1), b.refreshCalls.Load())
	assert.Equal(t, 1, store.clearCount(), "session cleared exactly once")
	_, ok := store.Tokens()
	assert.False(t, ok)
}

func TestRefreshSuccessFalse_EndsSession(t *testing.T) {
	b := newBackend(t, "never")
	b.refreshReply = func(w http.ResponseWriter, _ models.Tokens) {
		writeJSON(w, http.StatusOK, `{"success":false,"data":null,"message":"","errors":[],"statusCode":200}`)
	}
	store := newFakeStore("a1", "r1")
	c := newTestClient(b, store)

	_, err := Get[string](context.Background(), c, "/Url/x", nil)
	assert.ErrorIs(t, err, pkg.ErrSessionEnded)
	assert.ErrorIs(t, err, errRefreshRefused)
	assert.Equal(t, 1, store.clearCount())
}

func TestRetried401_IsTerminal(t *testing.T) {
	b := newBackend(t, "never")
	b.refreshReply = func(w http.ResponseWriter, _ models.Tokens) {
		// Refresh başarılı ama backend yeni token'ı da reddediyor.
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"accessToken":"a2","refreshToken":"r2"},"message":"","errors":[],"statusCode":200}`)
	}
	store := newFakeStore("a1", "r1")
	c := newTestClient(b, store)

	_, err := Get[string](context.Background(), c, "/Url/x", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
	assert.NotErrorIs(t, err, pkg.ErrSessionEnded)
	assert.Equal(t, int32(2), b.hits.Load(), "original + one retry")
	assert.Equal(t, int32(1), b.refreshCalls.Load())
	assert.Equal(t, 0, store.clearCount())
}

func TestNoRefreshToken_EndsSessionWithoutCall(t *testing.T) {
	b := newBackend(t, "never")
	store := newFakeStore("a1", "")
	c := newTestClient(b, store)

	_, err := Get[string](context.Background(), c, "/Url/x", nil)
	assert.ErrorIs(t, err, pkg.ErrSessionEnded)
	assert.ErrorIs(t, err, errNoRefreshToken)
	assert.Equal(t, int32(0), b.refreshCalls.Load())
	assert.Equal(t, 1, store.clearCount())
}

func TestParkedRequestCancellation_LeavesOthersIntact(t *testing.T) {
	b := newBackend(t, "a2")
	gate := make(chan struct{})
	b.refreshGate = gate
	store := newFakeStore("a1", "r1")
	c := newTestClient(b, store)

	leaderDone := make(chan error, 1)
	go func() {
		_, err := Get[string](context.Background(), c, "/Url/leader", nil)
		leaderDone <- err
	}()
	require.Eventually(t, func() bool { return b.refreshCalls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	parkedDone := make(chan error, 1)
	go func() {
		_, err := Get[string](ctx, c, "/Url/parked", nil)
		parkedDone <- err
	}()
	otherDone := make(chan error, 1)
	go func() {
		_, err := Get[string](context.Background(), c, "/Url/other", nil)
		otherDone <- err
	}()

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.waiters) == 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-parkedDone, context.Canceled)

	c.mu.Lock()
	assert.Len(t, c.waiters, 1)
	c.mu.Unlock()

	close(gate)
	assert.NoError(t, <-leaderDone)
	assert.NoError(t, <-otherDone)
	assert.Equal(t, int32(1), b.refreshCalls.Load())
}

func TestExplicitRefresh_UsesGuardedPath(t *testing.T) {
	b := newBackend(t, "a1")
	store := newFakeStore("a1", "r1")
	c := newTestClient(b, store)

	require.NoError(t, c.Refresh(context.Background()))

	tokens, ok := store.Tokens()
	require.True(t, ok)
	assert.Equal(t, "a2", tokens.AccessToken)
	assert.Equal(t, int32(1), b.refreshCalls.Load())
}

func TestParkedRequests_ReleasedInArrivalOrder(t *testing.T) {
	const n = 4
	b := newBackend(t, "a2")
	gate := make(chan struct{})
	b.refreshGate = gate
	store := newFakeStore("a1", "r1")
	c := newTestClient(b, store)

	leaderDone := make(chan error, 1)
	go func() {
		_, err := Get[string](context.Background(), c, "/Url/leader", nil)
		leaderDone <- err
	}()
	require.Eventually(t, func() bool { return b.refreshCalls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	// Bekleyenler tek tek park edilir; sıra biliniyor.
	done := make(chan error, n)
	for i := range n {
		go func() {
			_, err := Get[string](context.Background(), c, fmt.Sprintf("/Url/%d", i), nil)
			done <- err
		}()
		require.Eventually(t, func() bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			return len(c.waiters) == i+1
		}, 2*time.Second, 2*time.Millisecond)
	}

	// Buffer'sız ara kanallar: lider her gönderimde bloklar, teslim sırası gözlenebilir.
	taps := make([]chan refreshResult, n)
	for i := range taps {
		taps[i] = make(chan refreshResult)
	}
	c.mu.Lock()
	parked := c.waiters
	c.waiters = append([]chan refreshResult(nil), taps...)
	c.mu.Unlock()

	close(gate)

	var order []int
	released := make([]bool, n)
	for range n {
		require.Eventually(t, func() bool {
			for j, tap := range taps {
				if released[j] {
					continue
				}
				select {
				case r := <-tap:
					released[j] = true
					order = append(order, j)
					parked[j] <- r
					return true
				default:
				}
			}
			return false
		}, 2*time.Second, time.Millisecond)
	}

	assert.Equal(t, []int{0, 1, 2, 3}, order)
	require.NoError(t, <-leaderDone)
	for range n {
		assert.NoError(t, <-done)
	}
	assert.Equal(t, int32(1), b.refreshCalls.Load())
}

// ─── Shared session ───

func TestRefresh_UsesTokensRotatedByAnotherProcess(t *testing.T) {
	b := newBackend(t, "a9")
	store := newFakeStore("a1", "r1")
	store.storeExternally(models.Tokens{AccessToken: "a9", RefreshToken: "r9"})
	c := newTestClient(b, store)

	_, err := Get[string](context.Background(), c, "/Url/x", nil)
	require.NoError(t, err)

	assert.Equal(t, int32(0), b.refreshCalls.Load(), "stored tokens are newer, no refresh call")
	assert.Equal(t, "Bearer a9", b.lastAuth())
	assert.Equal(t, 0, store.clearCount())
}

func TestRefreshFailure_KeepsSessionRotatedMeanwhile(t *testing.T) {
	b := newBackend(t, "a9")
	store := newFakeStore("a1", "r1")
	b.refreshReply = func(w http.ResponseWriter, _ models.Tokens) {
		// Başka bir process r1'i bu çağrıdan hemen önce tüketti.
		store.storeExternally(models.Tokens{AccessToken: "a9", RefreshToken: "r9"})
		writeJSON(w, http.StatusBadRequest, `{"success":false,"data":null,"message":"Refresh token geçersiz","errors":[],"statusCode":400}`)
	}
	c := newTestClient(b, store)

	_, err := Get[string](context.Background(), c, "/Url/x", nil)
	require.NoError(t, err)

	assert.Equal(t, int32(1), b.refreshCalls.Load())
	assert.Equal(t, 0, store.clearCount(), "newer session is not cleared")
	tokens, ok := store.Tokens()
	require.True(t, ok)
	assert.Equal(t, "a9", tokens.AccessToken)
}

// ─── Non-retried failures ───

func TestServerError_NotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusInternalServerError, `{"success":false,"data":null,"message":"","errors":[],"statusCode":500}`)
	}))
	defer srv.Close()

	store := newFakeStore("a1", "r1")
	c := New(store, Options{BaseURL: srv.URL})

	_, err := Get[string](context.Background(), c, "/Url/x", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrInternal)
	assert.Equal(t, "Sunucu hatası. Lütfen daha sonra tekrar deneyin", err.Error())
	assert.Equal(t, int32(1), hits.Load())
	assert.Empty(t, store.saves)
}

func TestNetworkError_NotRetried(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	store := newFakeStore("a1", "r1")
	c := New(store, Options{BaseURL: base, Timeout: time.Second})

	_, err := Get[string](context.Background(), c, "/Url/x", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrNetwork)
	assert.Equal(t, 0, pkg.StatusOf(err))
	assert.Empty(t, store.saves)
	assert.Equal(t, 0, store.clearCount())
}

func TestValidationError_SurfacesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"success":false,"data":null,"message":"Doğrulama hatası","errors":["OriginalUrl geçersiz"],"statusCode":400}`)
	}))
	defer srv.Close()

	c := New(newFakeStore("a1", "r1"), Options{BaseURL: srv.URL})
	_, err := Post[models.ShortURL](context.Background(), c, "/Url/shorten", models.CreateURLRequest{OriginalURL: "x"})

	assert.ErrorIs(t, err, pkg.ErrBadRequest)
	assert.Equal(t, "Doğrulama hatası", err.Error())
	assert.Equal(t, []string{"OriginalUrl geçersiz"}, pkg.Details(err))
}

func TestSuccessFalseOn200_IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false,"data":null,"message":"Kayıt bulunamadı","errors":[],"statusCode":404}`)
	}))
	defer srv.Close()

	c := New(newFakeStore("", ""), Options{BaseURL: srv.URL})
	_, err := Get[models.ShortURL](context.Background(), c, "/Url/1", nil)

	assert.ErrorIs(t, err, pkg.ErrNotFound)
	assert.Equal(t, "Kayıt bulunamadı", err.Error())
}

func TestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, http.StatusOK, `{"success":true,"data":null,"message":"","errors":[],"statusCode":200}`)
	}))
	defer srv.Close()

	c := New(newFakeStore("", ""), Options{BaseURL: srv.URL})
	_, err := Post[models.Empty](context.Background(), c, "/Auth/login", models.LoginRequest{Email: "a@b.co", Password: "x"})
	require.NoError(t, err)

	assert.Empty(t, got.Get("Authorization"), "no session → no bearer")
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "tr", got.Get("Accept-Language"))
	assert.Len(t, got.Get("X-Request-ID"), 36)
}

func TestDoRaw_ReturnsAnyStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"data":null,"message":"yok","errors":[],"statusCode":401}`)
	}))
	defer srv.Close()

	store := newFakeStore("a1", "r1")
	c := New(store, Options{BaseURL: srv.URL})

	resp, err := c.DoRaw(context.Background(), Request{Method: http.MethodGet, Path: "/Url/redirect/abc"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	env, err := Decode[string](context.Background(), c, resp)
	require.NoError(t, err)
	assert.Equal(t, "yok", env.Message)
	assert.Empty(t, store.saves, "raw calls never refresh")
}
