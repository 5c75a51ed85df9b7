package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akinalp/kisalt/apiclient"
	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/repository"
)

// recordedCall, sahte API'ye gelen tek bir istek.
type recordedCall struct {
	Method string
	Path   string
	Query  map[string]string
	Auth   string
	Body   []byte
}

// fakeAPI, remote API'nin httptest sahtesi. Tüm istekler kaydedilir.
type fakeAPI struct {
	srv *httptest.Server
	mux *http.ServeMux

	mu    sync.Mutex
	calls []recordedCall
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{mux: http.NewServeMux()}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		query := map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}

		f.mu.Lock()
		f.calls = append(f.calls, recordedCall{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  query,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		f.mu.Unlock()

		r.Body = io.NopCloser(bytes.NewReader(body))
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, h)
}

func (f *fakeAPI) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func (f *fakeAPI) callsTo(path string) []recordedCall {
	var out []recordedCall
	for _, c := range f.recorded() {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) client(store *SessionStore) *apiclient.Client {
	return apiclient.New(store, apiclient.Options{
		BaseURL: f.srv.URL + "/api/v1",
		Timeout: 5 * time.Second,
	})
}

// reply, remote API envelope'u yazar.
func reply(w http.ResponseWriter, status int, success bool, data any, message string, errs ...string) {
	if errs == nil {
		errs = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":    success,
		"data":       data,
		"message":    message,
		"errors":     errs,
		"statusCode": status,
	})
}

func newStore(t *testing.T) *SessionStore {
	t.Helper()
	return NewSessionStore(repository.NewMemorySessionRepo(), "default")
}

func loggedInStore(t *testing.T, access, refresh string) *SessionStore {
	t.Helper()
	store := newStore(t)
	require.NoError(t, store.Save(context.Background(), models.Tokens{AccessToken: access, RefreshToken: refresh}, models.ReasonLogin))
	return store
}
