// Package apiclient, remote URL kısaltma API'sinin kimlik doğrulamalı HTTP client'ı.
//
// Her isteğe mevcut access token'ı Bearer olarak ekler. 401 alan istekler
// için tek bir refresh çağrısı yapılır; refresh sürerken 401 alan diğer istekler
// sıraya (FIFO) park edilir ve refresh sonucunu beklerler. Ayrıntılar refresh.go'da.
//
// Kullanım:
//
//	client := apiclient.New(store, apiclient.Options{BaseURL: cfg.API.BaseURL})
//	page, err := apiclient.Get[models.Page[models.ShortURL]](ctx, client, "/Url", query)
package apiclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/pkg/i18n"
)

// maxBodySize, okunacak en büyük yanıt gövdesi (10 MB).
const maxBodySize = 10 << 20

// TokenStore, client'ın oturum token'larına eriştiği arayüz.
// services.SessionStore bu arayüzü karşılar.
//
// Aynı oturumu birden fazla process paylaşabilir: Reload saklı token'ları
// yeniden okur, Expire sadece başarısız olan oturumu siler ve daha yenisi
// saklanmışsa onu döner (adopted=true).
type TokenStore interface {
	Tokens() (models.Tokens, bool)
	Reload(ctx context.Context) (models.Tokens, bool, error)
	Save(ctx context.Context, tokens models.Tokens, reason models.SessionReason) error
	Expire(ctx context.Context) (tokens models.Tokens, adopted bool, err error)
}

// Options, Client ayarları.
type Options struct {
	BaseURL     string
	Timeout     time.Duration     // 0 → 30sn
	InsecureTLS bool              // geliştirme backend'inin self-signed sertifikası için
	Localizer   *i18n.Localizer   // context'te localizer yoksa kullanılır
	Transport   http.RoundTripper // nil → http.DefaultTransport klonu
}

// Request, tek bir API çağrısı.
type Request struct {
	Method string
	Path   string // BaseURL'e göre, ör: "/Url/shorten"
	Query  url.Values
	Body   any // nil değilse JSON olarak gönderilir

	// Anonymous, Authorization eklenmez ve 401 refresh akışını tetiklemez
	// (login, register, kısa link çözümleme).
	Anonymous bool
}

// Response, okunmuş HTTP yanıtı.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client, remote API için kimlik doğrulamalı HTTP client.
// Tüm metodlar concurrent kullanım için güvenlidir.
type Client struct {
	baseURL string
	http    *http.Client
	store   TokenStore
	loc     *i18n.Localizer
	newID   func() string

	// Refresh durumu: refreshing=false → Idle, true → Refreshing.
	// Flag kontrolü ve sıraya ekleme aynı kilit altında yapılır.
	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshResult
}

// New, yeni bir Client oluşturur.
func New(store TokenStore, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := opts.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if opts.InsecureTLS {
			t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		transport = t
	}

	loc := opts.Localizer
	if loc == nil {
		loc = i18n.NewLocalizer(i18n.DefaultLanguage)
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout, Transport: transport},
		store:   store,
		loc:     loc,
		newID:   func() string { return uuid.NewString() },
	}
}

// Do, isteği gönderir ve 2xx yanıtı döner.
//
// 401 alınırsa (istek henüz tekrar denenmemişse) refresh akışına girer ve yeni
// token'la bir kez daha dener. Tekrar denenen istekte gelen 401 son hatadır.
// Ağ hataları ve 401 dışındaki hata status'ları tekrar denenmez; *pkg.APIError döner.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, pkg.NewSetupError(err, c.Localizer(ctx))
	}

	token := c.bearer(req)
	retried := false

	for {
		resp, err := c.send(ctx, req, body, token)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusUnauthorized && !retried && !req.Anonymous {
			token, err = c.awaitRefresh(ctx, token)
			if err != nil {
				return nil, err
			}
			retried = true
			continue
		}

		if !isSuccess(resp.StatusCode) {
			return resp, c.statusError(ctx, resp)
		}
		return resp, nil
	}
}

// DoRaw, isteği token ile tek sefer gönderir ve status ne olursa olsun yanıtı döner.
// Refresh akışına girmez; sadece ağ/kurulum hatalarında error döner.
// Hata yanıtlarının gövdesini kendisi yorumlayan çağrılar (redirect çözümleme) için.
func (c *Client) DoRaw(ctx context.Context, req Request) (*Response, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, pkg.NewSetupError(err, c.Localizer(ctx))
	}
	return c.send(ctx, req, body, c.bearer(req))
}

func (c *Client) bearer(req Request) string {
	if req.Anonymous {
		return ""
	}
	tokens, _ := c.store.Tokens()
	return tokens.AccessToken
}

// send, tek bir HTTP round-trip yapar. token boşsa Authorization eklenmez.
func (c *Client) send(ctx context.Context, req Request, body []byte, token string) (*Response, error) {
	loc := c.Localizer(ctx)

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reader)
	if err != nil {
		return nil, pkg.NewSetupError(err, loc)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Accept-Language", loc.Lang())
	httpReq.Header.Set("X-Request-ID", c.newID())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, pkg.NewNetworkError(err, loc)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return nil, pkg.NewNetworkError(fmt.Errorf("read response body: %w", err), loc)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

// statusError, başarısız yanıttan APIError üretir.
// Gövde bir envelope ise message ve errors oradan alınır.
func (c *Client) statusError(ctx context.Context, resp *Response) error {
	var env models.Envelope[json.RawMessage]
	if len(resp.Body) > 0 {
		_ = json.Unmarshal(resp.Body, &env)
	}
	return pkg.NewStatusError(resp.StatusCode, env.Message, env.Errors, c.Localizer(ctx))
}

// Localizer, context'teki (Language middleware) localizer'ı, yoksa client varsayılanını döner.
func (c *Client) Localizer(ctx context.Context) *i18n.Localizer {
	return i18n.FromContext(ctx, c.loc)
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return data, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// ─── Typed helpers ───

// Call, isteği gönderir ve envelope'u çözer. success=false kontrolü çağırana bırakılır.
func Call[T any](ctx context.Context, c *Client, req Request) (*models.Envelope[T], error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope[T](ctx, c, resp)
}

// Decode, ham yanıtı envelope olarak çözer (DoRaw ile birlikte kullanılır).
func Decode[T any](ctx context.Context, c *Client, resp *Response) (*models.Envelope[T], error) {
	return decodeEnvelope[T](ctx, c, resp)
}

func decodeEnvelope[T any](ctx context.Context, c *Client, resp *Response) (*models.Envelope[T], error) {
	env := &models.Envelope[T]{}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		env.Success = isSuccess(resp.StatusCode)
		env.StatusCode = resp.StatusCode
		return env, nil
	}
	if err := json.Unmarshal(resp.Body, env); err != nil {
		return nil, &pkg.APIError{
			StatusCode: resp.StatusCode,
			Message:    pkg.DefaultStatusMessage(resp.StatusCode, c.Localizer(ctx)),
			Kind:       pkg.ErrUnexpected,
			Err:        fmt.Errorf("decode envelope: %w", err),
		}
	}
	return env, nil
}

// unwrap, success=false envelope'u APIError'a çevirir, aksi halde data'yı döner.
func unwrap[T any](ctx context.Context, c *Client, env *models.Envelope[T]) (T, error) {
	if !env.Success {
		var zero T
		status := env.StatusCode
		if isSuccess(status) || status == 0 {
			status = http.StatusBadRequest
		}
		return zero, pkg.NewStatusError(status, env.Message, env.Errors, c.Localizer(ctx))
	}
	return env.Data, nil
}

func call[T any](ctx context.Context, c *Client, req Request) (T, error) {
	env, err := Call[T](ctx, c, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return unwrap(ctx, c, env)
}

// Get, GET isteği yapar ve envelope'un data alanını döner.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	return call[T](ctx, c, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post, body'yi JSON olarak gönderir ve data alanını döner.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return call[T](ctx, c, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put, body'yi JSON olarak gönderir ve data alanını döner.
func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return call[T](ctx, c, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete, DELETE isteği yapar ve data alanını döner.
func Delete[T any](ctx context.Context, c *Client, path string) (T, error) {
	return call[T](ctx, c, Request{Method: http.MethodDelete, Path: path})
}

// IsSessionEnded, hatanın oturumun sona erdiğini (tekrar giriş gerektiğini) gösterip göstermediği.
func IsSessionEnded(err error) bool {
	return errors.Is(err, pkg.ErrSessionEnded)
}
