package services

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/akinalp/kisalt/apiclient"
	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/pkg/cache"
)

// RedirectService, kısa kodu hedef URL'e çözer.
//
// Çözümleme oturum gerektirmez: istek Bearer taşımaz ve her status kodu
// envelope olarak okunur. Başarılı sonuçlar TTL cache'te tutulur; aynı kod
// için eşzamanlı istekler tek bir remote çağrıya indirilir (singleflight).
type RedirectService interface {
	Resolve(ctx context.Context, shortCode string) (string, error)
	Forget(shortCode string)
	Purge()
	Close()
}

type redirectService struct {
	client *apiclient.Client
	cache  *cache.TTLCache[string, string] // nil → cache kapalı
	group  singleflight.Group
}

// NewRedirectService, constructor. ttl <= 0 ise sonuçlar cache'lenmez.
func NewRedirectService(client *apiclient.Client, ttl time.Duration) RedirectService {
	s := &redirectService{client: client}
	if ttl > 0 {
		s.cache = cache.New[string, string](ttl, 5*time.Minute)
	}
	return s
}

func (s *redirectService) Resolve(ctx context.Context, shortCode string) (string, error) {
	if err := models.RequireField("shortCode", shortCode, "validation.shortCodeRequired"); err != nil {
		return "", err
	}

	if s.cache != nil {
		if target, ok := s.cache.Get(shortCode); ok {
			return target, nil
		}
	}

	// Paylaşılan çağrı ilk isteğin iptalinden etkilenmez; her çağıran
	// kendi context'i kadar bekler.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(shortCode, func() (any, error) {
		return s.fetch(shared, shortCode)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// fetch, GET /Url/redirect/{code}. success=true ve data dolu → hedef URL.
func (s *redirectService) fetch(ctx context.Context, shortCode string) (string, error) {
	loc := s.client.Localizer(ctx)

	resp, err := s.client.DoRaw(ctx, apiclient.Request{
		Method:    http.MethodGet,
		Path:      "/Url/redirect/" + url.PathEscape(shortCode),
		Anonymous: true,
	})
	if err != nil {
		detail := loc.T("redirect.unknown")
		var apiErr *pkg.APIError
		if errors.As(err, &apiErr) && apiErr.Err != nil {
			detail = apiErr.Err.Error()
		}
		return "", &pkg.APIError{
			Message: loc.T("redirect.connection"),
			Errors:  []string{detail},
			Kind:    pkg.ErrNetwork,
			Err:     err,
		}
	}

	env, err := apiclient.Decode[string](ctx, s.client, resp)
	if err != nil {
		return "", &pkg.APIError{
			StatusCode: resp.StatusCode,
			Message:    loc.T("redirect.failed"),
			Kind:       pkg.ErrUnexpected,
			Err:        err,
		}
	}

	if env.Success && isRedirectTarget(env.Data) {
		if s.cache != nil {
			s.cache.Set(shortCode, env.Data)
		}
		return env.Data, nil
	}

	status := resp.StatusCode
	if isSuccess(status) {
		status = env.StatusCode
	}
	if isSuccess(status) || status == 0 {
		status = http.StatusBadRequest
	}

	message := env.Message
	if message == "" {
		message = loc.T("redirect.failed")
	}

	log.Printf("[redirect] resolve failed (code=%s, status=%d)", shortCode, status)
	return "", &pkg.APIError{
		StatusCode: status,
		Message:    message,
		Errors:     env.Errors,
		Kind:       pkg.Classify(status),
	}
}

func (s *redirectService) Forget(shortCode string) {
	if s.cache != nil {
		s.cache.Delete(shortCode)
	}
}

func (s *redirectService) Purge() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// Close, cache temizlik goroutine'ini durdurur.
func (s *redirectService) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// isRedirectTarget, yönlendirilecek adresin mutlak http(s) URL olduğunu kontrol eder.
func isRedirectTarget(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
