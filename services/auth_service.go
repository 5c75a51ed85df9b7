// Package services, business logic katmanını barındırır.
//
// Service Layer Pattern nedir?
// Handler (HTTP) veya CLI komutu ile remote API arasında oturan katmandır.
// Tüm iş kuralları burada yaşar:
//   - Form doğrulama (request.Validate)
//   - Endpoint path'leri ve query parametreleri
//   - Remote API hatalarının kullanıcıya gösterilecek mesajlara çevrilmesi
//   - Oturum değişikliklerinin SessionStore'a yazılması
//
// Service ASLA http.Request/Response bilmez — sadece domain modelleri alır/verir.
// Service ASLA ham HTTP çağrısı yapmaz — apiclient.Client'ı kullanır.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/akinalp/kisalt/apiclient"
	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
)

// AuthService interface'i — dışarıya açık API.
// Handler ve CLI bu interface'e bağımlıdır, concrete struct'a değil.
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) error
	Register(ctx context.Context, req *models.RegisterRequest) error
	// Logout, yerel oturumu her durumda siler; remote hata varsa yine de döner.
	Logout(ctx context.Context) error
	IsAuthenticated() bool
	Status() models.SessionStatus
}

// authService, AuthService interface'inin implementasyonu.
type authService struct {
	client *apiclient.Client
	store  *SessionStore
}

// NewAuthService, constructor.
func NewAuthService(client *apiclient.Client, store *SessionStore) AuthService {
	return &authService{client: client, store: store}
}

// Login, kullanıcıyı doğrular ve dönen token çiftini "login" sebebiyle kaydeder.
//
// Login isteği Bearer taşımaz ve 401'de refresh akışına girmez:
// hatalı şifre bir oturum sona ermesi değildir.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	resp, err := s.client.DoRaw(ctx, apiclient.Request{
		Method:    http.MethodPost,
		Path:      "/Auth/login",
		Body:      req,
		Anonymous: true,
	})
	if err != nil {
		return unreachable(err, s.client.Localizer(ctx).T("auth.loginUnreachable"))
	}

	env, err := apiclient.Decode[models.Tokens](ctx, s.client, resp)
	if err != nil {
		return err
	}

	if !isSuccess(resp.StatusCode) {
		return envelopeError(ctx, s.client, resp.StatusCode, env.Message, env.Errors, "auth.loginUnreachable")
	}
	if !env.Success || !env.Data.Complete() {
		return envelopeError(ctx, s.client, resp.StatusCode, env.Message, env.Errors, "auth.loginFailed")
	}

	if err := s.store.Save(ctx, env.Data, models.ReasonLogin); err != nil {
		return err
	}

	log.Printf("[auth] logged in (profile=%s)", s.store.Profile())
	return nil
}

// Register, yeni hesap oluşturur. Oturum açmaz; kullanıcı ardından login olur.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	resp, err := s.client.DoRaw(ctx, apiclient.Request{
		Method:    http.MethodPost,
		Path:      "/Auth/register",
		Body:      req,
		Anonymous: true,
	})
	if err != nil {
		return unreachable(err, s.client.Localizer(ctx).T("auth.registerError"))
	}

	env, err := apiclient.Decode[json.RawMessage](ctx, s.client, resp)
	if err != nil {
		return err
	}

	if !isSuccess(resp.StatusCode) {
		return envelopeError(ctx, s.client, resp.StatusCode, env.Message, env.Errors, "auth.registerError")
	}
	if !env.Success {
		return envelopeError(ctx, s.client, resp.StatusCode, env.Message, env.Errors, "auth.registerFailed")
	}
	return nil
}

// Logout, iki token da varsa remote oturumu kapatır, sonra yerel oturumu siler.
//
// Refresh token yoksa remote çağrı yapılmaz. Remote çağrı başarısız olsa da
// yerel oturum silinir; hata çağırana döner. Çağrı sırasında refresh de
// başarısız olduysa oturum zaten bitmiştir ve bu bir hata sayılmaz.
func (s *authService) Logout(ctx context.Context) error {
	tokens, ok := s.store.Tokens()

	var remoteErr error
	if ok && tokens.Complete() {
		_, remoteErr = apiclient.Call[json.RawMessage](ctx, s.client, apiclient.Request{
			Method: http.MethodPost,
			Path:   "/Auth/logout",
			Body:   models.LogoutRequest(tokens),
		})
	}

	if _, err := s.store.Clear(ctx, models.ReasonLogout); err != nil {
		log.Printf("[auth] failed to clear session on logout: %v", err)
	}

	if remoteErr == nil || apiclient.IsSessionEnded(remoteErr) {
		return nil
	}

	log.Printf("[auth] remote logout failed: %v", remoteErr)
	if apiErr, ok := pkg.AsAPIError(remoteErr); ok && len(apiErr.Errors) == 0 {
		apiErr.Errors = []string{s.client.Localizer(ctx).T("auth.logoutError")}
	}
	return remoteErr
}

func (s *authService) IsAuthenticated() bool {
	return s.store.IsAuthenticated()
}

func (s *authService) Status() models.SessionStatus {
	return s.store.Status()
}

// ─── Helpers ───

// envelopeError, başarısız bir envelope'tan kullanıcıya gösterilecek hatayı üretir.
// Liste önceliği: envelope errors → envelope message → fallbackKey çevirisi.
// 2xx ile gelen success=false 400 sayılır.
func envelopeError(ctx context.Context, c *apiclient.Client, status int, message string, details []string, fallbackKey string) *pkg.APIError {
	loc := c.Localizer(ctx)

	if len(details) == 0 {
		if message != "" {
			details = []string{message}
		} else {
			details = []string{loc.T(fallbackKey)}
		}
	}
	if message == "" {
		message = details[0]
	}
	if isSuccess(status) || status == 0 {
		status = http.StatusBadRequest
	}

	return &pkg.APIError{
		StatusCode: status,
		Message:    message,
		Errors:     details,
		Kind:       pkg.Classify(status),
	}
}

// unreachable, yanıt alınamayan (ağ/kurulum) hataya form listesi için
// sabit bir satır ekler. Kind ve neden korunur.
func unreachable(err error, line string) error {
	var apiErr *pkg.APIError
	if errors.As(err, &apiErr) && len(apiErr.Errors) == 0 {
		apiErr.Errors = []string{line}
	}
	return err
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
