package apiclient

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
)

// refreshPath, token yenileme endpoint'i. Bu çağrı kendisi intercept edilmez.
const refreshPath = "/Auth/refresh-token"

var (
	errNoRefreshToken = errors.New("no refresh token stored")
	errRefreshRefused = errors.New("refresh response carried no tokens")
)

// refreshResult, park edilmiş bir isteğe iletilen refresh sonucu.
type refreshResult struct {
	token string
	err   error
}

// Refresh, oturumu hemen yeniler. Otomatik akışla aynı kilidi kullanır:
// zaten bir refresh sürüyorsa ona katılır, ikinci bir çağrı başlatmaz.
func (c *Client) Refresh(ctx context.Context) error {
	tokens, _ := c.store.Tokens()
	_, err := c.awaitRefresh(ctx, tokens.AccessToken)
	return err
}

// awaitRefresh, 401 alan bir istek için yeni access token'ı döner.
//
//   - Refreshing ise: istek FIFO sıraya park edilir ve sonucu bekler.
//   - Idle ise ve store'daki token staleToken'dan farklıysa: başka bir istek
//     refresh'i zaten tamamlamıştır, yeni token'la tekrar denenir.
//   - Aksi halde: bu istek lider olur ve refresh çağrısını yapar.
//
// Lider sonucu önce kendine alır, sonra park edilenleri sırayla serbest bırakır.
func (c *Client) awaitRefresh(ctx context.Context, staleToken string) (string, error) {
	c.mu.Lock()

	if c.refreshing {
		ch := make(chan refreshResult, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()

		select {
		case r := <-ch:
			return r.token, r.err
		case <-ctx.Done():
			c.abandon(ch)
			return "", ctx.Err()
		}
	}

	if tokens, ok := c.store.Tokens(); ok && tokens.AccessToken != "" && tokens.AccessToken != staleToken {
		c.mu.Unlock()
		return tokens.AccessToken, nil
	}

	c.refreshing = true
	c.mu.Unlock()

	token, err := c.runRefresh(ctx, staleToken)

	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.mu.Unlock()

	for _, w := range waiters {
		w <- refreshResult{token: token, err: err}
	}

	return token, err
}

// abandon, context'i iptal edilen isteği sıradan çıkarır. Diğerleri etkilenmez.
func (c *Client) abandon(ch chan refreshResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, w := range c.waiters {
		if w == ch {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return
		}
	}
}

// runRefresh, refresh çağrısını intercept edilmeyen send ile yapar.
//
// Önce saklı oturum yeniden okunur: başka bir process token'ları zaten
// yenilediyse refresh yapılmaz, saklı access token kullanılır.
// Başarı: success=true ve iki token da dolu → token'lar "refresh" sebebiyle kaydedilir.
// Başarısızlık: oturum "expired" sebebiyle bir kez kapatılır ve ErrSessionEnded
// saran bir hata döner.
//
// Sonuç park edilmiş tüm istekleri etkilediği için liderin context iptali
// refresh'i yarıda kesmez; süre sınırı http.Client timeout'udur.
func (c *Client) runRefresh(ctx context.Context, staleToken string) (string, error) {
	ctx = context.WithoutCancel(ctx)

	tokens, ok, err := c.store.Reload(ctx)
	if err != nil {
		log.Printf("[apiclient] failed to reload stored session, using cached tokens: %v", err)
		tokens, ok = c.store.Tokens()
	}
	if ok && tokens.AccessToken != "" && tokens.AccessToken != staleToken {
		log.Println("[apiclient] session already refreshed by another process")
		return tokens.AccessToken, nil
	}
	if !ok || tokens.RefreshToken == "" {
		return c.endSession(ctx, errNoRefreshToken)
	}

	body, err := encodeBody(tokens)
	if err != nil {
		return c.endSession(ctx, pkg.NewSetupError(err, c.Localizer(ctx)))
	}

	resp, err := c.send(ctx, Request{Method: http.MethodPost, Path: refreshPath}, body, "")
	if err != nil {
		return c.endSession(ctx, err)
	}
	if !isSuccess(resp.StatusCode) {
		return c.endSession(ctx, c.statusError(ctx, resp))
	}

	env, err := decodeEnvelope[models.Tokens](ctx, c, resp)
	if err != nil {
		return c.endSession(ctx, err)
	}
	if !env.Success || !env.Data.Complete() {
		return c.endSession(ctx, errRefreshRefused)
	}

	if err := c.store.Save(ctx, env.Data, models.ReasonRefresh); err != nil {
		return c.endSession(ctx, err)
	}

	log.Println("[apiclient] access token refreshed")
	return env.Data.AccessToken, nil
}

// endSession, başarısız refresh'ten sonra oturumu kapatır ve tüm bekleyenlere
// dönecek hatayı üretir. Bu arada başka bir process oturumu yenilediyse
// oturum korunur ve saklı access token döner.
func (c *Client) endSession(ctx context.Context, cause error) (string, error) {
	tokens, adopted, err := c.store.Expire(ctx)
	if err != nil {
		log.Printf("[apiclient] failed to clear session after refresh failure: %v", err)
	}
	if adopted && tokens.AccessToken != "" {
		log.Printf("[apiclient] token refresh failed (%v); using session refreshed by another process", cause)
		return tokens.AccessToken, nil
	}

	log.Printf("[apiclient] token refresh failed: %v", cause)
	return "", pkg.NewSessionEndedError(cause, c.Localizer(ctx))
}
