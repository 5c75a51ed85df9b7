// Package static, dashboard'un giriş sayfasını binary'ye gömer.
//
// Sayfa /api/session ile oturum durumunu okur, /ws üzerinden session_update
// event'lerini dinler ve oturum açıkken URL listesini gösterir. Redirect hata
// sayfasındaki "Ana Sayfaya Dön" bağlantısı buraya döner.
package static

import "embed"

// FrontendFS, dist/ dizinindeki sayfa dosyalarını içerir.
// Kullanım: fs.Sub(FrontendFS, "dist") ile alt dizine eriş.
//
//go:embed dist
var FrontendFS embed.FS
