// Package crypto — session token'larını diskte şifreli saklamak için
// AES-256-GCM şifreleme ve Argon2id anahtar türetme.
//
// SESSION_PASSPHRASE tanımlıysa access/refresh token'lar SQLite'a düz metin
// olarak değil, bu paketle şifrelenmiş olarak yazılır.
//
// Akış:
//
//	salt, _ := crypto.NewSalt()                       // DB'de bir kere saklanır
//	key := crypto.DeriveKeyFromPassphrase(pass, salt) // her açılışta türetilir
//	c, _ := crypto.NewTokenCipher(key)
//	sealed, _ := c.Seal("eyJhbGciOi...")
//	plain, _ := c.Open(sealed)
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// Argon2id parametreleri — RFC 9106'nın "düşük bellek" önerisi.
// Anahtar program başında bir kere türetildiği için maliyet kabul edilebilir.
const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024 // KiB → 64 MiB
	argonThreads uint8  = 2
	keyLength    uint32 = 32
	saltLength          = 16
)

// DeriveKey, hex-encoded string'den 32-byte AES-256 anahtarı oluşturur.
// Input tam 64 hex karakter (= 32 byte) olmalıdır.
func DeriveKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}
	if len(key) != int(keyLength) {
		return nil, fmt.Errorf("key must be exactly 32 bytes (64 hex chars), got %d bytes", len(key))
	}
	return key, nil
}

// DeriveKeyFromPassphrase, kullanıcı parolasından Argon2id ile 32-byte anahtar türetir.
// Aynı parola + aynı salt her zaman aynı anahtarı verir.
func DeriveKeyFromPassphrase(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, keyLength)
}

// NewSalt, rastgele 16-byte salt üretir.
func NewSalt() ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("salt generation: %w", err)
	}
	return salt, nil
}

// TokenCipher, tek bir anahtarla Seal/Open yapan AES-256-GCM sarmalayıcı.
// cipher.AEAD concurrent kullanım için güvenlidir.
type TokenCipher struct {
	gcm cipher.AEAD
}

// NewTokenCipher, 32-byte anahtarla yeni bir TokenCipher oluşturur.
func NewTokenCipher(key []byte) (*TokenCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}

	return &TokenCipher{gcm: gcm}, nil
}

// Seal, plaintext'i şifreler.
// Dönen string base64-encoded: nonce (12 byte) + ciphertext + auth tag.
func (c *TokenCipher) Seal(plaintext string) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce generation: %w", err)
	}

	ciphertext := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open, Seal ile şifrelenmiş base64 string'i çözer.
// Yanlış parola veya bozulmuş veri → error.
func (c *TokenCipher) Open(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	nonceSize := c.gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]

	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open (wrong passphrase or corrupted data): %w", err)
	}

	return string(plaintext), nil
}
