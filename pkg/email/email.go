// Package email, iletişim formu mesajlarını iletmek için soyutlama katmanı sağlar.
//
// ContactSender interface'i ile gönderim detayları soyutlanır.
// Şu anki implementasyon Resend API kullanır; RESEND_API_KEY tanımlı değilse
// services katmanı sender olmadan çalışır ve form "yapılandırılmamış" hatası döner.
package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v3"
)

// ContactMessage, iletişim formundan gelen tek bir mesaj.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ContactSender, iletişim mesajı gönderimi için interface.
type ContactSender interface {
	SendContact(ctx context.Context, msg ContactMessage) error
}

// resendSender, Resend API ile gönderen ContactSender implementasyonu.
type resendSender struct {
	client    *resend.Client
	fromEmail string // Resend'de doğrulanmış domain altında olmalı
	toEmail   string // Mesajların düştüğü destek kutusu
}

// NewResendSender, Resend API client'ı ile yeni bir ContactSender oluşturur.
func NewResendSender(apiKey, fromEmail, toEmail string) ContactSender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		toEmail:   toEmail,
	}
}

// SendContact, mesajı destek adresine iletir.
// Reply-To gönderenin adresidir; destek ekibi doğrudan yanıtlayabilir.
func (s *resendSender) SendContact(ctx context.Context, msg ContactMessage) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Kısalt <%s>", s.fromEmail),
		To:      []string{s.toEmail},
		ReplyTo: msg.Email,
		Subject: "[İletişim] " + msg.Subject,
		Html:    renderContactHTML(msg),
		Text:    renderContactText(msg),
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send contact email: %w", err)
	}
	return nil
}

func renderContactHTML(msg ContactMessage) string {
	body := strings.ReplaceAll(html.EscapeString(msg.Message), "\n", "<br>")
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family:Arial,Helvetica,sans-serif;color:#1e293b;">
  <h2 style="margin:0 0 16px 0;">%s</h2>
  <p style="margin:0 0 8px 0;"><strong>Gönderen:</strong> %s &lt;%s&gt;</p>
  <hr style="border:none;border-top:1px solid #e2e8f0;margin:16px 0;">
  <p style="line-height:1.6;">%s</p>
</body>
</html>`,
		html.EscapeString(msg.Subject),
		html.EscapeString(msg.Name),
		html.EscapeString(msg.Email),
		body,
	)
}

func renderContactText(msg ContactMessage) string {
	return fmt.Sprintf("Gönderen: %s <%s>\nKonu: %s\n\n%s\n", msg.Name, msg.Email, msg.Subject, msg.Message)
}
