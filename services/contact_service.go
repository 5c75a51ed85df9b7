package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/pkg/email"
)

// ErrContactDisabled, RESEND_API_KEY tanımlı değilken dönen hata. ErrInternal'ı sarar.
var ErrContactDisabled = fmt.Errorf("%w: contact form is not configured", pkg.ErrInternal)

// ContactService, iletişim formu.
type ContactService interface {
	Send(ctx context.Context, req *models.ContactRequest) error
	Enabled() bool
}

type contactService struct {
	sender email.ContactSender // nil → form yapılandırılmamış
}

// NewContactService, constructor. sender nil olabilir.
func NewContactService(sender email.ContactSender) ContactService {
	return &contactService{sender: sender}
}

func (s *contactService) Enabled() bool {
	return s.sender != nil
}

// Send, formu doğrular ve mesajı iletir.
func (s *contactService) Send(ctx context.Context, req *models.ContactRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	if err := req.Validate(); err != nil {
		return err
	}

	if s.sender == nil {
		return ErrContactDisabled
	}

	err := s.sender.SendContact(ctx, email.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		log.Printf("[contact] send failed: %v", err)
		return fmt.Errorf("%w: %v", pkg.ErrInternal, err)
	}

	log.Printf("[contact] message sent (subject=%q)", req.Subject)
	return nil
}
