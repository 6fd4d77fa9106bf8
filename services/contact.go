package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cppla/blog/utils"
)

// MailSender delivers a single message; *utils.Mailer implements it.
type MailSender interface {
	Send(ctx context.Context, mail utils.Mail) error
}

// ContactMessage is a contact-form submission.
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// ContactService forwards contact-form submissions to the site operator.
type ContactService struct {
	sender    MailSender
	recipient string
	timeout   time.Duration
}

// NewContactService creates a ContactService delivering to recipient.
func NewContactService(sender MailSender, recipient string) *ContactService {
	return &ContactService{sender: sender, recipient: recipient, timeout: 20 * time.Second}
}

// Send relays msg. Any failure is reported as ErrDelivery; nothing is persisted.
func (s *ContactService) Send(ctx context.Context, msg ContactMessage) error {
	if s.recipient == "" {
		return fmt.Errorf("%w: no contact recipient configured", ErrDelivery)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	mail := utils.Mail{
		To:      s.recipient,
		ReplyTo: oneLine(msg.Email),
		Subject: "New Message from " + oneLine(msg.Name),
		Body:    fmt.Sprintf("%s\n\n%s\n%s\n%s", msg.Message, msg.Name, msg.Phone, msg.Email),
	}
	if err := s.sender.Send(ctx, mail); err != nil {
		utils.Sugar.Warnw("contact message delivery failed", "error", err)
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}

// header values must not carry line breaks
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
