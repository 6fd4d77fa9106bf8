package utils

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/cppla/blog/config"
)

// ErrStartTLSUnavailable is returned when TLS is required but the relay does not offer STARTTLS.
var ErrStartTLSUnavailable = errors.New("smtp relay does not offer STARTTLS")

// Mail is a plain-text message handed to the SMTP relay.
type Mail struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer delivers mail through a configured SMTP relay.
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	TLS      bool
	// Timeout bounds the whole SMTP conversation when ctx carries no deadline.
	Timeout time.Duration
}

// NewMailer builds a Mailer from the relay settings in cfg.
func NewMailer(cfg config.AppConfig) *Mailer {
	return &Mailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		TLS:      cfg.SMTPTLS,
		Timeout:  15 * time.Second,
	}
}

// Send delivers m. It never blocks past the context deadline or m.Timeout.
func (m *Mailer) Send(ctx context.Context, mail Mail) error {
	if m.Host == "" || m.From == "" {
		return errors.New("smtp not configured")
	}
	if mail.To == "" {
		return errors.New("missing recipient")
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(m.Timeout)
	}
	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	d := net.Dialer{Timeout: 5 * time.Second, Deadline: deadline}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if m.TLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return fmt.Errorf("%s: %w", addr, ErrStartTLSUnavailable)
		}
		if err := c.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if m.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.Username, m.Password, m.Host)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := c.Mail(m.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(mail.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := wc.Write(m.compose(mail)); err != nil {
		_ = wc.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	return c.Quit()
}

func (m *Mailer) compose(mail Mail) []byte {
	var msg strings.Builder
	writeHeader := func(k, v string) {
		msg.WriteString(k + ": " + v + "\r\n")
	}
	writeHeader("From", m.From)
	writeHeader("To", mail.To)
	if mail.ReplyTo != "" {
		writeHeader("Reply-To", mail.ReplyTo)
	}
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", mail.Subject))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", "text/plain; charset=UTF-8")
	msg.WriteString("\r\n")
	msg.WriteString(strings.ReplaceAll(mail.Body, "\n", "\r\n"))
	return []byte(msg.String())
}
