package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"

	"accountsvc/internal/config"
)

var ErrNotConfigured = errors.New("smtp host is not configured")

type Message struct {
	Subject string
	HTML    string
	To      string
	From    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

type SMTPMailer struct {
	cfg  config.MailConfig
	auth smtp.Auth
	send sendFunc
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		cfg:  cfg,
		auth: auth,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Send delivers msg as an HTML email. An empty From falls back to the
// configured sender address.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.cfg.Host == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = msg.From
	if e.From == "" {
		e.From = m.cfg.From
	}
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.HTML = []byte(msg.HTML)

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err := m.send(e, addr, m.auth); err != nil {
		return fmt.Errorf("smtp send to %s: %w", addr, err)
	}
	return nil
}
