// internal/app/system/mailer/mailer.go
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"
)

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	User     string // empty disables AUTH (e.g. Mailpit)
	Pass     string
	From     string
	FromName string
}

// Email is one outgoing message. At least one of TextBody and HTMLBody must
// be set; when both are, the message is multipart/alternative.
type Email struct {
	To       string
	ToName   string
	Subject  string
	TextBody string
	HTMLBody string
	// UnsubscribeURL becomes a List-Unsubscribe header when set.
	UnsubscribeURL string
	// Headers are added verbatim (e.g. X-NotifyHub-Reason).
	Headers map[string]string
}

var errNoBody = errors.New("mailer: email has no body")

// Mailer sends email over SMTP.
type Mailer struct {
	cfg Config
	log *zap.Logger
	now func() time.Time
}

// New creates a mailer.
func New(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: logger.Named("mailer"), now: time.Now}
}

// Send composes e and delivers it. The context bounds the dial and the
// whole SMTP conversation.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	msg, err := m.Compose(e)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if m.cfg.User != "" {
		if err := c.Auth(smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := c.Rcpt(e.To); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	m.log.Debug("email sent", zap.String("to", e.To), zap.String("subject", e.Subject))
	return c.Quit()
}

// Compose renders e as an RFC 5322 message.
func (m *Mailer) Compose(e Email) ([]byte, error) {
	if e.TextBody == "" && e.HTMLBody == "" {
		return nil, errNoBody
	}

	var h mail.Header
	h.SetDate(m.now())
	h.SetAddressList("From", []*mail.Address{{Name: m.cfg.FromName, Address: m.cfg.From}})
	h.SetAddressList("To", []*mail.Address{{Name: e.ToName, Address: e.To}})
	h.SetSubject(e.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("message id: %w", err)
	}
	if e.UnsubscribeURL != "" {
		h.Set("List-Unsubscribe", "<"+e.UnsubscribeURL+">")
	}
	for k, v := range e.Headers {
		h.Set(k, v)
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	tw, err := mw.CreateInline()
	if err != nil {
		return nil, err
	}
	for _, part := range []struct {
		contentType, body string
	}{
		{"text/plain", e.TextBody},
		{"text/html", e.HTMLBody},
	} {
		if part.body == "" {
			continue
		}
		var ph mail.InlineHeader
		ph.SetContentType(part.contentType, map[string]string{"charset": "utf-8"})
		pw, err := tw.CreatePart(ph)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(pw, part.body); err != nil {
			return nil, err
		}
		if err := pw.Close(); err != nil {
			return nil, err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
