// Package mailer delivers transactional email over SMTP. Delivery is
// best-effort everywhere it is used: a failed send never fails the request
// that triggered it, because the primary operation (token issuance) already
// succeeded by the time mail goes out.
package mailer

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/skillforge/quest-backend/internal/config"
)

// Sender delivers one message to one recipient. Send returns (false, nil)
// when the mailer is not configured, (true, nil) on successful handoff to
// the SMTP server, and (false, err) when delivery was attempted and failed.
type Sender interface {
	Send(to, subject, textBody, htmlBody string) (bool, error)
}

// SMTPSender implements Sender against a real SMTP server.
type SMTPSender struct {
	cfg config.SMTPConfig
}

func New(cfg config.SMTPConfig) *SMTPSender { return &SMTPSender{cfg: cfg} }

// Send builds a multipart/alternative message with text and HTML parts and
// submits it. With incomplete configuration it reports not-sent without an
// error so callers can surface email_sent=false.
func (m *SMTPSender) Send(to, subject, textBody, htmlBody string) (bool, error) {
	c := m.cfg
	if c.Host == "" || c.User == "" || c.Pass == "" || c.From == "" {
		return false, nil
	}
	msg := buildMessage(c.From, to, subject, textBody, htmlBody)
	addr := net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
	auth := smtp.PlainAuth("", c.User, c.Pass, c.Host)

	if c.UseSSL {
		if err := sendTLS(addr, c.Host, auth, c.From, to, msg); err != nil {
			return false, err
		}
		return true, nil
	}
	// Plain connection with opportunistic STARTTLS, matching how most
	// providers expose port 587.
	if err := smtp.SendMail(addr, auth, c.From, []string{to}, msg); err != nil {
		return false, err
	}
	return true, nil
}

// sendTLS speaks SMTP over an implicit-TLS connection (port 465 style).
func sendTLS(addr, host string, auth smtp.Auth, from, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	cl, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer cl.Close()
	if err := cl.Auth(auth); err != nil {
		return err
	}
	if err := cl.Mail(from); err != nil {
		return err
	}
	if err := cl.Rcpt(to); err != nil {
		return err
	}
	w, err := cl.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return cl.Quit()
}

func buildMessage(from, to, subject, textBody, htmlBody string) []byte {
	const boundary = "quest-alt-boundary"
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, textBody)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, htmlBody)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
