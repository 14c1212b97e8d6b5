package service

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"golang.org/x/time/rate"
)

// SMTPConfig holds the mail transport settings.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// SMTPTransport sends mail over SMTP with STARTTLS when the server offers
// it. Outbound sends are rate limited so a large claimed batch cannot flood
// the relay.
type SMTPTransport struct {
	config  SMTPConfig
	limiter *rate.Limiter
}

// NewSMTPTransport creates an SMTP transport. A nil limiter disables rate
// limiting.
func NewSMTPTransport(config SMTPConfig, limiter *rate.Limiter) *SMTPTransport {
	return &SMTPTransport{config: config, limiter: limiter}
}

// Configured reports whether a relay host is set.
func (t *SMTPTransport) Configured() bool {
	return t.config.Host != ""
}

// Send delivers one message. The dial honors ctx so a hung relay cannot
// stall the worker past its delivery timeout.
func (t *SMTPTransport) Send(ctx context.Context, mail Mail) error {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	addr := net.JoinHostPort(t.config.Host, fmt.Sprintf("%d", t.config.Port))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, t.config.Host)
	if err != nil {
		conn.Close() //nolint:errcheck
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close() //nolint:errcheck

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: t.config.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}

	if t.config.Username != "" {
		auth := smtp.PlainAuth("", t.config.Username, t.config.Password, t.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(t.config.FromAddress); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(mail.To); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(t.buildMessage(mail)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return client.Quit()
}

// buildMessage assembles the RFC 5322 message bytes.
func (t *SMTPTransport) buildMessage(mail Mail) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", t.config.FromName, t.config.FromAddress)
	fmt.Fprintf(&b, "To: %s\r\n", mail.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mail.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(mail.Text)
	b.WriteString("\r\n")
	return []byte(b.String())
}
