// Package mailer sends booking confirmation emails over SMTP with STARTTLS.
// It is built for Gmail app passwords (smtp.gmail.com:587) but works with any
// submission server that accepts PLAIN auth after STARTTLS. When no sender
// credentials are configured the mailer is disabled and Send is a no-op for
// callers that check Enabled first.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Default SMTP submission endpoint.
const (
	DefaultHost = "smtp.gmail.com"
	DefaultPort = 587
)

// Details holds the booking fields rendered into the confirmation email.
type Details struct {
	Name      string
	Service   string
	Date      string
	Time      string
	Reference string
}

// Mailer sends confirmation emails. The zero value is disabled.
type Mailer struct {
	host     string
	port     int
	sender   string
	password string
}

// Config holds the settings for constructing a Mailer.
type Config struct {
	// Host is the SMTP server hostname. Defaults to smtp.gmail.com.
	Host string
	// Port is the SMTP submission port. Defaults to 587.
	Port int
	// Sender is the sending email address.
	Sender string
	// Password is the sender's app password.
	Password string
}

// New constructs a Mailer from the given config.
func New(cfg *Config) *Mailer {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	return &Mailer{host: host, port: port, sender: cfg.Sender, password: cfg.Password}
}

// Enabled reports whether sender credentials are configured. Callers should
// treat a disabled mailer as "skip email, booking still succeeds".
func (m *Mailer) Enabled() bool {
	return m != nil && m.sender != "" && m.password != ""
}

// Send delivers a booking confirmation to the given address.
func (m *Mailer) Send(to string, d Details) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer: not configured")
	}

	msg := buildMessage(m.sender, to, d)
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.sender, m.password, m.host)

	// smtp.SendMail negotiates STARTTLS automatically when the server
	// advertises it, which port 587 servers do.
	if err := smtp.SendMail(addr, auth, m.sender, []string{to}, msg); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}

// buildMessage renders the RFC 5322 message bytes. Split out for testing.
func buildMessage(from, to string, d Details) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: Booking Confirmation - %s\r\n", d.Reference)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Dear %s,\r\n\r\n", d.Name)
	b.WriteString("Your appointment has been confirmed.\r\n\r\n")
	fmt.Fprintf(&b, "  Service:   %s\r\n", d.Service)
	fmt.Fprintf(&b, "  Date:      %s\r\n", d.Date)
	fmt.Fprintf(&b, "  Time:      %s\r\n", d.Time)
	fmt.Fprintf(&b, "  Reference: %s\r\n", d.Reference)
	b.WriteString("\r\nIf you need to change or cancel, reply to this email with your reference.\r\n")
	return []byte(b.String())
}
