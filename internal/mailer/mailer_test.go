package mailer

import (
	"strings"
	"testing"
)

func Test_Enabled(t *testing.T) {
	t.Parallel()
	if New(&Config{}).Enabled() {
		t.Error("mailer with no credentials should be disabled")
	}
	if New(&Config{Sender: "clinic@example.com"}).Enabled() {
		t.Error("mailer with no password should be disabled")
	}
	if !New(&Config{Sender: "clinic@example.com", Password: "app-pass"}).Enabled() {
		t.Error("mailer with full credentials should be enabled")
	}
	var nilMailer *Mailer
	if nilMailer.Enabled() {
		t.Error("nil mailer should be disabled")
	}
}

func Test_New_Defaults(t *testing.T) {
	t.Parallel()
	m := New(&Config{Sender: "clinic@example.com", Password: "x"})
	if m.host != DefaultHost || m.port != DefaultPort {
		t.Errorf("defaults not applied: host=%q port=%d", m.host, m.port)
	}
}

func Test_BuildMessage(t *testing.T) {
	t.Parallel()
	msg := string(buildMessage("clinic@example.com", "omar@example.com", Details{
		Name:      "Omar Haddad",
		Service:   "Cardiology",
		Date:      "2026-09-15",
		Time:      "10:30",
		Reference: "REF-1234",
	}))

	for _, want := range []string{
		"From: clinic@example.com\r\n",
		"To: omar@example.com\r\n",
		"Subject: Booking Confirmation - REF-1234\r\n",
		"Dear Omar Haddad,",
		"Service:   Cardiology",
		"Reference: REF-1234",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	// Headers end with a blank line before the body.
	if !strings.Contains(msg, "\r\n\r\nDear") {
		t.Error("missing blank line between headers and body")
	}
}

func Test_Send_Unconfigured(t *testing.T) {
	t.Parallel()
	if err := New(&Config{}).Send("omar@example.com", Details{}); err == nil {
		t.Error("expected error from unconfigured mailer")
	}
}
