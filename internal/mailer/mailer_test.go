package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/gomail.v2"

	"supaops/internal/config"
)

func testMailer(t *testing.T, sent *[]*gomail.Message) *Mailer {
	t.Helper()
	m, err := New(config.EmailConfig{
		Host:           "smtp.gmail.com",
		Port:           587,
		User:           "bot@example.com",
		Password:       "app-password",
		From:           "bot@example.com",
		AlertRecipient: "oncall@example.com",
	})
	require.NoError(t, err)
	m.send = func(msg *gomail.Message) error {
		*sent = append(*sent, msg)
		return nil
	}
	return m
}

func messageText(t *testing.T, msg *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(config.EmailConfig{Host: "smtp.gmail.com", Port: 587})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GMAIL_USER")
}

func TestSendHTML(t *testing.T) {
	var sent []*gomail.Message
	m := testMailer(t, &sent)

	err := m.SendHTML(context.Background(), "boss@example.com",
		"Supabase Daily Report - 2026-08-29", "<h2>Supabase Daily Report</h2>")
	require.NoError(t, err)
	require.Len(t, sent, 1)

	raw := messageText(t, sent[0])
	assert.Contains(t, raw, "From: bot@example.com")
	assert.Contains(t, raw, "To: boss@example.com")
	assert.Contains(t, raw, "Subject: Supabase Daily Report - 2026-08-29")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "Supabase Daily Report")
}

func TestSendHTMLRequiresRecipient(t *testing.T) {
	var sent []*gomail.Message
	m := testMailer(t, &sent)

	err := m.SendHTML(context.Background(), "", "subject", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPORT_RECIPIENT")
	assert.Empty(t, sent)
}

func TestSendAlert(t *testing.T) {
	var sent []*gomail.Message
	m := testMailer(t, &sent)

	require.NoError(t, m.SendAlert(context.Background(), "supaops ERROR: job failed", "job=weekly-backup"))
	require.Len(t, sent, 1)

	raw := messageText(t, sent[0])
	assert.Contains(t, raw, "To: oncall@example.com")
	assert.Contains(t, raw, "text/plain")
}

func TestSendPropagatesDialError(t *testing.T) {
	var sent []*gomail.Message
	m := testMailer(t, &sent)
	m.send = func(msg *gomail.Message) error { return errors.New("dial tcp: refused") }

	err := m.SendHTML(context.Background(), "boss@example.com", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestSendHonorsCanceledContext(t *testing.T) {
	var sent []*gomail.Message
	m := testMailer(t, &sent)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.SendHTML(ctx, "boss@example.com", "s", "b")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sent)
}
