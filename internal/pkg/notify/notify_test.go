package notify

import (
	"bytes"
	"context"
	"net/smtp"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PicksSender(t *testing.T) {
	log := logrus.New()

	_, isLog := New(SMTPConfig{}, log).(*LogSender)
	assert.True(t, isLog)

	_, isSMTP := New(SMTPConfig{Host: "h", Port: "25", Username: "u", Password: "p"}, log).(*SMTPSender)
	assert.True(t, isSMTP)
}

func TestSMTPSender_BuildsMessage(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "mail.local", Port: "587", Username: "hotel@mail.local", Password: "p"})

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	s.sendMail = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	}

	require.NoError(t, s.Send(context.Background(), "guest@example.com", "Order #1", "Thanks"))
	assert.Equal(t, "mail.local:587", gotAddr)
	assert.Equal(t, []string{"guest@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Order #1\r\n")
	assert.Contains(t, string(gotMsg), "From: hotel@mail.local\r\n")
}

func TestSMTPSender_RejectsHeaderInjection(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "h", Port: "25", Username: "u", Password: "p"})
	err := s.Send(context.Background(), "a@b.c\r\nBcc: x@y.z", "s", "b")
	assert.Error(t, err)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	require.NoError(t, NewLogSender(log).Send(context.Background(), "a@b.c", "hello", "body"))
	assert.Contains(t, buf.String(), "a@b.c")
}
