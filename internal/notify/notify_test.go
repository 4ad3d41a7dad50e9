package notify

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingSender struct {
	mu    sync.Mutex
	sends []sentMail
	err   error
	done  chan struct{}
}

type sentMail struct {
	recipient string
	subject   string
	body      string
}

func newCapturingSender(err error) *capturingSender {
	return &capturingSender{err: err, done: make(chan struct{}, 8)}
}

func (s *capturingSender) Send(_ context.Context, recipient, subject, body string) error {
	s.mu.Lock()
	s.sends = append(s.sends, sentMail{recipient, subject, body})
	s.mu.Unlock()
	s.done <- struct{}{}
	return s.err
}

func (s *capturingSender) waitForSend(t *testing.T) sentMail {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sends)
	return s.sends[len(s.sends)-1]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Test_ConfirmationMessage(t *testing.T) {
	msg := ConfirmationMessage("alice", "https://club.example.com", "deadbeef")
	assert.Equal(t, "Confirm your registration", msg.Subject)
	assert.Contains(t, msg.Body, "alice")
	assert.Contains(t, msg.Body, "https://club.example.com/confirm?token=deadbeef")
	assert.Contains(t, msg.Body, "24 hours")
}

func Test_ResendMessage(t *testing.T) {
	msg := ResendMessage("alice", "https://club.example.com", "cafef00d")
	assert.Contains(t, msg.Body, "https://club.example.com/confirm?token=cafef00d")
}

func Test_ApprovalMessage(t *testing.T) {
	msg := ApprovalMessage("alice", "https://club.example.com")
	assert.Equal(t, "Your registration has been approved", msg.Subject)
	assert.Contains(t, msg.Body, "approved")
}

func Test_Dispatch_SendsInBackground(t *testing.T) {
	sender := newCapturingSender(nil)
	d := NewDispatcher(sender, testLogger())

	d.Dispatch("alice@example.com", Message{Subject: "hello", Body: "world"})

	sent := sender.waitForSend(t)
	assert.Equal(t, "alice@example.com", sent.recipient)
	assert.Equal(t, "hello", sent.subject)
	assert.Equal(t, "world", sent.body)
}

func Test_Dispatch_SkipsEmptyRecipient(t *testing.T) {
	sender := newCapturingSender(nil)
	d := NewDispatcher(sender, testLogger())

	d.Dispatch("", Message{Subject: "hello", Body: "world"})

	select {
	case <-sender.done:
		t.Fatal("expected no dispatch for empty recipient")
	case <-time.After(50 * time.Millisecond):
	}
}

func Test_Dispatch_SwallowsSenderErrors(t *testing.T) {
	sender := newCapturingSender(assert.AnError)
	d := NewDispatcher(sender, testLogger())

	// Must not panic or propagate anything.
	d.Dispatch("alice@example.com", Message{Subject: "hello", Body: "world"})
	sender.waitForSend(t)
}

func Test_LogSender_NeverFails(t *testing.T) {
	s := NewLogSender(testLogger())
	require.NoError(t, s.Send(context.Background(), "alice@example.com", "subject", "body"))
}
