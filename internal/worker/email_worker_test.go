package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniellescalera/user-management/pkg/mailer"
	mailtpl "github.com/daniellescalera/user-management/pkg/mailer/templates"
)

type sent struct{ to, subject, text, html string }

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []sent
}

func (s *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sent{to, subject, text, html})
	return nil
}

// fakeAck records how each delivery tag was settled.
type fakeAck struct {
	mu      sync.Mutex
	settled map[uint64]string
}

func (a *fakeAck) record(tag uint64, how string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settled[tag] = how
	return nil
}

func (a *fakeAck) Ack(tag uint64, _ bool) error { return a.record(tag, "ack") }
func (a *fakeAck) Nack(tag uint64, _ bool, requeue bool) error {
	if requeue {
		return a.record(tag, "requeue")
	}
	return a.record(tag, "drop")
}
func (a *fakeAck) Reject(tag uint64, _ bool) error { return a.record(tag, "reject") }

func verifyJob(t *testing.T) []byte {
	t.Helper()
	job := mailer.EmailJob{
		To:       "jane@example.com",
		Template: mailtpl.VerifyEmail,
		Data: mailtpl.NewVerifyEmailData(mailtpl.Branding{AppName: "User Management"},
			"Jane", "jane@example.com", "https://app.test/verify-email/id/tok"),
	}
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestRender_Template(t *testing.T) {
	job, subject, text, html, err := Render(verifyJob(t))
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", job.Data["RecipientEmail"])
	assert.Equal(t, "Verify your email address for User Management", subject)
	assert.Contains(t, text, "https://app.test/verify-email/id/tok")
	assert.Contains(t, html, "https://app.test/verify-email/id/tok")
}

func TestRender_Prerendered(t *testing.T) {
	_, subject, text, _, err := Render([]byte(`{"to":"a@example.com","text":"hello"}`))
	require.NoError(t, err)
	assert.Equal(t, "Notification", subject)
	assert.Equal(t, "hello", text)
}

func TestRender_Errors(t *testing.T) {
	_, _, _, _, err := Render([]byte(`{`))
	assert.Error(t, err)
	_, _, _, _, err = Render([]byte(`{"text":"no recipient"}`))
	assert.ErrorIs(t, err, errNoRecipient)
	_, _, _, _, err = Render([]byte(`{"to":"a@example.com","template":"missing"}`))
	assert.Error(t, err)
}

func TestHandle_Outcomes(t *testing.T) {
	body := verifyJob(t)
	tests := []struct {
		name        string
		body        []byte
		sendErr     error
		redelivered bool
		want        Outcome
	}{
		{"sent", body, nil, false, Ack},
		{"bad json", []byte("nope"), nil, false, Drop},
		{"send failure requeues", body, errors.New("mailgun down"), false, Requeue},
		{"second failure drops", body, errors.New("mailgun down"), true, Drop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSender{err: tt.sendErr}
			w := NewEmailWorker(s, nil)
			assert.Equal(t, tt.want, w.Handle(context.Background(), tt.body, tt.redelivered))
		})
	}
}

func TestRun_SettlesDeliveries(t *testing.T) {
	ack := &fakeAck{settled: map[uint64]string{}}
	s := &fakeSender{}
	w := NewEmailWorker(s, nil)

	ch := make(chan amqp.Delivery, 2)
	ch <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: verifyJob(t)}
	ch <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("garbage")}
	close(ch)

	require.NoError(t, w.Run(context.Background(), ch))
	assert.Equal(t, map[uint64]string{1: "ack", 2: "drop"}, ack.settled)
	require.Len(t, s.sent, 1)
	assert.Equal(t, "jane@example.com", s.sent[0].to)
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewEmailWorker(&fakeSender{}, nil).Run(ctx, make(chan amqp.Delivery)) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "requeue", Requeue.String())
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}
