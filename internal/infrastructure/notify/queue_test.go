package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniellescalera/user-management/internal/domain/entity"
	"github.com/daniellescalera/user-management/pkg/helpers"
	"github.com/daniellescalera/user-management/pkg/mailer"
	mailtpl "github.com/daniellescalera/user-management/pkg/mailer/templates"
)

type fakePublisher struct {
	jobs []any
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body)
	return nil
}

func TestVerificationLink(t *testing.T) {
	assert.Equal(t, "http://app.test/verify-email/u-1/tok", VerificationLink("http://app.test/verify-email/", "u-1", "tok"))
	assert.Equal(t, "http://app.test/verify-email/u-1/a%2Fb", VerificationLink("http://app.test/verify-email", "u-1", "a/b"))
}

func TestQueueNotifier_EnqueuesVerifyJob(t *testing.T) {
	pub := &fakePublisher{}
	n := NewQueueNotifier(pub, mailtpl.Branding{AppName: "Users"}, "http://app.test/verify-email")

	u := &entity.User{ID: "u-1", Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"}
	require.NoError(t, n.SendVerificationEmail(context.Background(), u, "tok"))

	require.Len(t, pub.jobs, 1)
	job, ok := pub.jobs[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", job.To)
	assert.Equal(t, mailtpl.VerifyEmail, job.Template)
	assert.Equal(t, "Jane Doe", job.Data["Name"])
	assert.Equal(t, "http://app.test/verify-email/u-1/tok", job.Data["VerifyURL"])
	assert.Equal(t, "Users", job.Data["AppName"])
}

func TestQueueNotifier_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}
	n := NewQueueNotifier(pub, mailtpl.Branding{}, "http://app.test/verify-email")

	err := n.SendVerificationEmail(context.Background(), &entity.User{ID: "u-1", Nickname: "jane"}, "tok")
	assert.ErrorContains(t, err, "channel closed")
}

func TestLogNotifier_NeverFails(t *testing.T) {
	n := NewLogNotifier(helpers.NewNopLogger())
	assert.NoError(t, n.SendVerificationEmail(context.Background(), &entity.User{ID: "u-1"}, "tok"))
}
