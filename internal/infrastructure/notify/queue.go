// Package notify dispatches account notifications.
package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/daniellescalera/user-management/internal/domain/entity"
	"github.com/daniellescalera/user-management/pkg/mailer"
	mailtpl "github.com/daniellescalera/user-management/pkg/mailer/templates"
)

// Publisher puts a JSON message on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueNotifier enqueues templated email jobs for the email worker.
type QueueNotifier struct {
	pub       Publisher
	branding  mailtpl.Branding
	verifyURL string
	now       func() time.Time
}

func NewQueueNotifier(pub Publisher, branding mailtpl.Branding, verifyURL string) *QueueNotifier {
	return &QueueNotifier{pub: pub, branding: branding, verifyURL: verifyURL, now: time.Now}
}

// VerificationLink is <base>/<user id>/<token>, matching GET /verify-email/:user_id/:token.
func VerificationLink(base, userID, token string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(userID) + "/" + url.PathEscape(token)
}

func (n *QueueNotifier) SendVerificationEmail(ctx context.Context, u *entity.User, token string) error {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Nickname
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.VerifyEmail,
		Data: mailtpl.NewVerifyEmailData(n.branding, name, u.Email,
			VerificationLink(n.verifyURL, u.ID, token), mailtpl.WithTime(n.now())),
	}
	if err := n.pub.PublishJSON(ctx, job); err != nil {
		return fmt.Errorf("enqueue verification email: %w", err)
	}
	return nil
}
