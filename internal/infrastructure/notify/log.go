package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/daniellescalera/user-management/internal/domain/entity"
)

// LogNotifier records that a notification would have been sent. Used when MAIL_SEND_ENABLED=false.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendVerificationEmail(_ context.Context, u *entity.User, _ string) error {
	n.logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).
		Info("mail disabled; verification email not sent")
	return nil
}
