package helpers

import (
	"fmt"
	"strings"

	"github.com/daniellescalera/user-management/pkg/mailer"
	mailtpl "github.com/daniellescalera/user-management/pkg/mailer/templates"
)

// SubjectFor is the fallback subject for a template when rendering yields none.
func SubjectFor(template string) string {
	switch strings.ToLower(template) {
	case mailtpl.VerifyEmail:
		return "Verify your email address"
	default:
		return "Notification"
	}
}

func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}
