// Package worker consumes queued email jobs and delivers them.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/daniellescalera/user-management/pkg/helpers"
	"github.com/daniellescalera/user-management/pkg/mailer"
	mailtpl "github.com/daniellescalera/user-management/pkg/mailer/templates"
)

const defaultSendTimeout = 15 * time.Second

// Sender delivers one rendered email. *mailer.Mailgun implements it.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Outcome tells the consumer how to settle a delivery.
type Outcome int

const (
	Ack     Outcome = iota
	Drop            // nack without requeue
	Requeue         // nack with requeue
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Drop:
		return "drop"
	case Requeue:
		return "requeue"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

var errNoRecipient = errors.New("email job has no recipient")

// EmailWorker renders mailer.EmailJob messages and hands them to a Sender.
type EmailWorker struct {
	Sender      Sender
	Logger      *logrus.Logger
	SendTimeout time.Duration
}

func NewEmailWorker(sender Sender, logger *logrus.Logger) *EmailWorker {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &EmailWorker{Sender: sender, Logger: logger, SendTimeout: defaultSendTimeout}
}

// Render decodes body and produces the subject, text and html to send.
func Render(body []byte) (job mailer.EmailJob, subject, text, html string, err error) {
	if err = json.Unmarshal(body, &job); err != nil {
		return job, "", "", "", fmt.Errorf("decode job: %w", err)
	}
	if job.To == "" {
		return job, "", "", "", errNoRecipient
	}
	helpers.EnsureRecipientAndEmail(&job)

	subject, text, html = job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if subject, text, html, err = mailtpl.Render(job.Template, job.Data); err != nil {
			return job, "", "", "", fmt.Errorf("render %s: %w", job.Template, err)
		}
	}
	if subject == "" {
		subject = helpers.SubjectFor(job.Template)
	}
	return job, subject, text, html, nil
}

// Handle processes one message. Undecodable and unrenderable jobs are dropped;
// a failed send is requeued once and dropped when it fails again.
func (w *EmailWorker) Handle(ctx context.Context, body []byte, redelivered bool) Outcome {
	job, subject, text, html, err := Render(body)
	if err != nil {
		w.Logger.WithError(err).Error("bad email job")
		return Drop
	}
	log := w.Logger.WithFields(logrus.Fields{"template": job.Template, "redelivered": redelivered})

	sendCtx, cancel := context.WithTimeout(ctx, w.SendTimeout)
	defer cancel()
	if err := w.Sender.Send(sendCtx, job.To, subject, text, html); err != nil {
		if redelivered {
			log.WithError(err).Error("send failed again; dropping")
			return Drop
		}
		log.WithError(err).Warn("send failed; requeueing")
		return Requeue
	}
	log.Info("email sent")
	return Ack
}

// Run settles deliveries until ctx is done or the channel closes.
func (w *EmailWorker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			if err := settle(d, w.Handle(ctx, d.Body, d.Redelivered)); err != nil {
				w.Logger.WithError(err).Error("settle delivery")
			}
		}
	}
}

func settle(d amqp.Delivery, o Outcome) error {
	switch o {
	case Ack:
		return d.Ack(false)
	case Requeue:
		return d.Nack(false, true)
	default:
		return d.Nack(false, false)
	}
}
