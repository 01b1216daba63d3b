package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-portfolio-tracker/pkg/helpers"
	"github.com/oksasatya/go-portfolio-tracker/pkg/mailer"
	mailtpl "github.com/oksasatya/go-portfolio-tracker/pkg/mailer/templates"
)

// Disposition tells the consumer what to do with a delivery.
type Disposition int

const (
	Ack     Disposition = iota
	Drop                // nack without requeue; the message can never succeed
	Requeue             // nack with requeue; sending failed
)

func (d Disposition) String() string {
	switch d {
	case Ack:
		return "ack"
	case Drop:
		return "drop"
	case Requeue:
		return "requeue"
	}
	return "unknown"
}

// Sender delivers one rendered email. Implemented by mailer.Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// EmailProcessor turns queued email jobs into sent mail.
type EmailProcessor struct {
	Sender      Sender
	Logger      *logrus.Logger
	SendTimeout time.Duration
}

func NewEmailProcessor(sender Sender, logger *logrus.Logger) *EmailProcessor {
	return &EmailProcessor{Sender: sender, Logger: logger, SendTimeout: 15 * time.Second}
}

// Process decodes, renders and sends one job body.
func (p *EmailProcessor) Process(ctx context.Context, body []byte) Disposition {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		p.Logger.WithError(err).Warn("bad email message")
		return Drop
	}
	if job.To == "" {
		p.Logger.Warn("email message without recipient")
		return Drop
	}
	helpers.EnsureRecipientAndEmail(&job)

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			p.Logger.WithError(err).WithField("template", job.Template).Warn("render failed")
			return Drop
		}
		subject, text, html = s, t, h
	}

	sendCtx, cancel := context.WithTimeout(ctx, p.SendTimeout)
	defer cancel()
	if err := p.Sender.Send(sendCtx, job.To, subject, text, html); err != nil {
		p.Logger.WithError(err).WithField("template", job.Template).Error("send failed")
		return Requeue
	}
	p.Logger.WithField("template", job.Template).Info("email sent")
	return Ack
}
