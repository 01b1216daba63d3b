package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-portfolio-tracker/config"
	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
	"github.com/oksasatya/go-portfolio-tracker/pkg/helpers"
	"github.com/oksasatya/go-portfolio-tracker/pkg/mailer"
	"github.com/oksasatya/go-portfolio-tracker/pkg/mailer/templates"
)

// JobPublisher puts a JSON message on the email queue. Implemented by helpers.RabbitPublisher.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Notifier queues transactional emails. All methods are best effort: failures
// are logged and never returned, and a nil Notifier is a no-op.
type Notifier struct {
	pub    JobPublisher
	cfg    *config.Config
	logger *logrus.Logger
}

func NewNotifier(pub JobPublisher, cfg *config.Config, logger *logrus.Logger) *Notifier {
	return &Notifier{pub: pub, cfg: cfg, logger: logger}
}

func (n *Notifier) enabled() bool {
	return n != nil && n.pub != nil && n.cfg != nil && n.cfg.MailSendEnabled
}

func (n *Notifier) Welcome(ctx context.Context, email string, at time.Time) {
	if !n.enabled() {
		return
	}
	n.publish(ctx, mailer.EmailJob{
		To:       email,
		Template: templates.Welcome,
		Data:     templates.NewWelcomeData(n.cfg, email, templates.WithTime(at)),
	})
}

func (n *Notifier) TransactionReceipt(ctx context.Context, email string, tx entity.Transaction) {
	if !n.enabled() {
		return
	}
	line := templates.ReceiptLine{ID: tx.ID, Symbol: tx.Symbol, Quantity: tx.Quantity, Price: tx.Price}
	n.publish(ctx, mailer.EmailJob{
		To:       email,
		Template: templates.TransactionReceipt,
		Data:     templates.NewTransactionReceiptData(n.cfg, email, line, templates.WithTime(tx.ExecutedAt)),
	})
}

func (n *Notifier) publish(ctx context.Context, job mailer.EmailJob) {
	helpers.EnsureRecipientAndEmail(&job)

	// detached from the request so a client disconnect does not drop the job
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := n.pub.PublishJSON(c, job); err != nil {
		n.logger.WithError(err).WithFields(logrus.Fields{
			"template": job.Template,
			"to":       job.To,
		}).Warn("email job publish failed")
	}
}
