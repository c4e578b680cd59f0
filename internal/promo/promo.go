// Package promo mails promotion codes to repeat customers.
package promo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pandapos/internal/models"
	"pandapos/internal/store"
)

var (
	ErrUnknownPromotion  = errors.New("unknown promotion")
	ErrPromotionInactive = errors.New("promotion is inactive or expired")
)

// Message is one promotional email
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Copywriter drafts the email text for a customer
type Copywriter interface {
	Draft(ctx context.Context, promo *models.Promotion, customer store.Customer) (subject, body string, err error)
}

// Mailer delivers a message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Source is the data the trigger reads and writes
type Source interface {
	PromotionByCode(ctx context.Context, code string) (*models.Promotion, error)
	PromoCandidates(ctx context.Context, promotionID uint, minOrders int) ([]store.Customer, error)
	RecordPromoDelivery(ctx context.Context, promotionID uint, email string, at time.Time) error
}

// Trigger sends a promotion to every eligible customer
type Trigger struct {
	source Source
	writer Copywriter
	mailer Mailer
	from   string
	logger *slog.Logger
	now    func() time.Time

	// OnSent is called with the number of emails sent by each run
	OnSent func(n int)
}

// NewTrigger creates a promo trigger
func NewTrigger(source Source, writer Copywriter, mailer Mailer, from string, logger *slog.Logger) *Trigger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trigger{
		source: source,
		writer: writer,
		mailer: mailer,
		from:   from,
		logger: logger,
		now:    time.Now,
	}
}

// Result summarizes one trigger run
type Result struct {
	Code   string   `json:"code"`
	Sent   int      `json:"sent"`
	Failed []string `json:"failed,omitempty"`
}

// Send mails the promotion to customers with at least MinOrders orders who
// have not received it. A failed delivery is reported and retried on the
// next run; it does not stop the others.
func (t *Trigger) Send(ctx context.Context, code string) (Result, error) {
	res := Result{Code: code}

	promo, err := t.source.PromotionByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return res, fmt.Errorf("%w: %s", ErrUnknownPromotion, code)
		}
		return res, err
	}
	res.Code = promo.Code
	if !promo.Usable(t.now()) {
		return res, fmt.Errorf("%w: %s", ErrPromotionInactive, promo.Code)
	}

	minOrders := promo.MinOrders
	if minOrders < 1 {
		minOrders = 1
	}
	customers, err := t.source.PromoCandidates(ctx, promo.ID, minOrders)
	if err != nil {
		return res, err
	}

	for _, customer := range customers {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		subject, body, err := t.writer.Draft(ctx, promo, customer)
		if err != nil {
			res.Failed = append(res.Failed, customer.Email)
			t.logger.Warn("failed to draft promo email", "promo", promo.Code, "to", customer.Email, "error", err)
			continue
		}

		msg := Message{From: t.from, To: customer.Email, Subject: subject, Body: body}
		if err := t.mailer.Send(ctx, msg); err != nil {
			res.Failed = append(res.Failed, customer.Email)
			t.logger.Warn("failed to send promo email", "promo", promo.Code, "to", customer.Email, "error", err)
			continue
		}
		if err := t.source.RecordPromoDelivery(ctx, promo.ID, customer.Email, t.now()); err != nil {
			return res, fmt.Errorf("failed to record delivery to %s: %w", customer.Email, err)
		}
		res.Sent++
	}

	t.logger.Info("promo emails sent", "promo", promo.Code, "sent", res.Sent, "failed", len(res.Failed))
	if t.OnSent != nil && res.Sent > 0 {
		t.OnSent(res.Sent)
	}
	return res, nil
}

// LogMailer writes every message to the log instead of delivering it
type LogMailer struct {
	Logger *slog.Logger
}

// Send logs the message
func (m LogMailer) Send(_ context.Context, msg Message) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("promo email", "from", msg.From, "to", msg.To, "subject", msg.Subject, "bytes", len(msg.Body))
	return nil
}
