// Package notifier renders price reports and delivers them to the operator.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"sjsage522/cardwatch/internal/model"
	"sjsage522/cardwatch/logger"
	apperrors "sjsage522/cardwatch/pkg/errors"
)

// maxAttempts bounds delivery of one message: the first try plus one retry on timeout
const maxAttempts = 2

// Notifier reports job results to the operator
type Notifier interface {
	SendAlert(ctx context.Context, job model.Job, summary model.PriceSummary, offers []model.Offer) error
	SendDigest(ctx context.Context, digest *model.RunDigest) error
	SendChart(ctx context.Context, path string) error
}

// Dispatcher sends alerts through one channel and digests through another
type Dispatcher struct {
	alert  Channel
	digest Channel
	chatID int64
	log    *logger.Logger
}

// NewDispatcher creates a dispatcher delivering to chatID
func NewDispatcher(alert, digest Channel, chatID int64) *Dispatcher {
	return &Dispatcher{
		alert:  alert,
		digest: digest,
		chatID: chatID,
		log:    logger.ForNotifier(),
	}
}

// SendAlert reports that a job reached its target price
func (d *Dispatcher) SendAlert(ctx context.Context, job model.Job, summary model.PriceSummary, offers []model.Offer) error {
	title := AlertTitle(summary.JobID, job.ListingURL, summary.LowestOffer, summary.Target)
	body := RenderReport(title, offers, summary)

	return d.deliver(ctx, "alert", func(ctx context.Context) error {
		return d.alert.SendText(ctx, d.chatID, body)
	})
}

// SendDigest sends one report per digest entry. A failed entry does not stop the others.
func (d *Dispatcher) SendDigest(ctx context.Context, digest *model.RunDigest) error {
	var errs []error
	for _, entry := range digest.Entries() {
		body := RenderReport(DigestTitle(entry.Name, entry.Summary.Target), entry.Offers, entry.Summary)

		err := d.deliver(ctx, "digest", func(ctx context.Context) error {
			return d.digest.SendText(ctx, d.chatID, body)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", entry.Name, err))
		}
	}
	return errors.Join(errs...)
}

// SendChart sends the trend chart image
func (d *Dispatcher) SendChart(ctx context.Context, path string) error {
	return d.deliver(ctx, "chart", func(ctx context.Context) error {
		return d.digest.SendImage(ctx, d.chatID, path, ChartCaption)
	})
}

// deliver retries send once when it times out. Any other failure, or a
// second timeout, is returned as a delivery error.
func (d *Dispatcher) deliver(ctx context.Context, kind string, send func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = send(ctx)
		if err == nil {
			return nil
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
			break
		}
		d.log.Warn().Err(err).Str("kind", kind).Int("attempt", attempt).Msg("delivery timed out")
	}
	return apperrors.NewDelivery(kind, fmt.Sprintf("send %s", kind), err)
}
