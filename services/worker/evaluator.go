package worker

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"sjsage522/cardwatch/internal/crawler"
	"sjsage522/cardwatch/internal/model"
	"sjsage522/cardwatch/internal/reference"
	"sjsage522/cardwatch/logger"
	apperrors "sjsage522/cardwatch/pkg/errors"
)

// throttle spaces successive calls by at least gap
type throttle struct {
	mu    sync.Mutex
	gap   time.Duration
	last  time.Time
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func newThrottle(gap time.Duration) *throttle {
	return &throttle{gap: gap, now: time.Now, sleep: sleepContext}
}

// do runs call once gap has passed since the previous call finished
func (t *throttle) do(ctx context.Context, call func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.last.IsZero() {
		if remaining := t.gap - t.now().Sub(t.last); remaining > 0 {
			if err := t.sleep(ctx, remaining); err != nil {
				return err
			}
		}
	}
	defer func() { t.last = t.now() }()
	return call()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Evaluator computes the price summary of one job
type Evaluator struct {
	offers    crawler.OfferSource
	reference reference.PriceSource
	topN      int
	throttle  *throttle
	now       func() time.Time
}

// NewEvaluator creates an evaluator. Reference price calls made through it
// are spaced by at least referenceDelay, across all jobs.
func NewEvaluator(offers crawler.OfferSource, ref reference.PriceSource, topN int, referenceDelay time.Duration) *Evaluator {
	return &Evaluator{
		offers:    offers,
		reference: ref,
		topN:      topN,
		throttle:  newThrottle(referenceDelay),
		now:       time.Now,
	}
}

// Evaluate fetches the offers and the reference price of a job. With a target
// country the first topN offers from that country are kept, wherever they sit
// on the page. A failed reference fetch leaves the reference price absent.
func (e *Evaluator) Evaluate(ctx context.Context, job model.Job) (model.PriceSummary, []model.Offer, error) {
	limit := e.topN
	if job.TargetCountry != "" {
		limit = math.MaxInt
	}
	offers, err := e.offers.FetchOffers(ctx, job.ListingURL, limit)
	if err != nil {
		return model.PriceSummary{}, nil, err
	}

	offers = filterCountry(offers, job.TargetCountry)
	if len(offers) > e.topN {
		offers = offers[:e.topN]
	}
	if len(offers) == 0 {
		msg := "no offers for " + job.ListingURL
		if job.TargetCountry != "" {
			msg += " from " + job.TargetCountry
		}
		return model.PriceSummary{}, nil, apperrors.NewNoOffers(e.offers.GetName(), msg)
	}

	prices := make([]model.Price, len(offers))
	for i, o := range offers {
		prices[i] = o.Price
	}

	summary := model.PriceSummary{
		JobID:       job.Name(offers),
		LowestOffer: model.MinPrice(prices...),
		Reference:   e.referencePrice(ctx, job),
		Target:      job.TargetPrice,
		Timestamp:   e.now(),
	}
	return summary, offers, nil
}

func (e *Evaluator) referencePrice(ctx context.Context, job model.Job) model.Price {
	if !job.HasReference() || e.reference == nil {
		return model.NoPrice()
	}

	price := model.NoPrice()
	err := e.throttle.do(ctx, func() error {
		var err error
		price, err = e.reference.LowestSellable(ctx, job.BlueprintID, job.Filter)
		return err
	})
	if err != nil {
		log := logger.ForSource("reference").WithField("job", job.Label())
		log.Warn().Err(err).Int64("blueprint_id", job.BlueprintID).Msg("reference price unavailable")
		return model.NoPrice()
	}
	return price
}

// filterCountry keeps the offers shipped from country; an empty country keeps all
func filterCountry(offers []model.Offer, country string) []model.Offer {
	if country == "" {
		return offers
	}
	var kept []model.Offer
	for _, o := range offers {
		if strings.EqualFold(o.Country, country) {
			kept = append(kept, o)
		}
	}
	return kept
}

// ShouldAlert reports whether the job reached its target price
func ShouldAlert(job model.Job, summary model.PriceSummary) bool {
	return job.Notify && summary.LowestOffer.AtMost(job.TargetPrice)
}
