package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"sjsage522/cardwatch/helpers"
	"sjsage522/cardwatch/internal"
	"sjsage522/cardwatch/internal/model"
	"sjsage522/cardwatch/logger"
	"sjsage522/cardwatch/services/chart"
	"sjsage522/cardwatch/services/history"
	"sjsage522/cardwatch/services/notifier"
	"sjsage522/cardwatch/services/publisher"

	"github.com/google/uuid"
)

// summaryEvent is published for every evaluated job
type summaryEvent struct {
	RunID     string             `json:"run_id"`
	Job       string             `json:"job"`
	URL       string             `json:"url"`
	Alert     bool               `json:"alert"`
	AlertOnly bool               `json:"alert_only"`
	Summary   model.PriceSummary `json:"summary"`
}

// Worker runs all jobs once and reports the results
type Worker struct {
	evaluator *Evaluator
	history   history.Store
	notifier  notifier.Notifier
	chart     chart.Renderer
	publisher publisher.Publisher
	logger    helpers.LoggerInterface
	newRunID  func() string
}

// NewWorker creates a new worker
func NewWorker(deps internal.Dependencies, evaluator *Evaluator) *Worker {
	return &Worker{
		evaluator: evaluator,
		history:   deps.History,
		notifier:  deps.Notifier,
		chart:     deps.Chart,
		publisher: deps.Publisher,
		logger:    deps.Logger,
		newRunID:  uuid.NewString,
	}
}

// RunOnce evaluates the jobs in order. Alerts go out as soon as a job
// reaches its target; the digest and the trend chart are sent at the end.
// A failing job is logged and left out of the digest and history.
func (w *Worker) RunOnce(ctx context.Context, jobs []model.Job) *model.RunDigest {
	runID := w.newRunID()
	log := logger.ForRun(runID)
	start := time.Now()

	log.Info().Int("jobs", len(jobs)).Msg("run started")

	digest := model.NewRunDigest()
	for _, job := range jobs {
		w.runJob(ctx, log, runID, job, digest)
	}

	w.report(ctx, digest)

	if w.publisher != nil {
		if err := w.publisher.TrimStreams(ctx); err != nil {
			w.logger.LogError("StreamTrimming", err)
		}
	}

	log.Info().
		Int("digest_entries", digest.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("run finished")
	return digest
}

// runJob evaluates one job and records its result
func (w *Worker) runJob(ctx context.Context, log *logger.Logger, runID string, job model.Job, digest *model.RunDigest) {
	summary, offers, err := w.evaluator.Evaluate(ctx, job)
	if err != nil {
		w.logger.LogError(job.Label(), err)
		return
	}

	alert := ShouldAlert(job, summary)
	log.Info().
		Str("job", summary.JobID).
		Str("lowest", summary.LowestOffer.String()).
		Str("reference", summary.Reference.String()).
		Str("target", summary.Target.StringFixed(2)).
		Bool("alert", alert).
		Msg("job evaluated")

	if alert {
		if err := w.notifier.SendAlert(ctx, job, summary, offers); err != nil {
			w.logger.LogError(summary.JobID, err)
		}
	}

	if !job.AlertOnly {
		if err := w.history.Append(model.RecordFromSummary(summary)); err != nil {
			w.logger.LogError(summary.JobID, err)
		}
		digest.Add(model.DigestEntry{Name: summary.JobID, Job: job, Offers: offers, Summary: summary})
	}

	w.publish(ctx, runID, job, summary, alert)
}

func (w *Worker) publish(ctx context.Context, runID string, job model.Job, summary model.PriceSummary, alert bool) {
	if w.publisher == nil {
		return
	}

	data, err := json.Marshal(summaryEvent{
		RunID:     runID,
		Job:       summary.JobID,
		URL:       job.ListingURL,
		Alert:     alert,
		AlertOnly: job.AlertOnly,
		Summary:   summary,
	})
	if err != nil {
		w.logger.LogError(summary.JobID, err)
		return
	}

	if err := w.publisher.Publish(ctx, "summary", data); err != nil {
		w.logger.LogError(summary.JobID, err)
	}
}

// report sends the digest and the trend chart of the whole history
func (w *Worker) report(ctx context.Context, digest *model.RunDigest) {
	if digest.Len() > 0 {
		if err := w.notifier.SendDigest(ctx, digest); err != nil {
			w.logger.LogError("Digest", err)
		}
	}

	if w.chart == nil {
		return
	}

	records, err := w.history.ReadAll()
	if err != nil {
		w.logger.LogError("Chart", err)
		return
	}

	path, err := w.chart.Render(records)
	if errors.Is(err, chart.ErrEmptyHistory) {
		w.logger.LogInfo("history is empty, no chart")
		return
	}
	if err != nil {
		w.logger.LogError("Chart", err)
		return
	}

	if err := w.notifier.SendChart(ctx, path); err != nil {
		w.logger.LogError("Chart", err)
	}
}
