package worker

import (
	"context"

	"sjsage522/cardwatch/internal/model"
	"sjsage522/cardwatch/logger"
	apperrors "sjsage522/cardwatch/pkg/errors"

	"github.com/robfig/cron/v3"
)

// cronLogger forwards cron messages to zerolog
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// Schedule runs the jobs right away and then on every tick of spec until ctx
// is done. A tick that fires while a run is still going is skipped.
func (w *Worker) Schedule(ctx context.Context, spec string, jobs []model.Job) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return apperrors.NewConfiguration("invalid SCHEDULE "+spec, err)
	}

	cl := cronLogger{log: logger.ForRun("scheduler")}
	c := cron.New(cron.WithLogger(cl))
	job := cron.NewChain(cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() {
		w.RunOnce(ctx, jobs)
	}))

	c.Schedule(schedule, job)
	c.Start()
	cl.log.Info().Str("spec", spec).Msg("scheduler started")

	first := make(chan struct{})
	go func() {
		defer close(first)
		job.Run()
	}()

	<-ctx.Done()
	<-c.Stop().Done()
	<-first
	cl.log.Info().Msg("scheduler stopped")
	return nil
}
