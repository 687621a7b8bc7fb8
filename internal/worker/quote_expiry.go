package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type QuoteExpirer interface {
	ExpireOverdue(ctx context.Context, asOf time.Time) (int, error)
}

// QuoteExpiry periodically moves sent quotes past their validity to EXPIRED.
type QuoteExpiry struct {
	quotes  QuoteExpirer
	cron    *cron.Cron
	log     zerolog.Logger
	now     func() time.Time
	running atomic.Bool
}

func NewQuoteExpiry(quotes QuoteExpirer, schedule string, log zerolog.Logger) (*QuoteExpiry, error) {
	w := &QuoteExpiry{
		quotes: quotes,
		log:    log.With().Str("worker", "quote-expiry").Logger(),
		now:    time.Now,
	}
	w.cron = cron.New(cron.WithLogger(cronLogger{log: w.log}))
	if _, err := w.cron.AddFunc(schedule, func() { w.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid quote expiry schedule %q: %w", schedule, err)
	}
	return w, nil
}

// RunOnce expires overdue quotes. A run that overlaps a previous one is skipped.
func (w *QuoteExpiry) RunOnce(ctx context.Context) int {
	if !w.running.CompareAndSwap(false, true) {
		w.log.Warn().Msg("previous run still in progress, skipping")
		return 0
	}
	defer w.running.Store(false)

	expired, err := w.quotes.ExpireOverdue(ctx, w.now())
	if err != nil {
		w.log.Error().Err(err).Msg("failed to expire quotes")
		return 0
	}
	if expired > 0 {
		w.log.Info().Int("expired", expired).Msg("expired overdue quotes")
	}
	return expired
}

func (w *QuoteExpiry) Start() {
	w.log.Info().Msg("starting quote expiry worker")
	w.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish.
func (w *QuoteExpiry) Stop() {
	<-w.cron.Stop().Done()
	w.log.Info().Msg("quote expiry worker stopped")
}

type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
