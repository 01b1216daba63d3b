package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-portfolio-tracker/internal/domain/repository"
)

const PriceWarmerJob = "price-warmer"

// WarmPrices fetches a quote for every symbol any user holds. Run against a
// caching source, this keeps a recent fallback quote for each holding.
// Per-symbol failures are logged and skipped.
func WarmPrices(portfolio repo.PortfolioRepository, source repo.PriceSource, perQuote time.Duration, logger *logrus.Logger) TaskFn {
	return func(ctx context.Context) error {
		symbols, err := portfolio.DistinctSymbols(ctx)
		if err != nil {
			return fmt.Errorf("list held symbols: %w", err)
		}

		failed := 0
		for _, sym := range symbols {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			qctx, cancel := context.WithTimeout(ctx, perQuote)
			_, err := source.Price(qctx, sym)
			cancel()
			if err != nil {
				failed++
				logger.WithError(err).WithField("symbol", sym).Debug("price warm failed")
			}
		}
		logger.WithFields(logrus.Fields{"symbols": len(symbols), "failed": failed}).Info("prices warmed")
		return nil
	}
}

// ScheduleWarmer registers task on crontab (six fields, seconds first) when
// set, otherwise every interval. It reports false when neither is configured.
func (s *Scheduler) ScheduleWarmer(task TaskFn, crontab string, interval time.Duration) (bool, error) {
	switch {
	case crontab != "":
		return true, s.NewCrontabJob(PriceWarmerJob, task, crontab, false)
	case interval > 0:
		return true, s.NewIntervalJob(PriceWarmerJob, task, interval, true)
	}
	return false, nil
}
