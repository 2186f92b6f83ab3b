package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"github.com/fkhayef/meetup/pkg/metrics"
)

// QueryHook records query durations and logs failed or slow queries
type QueryHook struct {
	slow time.Duration
}

var _ bun.QueryHook = (*QueryHook)(nil)

// NewQueryHook creates a hook that warns about queries slower than slow
func NewQueryHook(slow time.Duration) *QueryHook {
	return &QueryHook{slow: slow}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	duration := time.Since(event.StartTime)
	failed := event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows)

	metrics.RecordQuery(event.Operation(), duration, !failed)

	switch {
	case failed:
		logrus.WithFields(logrus.Fields{
			"operation":   event.Operation(),
			"duration_ms": duration.Milliseconds(),
			"query":       event.Query,
		}).WithError(event.Err).Warn("query failed")
	case h.slow > 0 && duration > h.slow:
		logrus.WithFields(logrus.Fields{
			"operation":   event.Operation(),
			"duration_ms": duration.Milliseconds(),
			"query":       event.Query,
		}).Warn("slow query")
	}
}
