package database

import (
	"context"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Step is one mutation inside a unit of work. tx is nil when no database is configured.
type Step func(ctx context.Context, tx bun.IDB) error

// UnitOfWork runs a sequence of steps inside a single transaction.
// The first failing step rolls back every step before it.
type UnitOfWork struct {
	db     *bun.DB
	tracer trace.Tracer
}

// NewUnitOfWork creates a unit of work. A nil db runs steps without a transaction,
// which is what service tests with fake repositories rely on.
func NewUnitOfWork(db *bun.DB) *UnitOfWork {
	return &UnitOfWork{
		db:     db,
		tracer: otel.Tracer("github.com/fkhayef/meetup/database"),
	}
}

// Run executes steps in order inside one transaction
func (u *UnitOfWork) Run(ctx context.Context, steps ...Step) error {
	ctx, span := u.tracer.Start(ctx, "UnitOfWork.Run", trace.WithAttributes(
		attribute.Int("uow.steps", len(steps)),
	))
	defer span.End()

	err := u.run(ctx, steps)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (u *UnitOfWork) run(ctx context.Context, steps []Step) error {
	if u.db == nil {
		for _, step := range steps {
			if err := step(ctx, nil); err != nil {
				return err
			}
		}
		return nil
	}

	return u.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, step := range steps {
			if err := step(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
}
