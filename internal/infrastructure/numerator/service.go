// Package numerator allocates daily sequential document identifiers on top of
// the transaction runner, prefix registry and sequence probe.
// It implements core/numerator.Allocator.
package numerator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docserial/internal/core/apperror"
	corenumerator "docserial/internal/core/numerator"
	"docserial/internal/core/tx"
	"docserial/pkg/logger"
)

var tracer = otel.Tracer("docserial/numerator")

// Service allocates identifiers PREFIX-YYYYMMDD-SSSS.
// Safe for concurrent use; all shared state lives in the database.
type Service struct {
	runner   tx.AtomicRunner
	resolver corenumerator.PrefixResolver
	probe    corenumerator.SequenceProbe

	clock    corenumerator.Clock
	location *time.Location
	fallback FallbackGenerator
	random   corenumerator.RandomSource
	log      *logger.Logger
}

// Ensure compile-time interface compliance.
var _ corenumerator.Allocator = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for the date segment and fallback timestamps.
func WithClock(c corenumerator.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithRandom sets the source of the fallback random suffix.
func WithRandom(r corenumerator.RandomSource) Option {
	return func(s *Service) { s.random = r }
}

// WithLocation sets the time zone that decides the calendar day (default time.Local).
// A nil location keeps the default.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLogger sets the logger for degraded allocations.
// Without it the logger carried by ctx is used.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l.WithComponent("numerator") }
}

// New creates an allocator. runner is usually *postgres.TxManager.
func New(
	runner tx.AtomicRunner,
	resolver corenumerator.PrefixResolver,
	probe corenumerator.SequenceProbe,
	opts ...Option,
) *Service {
	s := &Service{
		runner:   runner,
		resolver: resolver,
		probe:    probe,
		clock:    corenumerator.SystemClock{},
		random:   corenumerator.SystemRandom{},
		location: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.fallback = NewFallbackGenerator(s.clock, s.random)
	return s
}

// AllocateByType resolves typ to its prefix inside the allocation
// transaction. Any failure, including an unknown type, yields a Degraded
// result seeded with the upper-cased type.
func (s *Service) AllocateByType(ctx context.Context, typ string, target corenumerator.Target) corenumerator.Result {
	id, err := s.allocate(ctx, target, func(ctx context.Context) (string, error) {
		return s.resolver.Resolve(ctx, typ)
	})
	if err != nil {
		return s.degrade(ctx, strings.ToUpper(typ), target, err, "type", typ)
	}
	return corenumerator.AllocatedResult(id)
}

// AllocateByPrefix uses the upper-cased prefix as scope prefix and fallback seed.
func (s *Service) AllocateByPrefix(ctx context.Context, prefix string, target corenumerator.Target) corenumerator.Result {
	upper := strings.ToUpper(prefix)
	id, err := s.allocate(ctx, target, func(context.Context) (string, error) {
		return upper, nil
	})
	if err != nil {
		return s.degrade(ctx, upper, target, err, "prefix", prefix)
	}
	return corenumerator.AllocatedResult(id)
}

// allocate runs resolve -> probe -> compute in one atomic unit.
// The date is taken per attempt so a retry across midnight lands in the new day.
func (s *Service) allocate(
	ctx context.Context,
	target corenumerator.Target,
	prefixOf func(ctx context.Context) (string, error),
) (id corenumerator.GeneratedID, err error) {
	ctx, span := tracer.Start(ctx, "numerator.allocate",
		trace.WithAttributes(
			attribute.String("target.table", target.Table),
			attribute.String("target.column", target.Column),
		))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = apperror.NewInternal(fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "allocation failed")
		}
	}()

	err = s.runner.RunAtomic(ctx, func(ctx context.Context) error {
		prefix, err := prefixOf(ctx)
		if err != nil {
			return err
		}

		scope := corenumerator.NewScopeKey(prefix, s.clock.Now().In(s.location))
		last, err := s.probe.ProbeMax(ctx, target, scope)
		if err != nil {
			return err
		}

		id = corenumerator.GeneratedID{
			Prefix: scope.Prefix,
			Date:   scope.Date,
			Serial: corenumerator.NextSerial(last),
		}
		return nil
	})
	if err != nil {
		return corenumerator.GeneratedID{}, err
	}

	span.SetAttributes(attribute.String("id", id.String()))
	return id, nil
}

func (s *Service) degrade(
	ctx context.Context,
	seed string,
	target corenumerator.Target,
	cause error,
	keysAndValues ...any,
) corenumerator.Result {
	fb := s.fallback.Generate(seed)

	kv := append([]any{
		"table", target.Table,
		"column", target.Column,
		"fallback_id", fb,
		"error", cause,
	}, keysAndValues...)
	if appErr, ok := apperror.AsAppError(cause); ok {
		kv = append(kv, "code", appErr.Code)
	}
	s.logger(ctx).Warnw("unique id generation failed, using fallback id", kv...)

	return corenumerator.DegradedResult(fb, cause)
}

func (s *Service) logger(ctx context.Context) *logger.Logger {
	if s.log != nil {
		return s.log.WithContext(ctx)
	}
	return logger.FromContext(ctx)
}
