package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/qod-service/internal/domain"
	"github.com/jsamuelsen/qod-service/internal/platform/logging"
)

const instrumentationName = "github.com/jsamuelsen/qod-service/internal/app"

// Step names one phase of an Operation.
type Step string

const (
	StepValidate Step = "validate"
	StepPerform  Step = "perform"
	StepVerify   Step = "verify"
	StepArchive  Step = "archive"
	StepRespond  Step = "respond"
)

// StepError records the step an Operation failed in. It unwraps to the
// step's error so domain kinds survive.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return string(e.Step) + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep reports the step err came from, if it came from Execute.
func FailedStep(err error) (Step, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, true
	}

	return "", false
}

// Operation is a unit of work split into ordered steps. Nothing is stored
// until Archive, which only sees a Verified value, so an upstream that
// returns junk never leaves partial rows. Nil steps are skipped.
type Operation[I, P, V, O any] struct {
	Name string

	Validate func(ctx context.Context, input I) error
	Perform  func(ctx context.Context, input I) (P, error)
	Verify   func(ctx context.Context, input I, performed P) (V, error)
	Archive  func(ctx context.Context, input I, verified V) error
	Respond  func(ctx context.Context, input I, verified V) (O, error)
}

// Executor runs Operations, one trace span and log scope per run.
type Executor struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// NewExecutor falls back to slog.Default when logger is nil.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger, tracer: otel.Tracer(instrumentationName)}
}

// Execute runs op for input. A failure is returned as a *StepError.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	logger := exec.logger
	if logging.HasLogger(ctx) {
		logger = logging.FromContext(ctx)
	}
	logger = logger.With(slog.String("operation", op.Name))

	ctx, span := exec.tracer.Start(ctx, "app."+op.Name)
	defer span.End()

	start := time.Now()

	out, err := op.run(ctx, logger, input)
	if err != nil {
		if step, ok := FailedStep(err); ok {
			span.SetAttributes(attribute.String("app.step", string(step)))
		}
		span.SetStatus(codes.Error, err.Error())

		return out, err
	}

	logger.DebugContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return out, nil
}

func (op Operation[I, P, V, O]) run(ctx context.Context, logger *slog.Logger, input I) (O, error) {
	var (
		zero      O
		performed P
		verified  V
		err       error
	)

	if op.Validate != nil {
		if err = op.Validate(ctx, input); err != nil {
			return zero, stepFailed(ctx, logger, StepValidate, err)
		}
	}

	if op.Perform != nil {
		if performed, err = op.Perform(ctx, input); err != nil {
			return zero, stepFailed(ctx, logger, StepPerform, err)
		}
	}

	if op.Verify != nil {
		if verified, err = op.Verify(ctx, input, performed); err != nil {
			return zero, stepFailed(ctx, logger, StepVerify, err)
		}
	}

	if op.Archive != nil {
		if err = op.Archive(ctx, input, verified); err != nil {
			return zero, stepFailed(ctx, logger, StepArchive, err)
		}
	}

	if op.Respond == nil {
		return zero, nil
	}

	out, err := op.Respond(ctx, input, verified)
	if err != nil {
		return zero, stepFailed(ctx, logger, StepRespond, err)
	}

	return out, nil
}

// stepFailed logs rejected input at warn and everything else at error.
func stepFailed(ctx context.Context, logger *slog.Logger, step Step, err error) error {
	level := slog.LevelError
	if step == StepValidate || domain.IsValidation(err) {
		level = slog.LevelWarn
	}

	logger.Log(ctx, level, "operation step failed",
		slog.String("step", string(step)),
		slog.Any("error", err),
	)

	return &StepError{Step: step, Err: err}
}
