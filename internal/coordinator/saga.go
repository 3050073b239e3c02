package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/bizops-dashboard/internal/coordinator/sagalog"
)

const tracerName = "github.com/jcmexdev/bizops-dashboard/internal/coordinator"

// Step represents a single unit of work in the Saga.
// Each step must have a compensating action to undo its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// CompensationError reports a step whose undo failed. The backend is left
// in a partial state that the FAILED saga log row describes.
type CompensationError struct {
	Step string
	Err  error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("compensation of %s failed: %v", e.Step, e.Err)
}

func (e *CompensationError) Unwrap() error { return e.Err }

// Saga runs a collection of Steps and records every transition in the
// saga log.
type Saga struct {
	header  sagalog.Header
	steps   []Step
	repo    sagalog.Repository
	logger  *slog.Logger
	tracer  trace.Tracer
	payload any
}

// NewSaga prepares a saga of the given type on one order. Each call gets a
// fresh saga id.
func NewSaga(sagaType, orderID string, repo sagalog.Repository, logger *slog.Logger, steps ...Step) *Saga {
	if repo == nil {
		repo = sagalog.NewMemoryRepository()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Saga{
		header: sagalog.Header{
			SagaID:   uuid.NewString(),
			SagaType: sagaType,
			OrderID:  orderID,
		},
		steps:  steps,
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
}

// WithPayload sets the input recorded on the STARTED row.
func (s *Saga) WithPayload(payload any) *Saga {
	s.payload = payload
	return s
}

func (s *Saga) ID() string { return s.header.SagaID }

// Start runs the saga steps sequentially.
// If a step fails, it triggers the compensation of all previously successful
// steps and returns the step error, joined with any compensation failure.
func (s *Saga) Start(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "saga "+s.header.SagaType, trace.WithAttributes(
		attribute.String("saga.id", s.header.SagaID),
		attribute.String("saga.type", s.header.SagaType),
		attribute.String("order.id", s.header.OrderID),
	))
	defer span.End()

	logger := s.logger.With("saga_id", s.header.SagaID, "saga_type", s.header.SagaType, "order_id", s.header.OrderID)
	s.record(ctx, sagalog.StatusStarted, "", s.encodePayload(), nil)

	var successfulSteps []Step

	for _, step := range s.steps {
		logger.InfoContext(ctx, "executing step", "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			stepErr := fmt.Errorf("step %s failed: %w", step.Name(), err)
			logger.WarnContext(ctx, "step failed, starting rollback", "step", step.Name(), "error", err)
			s.record(ctx, sagalog.StatusCompensating, step.Name(), "", []string{stepErr.Error()})

			if cerr := s.rollback(ctx, logger, successfulSteps); cerr != nil {
				s.record(ctx, sagalog.StatusFailed, step.Name(), "", []string{stepErr.Error(), cerr.Error()})
				span.SetStatus(codes.Error, cerr.Error())
				return errors.Join(stepErr, cerr)
			}

			s.record(ctx, sagalog.StatusCompensated, step.Name(), "", []string{stepErr.Error()})
			span.SetStatus(codes.Error, stepErr.Error())
			return stepErr
		}
		// Track successful step for potential compensation (LIFO)
		successfulSteps = append(successfulSteps, step)
		s.record(ctx, sagalog.StatusStepDone, step.Name(), "", nil)
	}

	s.record(ctx, sagalog.StatusCompleted, "", "", nil)
	logger.InfoContext(ctx, "saga completed")
	return nil
}

// rollback undoes steps in reverse order. It keeps running after the
// caller's context is cancelled.
func (s *Saga) rollback(ctx context.Context, logger *slog.Logger, steps []Step) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		logger.InfoContext(ctx, "compensating step", "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			logger.ErrorContext(ctx, "CRITICAL: failed to compensate step", "step", step.Name(), "error", err)
			errs = append(errs, &CompensationError{Step: step.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}

// record appends one row to the saga log. The log is an audit trail; a
// write failure is reported but does not change the saga outcome.
func (s *Saga) record(ctx context.Context, status sagalog.Status, step, payload string, errs []string) {
	ctx = context.WithoutCancel(ctx)
	entry := sagalog.NewEntry(ctx, s.header, status, step, payload, errs)
	if err := s.repo.Save(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to write saga log", "saga_id", s.header.SagaID, "status", string(status), "error", err)
	}
}

func (s *Saga) encodePayload() string {
	if s.payload == nil {
		return ""
	}
	b, err := json.Marshal(s.payload)
	if err != nil {
		return ""
	}
	return string(b)
}
