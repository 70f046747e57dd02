package storage

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracedSaveRepo оборачивает репозиторий спанами OpenTelemetry
type TracedSaveRepo struct {
	next    SaveRepo
	backend string
	tracer  trace.Tracer
}

// NewTracedSaveRepo оборачивает next; backend попадает в атрибуты спанов
func NewTracedSaveRepo(next SaveRepo, backend string) *TracedSaveRepo {
	return &TracedSaveRepo{
		next:    next,
		backend: backend,
		tracer:  otel.Tracer("horde-survivors/storage"),
	}
}

func (r *TracedSaveRepo) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "save."+op, trace.WithAttributes(
		attribute.String("storage.backend", r.backend),
	))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *TracedSaveRepo) Save(ctx context.Context, state SaveState) error {
	ctx, span := r.start(ctx, "Save")
	span.SetAttributes(
		attribute.Int("save.level", state.Level),
		attribute.Int("save.wave", state.CurrentWave),
	)
	err := r.next.Save(ctx, state)
	finish(span, err)
	return err
}

func (r *TracedSaveRepo) Load(ctx context.Context) (SaveState, bool, error) {
	ctx, span := r.start(ctx, "Load")
	state, found, err := r.next.Load(ctx)
	span.SetAttributes(attribute.Bool("save.found", found))
	finish(span, err)
	return state, found, err
}

func (r *TracedSaveRepo) Delete(ctx context.Context) error {
	ctx, span := r.start(ctx, "Delete")
	err := r.next.Delete(ctx)
	finish(span, err)
	return err
}

func (r *TracedSaveRepo) Close() error {
	return r.next.Close()
}
