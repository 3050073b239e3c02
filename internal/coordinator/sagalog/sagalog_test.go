package sagalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewEntryWithoutSpan(t *testing.T) {
	e := NewEntry(context.Background(), Header{SagaID: "s", SagaType: "ship_order", OrderID: "o"}, StatusStarted, "", `{"a":1}`, nil)

	assert.Equal(t, "s", e.SagaID)
	assert.Equal(t, "ship_order", e.SagaType)
	assert.Equal(t, "o", e.OrderID)
	assert.Equal(t, "[]", e.ErrorMessages)
	assert.Empty(t, e.TraceID)
	assert.Empty(t, e.SpanID)
	assert.False(t, e.UpdatedAt.IsZero())
}

func TestNewEntryCarriesTraceIDs(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "saga")
	defer span.End()

	e := NewEntry(ctx, Header{SagaID: "s"}, StatusFailed, "step", "", []string{"boom"})
	assert.Equal(t, span.SpanContext().TraceID().String(), e.TraceID)
	assert.Equal(t, span.SpanContext().SpanID().String(), e.SpanID)
	assert.Len(t, e.TraceID, 32)
	assert.JSONEq(t, `["boom"]`, e.ErrorMessages)
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.GetLatest(ctx, "s1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Save(ctx, NewEntry(ctx, Header{SagaID: "s1", OrderID: "o1"}, StatusStarted, "", "", nil)))
	require.NoError(t, repo.Save(ctx, NewEntry(ctx, Header{SagaID: "s2", OrderID: "o1"}, StatusStarted, "", "", nil)))
	require.NoError(t, repo.Save(ctx, NewEntry(ctx, Header{SagaID: "s1", OrderID: "o1"}, StatusCompleted, "", "", nil)))

	got, err := repo.GetLatest(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	got, err = repo.LatestForOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SagaID)

	assert.Len(t, repo.Entries("s1"), 2)
}
