package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	got []OrderEvent
	err error
}

func (r *recorder) PublishOrder(_ context.Context, ev OrderEvent) error {
	r.got = append(r.got, ev)
	return r.err
}

func (r *recorder) Close() error { return nil }

func TestPublishSafeFillsTimestamp(t *testing.T) {
	r := &recorder{}
	PublishSafe(context.Background(), r, OrderEvent{Type: OrderCreated, OrderID: uuid.New()})

	if assert.Len(t, r.got, 1) {
		assert.False(t, r.got[0].OccurredAt.IsZero())
	}
}

func TestPublishSafeSwallowsErrors(t *testing.T) {
	r := &recorder{err: errors.New("broker down")}
	assert.NotPanics(t, func() {
		PublishSafe(context.Background(), r, OrderEvent{Type: OrderDeleted, OrderID: uuid.New()})
	})
	assert.NotPanics(t, func() {
		PublishSafe(context.Background(), nil, OrderEvent{Type: OrderDeleted})
	})
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.PublishOrder(context.Background(), OrderEvent{}))
	assert.NoError(t, p.Close())
}
