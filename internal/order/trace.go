package order

import (
	"errors"

	"equipment-backend/internal/logging"

	"github.com/google/uuid"
)

// trace: oluşturma akışındaki durum geçişlerini loglar
type trace struct {
	state string
	order uuid.UUID
}

func newTrace(order uuid.UUID) *trace {
	return &trace{state: stateValidating, order: order}
}

func (t *trace) to(next string) {
	logging.Transition("order", t.order, t.state, next)
	t.state = next
}

func (t *trace) fail(err error) {
	logging.Transition("order", t.order, t.state, stateFailed+"("+err.Error()+")")
	t.state = stateFailed
}

func isKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
