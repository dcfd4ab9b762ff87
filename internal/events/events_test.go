package events

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitRunsEveryHandler(t *testing.T) {
	bus := NewEventBus()
	var calls atomic.Int32

	bus.On(RolesChanged, func(data interface{}) {
		assert.Equal(t, "role-1", data)
		calls.Add(1)
	})
	bus.On(RolesChanged, func(interface{}) { calls.Add(1) })
	bus.On(UserChanged, func(interface{}) { t.Error("wrong event") })

	bus.Emit(RolesChanged, "role-1")
	bus.Wait()

	assert.Equal(t, int32(2), calls.Load())
}

func TestPanickingHandlerIsContained(t *testing.T) {
	bus := NewEventBus()
	var ran atomic.Bool

	bus.On(BookSaved, func(interface{}) { panic("boom") })
	bus.On(BookSaved, func(interface{}) { ran.Store(true) })

	bus.Emit(BookSaved, nil)
	bus.Wait()

	assert.True(t, ran.Load())
}

func TestEmitWithoutHandlers(t *testing.T) {
	bus := NewEventBus()
	bus.Emit("nothing.here", 1)
	bus.Wait()
}
