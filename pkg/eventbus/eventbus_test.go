package eventbus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type partCreated struct {
	SKU string
}

func newTestBus() EventBus {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewEventPublisher(logger)
}

func TestPublish_DeliversToMatchingSubscriber(t *testing.T) {
	bus := newTestBus()

	var got *partCreated
	bus.Subscribe(func(e *partCreated) {
		got = e
	})

	bus.Publish(&partCreated{SKU: "BRK-1001"})

	require.NotNil(t, got)
	assert.Equal(t, "BRK-1001", got.SKU)
}

func TestPublish_SkipsNonMatchingSubscriber(t *testing.T) {
	bus := newTestBus()

	called := false
	bus.Subscribe(func(s string) {
		called = true
	})

	bus.Publish(&partCreated{SKU: "BRK-1001"})
	assert.False(t, called)
}

func TestPublish_RecoversFromPanickingHandler(t *testing.T) {
	bus := newTestBus()

	bus.Subscribe(func(e *partCreated) {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		bus.Publish(&partCreated{SKU: "BRK-1001"})
	})
}

func TestPublish_DeliversToCatchAllSubscriber(t *testing.T) {
	bus := newTestBus()

	var got interface{}
	bus.Subscribe(func(event interface{}) {
		got = event
	})

	bus.Publish(&partCreated{SKU: "BRK-1001"})

	created, ok := got.(*partCreated)
	require.True(t, ok)
	assert.Equal(t, "BRK-1001", created.SKU)
}

func TestUnsubscribe(t *testing.T) {
	bus := newTestBus()

	handler := func(e *partCreated) {}
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Unsubscribe(handler)
	assert.Equal(t, 0, bus.SubscribersCount())
}

func TestMatchSignature(t *testing.T) {
	handler := func(e *partCreated, n int) {}

	assert.True(t, MatchSignature(handler, []interface{}{&partCreated{}, 1}))
	assert.False(t, MatchSignature(handler, []interface{}{&partCreated{}}))
	assert.False(t, MatchSignature(handler, []interface{}{1, &partCreated{}}))
	assert.False(t, MatchSignature("not a func", []interface{}{1}))
}
