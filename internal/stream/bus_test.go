package stream

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventBus_Stub(t *testing.T) {
	bus, err := NewEventBus(BusTypeStub, DefaultStubConfig())
	require.NoError(t, err)
	assert.IsType(t, &StubBus{}, bus)
}

func TestNewEventBus_UnsupportedType(t *testing.T) {
	_, err := NewEventBus(BusType("nats"), DefaultStubConfig())
	assert.ErrorIs(t, err, ErrUnsupportedBusType)
}

func TestNewBus_Factory(t *testing.T) {
	bus, err := NewBus(string(BusTypeStub), "localhost:0", 1000)
	require.NoError(t, err)
	assert.NotNil(t, bus)
}

func TestStubBus_PublishSubscribe(t *testing.T) {
	bus, err := NewEventBus(BusTypeStub, DefaultStubConfig())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))
	defer bus.Stop(ctx)

	var mu sync.Mutex
	var received *Message
	done := make(chan struct{})

	err = bus.Subscribe(ctx, TopicMarketUpdates, GroupAnalytics, func(ctx context.Context, msg *Message) error {
		mu.Lock()
		received = msg
		mu.Unlock()
		close(done)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, TopicMarketUpdates, "SOL", []byte(`{"data":{}}`)))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was never invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, received)
	assert.Equal(t, TopicMarketUpdates, received.Topic)
	assert.Equal(t, "SOL", received.Key)
}

func TestStubBus_PublishBeforeStart(t *testing.T) {
	bus, err := NewEventBus(BusTypeStub, DefaultStubConfig())
	require.NoError(t, err)

	err = bus.Publish(context.Background(), TopicAlerts, "SOL", []byte("{}"))
	assert.ErrorIs(t, err, ErrBusNotStarted)
}

func TestStubBus_Health(t *testing.T) {
	bus, err := NewEventBus(BusTypeStub, DefaultStubConfig())
	require.NoError(t, err)

	assert.False(t, bus.Health().Healthy)

	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))
	assert.True(t, bus.Health().Healthy)

	require.NoError(t, bus.Stop(ctx))
	assert.False(t, bus.Health().Healthy)
}

func TestStubBus_CreateAndDeleteTopic(t *testing.T) {
	bus, err := NewEventBus(BusTypeStub, DefaultStubConfig())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))
	defer bus.Stop(ctx)

	require.NoError(t, bus.CreateTopic(ctx, TopicConfig{Name: TopicAudit, Partitions: 1}))
	info, err := bus.GetTopicInfo(ctx, TopicAudit)
	require.NoError(t, err)
	assert.Equal(t, TopicAudit, info.Name)

	require.NoError(t, bus.DeleteTopic(ctx, TopicAudit))
	_, err = bus.GetTopicInfo(ctx, TopicAudit)
	assert.ErrorIs(t, err, ErrTopicNotFound)
}
