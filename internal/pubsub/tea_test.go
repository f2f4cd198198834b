package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListenCmd_ReceivesEvent(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := broker.Subscribe(ctx)

	broker.Publish(AppendedEvent, "entry")

	event, ok := ListenCmd(ctx, ch)().(Event[string])
	require.True(t, ok, "msg should be Event[string]")
	require.Equal(t, "entry", event.Payload)
	require.Equal(t, AppendedEvent, event.Type)
}

func TestListenCmd_ContextCancelled(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	cancel()

	require.Nil(t, ListenCmd(ctx, ch)())
}

func TestListenCmd_ChannelClosed(t *testing.T) {
	broker := NewBroker[string]()
	ch := broker.Subscribe(context.Background())
	broker.Close()

	require.Nil(t, ListenCmd(context.Background(), ch)())
}

func TestContinuousListener_Listen(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener := NewContinuousListener[int](ctx, broker)

	for i := 1; i <= 3; i++ {
		broker.Publish(ChangedEvent, i)
		event, ok := listener.Listen()().(Event[int])
		require.True(t, ok)
		require.Equal(t, i, event.Payload)
		require.Equal(t, uint64(i), event.Seq)
	}
}

func TestContinuousListener_ReplaysLatestState(t *testing.T) {
	broker := NewBroker[string](WithReplay())
	defer broker.Close()
	broker.Publish(ChangedEvent, "guest")
	broker.Publish(ChangedEvent, "uid 42")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	listener := NewContinuousListener[string](ctx, broker)

	event, ok := listener.Listen()().(Event[string])
	require.True(t, ok)
	require.Equal(t, "uid 42", event.Payload)
}
