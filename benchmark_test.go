package pushbridge

import (
	"context"
	"testing"

	"github.com/Tap30/pushbridge-go/adapters"
)

type discardConsumer struct{}

func (discardConsumer) OnEvent(Event) error { return nil }

func BenchmarkDispatch(b *testing.B) {
	broker := newTestBroker(NewReadyNotifier(), &manualScheduler{})
	if err := broker.Setup(holdPreferences(false), discardConsumer{}); err != nil {
		b.Fatal(err)
	}

	payload := map[string]any{
		"id":      "1",
		"message": "hello",
		"badge":   3,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = broker.Dispatch(EventNotificationReceived, payload)
	}
}

// BenchmarkFlush measures draining a queue built up before the consumer.
func BenchmarkFlush(b *testing.B) {
	event := adapters.NewEvent(EventNotificationOpened, adapters.Object{"id": adapters.String("1")})

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		broker := newTestBroker(NewReadyNotifier(), &manualScheduler{})
		for j := 0; j < 100; j++ {
			_ = broker.DispatchEvent(event)
		}
		b.StartTimer()

		_ = broker.Setup(holdPreferences(false), discardConsumer{})
	}
}

func BenchmarkNewPayload(b *testing.B) {
	v := map[string]any{
		"notification": map[string]any{"id": "1", "title": "t", "partial": false},
		"action":       []any{"a", 1, 2.5},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = adapters.NewPayload(v)
	}
}

func BenchmarkFacadeCommand(b *testing.B) {
	push := newFakePush()
	bridge, err := NewBridge(BridgeConfig{Push: push, LoggerAdapter: adapters.NewNoOpLoggerAdapter()})
	if err != nil {
		b.Fatal(err)
	}
	defer bridge.Dispose()
	facade, _ := NewFacade(FacadeConfig{Transport: bridge.Transport()})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = facade.AllowedUI(ctx)
	}
}

func BenchmarkQueueEnqueue(b *testing.B) {
	queue := NewQueue()
	event := testEvent(EventNotificationReceived)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		queue.Enqueue(event)
	}
}

func BenchmarkQueueDequeue(b *testing.B) {
	queue := NewQueue()
	event := testEvent(EventNotificationReceived)
	for i := 0; i < b.N; i++ {
		queue.Enqueue(event)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = queue.Dequeue()
	}
}
