package pushbridge

import (
	"errors"
	"net/http"
	"sync"

	"github.com/Tap30/pushbridge-go/adapters"
)

// Bridge wires an EventBroker and a Plugin around a PushService and exposes
// the transports hosts use to reach them.
type Bridge struct {
	config BridgeConfig
	broker *EventBroker
	plugin *Plugin
	ready  *ReadyNotifier
	looper *Looper

	mu       sync.Mutex
	server   *BridgeServer
	disposed bool
}

// NewBridge creates a bridge. Missing optional adapters get defaults: a
// warn-level print logger, no-op metrics, empty preferences, a Looper owned
// by the bridge and a ReadyNotifier.
func NewBridge(config BridgeConfig) (*Bridge, error) {
	if config.Push == nil {
		return nil, errors.New("Push is required")
	}
	if config.LoggerAdapter == nil {
		config.LoggerAdapter = adapters.NewPrintLoggerAdapter(adapters.LogLevelWarn)
	}
	if config.MetricsAdapter == nil {
		config.MetricsAdapter = adapters.NewNoOpMetricsAdapter()
	}
	if config.Preferences == nil {
		config.Preferences = adapters.NewMapPreferencesAdapter(nil)
	}

	b := &Bridge{}
	if config.Scheduler == nil {
		b.looper = NewLooper(config.LoggerAdapter)
		config.Scheduler = b.looper
	}
	if config.ReadySignal == nil {
		b.ready = NewReadyNotifier()
		config.ReadySignal = b.ready
	} else if notifier, ok := config.ReadySignal.(*ReadyNotifier); ok {
		b.ready = notifier
	}

	broker, err := NewEventBroker(BrokerConfig{
		ReadySignal:    config.ReadySignal,
		Scheduler:      config.Scheduler,
		LoggerAdapter:  config.LoggerAdapter,
		MetricsAdapter: config.MetricsAdapter,
	})
	if err != nil {
		b.closeLooper()
		return nil, err
	}

	plugin, err := NewPlugin(PluginConfig{
		Broker:        broker,
		Push:          config.Push,
		Preferences:   config.Preferences,
		LoggerAdapter: config.LoggerAdapter,
	})
	if err != nil {
		b.closeLooper()
		return nil, err
	}

	b.config = config
	b.broker = broker
	b.plugin = plugin
	return b, nil
}

// Dispatch forwards one native event to the broker.
func (b *Bridge) Dispatch(name EventName, payload any) error {
	return b.broker.Dispatch(name, payload)
}

// Broker returns the event broker native events are dispatched into.
func (b *Bridge) Broker() *EventBroker {
	return b.broker
}

// Plugin returns the command dispatcher behind the bridge transports.
func (b *Bridge) Plugin() *Plugin {
	return b.plugin
}

// Ready returns the notifier driving the ready gate, or nil when the bridge
// was configured with a foreign ReadySignal.
func (b *Bridge) Ready() *ReadyNotifier {
	return b.ready
}

// Transport returns an in-process transport to the plugin, suitable for a
// Facade living in the same process.
func (b *Bridge) Transport() *LocalTransport {
	return NewLocalTransport(b.plugin)
}

// Handler returns the websocket handler hosts connect to. The same handler
// is returned on every call.
func (b *Bridge) Handler() http.Handler {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.server == nil {
		b.server = NewBridgeServer(b.plugin, b.config.LoggerAdapter)
	}
	return b.server
}

// Dispose disconnects websocket hosts and stops the looper the bridge
// created. Queued events stay in the broker. Calling Dispose twice is a
// no-op.
func (b *Bridge) Dispose() error {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return nil
	}
	b.disposed = true
	server := b.server
	b.mu.Unlock()

	var err error
	if server != nil {
		err = server.Close()
	}
	b.closeLooper()
	return err
}

func (b *Bridge) closeLooper() {
	if b.looper != nil {
		b.looper.Close()
	}
}
