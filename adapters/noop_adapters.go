package adapters

// NoOpLoggerAdapter discards every log line. Tests and hosts that route
// bridge diagnostics elsewhere use it.
type NoOpLoggerAdapter struct{}

var _ LoggerAdapter = (*NoOpLoggerAdapter)(nil)

func NewNoOpLoggerAdapter() *NoOpLoggerAdapter {
	return &NoOpLoggerAdapter{}
}

func (*NoOpLoggerAdapter) Debug(string, ...any) {}
func (*NoOpLoggerAdapter) Info(string, ...any)  {}
func (*NoOpLoggerAdapter) Warn(string, ...any)  {}
func (*NoOpLoggerAdapter) Error(string, ...any) {}

// NoOpMetricsAdapter drops broker metrics. It is the default when no
// MetricsAdapter is configured.
type NoOpMetricsAdapter struct{}

var _ MetricsAdapter = (*NoOpMetricsAdapter)(nil)

func NewNoOpMetricsAdapter() *NoOpMetricsAdapter {
	return &NoOpMetricsAdapter{}
}

func (*NoOpMetricsAdapter) EventDispatched(EventName)       {}
func (*NoOpMetricsAdapter) EventRejected(EventName, string) {}
func (*NoOpMetricsAdapter) EventDelivered(EventName)        {}
func (*NoOpMetricsAdapter) QueueDepth(int)                  {}
