package pushbridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Tap30/pushbridge-go/adapters"
)

type recordingConsumer struct {
	mu     sync.Mutex
	events []Event
	// failOn makes OnEvent fail for the event with that name, once.
	failOn EventName
	failed bool
	onEvent func(Event)
}

func (c *recordingConsumer) OnEvent(event Event) error {
	c.mu.Lock()
	if c.failOn != "" && event.Name == c.failOn && !c.failed {
		c.failed = true
		c.mu.Unlock()
		return ErrTransportClosed
	}
	c.events = append(c.events, event)
	hook := c.onEvent
	c.mu.Unlock()

	if hook != nil {
		hook(event)
	}
	return nil
}

func (c *recordingConsumer) received() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func (c *recordingConsumer) names() []EventName {
	events := c.received()
	names := make([]EventName, len(events))
	for i, e := range events {
		names[i] = e.Name
	}
	return names
}

// manualScheduler only runs posted tasks when told to.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []func()
}

func (s *manualScheduler) Post(task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
}

func (s *manualScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *manualScheduler) runAll() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, task := range tasks {
		task()
	}
}

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) record(level, message string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, level+" "+fmt.Sprintf(message, args...))
}

func (l *recordingLogger) Debug(message string, args ...any) { l.record("DEBUG", message, args) }
func (l *recordingLogger) Info(message string, args ...any)  { l.record("INFO", message, args) }
func (l *recordingLogger) Warn(message string, args ...any)  { l.record("WARN", message, args) }
func (l *recordingLogger) Error(message string, args ...any) { l.record("ERROR", message, args) }

func (l *recordingLogger) contains(text string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if strings.Contains(m, text) {
			return true
		}
	}
	return false
}

type recordingMetrics struct {
	mu         sync.Mutex
	dispatched int
	delivered  int
	rejected   map[string]int
}

func (m *recordingMetrics) EventDispatched(EventName) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched++
}

func (m *recordingMetrics) EventRejected(_ EventName, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rejected == nil {
		m.rejected = make(map[string]int)
	}
	m.rejected[reason]++
}

func (m *recordingMetrics) EventDelivered(EventName) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivered++
}

func (m *recordingMetrics) QueueDepth(int) {}

var errPush = errors.New("push service unavailable")

// fakePush is a scriptable PushService.
type fakePush struct {
	mu sync.Mutex

	authorizationOptions []string
	categoryOptions      []string
	presentationOptions  []string
	remoteEnabled        bool
	allowedUI            bool
	status               PermissionStatus
	requested            PermissionStatus
	showRationale        bool
	rationale            *Rationale
	settingsOpened       int
	err                  error
}

var _ PushService = (*fakePush)(nil)

func newFakePush() *fakePush {
	return &fakePush{status: PermissionDenied, requested: PermissionGranted}
}

func (p *fakePush) SetAuthorizationOptions(_ context.Context, options []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authorizationOptions = options
	return p.err
}

func (p *fakePush) SetCategoryOptions(_ context.Context, options []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.categoryOptions = options
	return p.err
}

func (p *fakePush) SetPresentationOptions(_ context.Context, options []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.presentationOptions = options
	return p.err
}

func (p *fakePush) HasRemoteNotificationsEnabled(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remoteEnabled, p.err
}

func (p *fakePush) AllowedUI(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allowedUI, p.err
}

func (p *fakePush) EnableRemoteNotifications(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.remoteEnabled = true
	return nil
}

func (p *fakePush) DisableRemoteNotifications(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.remoteEnabled = false
	return nil
}

func (p *fakePush) CheckPermissionStatus(context.Context) (PermissionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status, p.err
}

func (p *fakePush) ShouldShowPermissionRationale(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.showRationale, p.err
}

func (p *fakePush) PresentPermissionRationale(_ context.Context, rationale Rationale) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.rationale = &rationale
	return nil
}

func (p *fakePush) RequestPermission(context.Context) (PermissionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.status = p.requested
	return p.status, nil
}

func (p *fakePush) OpenAppSettings(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.settingsOpened++
	return nil
}

// resultRecorder is a CallbackContext that keeps every result.
type resultRecorder struct {
	mu      sync.Mutex
	results []PluginResult
	err     error
}

func (r *resultRecorder) SendPluginResult(result PluginResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.results = append(r.results, result)
	return nil
}

func (r *resultRecorder) all() []PluginResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PluginResult(nil), r.results...)
}

func (r *resultRecorder) last() PluginResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.results) == 0 {
		return PluginResult{}
	}
	return r.results[len(r.results)-1]
}

func newTestBroker(ready ReadySignal, scheduler Scheduler) *EventBroker {
	broker, err := NewEventBroker(BrokerConfig{
		ReadySignal:   ready,
		Scheduler:     scheduler,
		LoggerAdapter: adapters.NewNoOpLoggerAdapter(),
	})
	if err != nil {
		panic(err)
	}
	return broker
}

func holdPreferences(hold bool) PreferencesAdapter {
	return adapters.NewMapPreferencesAdapter(map[string]any{HoldEventsUntilReadyPreference: hold})
}
