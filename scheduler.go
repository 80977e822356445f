package pushbridge

import (
	"sync"

	"github.com/Tap30/pushbridge-go/adapters"
)

// Scheduler runs tasks on a later tick of an event loop.
type Scheduler interface {
	// Post queues task and returns immediately. Tasks run in the order they
	// were posted.
	Post(task func())
}

// Looper is a Scheduler backed by a single goroutine draining a FIFO of
// tasks, the way a UI main loop does.
type Looper struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool

	wake   chan struct{}
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once
	logger LoggerAdapter
}

var _ Scheduler = (*Looper)(nil)

// NewLooper starts a looper goroutine. Call Close to stop it.
func NewLooper(logger LoggerAdapter) *Looper {
	if logger == nil {
		logger = adapters.NewPrintLoggerAdapter(adapters.LogLevelWarn)
	}
	l := &Looper{
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger,
	}
	go l.loop()
	return l
}

// Post queues task for the next iteration of the loop. Tasks posted after
// Close are dropped with a debug log.
func (l *Looper) Post(task func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.logger.Debug("Looper is closed, dropping posted task.")
		return
	}
	l.tasks = append(l.tasks, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Looper) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.wake:
			l.runPending()
		case <-l.quit:
			l.runPending()
			return
		}
	}
}

func (l *Looper) runPending() {
	for {
		l.mu.Lock()
		tasks := l.tasks
		l.tasks = nil
		l.mu.Unlock()

		if len(tasks) == 0 {
			return
		}
		for _, task := range tasks {
			l.run(task)
		}
	}
}

func (l *Looper) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Scheduled task panicked: %v", r)
		}
	}()
	task()
}

// Close runs the tasks already posted and stops the loop.
func (l *Looper) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
		close(l.quit)
	})
	<-l.done
}
