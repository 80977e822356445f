package adapters

import (
	"log"
	"os"
)

// PrintLoggerAdapter implements LoggerAdapter using standard log package
type PrintLoggerAdapter struct {
	level  LogLevel
	logger *log.Logger
}

var _ LoggerAdapter = (*PrintLoggerAdapter)(nil)

// NewPrintLoggerAdapter creates a new print logger with the specified level
func NewPrintLoggerAdapter(level LogLevel) *PrintLoggerAdapter {
	return &PrintLoggerAdapter{
		level:  level,
		logger: log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (p *PrintLoggerAdapter) shouldLog(level LogLevel) bool {
	return logLevelOrder[level] >= logLevelOrder[p.level]
}

func (p *PrintLoggerAdapter) print(level LogLevel, message string, args []any) {
	if level == LogLevelNone || !p.shouldLog(level) {
		return
	}
	p.logger.Printf("["+string(level)+"] [PushBridge] "+message, args...)
}

func (p *PrintLoggerAdapter) Debug(message string, args ...any) {
	p.print(LogLevelDebug, message, args)
}

func (p *PrintLoggerAdapter) Info(message string, args ...any) {
	p.print(LogLevelInfo, message, args)
}

func (p *PrintLoggerAdapter) Warn(message string, args ...any) {
	p.print(LogLevelWarn, message, args)
}

func (p *PrintLoggerAdapter) Error(message string, args ...any) {
	p.print(LogLevelError, message, args)
}
