package adapters

import "go.uber.org/zap"

// ZapLoggerAdapter forwards log lines to a zap logger.
type ZapLoggerAdapter struct {
	logger *zap.SugaredLogger
}

var _ LoggerAdapter = (*ZapLoggerAdapter)(nil)

// NewZapLoggerAdapter wraps logger. A nil logger behaves like zap.NewNop().
func NewZapLoggerAdapter(logger *zap.Logger) *ZapLoggerAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLoggerAdapter{
		logger: logger.Named("pushbridge").Sugar(),
	}
}

func (z *ZapLoggerAdapter) Debug(message string, args ...any) {
	z.logger.Debugf(message, args...)
}

func (z *ZapLoggerAdapter) Info(message string, args ...any) {
	z.logger.Infof(message, args...)
}

func (z *ZapLoggerAdapter) Warn(message string, args ...any) {
	z.logger.Warnf(message, args...)
}

func (z *ZapLoggerAdapter) Error(message string, args ...any) {
	z.logger.Errorf(message, args...)
}
