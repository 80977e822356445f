package adapters

import (
	"fmt"

	"github.com/rs/zerolog"
)

// ZerologLoggerAdapter forwards log lines to a zerolog.Logger.
type ZerologLoggerAdapter struct {
	logger zerolog.Logger
}

var _ LoggerAdapter = (*ZerologLoggerAdapter)(nil)

// NewZerologLoggerAdapter wraps logger. A "component" field is added so bridge
// lines can be told apart from the host's own output.
func NewZerologLoggerAdapter(logger zerolog.Logger) *ZerologLoggerAdapter {
	return &ZerologLoggerAdapter{
		logger: logger.With().Str("component", "pushbridge").Logger(),
	}
}

func (z *ZerologLoggerAdapter) Debug(message string, args ...any) {
	z.logger.Debug().Msg(format(message, args))
}

func (z *ZerologLoggerAdapter) Info(message string, args ...any) {
	z.logger.Info().Msg(format(message, args))
}

func (z *ZerologLoggerAdapter) Warn(message string, args ...any) {
	z.logger.Warn().Msg(format(message, args))
}

func (z *ZerologLoggerAdapter) Error(message string, args ...any) {
	z.logger.Error().Msg(format(message, args))
}

func format(message string, args []any) string {
	if len(args) == 0 {
		return message
	}
	return fmt.Sprintf(message, args...)
}
