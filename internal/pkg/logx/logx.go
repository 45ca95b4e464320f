/*
Package logx provides a structured logging wrapper based on zerolog.

It initializes the global logger (console output in development, JSON otherwise)
and exposes small helpers for the Debug, Info, Warn, Error and Fatal levels that
accept key/value field lists. Request-scoped loggers injected by RequestLogger
are retrieved with FromContext.
*/
package logx

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds a zerolog.Logger writing to out.
// Development loggers write human-readable console lines at Debug level;
// all other loggers write JSON at Info level.
func New(isDevelopment bool, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}

	if isDevelopment {
		return zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).Level(zerolog.DebugLevel).With().Timestamp().Caller().Logger()
	}

	return zerolog.New(out).Level(zerolog.InfoLevel).With().Timestamp().Caller().Logger()
}

// InitGlobalLogger replaces the global zerolog instance.
// Development output goes to stderr so it does not mix with CLI output on stdout.
func InitGlobalLogger(isDevelopment bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	out := io.Writer(os.Stdout)
	if isDevelopment {
		out = os.Stderr
	}

	log.Logger = New(isDevelopment, out)
}

// Logger returns a pointer to the global zerolog.Logger instance.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// FromContext returns the request-scoped logger stored by RequestLogger,
// falling back to the global logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return Logger()
}

// checkFields drops an odd-length field list instead of letting zerolog panic.
func checkFields(level string, fields []any) []any {
	if len(fields)%2 != 0 {
		Logger().Warn().
			Int("fields_count", len(fields)).
			Str("log_level", level).
			Msgf("logx %s call received an odd number of fields: %v", level, fields)
		return nil
	}
	return fields
}

// Debug records a message at Debug level.
func Debug(msg string, fields ...any) {
	fields = checkFields("Debug", fields)

	Logger().Debug().
		Fields(fields).
		CallerSkipFrame(1).
		Msg(msg)
}

// Info records a message at Info level with optional key/value fields.
func Info(msg string, fields ...any) {
	fields = checkFields("Info", fields)

	Logger().Info().
		Fields(fields).
		CallerSkipFrame(1).
		Msg(msg)
}

// Warn records a message at Warn level with optional key/value fields.
func Warn(msg string, fields ...any) {
	fields = checkFields("Warn", fields)

	Logger().Warn().
		Fields(fields).
		CallerSkipFrame(1).
		Msg(msg)
}

// Error records err and a message at Error level.
func Error(err error, msg string, fields ...any) {
	fields = checkFields("Error", fields)

	Logger().Error().
		Err(err).
		Fields(fields).
		CallerSkipFrame(1).
		Msg(msg)
}

// Fatal records err at Fatal level and exits the process.
func Fatal(err error, msg string, fields ...any) {
	fields = checkFields("Fatal", fields)

	Logger().Fatal().
		Err(err).
		Fields(fields).
		CallerSkipFrame(1).
		Msg(msg)
}
