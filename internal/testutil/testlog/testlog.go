package testlog

import (
	"testing"

	"github.com/danmuck/adbtrace/internal/logging"
	"github.com/rs/zerolog/log"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	log.Info().Str("test", t.Name()).Msg("test started")
}

// Logf records a test step on the shared test logger.
func Logf(format string, args ...any) {
	log.Debug().Msgf(format, args...)
}
