package testlog

import (
	"testing"

	"github.com/danmuck/i4/internal/logging"
	"github.com/rs/zerolog"
)

// Start configures the test logging profile and returns a logger that
// writes through t.Log, so output only shows for failing or -v runs.
func Start(t *testing.T) zerolog.Logger {
	t.Helper()
	logging.ConfigureTests()
	logger := zerolog.New(zerolog.NewTestWriter(t)).With().Str("test", t.Name()).Logger()
	logger.Debug().Msg("start")
	return logger
}
