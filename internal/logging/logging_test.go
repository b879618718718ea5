// Package logging_test tests logger construction.
// Related: internal/logging/logging.go
// Tags: logging, zap
package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		debug     bool
		wantDebug bool
		wantWarn  bool
	}{
		"debug":   {debug: true, wantDebug: true, wantWarn: true},
		"default": {debug: false, wantDebug: false, wantWarn: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			logger, err := New(tt.debug)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebug, logger.Core().Enabled(zap.DebugLevel))
			assert.Equal(t, tt.wantWarn, logger.Core().Enabled(zap.WarnLevel))
		})
	}
}
