package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerLevels(t *testing.T) {
	testCases := []struct {
		env     string
		debug   bool
		info    bool
		warning bool
	}{
		{env: "prod", debug: false, info: true, warning: true},
		{env: "test", debug: false, info: false, warning: true},
		{env: "dev", debug: true, info: true, warning: true},
	}

	for _, tc := range testCases {
		t.Run(tc.env, func(t *testing.T) {
			logger, err := NewLogger(tc.env)
			require.NoError(t, err)
			assert.Equal(t, tc.debug, logger.Core().Enabled(zap.DebugLevel))
			assert.Equal(t, tc.info, logger.Core().Enabled(zap.InfoLevel))
			assert.Equal(t, tc.warning, logger.Core().Enabled(zap.WarnLevel))
		})
	}
}

func TestNewSugar(t *testing.T) {
	sugar, err := NewSugar("test", "posts-api")
	require.NoError(t, err)
	assert.NotNil(t, sugar)
}
