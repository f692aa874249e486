package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew verifies level parsing and the prefix.
func TestNew(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{name: "default is info", level: "", wantInfo: true},
		{name: "debug", level: "debug", wantDebug: true, wantInfo: true},
		{name: "warn hides info", level: "warn"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger, err := New(&buf, tc.level)
			require.NoError(t, err)

			logger.Debug("debug line")
			logger.Info("info line")
			assert.Equal(t, tc.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug line")))
			assert.Equal(t, tc.wantInfo, bytes.Contains(buf.Bytes(), []byte("info line")))
			if tc.wantInfo {
				assert.Contains(t, buf.String(), Prefix)
			}
		})
	}
}

// TestNew_InvalidLevel verifies unknown levels are rejected.
func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := New(nil, "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

// TestDiscard verifies the discard logger is usable.
func TestDiscard(t *testing.T) {
	t.Parallel()

	Discard().Error("dropped")
}
