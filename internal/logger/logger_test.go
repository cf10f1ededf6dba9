package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	l, err := New(true, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel), "debug level should be enabled")

	l, err = New(false, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel), "debug level should be disabled")
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"<html>\n  <body>Bad Gateway</body>\n</html>", 100, "<html> <body>Bad Gateway</body> </html>"},
		{"résumé text", 6, "résumé... (5 more)"},
		{"kept whole", 0, "kept whole"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Truncate(tc.in, tc.limit), tc.in)
	}
}
