package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, dir string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogger_ConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir, "info")
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	l.out, l.errOut = &out, &errOut

	l.Printf("installed %s\n", "acme/widget")
	l.Errorf("clone failed: %s", "timeout")
	l.Structured().Debug().Msg("hidden at info")
	l.Structured().Info().Str("plugin", "acme/widget").Msg("transition")
	require.NoError(t, l.Close())

	assert.Equal(t, "installed acme/widget\n", out.String())
	assert.Equal(t, "clone failed: timeout\n", errOut.String())

	lines := readLines(t, dir)
	require.Len(t, lines, 3)
	assert.Equal(t, "installed acme/widget", lines[0]["message"])
	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "acme/widget", lines[2]["plugin"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"WARN", zerolog.WarnLevel, false},
		{"verbose", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGlobal(t *testing.T) {
	assert.NotNil(t, L())

	dir := t.TempDir()
	require.NoError(t, Init(dir, "debug"))
	L().Debug().Msg("global")
	require.NoError(t, Close())

	lines := readLines(t, dir)
	require.Len(t, lines, 1)
	assert.Equal(t, "global", lines[0]["message"])
}
