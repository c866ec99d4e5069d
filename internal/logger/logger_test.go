package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type logEntry map[string]any

func TestLoggerInfoWithFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log = log.WithFields(map[string]any{"challenge": "challenge-01-aws-only", "step": "init"})
	log.Info("starting deployment")

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "starting deployment", entry["message"])
	require.Equal(t, "challenge-01-aws-only", entry["challenge"])
	require.Equal(t, "init", entry["step"])
	require.Equal(t, "info", entry["level"])
}

func TestLoggerDebugRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log.Debug("this should not appear")
	require.Equal(t, "", strings.TrimSpace(buf.String()))
}

func TestLoggerErrorIncludesContext(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "debug", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log = log.WithFields(map[string]any{"challenge": "challenge-02-azure-only"})
	log.Error(errors.New("boom"), "apply failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry logEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "apply failed", entry["message"])
	require.Equal(t, "challenge-02-azure-only", entry["challenge"])
	require.Equal(t, "boom", entry["error"])
}

func TestLoggerMirrorsEntriesToLogFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", Writer: buf, LogDir: dir})
	require.NoError(t, err)

	log.Info("recorded")

	data, err := os.ReadFile(filepath.Join(dir, "ctf-manager.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), "recorded")
	require.Contains(t, buf.String(), "recorded")
}
