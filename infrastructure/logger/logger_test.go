package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "quoter.log")
	errOut := filepath.Join(dir, "quoter.err")

	l, err := New(Config{
		Level:      "info",
		Format:     "json",
		Outputs:    []string{"file"},
		OutputFile: out,
		ErrorFile:  errOut,
	})
	require.NoError(t, err)

	l.Info("cycle complete", zap.String("pair", "BTC-USDT"))
	l.Error("venue unreachable")
	_ = l.Close()

	main, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(main), "cycle complete")
	assert.Contains(t, string(main), "BTC-USDT")

	// Error sink only carries error-level entries.
	errs, err := os.ReadFile(errOut)
	require.NoError(t, err)
	assert.Contains(t, string(errs), "venue unreachable")
	assert.NotContains(t, string(errs), "cycle complete")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_EmptyConfigDefaults(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)
	assert.NotNil(t, l.Logger)
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("discarded")
	assert.NoError(t, l.Close())
}
