package config

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updates := make(chan AppConfig, 1)
	w := Watcher{Path: path, Cooldown: 10 * time.Millisecond}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Start(ctx, func(cfg AppConfig) {
			select {
			case updates <- cfg:
			default:
			}
		})
	}()

	// Give the watcher time to install before touching the file.
	time.Sleep(100 * time.Millisecond)
	modified := strings.Replace(validYAML, "refreshSec: 60", "refreshSec: 30", 1)
	require.NoError(t, os.WriteFile(path, []byte(modified), 0o644))

	select {
	case cfg := <-updates:
		assert.Equal(t, 30, cfg.Pairs["BTC-USDT"].Strategy.RefreshSec)
	case <-ctx.Done():
		t.Fatal("no reload observed")
	}

	cancel()
	<-done
}

func TestWatcher_SkipsInvalidReload(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan AppConfig, 4)
	w := Watcher{Path: path, Cooldown: 10 * time.Millisecond}
	go func() {
		_ = w.Start(ctx, func(cfg AppConfig) { updates <- cfg })
	}()

	time.Sleep(100 * time.Millisecond)
	broken := strings.Replace(validYAML, "orderSize: 0.01", "orderSize: 0", 1)
	require.NoError(t, os.WriteFile(path, []byte(broken), 0o644))

	select {
	case <-updates:
		t.Fatal("invalid config must not reach the callback")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcher_RequiresPath(t *testing.T) {
	w := Watcher{}
	assert.Error(t, w.Start(context.Background(), func(AppConfig) {}))
}
