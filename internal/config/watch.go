// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// epochDebounce coalesces bursts of filesystem events from editors that
// write a config file via rename+create (each of which would otherwise
// trigger its own reload). Adapted from the teacher's pkg/debounce pattern:
// a background goroutine holds the latest pending call and fires it once
// the delay elapses without a newer one arriving.
type epochDebounce struct {
	mu      sync.Mutex
	timer   *time.Timer
	delay   time.Duration
	pending func()
}

func newEpochDebounce(delay time.Duration) *epochDebounce {
	return &epochDebounce{delay: delay}
}

func (d *epochDebounce) submit(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *epochDebounce) fire() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Watcher watches WatchFile for live ISOFUZZ_EPOCH_MS overrides and invokes
// apply with the new duration whenever it changes. It never touches
// RandomSeed: reseeding mid-run would break the determinism property the
// scheduler promises for a fixed seed.
type Watcher struct {
	v     *viper.Viper
	debounce *epochDebounce
}

// WatchEpoch starts watching cfg.WatchFile, if set, and returns a stop
// function. apply is called with the new epoch duration whenever the file's
// epoch_ms key changes to a valid positive value. A no-op Watcher (stop does
// nothing) is returned when WatchFile is empty.
func WatchEpoch(cfg *Config, apply func(time.Duration)) (*Watcher, error) {
	if cfg.WatchFile == "" {
		return &Watcher{}, nil
	}

	v := viper.New()
	v.SetConfigFile(cfg.WatchFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "read watch file")
	}

	w := &Watcher{v: v, debounce: newEpochDebounce(100 * time.Millisecond)}

	v.OnConfigChange(func(_ fsnotify.Event) {
		w.debounce.submit(func() {
			ms := v.GetInt("epoch_ms")
			if ms <= 0 {
				log.Warn().Int("epoch_ms", ms).Msg("ignoring non-positive epoch_ms from watch file")
				return
			}
			apply(time.Duration(ms) * time.Millisecond)
		})
	})
	v.WatchConfig()

	return w, nil
}

// Stop is a no-op; viper owns the fsnotify watcher for the process lifetime
// once started, matching the teacher's config reload lifecycle (it too
// leaves WatchConfig running until process exit).
func (w *Watcher) Stop() {}
