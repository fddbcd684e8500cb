// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package trace

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/KamiliArsyad/libisofuzz/internal/config"
)

// Sink is the serialized append-only line writer described by the spec's
// Log sink component. All writes are serialized by one mutex, which also
// guards init/shutdown transitions.
type Sink struct {
	mu     sync.Mutex
	dest   io.Writer
	closer io.Closer
}

// New opens the sink's destination per cfg. Empty OutFile means stdout.
// When rotation is configured, OutFile is handed to lumberjack, which opens
// it lazily on the first write; an open failure on that path is not
// redirected to stderr. Otherwise OutFile is opened for append directly; on
// failure the sink falls back to stderr and logs one warning.
func New(cfg *config.Config) *Sink {
	s := &Sink{}

	if cfg.OutFile == "" {
		s.dest = os.Stdout
		return s
	}

	if cfg.RotateMaxSizeMB > 0 {
		lj := &lumberjack.Logger{
			Filename:   cfg.OutFile,
			MaxSize:    cfg.RotateMaxSizeMB,
			MaxBackups: cfg.RotateMaxBackups,
			Compress:   cfg.RotateCompress,
		}
		s.dest = lj
		s.closer = lj
		return s
	}

	f, err := os.OpenFile(cfg.OutFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.OutFile).
			Msg("libisofuzz: could not open OUT_FILE for append, falling back to stderr")
		os.Stderr.WriteString("libisofuzz: could not open OUT_FILE for append, writing trace to stderr\n")
		s.dest = os.Stderr
		return s
	}

	s.dest = f
	s.closer = f
	return s
}

// WriteLine appends text followed by a newline, atomically with respect to
// concurrent callers. Write failures are swallowed: trace loss is
// preferable to aborting the host DBMS.
func (s *Sink) WriteLine(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dest == nil {
		return
	}
	_, _ = io.WriteString(s.dest, text)
	_, _ = io.WriteString(s.dest, "\n")
}

// Close flushes and closes any opened file and resets the destination. Safe
// to call on a Sink whose destination is stdout/stderr (no-op close).
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closer != nil {
		_ = s.closer.Close()
	}
	s.dest = nil
	s.closer = nil
}
