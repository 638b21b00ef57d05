package dev

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codecgen-platform/codecgen/internal/config"
)

// debounceWindow coalesces editor save bursts into one regeneration.
const debounceWindow = 300 * time.Millisecond

// Regenerator recompiles the project's schemas.
type Regenerator interface {
	Execute(ctx context.Context) error
}

// Server runs an initial generation, then regenerates whenever a watched
// schema file changes.
type Server struct {
	cfg    *config.Config
	root   string
	regen  Regenerator
	logger zerolog.Logger

	// debounce is overridable in tests
	debounce time.Duration
}

// NewServer creates a new watch-mode server
func NewServer(cfg *config.Config, projectRoot string, regen Regenerator) *Server {
	return &Server{
		cfg:      cfg,
		root:     projectRoot,
		regen:    regen,
		logger:   log.With().Str("component", "dev").Logger(),
		debounce: debounceWindow,
	}
}

// Start blocks until the context is cancelled or the watcher fails.
func (s *Server) Start(ctx context.Context) error {
	if err := s.regenerate(ctx); err != nil {
		// Keep watching; a broken schema is the normal case mid-edit.
		s.logger.Error().Err(err).Msg("initial generation failed")
	}

	changed := make(chan string, 16)
	watcher, err := NewFileWatcher(s.cfg.Dev.Watch, s.cfg.Dev.Exclude, func(path string, op fsnotify.Op) {
		if op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
			select {
			case changed <- path:
			default:
			}
		}
	})
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.AddDirectory(s.root); err != nil {
		return err
	}

	go func() {
		var timer *time.Timer
		var pending bool
		fire := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				return
			case path := <-changed:
				s.logger.Debug().Str("path", path).Msg("schema changed")
				if timer != nil {
					timer.Stop()
				}
				pending = true
				timer = time.AfterFunc(s.debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			case <-fire:
				if !pending {
					continue
				}
				pending = false
				if err := s.regenerate(ctx); err != nil {
					s.logger.Error().Err(err).Msg("regeneration failed")
				}
			}
		}
	}()

	return watcher.Start(ctx)
}

func (s *Server) regenerate(ctx context.Context) error {
	start := time.Now()
	if err := s.regen.Execute(ctx); err != nil {
		return err
	}
	s.logger.Info().Dur("took", time.Since(start)).Msg("codecs regenerated")
	return nil
}
