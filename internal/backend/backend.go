// Package backend selects the task backend for a configuration: the remote
// API when a base URL is configured, local storage otherwise.
package backend

import (
	"context"

	"github.com/charmbracelet/log"

	"todo/internal/backend/local"
	"todo/internal/backend/remote"
	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/storage"
)

// Mode names the selected backend.
type Mode string

const (
	ModeRemote Mode = "remote"
	ModeLocal  Mode = "local"
)

// ModeFor returns the mode a config selects.
func ModeFor(cfg *config.Config) Mode {
	if cfg.BackendEnabled() {
		return ModeRemote
	}
	return ModeLocal
}

// Backend is an opened service plus the resources it holds.
type Backend struct {
	service.Service
	Mode Mode

	closer func() error
}

// Close releases the backend's storage, if any.
func (b *Backend) Close() error {
	if b == nil || b.closer == nil {
		return nil
	}
	return b.closer()
}

// Open builds the backend for cfg. The choice is made once; there is no
// switching between modes afterwards.
//
// In local mode a database that cannot be opened degrades to in-memory
// storage with a warning instead of failing.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Backend, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	mode := ModeFor(cfg)
	logger.Debug("backend selected", "mode", mode)

	if mode == ModeRemote {
		c, err := remote.New(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{Service: c, Mode: mode}, nil
	}

	var kv storage.KV
	path := cfg.DatabasePath()
	bolt, err := storage.OpenBolt(path)
	if err != nil {
		logger.Warn("local storage unavailable, changes will not persist", "path", path, "err", err)
		kv = storage.NewMemoryStore()
	} else {
		kv = bolt
	}

	svc := local.New(kv, local.WithLogger(logger))
	return &Backend{Service: svc, Mode: mode, closer: kv.Close}, nil
}
