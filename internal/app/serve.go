package app

import (
	"context"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/server"
)

// Serve starts the HTTP API server and blocks until ctx is canceled or the
// listener fails.
func (a *App) Serve(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	srv := server.New(cfg.ListenAddr, a.registry,
		server.WithLogger(a.logger),
		server.WithMaxInFlight(cfg.MaxInFlight),
	)
	return srv.ListenAndServe(ctx)
}
