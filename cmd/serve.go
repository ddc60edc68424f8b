package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/api"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/query"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/realtime"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/watch"
)

const shutdownTimeout = 5 * time.Second

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the search API and event stream",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Address to listen on (default: listen from config)",
			},
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "Keep recent searches in memory only",
			},
			&cli.BoolFlag{
				Name:  "no-watch",
				Usage: "Do not rebuild the index when catalog files change",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), serveOptions{
				listen:    c.String("listen"),
				ephemeral: c.Bool("ephemeral"),
				noWatch:   c.Bool("no-watch"),
			})
		},
	}
}

type serveOptions struct {
	listen    string
	ephemeral bool
	noWatch   bool
}

// serve runs the API server until SIGINT or SIGTERM
func serve(ctx context.Context, configPath string, opts serveOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := loadRuntime(ctx, configPath, runtimeOptions{ephemeral: opts.ephemeral})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warnf("closing runtime: %v", err)
		}
	}()

	hub := realtime.NewHub(0)
	defer hub.Close()

	facade := query.New(rt.index, rt.recent, hub,
		query.WithDelay(rt.cfg.Debounce.Duration),
		query.WithLimit(rt.cfg.ResultLimit),
	)
	defer facade.Close()

	if !opts.noWatch {
		if paths := rt.watchPaths(); len(paths) > 0 {
			watcher, err := watch.New(paths, rt.cfg.Debounce.Duration, func(path string) {
				if ctx.Err() != nil {
					return
				}
				logger.Infof("catalog file changed: %s, rebuilding index", path)
				facade.SetIndex(rt.rebuild(ctx))
			})
			if err != nil {
				logger.Warnf("catalog watcher disabled: %v", err)
			} else {
				defer func() {
					if err := watcher.Close(); err != nil {
						logger.Warnf("closing catalog watcher: %v", err)
					}
				}()
				go watcher.Run(ctx)
			}
		}
	}

	listen := opts.listen
	if listen == "" {
		listen = rt.cfg.Listen
	}

	server := &http.Server{
		Addr:              listen,
		Handler:           api.NewServer(facade, rt.registry, hub).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("serving %d items on http://%s", rt.index.Len(), listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving API: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Close websocket streams first; Shutdown does not wait for hijacked
	// connections.
	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
