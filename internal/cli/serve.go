package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/weekflow/pkg/cache"
	"github.com/matzehuels/weekflow/pkg/config"
	errs "github.com/matzehuels/weekflow/pkg/errors"
	"github.com/matzehuels/weekflow/pkg/pipeline"
	"github.com/matzehuels/weekflow/pkg/session"
)

const (
	shutdownTimeout = 5 * time.Second
	cleanupInterval = 10 * time.Minute

	// serveKeyPrefix namespaces the server's entries in a shared Redis cache.
	serveKeyPrefix = "weekflow:serve:"
)

// serveCommand creates the serve command, the HTTP host of the viewer.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		source  sourceFlags
		geom    layoutFlags
		addr    string
		store   string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the interactive viewer over HTTP",
		Long: `Host the interactive viewer over HTTP.

Open /view in a browser and click a bar's triangle to expand or collapse
it. Each browser gets its own expand state through a session cookie; the
state is kept in the session store configured under [serve] (memory, file,
redis or mongo), so several hosts sharing redis or mongo can serve the
same viewers.

Endpoints:
  GET  /                  redirect to /view
  GET  /view              current diagram (?format=svg|png|pdf|json|dot, ?view=icicle|nodelink)
  GET  /toggle/{id}       toggle a bar and redirect to /view
  GET  /api/layout        current layout as JSON
  POST /api/toggle/{id}   toggle a bar and return the new layout
  GET  /healthz           liveness probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serveCfg := c.cfg.Serve
			if cmd.Flags().Changed("addr") {
				serveCfg.Addr = addr
			}
			if cmd.Flags().Changed("store") {
				serveCfg.Store = store
			}

			var opts pipeline.Options
			source.apply(&opts, c.cfg.Hours)
			params := geom.resolve(cmd, c.cfg.Layout)
			opts.Params = &params
			opts.Palette = c.cfg.Palette
			return c.runServe(cmd.Context(), serveCfg, opts, noCache)
		},
	}

	source.register(cmd)
	geom.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", config.Default().Serve.Addr, "listen address")
	cmd.Flags().StringVar(&store, "store", config.Default().Serve.Store, "session store: memory, file, redis, mongo")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Serve, opts pipeline.Options, noCache bool) error {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Connecting to %s session store...", cfg.Store))
	spinner.Start()

	store, err := newSessionStore(ctx, cfg)
	if err != nil {
		spinner.StopWithError("Session store unavailable")
		return err
	}
	defer store.Close()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		spinner.Stop()
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	runner.Keyer = serveKeyer(runner.Cache)

	spinner.Update("Loading tree...")
	srv, err := newServer(ctx, serverOptions{
		Base:   opts,
		Store:  store,
		Runner: runner,
		TTL:    c.sessionTTL(),
		Logger: c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Could not load tree")
		return err
	}
	spinner.Stop()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}

	httpSrv := &http.Server{
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go c.cleanupLoop(ctx, srv, store)

	printSuccess("Serving weekflow viewer")
	printKeyValue("URL", StyleLink.Render("http://"+ln.Addr().String()+"/view"))
	printKeyValue("Sessions", cfg.Store)
	printDetail("Press Ctrl+C to stop")

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			c.Logger.Warn("shutdown", "err", err)
		}
		return ctx.Err()
	}
}

// cleanupLoop expires stored sessions and forgets idle viewers.
func (c *CLI) cleanupLoop(ctx context.Context, srv *server, store session.Store) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Cleanup(ctx); err != nil {
				c.Logger.Warn("session cleanup failed", "err", err)
			}
			if n := srv.prune(); n > 0 {
				c.Logger.Debug("dropped idle viewers", "count", n)
			}
		}
	}
}

// newSessionStore opens the session backend named in cfg.
func newSessionStore(ctx context.Context, cfg config.Serve) (session.Store, error) {
	switch cfg.Store {
	case config.StoreFile:
		return session.NewFileStore("")
	case config.StoreRedis:
		return session.NewRedisStore(ctx, session.RedisConfig{Addr: cfg.RedisAddr})
	case config.StoreMongo:
		return session.NewMongoStore(ctx, session.MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	case config.StoreMemory, "":
		return session.NewMemoryStore(), nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown session store %q (want memory, file, redis or mongo)", cfg.Store)
	}
}

// serveKeyer scopes cache keys when the cache is shared with other hosts.
// Local caches keep the plain keys so CLI renders and the server reuse each
// other's entries.
func serveKeyer(c cache.Cache) cache.Keyer {
	if _, ok := c.(*cache.RedisCache); ok {
		return cache.NewScopedKeyer(cache.NewDefaultKeyer(), serveKeyPrefix)
	}
	return cache.NewDefaultKeyer()
}
