package cli

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/runoshun/tasklist/internal/app"
	"github.com/runoshun/tasklist/internal/server"
)

// runServerFunc is a function variable for running the server, allowing it to be mocked in tests.
var runServerFunc = func(ctx context.Context, srv *server.Server, addr string) error {
	return srv.Run(ctx, addr)
}

// newServeCommand creates the serve command for running the /tasks server.
func newServeCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Addr  string
		Store string
		Debug bool
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the /tasks REST server",
		Long: `Serve the /tasks collection over HTTP.

Tasks are kept in the store chosen by [server] store ("sqlite" or "json").
When [server] redis_url is set, task lists are cached in Redis.
The server stops gracefully on SIGINT or SIGTERM.

Examples:
  tasks serve
  tasks serve --addr :9000 --store json --debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := &c.AppConfig.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = opts.Addr
			}
			if cmd.Flags().Changed("store") {
				cfg.Store = opts.Store
			}
			logger := newServerLogger(cmd.ErrOrStderr(), opts.Debug || cfg.Debug)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			repo, err := c.ServerRepository(ctx)
			if err != nil {
				return err
			}
			logger.WithField("store", cfg.Store).Debug("store opened")

			return runServerFunc(ctx, server.New(repo, logger), cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from [server] addr)")
	cmd.Flags().StringVar(&opts.Store, "store", "", `Store: "sqlite" or "json" (default from [server] store)`)
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Log every request")

	return cmd
}

func newServerLogger(w io.Writer, debug bool) *log.Logger {
	logger := log.New()
	logger.SetOutput(w)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
