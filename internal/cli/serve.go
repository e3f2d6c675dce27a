package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/restroo/internal/app"
	"github.com/iliyamo/restroo/internal/config"
	"github.com/iliyamo/restroo/internal/database"
	"github.com/iliyamo/restroo/internal/sentiment"
	"github.com/iliyamo/restroo/internal/service"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Migrate bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func serve(ctx context.Context, opts *ServeOptions) error {
	cfg := config.Load()

	// The scorer is loaded once, before any request can need it.
	analyzer, err := sentiment.Load(cfg.SentimentLanguage)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()
	if opts.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: rate limit and response cache disabled")
	} else {
		defer rdb.Close()
	}

	events := service.NewBookingPublisher(config.RabbitURL())
	defer events.Close()

	e := app.New(cfg, app.Deps{DB: db, Redis: rdb, Events: events, Analyzer: analyzer})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Printf("shutting down")
	return e.Shutdown(shutdown)
}
