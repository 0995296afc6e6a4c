package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/skykid17/smartlp-sub005/internal/console"
	"github.com/skykid17/smartlp-sub005/internal/devserver"
)

type DevserverCmd struct {
	flags *Flags
	app   *console.App

	// flags
	addr    string
	token   string
	latency time.Duration
}

// NewDevserverCmd creates a new devserver command
func NewDevserverCmd(flags *Flags, app *console.App) *DevserverCmd {
	return &DevserverCmd{flags: flags, app: app}
}

// Register adds the devserver command to the application
func (cmd *DevserverCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "devserver",
		Usage:     "Serve an in-memory backend for local development",
		UsageText: "smartlp devserver [--addr 127.0.0.1:5000] [--token TOKEN] [--latency 200ms]",
		Description: `Starts an HTTP server implementing the entries, rules, config, delete and
find_match endpoints over a seeded in-memory dataset. Point the console at
it with --api-url. Data is discarded on exit.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:5000",
				Sources:     cli.EnvVars("SMARTLP_DEVSERVER_ADDR"),
				Destination: &cmd.addr,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "require this bearer token on /api routes",
				Destination: &cmd.token,
			},
			&cli.DurationFlag{
				Name:        "latency",
				Usage:       "delay added to every /api request",
				Destination: &cmd.latency,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *DevserverCmd) run(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", cmd.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cmd.addr, err)
	}

	srv := devserver.New(devserver.SeedDataset(), devserver.Options{
		Token:   cmd.token,
		Latency: cmd.latency,
	})
	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	log.Info().Str("addr", listener.Addr().String()).Msg("devserver listening")
	_, _ = fmt.Fprintf(c.Root().Writer, "devserver listening on http://%s\n", listener.Addr())

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown devserver: %w", err)
	}
	log.Info().Msg("devserver stopped")
	return nil
}
