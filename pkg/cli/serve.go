package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/briareos/pkg/controller/http"
	"github.com/secmon-lab/briareos/pkg/service/worker"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var apiToken string
	var appCfg appConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8000",
			Sources:     cli.EnvVars("BRIAREOS_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "api-token",
			Usage:       "Require this bearer token on /api routes",
			Sources:     cli.EnvVars("BRIAREOS_API_TOKEN"),
			Destination: &apiToken,
		},
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := appCfg.build(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			var refresher *worker.KnowledgeRefreshWorker
			if interval := appCfg.knowledge.RefreshInterval(); interval > 0 {
				refresher = worker.NewKnowledgeRefreshWorker(a.uc.Knowledge, interval)
				if err := refresher.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start knowledge refresh worker")
				}
			}

			httpOpts := []httpctrl.Options{
				httpctrl.WithMetrics(a.registry),
				httpctrl.WithAutoGenerateDefault(a.generation.AutoGenerate),
			}
			if apiToken != "" {
				httpOpts = append(httpOpts, httpctrl.WithAPIToken(apiToken))
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(a.uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"copilot", a.uc.CopilotAvailable(),
					"api_token", apiToken != "",
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if refresher != nil {
					refresher.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
