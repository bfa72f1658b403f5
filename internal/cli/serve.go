package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pujana-systems/stockwatch/internal/server"
	"github.com/pujana-systems/stockwatch/pkg/alerting"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and the daily low stock scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	scheduler := alerting.NewScheduler(a.sweeper, a.cfg.Scheduler.DailyHour, a.logger)
	scheduler.Start()
	defer scheduler.Stop()

	api := server.NewServer(a.store, a.evaluator, a.gateway, a.logger)

	readTimeout, _ := time.ParseDuration(a.cfg.Server.ReadTimeout)
	if readTimeout == 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout, _ := time.ParseDuration(a.cfg.Server.WriteTimeout)
	if writeTimeout == 0 {
		writeTimeout = 30 * time.Second
	}

	srv := &http.Server{
		Addr:         a.cfg.Server.Listen,
		Handler:      api.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("stockwatch started",
			"listen", a.cfg.Server.Listen,
			"daily_check_hour_utc", a.cfg.Scheduler.DailyHour,
		)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		a.logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
