package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ephemera/internal/config"
	"github.com/ephemera/internal/handler"
	"github.com/ephemera/internal/metrics"
	"github.com/ephemera/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	servePrerender  bool
	registerMetrics sync.Once
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve pages, generating item pages on first request",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&servePrerender, "prerender", true, "generate every known item page at startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, release, err := openSource()
	if err != nil {
		return err
	}
	defer release()

	views, err := newViews()
	if err != nil {
		return err
	}

	registerMetrics.Do(func() {
		metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	})
	gin.SetMode(cfg.GinMode)

	api := handler.NewAPI(source, views, cfg.Revalidate)
	api.SetBaseContext(ctx)

	if servePrerender {
		go func() {
			n, err := api.Prerender(ctx)
			if err != nil {
				logrus.WithError(err).WithField("pages", n).Error("prerender stopped")
				return
			}
			logrus.WithField("pages", n).Info("prerender finished")
		}()
	}

	dir := ""
	if cfg.Source == config.SourceLocal {
		dir = cfg.AssetDir
	}
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(api, views, dir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{"addr": cfg.ListenAddr, "source": cfg.Source}).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	api.Wait()
	logrus.Info("server stopped")
	return nil
}
