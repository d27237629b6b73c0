package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sprintwatch/internal/server"
	"sprintwatch/internal/snapshot"
)

var serveOpen bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API and rescan the latest snapshot on a schedule",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the dashboard in the default browser")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	st, err := server.NewState(cfg, rules)
	if err != nil {
		return err
	}

	if err := st.Refresh(time.Now()); err != nil {
		if !errors.Is(err, snapshot.ErrNoSnapshot) {
			return err
		}
		log.Warn().Msg("No snapshot saved yet; the API answers 404 until one is uploaded")
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.RescanSchedule, func() {
		if err := st.Refresh(time.Now()); err != nil && !errors.Is(err, snapshot.ErrNoSnapshot) {
			log.Error().Err(err).Msg("Scheduled rescan failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid rescan schedule %q: %w", cfg.RescanSchedule, err)
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: server.NewRouter(cfg, st)}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("Dashboard API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if serveOpen {
		go func() {
			// give the listener a moment before pointing a browser at it
			time.Sleep(300 * time.Millisecond)
			if err := browser.OpenURL(dashboardURL(cfg.HTTPAddr)); err != nil {
				log.Warn().Err(err).Msg("Failed to open browser")
			}
		}()
	}

	return g.Wait()
}

// dashboardURL turns a listen address into something a browser can open.
func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
