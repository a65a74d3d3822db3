package website

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/nterray/discourse/src/config"
	"github.com/nterray/discourse/src/db"
	"github.com/nterray/discourse/src/forumdata"
	"github.com/nterray/discourse/src/logging"
	"github.com/nterray/discourse/src/readtracking"
)

var WebsiteCommand = &cobra.Command{
	Short: "Run the forum API server",
	Run: func(cmd *cobra.Command, args []string) {
		defer logging.LogPanics(nil)

		conn := db.NewConnPool()
		reads, err := readtracking.NewReadTracker(config.Config.Redis.Url)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		stores := forumdata.NewStores(conn, reads)

		var wg sync.WaitGroup
		wg.Add(1)
		server := http.Server{
			Addr:    config.Config.Addr,
			Handler: NewWebsiteRoutes(conn, stores),
		}
		go func() {
			logging.Info().Str("addr", config.Config.Addr).Msg("Serving the forum")
			serverErr := server.ListenAndServe()
			if !errors.Is(serverErr, http.ErrServerClosed) {
				logging.Error().Err(serverErr).Msg("Server shut down unexpectedly")
			}
			// The wg.Done() happens in the shutdown logic below.
		}()

		// Wait for SIGINT in the background and trigger graceful shutdown
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt)
		go func() {
			<-signals // First SIGINT (start shutdown)
			logging.Info().Msg("Shutting down the forum")

			go func() {
				timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				err := server.Shutdown(timeoutCtx)
				if err != nil {
					logging.Warn().Err(err).Msg("Server did not shut down gracefully")
				}
				wg.Done()
			}()

			<-signals // Second SIGINT (force quit)
			logging.Warn().Msg("Forcibly killed the forum")
			os.Exit(1)
		}()

		wg.Wait()
	},
}
