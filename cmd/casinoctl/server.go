package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/casino-in-go/pkg/config"
	"github.com/doodlesbykumbi/casino-in-go/pkg/server"
	"github.com/doodlesbykumbi/casino-in-go/pkg/server/endpoints"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the casino application server",
	Long: `Run the casino application server.

Authenticator chains are built on the first request that needs them. With
--watch, changes to casino.yml replace the chains without a restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("bind-address") {
			cfg.BindAddress, _ = cmd.Flags().GetString("bind-address")
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		watch, _ := cmd.Flags().GetBool("watch")
		if watch {
			w, err := config.NewWatcher(cfg.ConfigFilePath())
			if err != nil {
				return err
			}
			go func() {
				_ = w.Run(ctx, func(reloaded *config.CasinoConfig, err error) {
					if err == nil {
						err = reloaded.Validate()
					}
					if err != nil {
						a.logger.Error().Err(err).Str("file", cfg.ConfigFilePath()).Msg("configuration not reloaded")
						return
					}
					a.registry.Reload(reloaded)
					a.logger.Info().
						Strs("authenticators", reloaded.Authenticators.Names()).
						Strs("external_authenticators", reloaded.ExternalAuthenticators.Names()).
						Msg("configuration reloaded")
				})
			}()
		}

		s := server.NewServer(cfg, a.validator, a.gatherer, a.logger)
		endpoints.RegisterAll(s)

		errc := make(chan error, 1)
		go func() {
			a.logger.Info().Str("address", cfg.Address()).Msg("running server")
			errc <- s.Start()
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
			a.logger.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return s.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().IntP("port", "p", 8000, "server listen port (overrides CASINO_PORT and the config file)")
	serverCmd.Flags().StringP("bind-address", "b", "0.0.0.0", "server bind address (overrides CASINO_BIND_ADDRESS and the config file)")
	serverCmd.Flags().Bool("watch", false, "reload authenticators when the config file changes")
}
