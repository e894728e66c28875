package profiletwin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Run seeds a store from cfg and serves the twin until ctx is cancelled.
func Run(ctx context.Context, cfg *Config, log zerolog.Logger) error {
	profiles, err := loadProfiles(cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Failed to load seed data")
		return err
	}

	log.Info().
		Int("port", cfg.Port).
		Int("profiles", len(profiles)).
		Str("seed_file", cfg.SeedFile).
		Str("admin_email", cfg.AdminEmail).
		Msg("Profile twin starting")

	srv := NewServer(NewStore(profiles...), cfg.AdminEmail, cfg.AdminPassword, log)
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return err
	}
	return Serve(ctx, ln, srv.Handler(), log)
}

func loadProfiles(cfg *Config) ([]Profile, error) {
	if cfg.SeedFile != "" {
		return LoadSeedFile(cfg.SeedFile)
	}
	return Seed(cfg.Seed, cfg.SeedRandom), nil
}

// Serve runs handler on ln and shuts it down gracefully once ctx is done.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, log zerolog.Logger) error {
	server := &http.Server{
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	})
	return g.Wait()
}
