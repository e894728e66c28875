// Command profile-twin serves an in-memory copy of the admin profile API
// for local development and end-to-end tests.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Graziano10/referral-admin/internal/logger"
	"github.com/Graziano10/referral-admin/internal/profiletwin"
)

func main() {
	log := logger.New("profile-twin")

	cfg, err := profiletwin.ResolveConfig()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := profiletwin.Run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("profile-twin exited with error")
		stop()
		os.Exit(1)
	}
}
