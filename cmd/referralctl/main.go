package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Graziano10/referral-admin/client"
	"github.com/Graziano10/referral-admin/internal/config"
	"github.com/Graziano10/referral-admin/internal/logger"
	"github.com/Graziano10/referral-admin/rank"
	"github.com/Graziano10/referral-admin/session"
)

// annRequiresSession marks commands that refuse to run without a stored token.
const annRequiresSession = "requires-session"

var errNotLoggedIn = errors.New("not logged in: run `referralctl login` first")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", client.Message(err))
		os.Exit(1)
	}
}

// run executes one referralctl invocation and releases everything it opened.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	defer a.close()

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// app holds what the root command builds before any sub-command runs.
type app struct {
	apiURL string
	debug  bool

	cfg    *config.Config
	logger zerolog.Logger
	ranks  *rank.Table
	store  *session.SQLiteStore
	sess   *session.Manager
	client *client.Client
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "referralctl",
		Short:         "Administer the referral program's profile directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			if cmd.Annotations[annRequiresSession] == "true" && !a.sess.Authenticated() {
				return errNotLoggedIn
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Base URL of the profile API (default $REFERRAL_API_URL)")
	root.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "Enable verbose debug output")

	// Public
	root.AddCommand(a.newLoginCmd())
	root.AddCommand(a.newLogoutCmd())
	root.AddCommand(a.newStatusCmd())
	root.AddCommand(a.newRanksCmd())

	// Session required
	root.AddCommand(guarded(a.newListCmd()))
	root.AddCommand(guarded(a.newShowCmd()))
	root.AddCommand(guarded(a.newDeleteCmd()))
	root.AddCommand(guarded(a.newExportCmd()))
	root.AddCommand(guarded(a.newLeaderboardCmd()))

	return root
}

func guarded(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annRequiresSession] = "true"
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	if a.debug {
		cfg.Debug = true
	}
	a.cfg = cfg

	a.logger = logger.NewConsole(cmd.ErrOrStderr(), cfg.Debug)
	log.Logger = a.logger
	cfg.LogSummary(a.logger)

	a.ranks = rank.Default
	if cfg.RanksFile != "" {
		if a.ranks, err = rank.LoadFile(cfg.RanksFile); err != nil {
			return fmt.Errorf("load ranks: %w", err)
		}
	}

	path, err := session.DBPath(cfg.StateDir)
	if err != nil {
		return fmt.Errorf("resolve state dir: %w", err)
	}
	if a.store, err = session.OpenSQLiteStore(path); err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	if a.sess, err = session.NewManager(cmd.Context(), a.store); err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	a.sess.OnUnauthorized(func() {
		a.logger.Warn().Msg("session expired or revoked, log in again")
	})

	a.client, err = client.New(cfg.APIURL, a.sess,
		client.WithHTTPTimeout(cfg.HTTPTimeout),
		client.WithDebugLogging(cfg.Debug),
		client.WithLogger(a.logger),
		client.WithBulkConfig(client.BulkConfig{Shards: cfg.BulkShards, QueueSize: cfg.BulkQueueSize}),
	)
	return err
}

func (a *app) close() {
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close session store")
		}
	}
}
